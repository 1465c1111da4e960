package model

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mcuadros/go-defaults"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
)

// Info describes a parameter file and the digest it must match.
type Info struct {
	Name        string `toml:"name" json:"name" default:"NFIQ 2"`
	Trainer     string `toml:"trainer" json:"trainer,omitempty"`
	Description string `toml:"description" json:"description,omitempty"`
	Version     string `toml:"version" json:"version" default:"unknown"`
	Path        string `toml:"path" json:"path"`
	Hash        string `toml:"hash" json:"hash"`
}

// LoadInfo decodes the TOML model information file. A relative Path is
// resolved against the directory holding the information file.
func LoadInfo(infoPath string) (*Info, error) {
	info := &Info{}
	defaults.SetDefaults(info)
	if _, err := toml.DecodeFile(infoPath, info); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot read model info %s", infoPath), err)
	}

	info.Path = strings.TrimSpace(info.Path)
	info.Hash = strings.TrimSpace(info.Hash)
	if info.Path == "" {
		return nil, apperrors.NewValidationError("model info is missing path", nil)
	}
	if info.Hash == "" {
		return nil, apperrors.NewValidationError("model info is missing hash", nil)
	}
	if !filepath.IsAbs(info.Path) {
		info.Path = filepath.Join(filepath.Dir(infoPath), info.Path)
	}
	return info, nil
}
