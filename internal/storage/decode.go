package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/jtejido/go-wsq"
	"github.com/spakin/netpbm"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
)

// Format names reported by Decode.
const (
	FormatRaw = "raw"
	FormatWSQ = "wsq"
	FormatPGM = "pgm"
)

// DecodeOptions describe the capture. Width and Height are only used for raw
// 8-bit buffers, which are assumed when both are positive.
type DecodeOptions struct {
	PPI        uint16
	FingerCode uint8
	Width      int
	Height     int
}

// Decode converts an encoded image to a grayscale fingerprint image and
// returns the detected format.
func Decode(data []byte, opts DecodeOptions) (*fingerprint.Image, string, error) {
	if len(data) == 0 {
		return nil, "", apperrors.NewInvalidImageError("empty image data", nil)
	}
	if opts.PPI == 0 {
		opts.PPI = fingerprint.Resolution500PPI
	}

	if opts.Width > 0 && opts.Height > 0 {
		img, err := fingerprint.New(data, opts.Width, opts.Height, opts.PPI, opts.FingerCode)
		return img, FormatRaw, err
	}

	var (
		decoded image.Image
		format  string
		err     error
	)
	switch {
	case isWSQ(data):
		format = FormatWSQ
		decoded, err = wsq.Decode(bytes.NewReader(data))
	case isPGM(data):
		format = FormatPGM
		decoded, err = netpbm.Decode(bytes.NewReader(data), nil)
	default:
		decoded, format, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, format, apperrors.NewInvalidImageError(fmt.Sprintf("failed to decode %s image", formatName(format)), err)
	}

	img, err := FromImage(decoded, opts.PPI, opts.FingerCode)
	return img, format, err
}

// FromImage converts any image to 8-bit luma.
func FromImage(src image.Image, ppi uint16, fingerCode uint8) (*fingerprint.Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, apperrors.NewInvalidImageError("image has no pixels", nil)
	}

	if g, ok := src.(*image.Gray); ok && g.Stride == w {
		start := g.PixOffset(b.Min.X, b.Min.Y)
		return fingerprint.New(g.Pix[start:start+w*h], w, h, ppi, fingerCode)
	}

	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
		}
	}
	return fingerprint.New(pix, w, h, ppi, fingerCode)
}

func isWSQ(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1] == 0xA0
}

func isPGM(data []byte) bool {
	return len(data) >= 2 && data[0] == 'P' && (data[1] == '2' || data[1] == '5')
}

func formatName(format string) string {
	if format == "" {
		return "unknown"
	}
	return format
}
