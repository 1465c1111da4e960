package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/fxamacker/cbor/v2"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
)

// Leaf is the Feature value of a node that carries a prediction.
const Leaf int32 = -1

// Node is one entry of the shared node arena. Internal nodes compare the
// feature at index Feature against Threshold; leaves hold Value.
type Node struct {
	Feature   int32   `cbor:"1,keyasint" json:"feature"`
	Threshold float64 `cbor:"2,keyasint" json:"threshold"`
	Left      int32   `cbor:"3,keyasint" json:"left"`
	Right     int32   `cbor:"4,keyasint" json:"right"`
	Value     float64 `cbor:"5,keyasint" json:"value"`
}

// IsLeaf reports whether the node ends a descent.
func (n Node) IsLeaf() bool { return n.Feature < 0 }

// Ensemble is a forest of binary decision trees stored as root indices into
// one node arena. It is read-only once validated.
type Ensemble struct {
	Features []string `cbor:"1,keyasint" json:"features"`
	Nodes    []Node   `cbor:"2,keyasint" json:"nodes"`
	Roots    []int32  `cbor:"3,keyasint" json:"roots"`
}

// Validate checks that every index is inside the arena and that no tree
// contains a cycle.
func (e *Ensemble) Validate() error {
	if len(e.Features) == 0 {
		return fmt.Errorf("ensemble has no features")
	}
	if len(e.Roots) == 0 {
		return fmt.Errorf("ensemble has no trees")
	}
	n := int32(len(e.Nodes))
	inRange := func(i int32) bool { return i >= 0 && i < n }

	seen := make(map[string]bool, len(e.Features))
	for _, f := range e.Features {
		if seen[f] {
			return fmt.Errorf("duplicate feature %q", f)
		}
		seen[f] = true
	}

	for i, node := range e.Nodes {
		if node.IsLeaf() {
			continue
		}
		if int(node.Feature) >= len(e.Features) {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.Feature)
		}
		if !inRange(node.Left) || !inRange(node.Right) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}

	// 0 unvisited, 1 on the current path, 2 done
	state := make([]uint8, n)
	type frame struct {
		node  int32
		child int
	}
	for t, root := range e.Roots {
		if !inRange(root) {
			return fmt.Errorf("tree %d: root index %d out of range", t, root)
		}
		if state[root] == 2 {
			continue
		}
		stack := []frame{{node: root}}
		state[root] = 1
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			node := e.Nodes[top.node]
			if node.IsLeaf() || top.child == 2 {
				state[top.node] = 2
				stack = stack[:len(stack)-1]
				continue
			}
			next := node.Left
			if top.child == 1 {
				next = node.Right
			}
			top.child++
			switch state[next] {
			case 1:
				return fmt.Errorf("tree %d: cycle through node %d", t, next)
			case 0:
				state[next] = 1
				stack = append(stack, frame{node: next})
			}
		}
	}
	return nil
}

// predict descends every tree with the feature vector x and returns the mean
// leaf value.
func (e *Ensemble) predict(x []float64) float64 {
	var sum float64
	for _, root := range e.Roots {
		i := root
		for {
			node := e.Nodes[i]
			if node.IsLeaf() {
				sum += node.Value
				break
			}
			if x[node.Feature] <= node.Threshold {
				i = node.Left
			} else {
				i = node.Right
			}
		}
	}
	return sum / float64(len(e.Roots))
}

// FileHash returns the lowercase hex MD5 digest of data.
func FileHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Decode parses and validates a CBOR encoded ensemble.
func Decode(data []byte) (*Ensemble, error) {
	var e Ensemble
	if err := cbor.Unmarshal(data, &e); err != nil {
		return nil, apperrors.NewModelCorruptError("failed to decode model parameters", err)
	}
	if err := e.Validate(); err != nil {
		return nil, apperrors.NewModelCorruptError("invalid model parameters", err)
	}
	return &e, nil
}

// Encode serializes the ensemble in the format read by Decode.
func Encode(e *Ensemble) ([]byte, error) {
	return cbor.Marshal(e)
}

// Load reads the parameter file at path and checks its MD5 digest against
// expectedHash before decoding it. It returns the ensemble and the digest.
func Load(path, expectedHash string) (*Ensemble, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", apperrors.NewNotFoundError(fmt.Sprintf("cannot read model file %s", path), err)
	}
	hash := FileHash(data)
	if !strings.EqualFold(hash, strings.TrimSpace(expectedHash)) {
		e := apperrors.NewModelCorruptError("model hash mismatch", nil)
		e.Details = fmt.Sprintf("expected %s, got %s", expectedHash, hash)
		return nil, "", e
	}
	ens, err := Decode(data)
	if err != nil {
		return nil, "", err
	}
	return ens, hash, nil
}
