// Package minutiae carries externally extracted minutiae into the scoring
// pipeline. Extraction itself is done by a separate feature extractor; the
// types here only describe its output and whether it succeeded.
package minutiae

import (
	"context"
	"fmt"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
)

// Minutia is a ridge ending or bifurcation in image pixel coordinates.
type Minutia struct {
	X       int     `json:"x" cbor:"x"`
	Y       int     `json:"y" cbor:"y"`
	Angle   float64 `json:"angle" cbor:"angle"`
	Quality int     `json:"quality" cbor:"quality"`
}

// Result is the outcome of one extraction. Extracted is false when the
// extractor could not process the image; Minutiae is then empty.
type Result struct {
	Minutiae  []Minutia
	Extracted bool
}

// Extractor finds minutiae in a fingerprint image.
type Extractor interface {
	Extract(ctx context.Context, img *fingerprint.Image) (Result, error)
}

// StaticExtractor returns a list supplied by the caller, for example minutiae
// posted alongside the image.
type StaticExtractor struct {
	Minutiae []Minutia
}

// Extract validates the supplied minutiae against the image bounds.
func (s StaticExtractor) Extract(ctx context.Context, img *fingerprint.Image) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, apperrors.NewTimeoutError("minutiae extraction cancelled", err)
	}
	if err := Validate(s.Minutiae, img.Width(), img.Height()); err != nil {
		return Result{}, err
	}
	out := make([]Minutia, len(s.Minutiae))
	copy(out, s.Minutiae)
	return Result{Minutiae: out, Extracted: true}, nil
}

// NoExtractor reports that no extraction took place.
type NoExtractor struct{}

func (NoExtractor) Extract(ctx context.Context, img *fingerprint.Image) (Result, error) {
	return Result{}, nil
}

// Validate rejects minutiae that fall outside a width x height image.
func Validate(ms []Minutia, width, height int) error {
	for i, m := range ms {
		if m.X < 0 || m.Y < 0 || m.X >= width || m.Y >= height {
			return apperrors.NewValidationError(
				fmt.Sprintf("minutia %d at (%d, %d) is outside the %dx%d image", i, m.X, m.Y, width, height), nil)
		}
	}
	return nil
}

// CenterOfMass is the integer mean of the minutiae positions.
func CenterOfMass(ms []Minutia) (x, y int) {
	if len(ms) == 0 {
		return 0, 0
	}
	var sx, sy int
	for _, m := range ms {
		sx += m.X
		sy += m.Y
	}
	return sx / len(ms), sy / len(ms)
}

// CountInRect counts minutiae inside a width x height rectangle centred on
// (cx, cy), clipped to the image. Bounds are inclusive.
func CountInRect(ms []Minutia, cx, cy, width, height, imgWidth, imgHeight int) int {
	x0 := max(cx-width/2, 0)
	y0 := max(cy-height/2, 0)
	x1 := min(cx+width/2, imgWidth-1)
	y1 := min(cy+height/2, imgHeight-1)

	n := 0
	for _, m := range ms {
		if m.X >= x0 && m.X <= x1 && m.Y >= y0 && m.Y <= y1 {
			n++
		}
	}
	return n
}

// Translate moves every minutia by (dx, dy) and drops those that leave a
// width x height image. The extraction flag is kept.
func Translate(res Result, dx, dy, width, height int) Result {
	out := Result{Extracted: res.Extracted}
	for _, m := range res.Minutiae {
		m.X += dx
		m.Y += dy
		if m.X < 0 || m.Y < 0 || m.X >= width || m.Y >= height {
			continue
		}
		out.Minutiae = append(out.Minutiae, m)
	}
	return out
}
