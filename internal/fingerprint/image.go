// Package fingerprint holds the immutable grayscale fingerprint image value
// shared by every quality measure.
package fingerprint

import (
	"fmt"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
)

// Resolution500PPI is the only resolution accepted by the quality measures.
const Resolution500PPI uint16 = 500

// Smallest image the quality measures accept: one 32x32 analysis block.
const (
	MinWidth  = 32
	MinHeight = 32
)

// Image is an 8-bit grayscale image stored row-major. Values are never
// modified after construction.
type Image struct {
	width      int
	height     int
	ppi        uint16
	fingerCode uint8
	pixels     []byte
	// position inside the image this one was cropped from
	originX    int
	originY    int
}

// New copies pixels into a new Image.
func New(pixels []byte, width, height int, ppi uint16, fingerCode uint8) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, apperrors.NewInvalidImageError(
			fmt.Sprintf("image dimensions must be positive (got %dx%d)", width, height), nil)
	}
	if len(pixels) != width*height {
		return nil, apperrors.NewInvalidImageError(
			fmt.Sprintf("buffer length %d does not match %dx%d", len(pixels), width, height), nil)
	}

	buf := make([]byte, len(pixels))
	copy(buf, pixels)
	return &Image{
		width:      width,
		height:     height,
		ppi:        ppi,
		fingerCode: fingerCode,
		pixels:     buf,
	}, nil
}

func (im *Image) Width() int { return im.width }
func (im *Image) Height() int { return im.height }
func (im *Image) PPI() uint16 { return im.ppi }
func (im *Image) FingerCode() uint8 { return im.fingerCode }
func (im *Image) At(x, y int) uint8 { return im.pixels[y*im.width+x] }
func (im *Image) Row(y int) []byte { return im.pixels[y*im.width : (y+1)*im.width] }

// Origin is the position of the top left pixel in the uncropped image.
func (im *Image) Origin() (x, y int) { return im.originX, im.originY }

// Pixels returns a copy of the sample buffer.
func (im *Image) Pixels() []byte {
	buf := make([]byte, len(im.pixels))
	copy(buf, im.pixels)
	return buf
}

// Mean is the average gray level of the whole image.
func (im *Image) Mean() float64 {
	var sum float64
	for _, p := range im.pixels {
		sum += float64(p)
	}
	return sum / float64(len(im.pixels))
}

// RequireResolution rejects images that are not 500 ppi. module names the
// caller for error context.
func RequireResolution(im *Image, module string) error {
	if im == nil {
		return apperrors.NewFeatureCalculationError(module, "no image supplied", nil)
	}
	if im.ppi != Resolution500PPI {
		return apperrors.NewFeatureCalculationError(module,
			fmt.Sprintf("only %d ppi images are supported (got %d)", Resolution500PPI, im.ppi), nil)
	}
	return nil
}

// RequireMinimumSize rejects images smaller than one analysis block.
func RequireMinimumSize(im *Image) error {
	if im.width < MinWidth || im.height < MinHeight {
		return apperrors.NewInvalidImageSizeError(fmt.Sprintf(
			"image is too small. WxH: %dx%d, but minimum is %dx%d",
			im.width, im.height, MinWidth, MinHeight))
	}
	return nil
}
