package fingerprint

import (
	"fmt"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
)

const (
	// Rows and columns whose mean gray level is above this are frame.
	nearWhiteThreshold = 250.0

	// Size limits of the cropped image, exclusive on both ends.
	MinCroppedWidth  = 196
	MaxCroppedWidth  = 800
	MinCroppedHeight = 196
	MaxCroppedHeight = 1000
)

// CropNearWhiteFrame returns a copy of the image with near-white rows and
// columns removed from every edge. One frame row/column is kept as margin on
// each side that was trimmed. The result must satisfy the cropped size
// limits.
func (im *Image) CropNearWhiteFrame() (*Image, error) {
	top := 0
	for y := 0; y < im.height; y++ {
		if im.rowMean(y) <= nearWhiteThreshold {
			if y > 0 {
				top = y - 1
			}
			break
		}
	}

	bottom := im.height - 1
	for y := im.height - 1; y >= 0; y-- {
		if im.rowMean(y) <= nearWhiteThreshold {
			if y < im.height-1 {
				bottom = y + 1
			}
			break
		}
	}

	left := 0
	for x := 0; x < im.width; x++ {
		if im.columnMean(x) <= nearWhiteThreshold {
			if x > 0 {
				left = x - 1
			}
			break
		}
	}

	right := im.width - 1
	for x := im.width - 1; x >= 0; x-- {
		if im.columnMean(x) <= nearWhiteThreshold {
			if x < im.width-1 {
				right = x + 1
			}
			break
		}
	}

	width := right - left + 1
	if width <= 0 {
		left = 0
		width = im.width
	}
	height := bottom - top + 1
	if height <= 0 {
		top = 0
		height = im.height
	}

	if err := checkCroppedSize(width, height); err != nil {
		return nil, err
	}

	pixels := make([]byte, 0, width*height)
	for y := top; y < top+height; y++ {
		row := im.Row(y)
		pixels = append(pixels, row[left:left+width]...)
	}
	return &Image{
		width:      width,
		height:     height,
		ppi:        im.ppi,
		fingerCode: im.fingerCode,
		pixels:     pixels,
		originX:    im.originX + left,
		originY:    im.originY + top,
	}, nil
}

func checkCroppedSize(width, height int) error {
	switch {
	case width <= MinCroppedWidth:
		return apperrors.NewInvalidImageSizeError(fmt.Sprintf(
			"width is too small after trimming whitespace. WxH: %dx%d, but minimum width is %d",
			width, height, MinCroppedWidth+1))
	case width >= MaxCroppedWidth:
		return apperrors.NewInvalidImageSizeError(fmt.Sprintf(
			"width is too large after trimming whitespace. WxH: %dx%d, but maximum width is %d",
			width, height, MaxCroppedWidth-1))
	case height <= MinCroppedHeight:
		return apperrors.NewInvalidImageSizeError(fmt.Sprintf(
			"height is too small after trimming whitespace. WxH: %dx%d, but minimum height is %d",
			width, height, MinCroppedHeight+1))
	case height >= MaxCroppedHeight:
		return apperrors.NewInvalidImageSizeError(fmt.Sprintf(
			"height is too large after trimming whitespace. WxH: %dx%d, but maximum height is %d",
			width, height, MaxCroppedHeight-1))
	}
	return nil
}

func (im *Image) rowMean(y int) float64 {
	var sum float64
	for _, p := range im.Row(y) {
		sum += float64(p)
	}
	return sum / float64(im.width)
}

func (im *Image) columnMean(x int) float64 {
	var sum float64
	for y := 0; y < im.height; y++ {
		sum += float64(im.pixels[y*im.width+x])
	}
	return sum / float64(im.height)
}
