package measures

import (
	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/imaging"
)

const contrastBlockSize = 32

// Contrast reports the image mean (Mu) and the mean of 32x32 block means
// (MMB). The whole image standard deviation is kept for actionable feedback.
type Contrast struct {
	module
	sigma float64
}

// NewContrast computes the contrast measures of img.
func NewContrast(img *fingerprint.Image) (*Contrast, error) {
	c := &Contrast{}
	m, err := compute(ContrastModuleID, img, func() (Set, error) {
		mat := imaging.FromImage(img)

		blocks := imaging.Blocks(mat.Rows, mat.Cols, contrastBlockSize)
		var mmb float64
		for _, rc := range blocks {
			mmb += mat.SubRect(rc).Mean() / float64(len(blocks))
		}

		mu, sigma := mat.MeanStdDev()
		c.sigma = sigma
		return Set{MMB: mmb, Mu: mu}, nil
	})
	if err != nil {
		return nil, err
	}
	c.module = m
	return c, nil
}

// Sigma is the population standard deviation of all pixels.
func (c *Contrast) Sigma() float64 { return c.sigma }
