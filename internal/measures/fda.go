package measures

import (
	"math"

	"github.com/anime-shed/fingerprint-quality-go/internal/fingerprint"
	"github.com/anime-shed/fingerprint-quality-go/internal/imaging"
)

// Gabor filter used for the ridge energy diagnostic: roughly one ridge period
// at 500 ppi.
const (
	gaborSize  = 11
	gaborFreq  = 0.1
	gaborSigma = 4.0
)

// FrequencyDomainAnalysis measures how dominant the main ridge frequency is
// in the gray profile across the ridges of each foreground block.
type FrequencyDomainAnalysis struct {
	module
	gaborEnergy float64
}

// NewFrequencyDomainAnalysis computes the FDA histogram of img.
func NewFrequencyDomainAnalysis(img *fingerprint.Image) (*FrequencyDomainAnalysis, error) {
	return newFrequencyDomainAnalysis(img, false)
}

// NewFrequencyDomainAnalysisWithGabor also computes the Gabor ridge energy
// diagnostic. The FDA measures are identical.
func NewFrequencyDomainAnalysisWithGabor(img *fingerprint.Image) (*FrequencyDomainAnalysis, error) {
	return newFrequencyDomainAnalysis(img, true)
}

func newFrequencyDomainAnalysis(img *fingerprint.Image, gabor bool) (*FrequencyDomainAnalysis, error) {
	f := &FrequencyDomainAnalysis{}
	m, err := compute(FDAModuleID, img, func() (Set, error) {
		var values, energies []float64
		_, _, _, err := orientedWalk(img, func(b orientedBlock) error {
			if !b.Foreground {
				return nil
			}
			v, err := frequencyDomain(b.Window, b.Orientation)
			if err != nil {
				return err
			}
			values = append(values, v)

			if !gabor {
				return nil
			}
			kernel := imaging.GaborKernel(gaborSize, math.Pi/2-b.Orientation, gaborFreq, gaborSigma)
			energies = append(energies, imaging.GaborEnergy(b.Window, kernel))
			return nil
		})
		if err != nil {
			return nil, err
		}
		f.gaborEnergy = imaging.Mean(energies)
		return fdaHistogram.Encode(values), nil
	})
	if err != nil {
		return nil, err
	}
	f.module = m
	return f, nil
}

// GaborEnergy is the mean Gabor response of the foreground blocks, with the
// filter tuned to each block's orientation. It is diagnostic only and 0
// unless the module was built with NewFrequencyDomainAnalysisWithGabor.
func (f *FrequencyDomainAnalysis) GaborEnergy() float64 { return f.gaborEnergy }

// frequencyDomain rotates the block so ridges run horizontally, averages every
// row and compares the spectral peak with the lower half of the spectrum.
// A peak at either end of the spectrum scores 1.
func frequencyDomain(window *imaging.Matrix, orientation float64) (float64, error) {
	rotated, err := imaging.RotatedBlock(window, orientation+math.Pi/2, true)
	if err != nil {
		return 0, err
	}
	geom := imaging.NewSlantedGeometry(slantedBlockSize)
	v2 := rotated.CenterCrop(geom.WindowX, geom.WindowY)

	mag := imaging.DFTMagnitude(v2.RowMeans())
	amp := mag[1:]

	peak := 0
	for i, v := range amp {
		if v > amp[peak] {
			peak = i
		}
	}
	if peak == 0 || peak+1 >= len(amp) {
		return 1, nil
	}

	var denom float64
	for _, v := range amp[:len(amp)/2] {
		denom += v
	}
	return (amp[peak] + 0.3*(amp[peak-1]+amp[peak+1])) / denom, nil
}
