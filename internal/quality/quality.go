// Package quality maps native quality measures onto the 0..100 quality
// block scale. The mapping is independent of the ensemble model.
package quality

import (
	"math"

	apperrors "github.com/anime-shed/fingerprint-quality-go/internal/errors"
	"github.com/anime-shed/fingerprint-quality-go/internal/imaging"
	"github.com/anime-shed/fingerprint-quality-go/internal/measures"
)

// Block values are bounded by these.
const (
	MinBlockValue = 0
	MaxBlockValue = 100
)

// Mapping converts one native value to a block value.
type Mapping func(native float64) int

// Sigmoid maps native onto 100/(1+exp(-scaling*(native-inflectionPoint))),
// rounded and clamped to 0..100.
func Sigmoid(native, inflectionPoint, scaling float64) int {
	v := MaxBlockValue / (1 + math.Exp(-scaling*(native-inflectionPoint)))
	return clampBlock(int(math.Floor(v + 0.5)))
}

// KnownRange maps [min, max] linearly onto 0..100. Values outside the range
// are clamped.
func KnownRange(native, min, max float64) int {
	frac := imaging.Clamp((native-min)/(max-min), 0, 1)
	return clampBlock(int(math.Floor(MaxBlockValue*frac + 0.5)))
}

func clampBlock(v int) int {
	return imaging.Clamp(v, MinBlockValue, MaxBlockValue)
}

func knownRange(min, max float64) Mapping {
	return func(native float64) int { return KnownRange(native, min, max) }
}

func sigmoid(inflectionPoint, scaling float64) Mapping {
	return func(native float64) int { return Sigmoid(native, inflectionPoint, scaling) }
}

func capped(native float64) int {
	return clampBlock(int(math.Floor(native + 0.5)))
}

// Orientation flow values are normalised angle differences bounded by 0 and
// 180 degrees.
const (
	ofMin = (0 - measures.OrientationFlowMinAngle) / (90 - measures.OrientationFlowMinAngle)
	ofMax = (180 - measures.OrientationFlowMinAngle) / (90 - measures.OrientationFlowMinAngle)
)

var mappings = map[string]Mapping{
	measures.Mu:                 knownRange(0, 255),
	measures.MMB:                knownRange(0, 255),
	measures.ROIAreaMean:        knownRange(0, 255),
	measures.MinutiaeMuQuality:  knownRange(0, 255),
	measures.MinutiaeCount:      capped,
	measures.MinutiaeCountCOM:   capped,
	measures.MinutiaeOCLQuality: knownRange(0, 1),
	measures.CoherenceRel:       knownRange(0, 1),
	measures.CoherenceSum:       knownRange(0, 3150),

	measures.OCLPrefix + "Mean":   knownRange(0, 1),
	measures.LCSPrefix + "Mean":   knownRange(0, 1),
	measures.FDAPrefix + "Mean":   knownRange(0, 1),
	measures.OCLPrefix + "StdDev": knownRange(0, 1),
	measures.LCSPrefix + "StdDev": knownRange(0, 1),
	measures.FDAPrefix + "StdDev": knownRange(0, 1),
	measures.OFPrefix + "StdDev":  knownRange(0, 1),
	measures.OFPrefix + "Mean":    knownRange(ofMin, ofMax),

	measures.RVUPrefix + "Mean":   sigmoid(1, 2),
	measures.RVUPrefix + "StdDev": sigmoid(1, 2),
}

// BlockValue maps a native measure to its quality block value. An identifier
// without a mapping is an unrecognized_identifier error.
func BlockValue(identifier string, native float64) (int, error) {
	m, ok := mappings[identifier]
	if !ok {
		return 0, apperrors.NewUnrecognizedIdentifierError(identifier)
	}
	if math.IsNaN(native) {
		return MinBlockValue, nil
	}
	return m(native), nil
}

// Identifiers lists the measures that have a block mapping, in the native
// measure enumeration order.
func Identifiers() []string {
	var ids []string
	for _, id := range measures.Identifiers() {
		if _, ok := mappings[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Blocks maps every mappable measure present in set. Measures without a
// mapping, such as histogram bins, are skipped.
func Blocks(set measures.Set) map[string]int {
	out := make(map[string]int)
	for id, native := range set {
		if _, ok := mappings[id]; ok {
			out[id], _ = BlockValue(id, native)
		}
	}
	return out
}
