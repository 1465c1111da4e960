package measures

import "strconv"

// Module identifiers, in the order the orchestrator merges them.
const (
	ContrastModuleID   = "NFIQ2_Contrast"
	LCSModuleID        = "NFIQ2_LCS"
	OCLModuleID        = "NFIQ2_OCL"
	RVUModuleID        = "NFIQ2_RVUP"
	OFModuleID         = "NFIQ2_OF"
	FDAModuleID        = "NFIQ2_FDA"
	QualityMapModuleID = "NFIQ2_QualityMap"
	MinutiaeModuleID   = "NFIQ2_Minutiae"
)

// Scalar measure identifiers.
const (
	Mu  = "Mu"
	MMB = "MMB"

	ROIAreaMean  = "ImgProcROIArea_Mean"
	CoherenceSum = "OrientationMap_ROIFilter_CoherenceSum"
	CoherenceRel = "OrientationMap_ROIFilter_CoherenceRel"

	MinutiaeCount      = "FingerJetFX_MinutiaeCount"
	MinutiaeCountCOM   = "FingerJetFX_MinCount_COMMinRect200x200"
	MinutiaeMuQuality  = "FJFXPos_Mu_MinutiaeQuality_2"
	MinutiaeOCLQuality = "FJFXPos_OCL_MinutiaeQuality_80"
)

// Histogram prefixes.
const (
	LCSPrefix = "LCS_Bin10_"
	OCLPrefix = "OCL_Bin10_"
	RVUPrefix = "RVUP_Bin10_"
	OFPrefix  = "OF_Bin10_"
	FDAPrefix = "FDA_Bin10_"
)

const (
	meanSuffix   = "Mean"
	stdDevSuffix = "StdDev"
)

var moduleIDs = []string{
	ContrastModuleID,
	LCSModuleID,
	OCLModuleID,
	RVUModuleID,
	OFModuleID,
	FDAModuleID,
	QualityMapModuleID,
	MinutiaeModuleID,
}

// ModuleIDs lists every module identifier in merge order.
func ModuleIDs() []string {
	return append([]string(nil), moduleIDs...)
}

// HistogramIDs returns the ten bin identifiers followed by the Mean and
// StdDev identifiers for prefix.
func HistogramIDs(prefix string) []string {
	ids := make([]string, 0, histogramBins+2)
	for i := 0; i < histogramBins; i++ {
		ids = append(ids, prefix+strconv.Itoa(i))
	}
	return append(ids, prefix+meanSuffix, prefix+stdDevSuffix)
}

// FeatureIDs lists the identifiers a module produces, or nil for an unknown
// module.
func FeatureIDs(moduleID string) []string {
	switch moduleID {
	case ContrastModuleID:
		return []string{MMB, Mu}
	case LCSModuleID:
		return HistogramIDs(LCSPrefix)
	case OCLModuleID:
		return HistogramIDs(OCLPrefix)
	case RVUModuleID:
		return HistogramIDs(RVUPrefix)
	case OFModuleID:
		return HistogramIDs(OFPrefix)
	case FDAModuleID:
		return HistogramIDs(FDAPrefix)
	case QualityMapModuleID:
		return []string{ROIAreaMean, CoherenceSum, CoherenceRel}
	case MinutiaeModuleID:
		return []string{MinutiaeCount, MinutiaeCountCOM, MinutiaeMuQuality, MinutiaeOCLQuality}
	}
	return nil
}

// Identifiers enumerates every native measure identifier in a stable order:
// modules in merge order, features in module order.
func Identifiers() []string {
	var ids []string
	for _, id := range moduleIDs {
		ids = append(ids, FeatureIDs(id)...)
	}
	return ids
}
