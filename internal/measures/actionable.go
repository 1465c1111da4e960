package measures

// Actionable feedback identifiers.
const (
	FeedbackUniformImage                    = "UniformImage"
	FeedbackEmptyImageOrContrastTooLow      = "EmptyImageOrContrastTooLow"
	FeedbackFingerprintImageWithMinutiae    = "FingerprintImageWithMinutiae"
	FeedbackSufficientFingerprintForeground = "SufficientFingerprintForeground"
)

// Feedback thresholds.
const (
	UniformImageThreshold                    = 1.0
	EmptyImageOrContrastTooLowThreshold      = 250.0
	FingerprintImageWithMinutiaeThreshold    = 5.0
	SufficientFingerprintForegroundThreshold = 50000.0
)

// Feedback is a human readable check derived from the measures. It is not
// part of the ensemble input.
type Feedback struct {
	ID        string  `json:"id"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Passed    bool    `json:"passed"`
}

// actionableFeedback reports, in a fixed order: whether the image has any
// contrast, whether it is too bright, whether enough minutiae were found and
// whether the foreground is large enough.
func actionableFeedback(contrast *Contrast, features Set, roiPixels int) []Feedback {
	mu := features[Mu]
	count := features[MinutiaeCount]
	return []Feedback{
		{
			ID:        FeedbackUniformImage,
			Value:     contrast.Sigma(),
			Threshold: UniformImageThreshold,
			Passed:    contrast.Sigma() >= UniformImageThreshold,
		},
		{
			ID:        FeedbackEmptyImageOrContrastTooLow,
			Value:     mu,
			Threshold: EmptyImageOrContrastTooLowThreshold,
			Passed:    mu <= EmptyImageOrContrastTooLowThreshold,
		},
		{
			ID:        FeedbackFingerprintImageWithMinutiae,
			Value:     count,
			Threshold: FingerprintImageWithMinutiaeThreshold,
			Passed:    count >= FingerprintImageWithMinutiaeThreshold,
		},
		{
			ID:        FeedbackSufficientFingerprintForeground,
			Value:     float64(roiPixels),
			Threshold: SufficientFingerprintForegroundThreshold,
			Passed:    float64(roiPixels) >= SufficientFingerprintForegroundThreshold,
		},
	}
}
