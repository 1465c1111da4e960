// Package models holds the request and response bodies of the HTTP API.
package models

// Minutia is a caller supplied minutia in pixel coordinates.
type Minutia struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Angle   float64 `json:"angle,omitempty"`
	Quality int     `json:"quality,omitempty"`
}

// ScoreRequest asks for the quality of one image. Exactly one of URL and
// Image (base64) must be set. A nil Minutiae means no extraction took place;
// an empty list means none were found.
type ScoreRequest struct {
	URL        string     `json:"url,omitempty"`
	Image      string     `json:"image,omitempty"`
	Width      int        `json:"width,omitempty"`
	Height     int        `json:"height,omitempty"`
	PPI        int        `json:"ppi,omitempty"`
	FingerCode int        `json:"finger_code,omitempty"`
	Minutiae   *[]Minutia `json:"minutiae,omitempty"`
	Mode       string     `json:"mode,omitempty"`
	Store      *bool      `json:"store,omitempty"`
}

// Measure is one named native quality measure.
type Measure struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// ModuleTiming is the computation time of one quality measure module.
type ModuleTiming struct {
	ModuleID string  `json:"module_id"`
	Millis   float64 `json:"ms"`
}

// Feedback is one actionable feedback check.
type Feedback struct {
	ID        string  `json:"id"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Passed    bool    `json:"passed"`
}

// ScoreResponse is the result of scoring one image.
type ScoreResponse struct {
	Location          string         `json:"location,omitempty"`
	Format            string         `json:"format"`
	Width             int            `json:"width"`
	Height            int            `json:"height"`
	Mode              string         `json:"mode"`
	Score             *int           `json:"score,omitempty"`
	ModelHash         string         `json:"model_hash,omitempty"`
	Measures          []Measure      `json:"measures,omitempty"`
	QualityBlocks     map[string]int `json:"quality_blocks,omitempty"`
	Feedback          []Feedback     `json:"actionable_feedback"`
	Timings           []ModuleTiming `json:"timings"`
	MinutiaeExtracted bool           `json:"minutiae_extracted"`
	GaborEnergy       float64        `json:"gabor_energy,omitempty"`
	ProcessingTimeSec float64        `json:"processing_time_sec"`
	RecordID          int64          `json:"record_id,omitempty"`
	Timestamp         string         `json:"timestamp"`
}

// QualityBlockRequest maps one native value onto 0..100.
type QualityBlockRequest struct {
	Identifier string   `json:"identifier" binding:"required"`
	Value      *float64 `json:"value" binding:"required"`
}

type QualityBlockResponse struct {
	Identifier string  `json:"identifier"`
	Value      float64 `json:"value"`
	Block      int     `json:"quality_block"`
}

// MeasureDescriptor describes one identifier of the measure vocabulary.
type MeasureDescriptor struct {
	ID       string `json:"id"`
	ModuleID string `json:"module_id"`
	Mappable bool   `json:"mappable"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
	Module  string `json:"module,omitempty"`
}

// ModelInfoResponse describes the loaded model.
type ModelInfoResponse struct {
	Name        string   `json:"name"`
	Trainer     string   `json:"trainer,omitempty"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version"`
	Hash        string   `json:"hash"`
	Features    []string `json:"features"`
}
