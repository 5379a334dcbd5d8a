package model

// DetectResponse mirrors the detection service body. Optional fields are
// pointers so that a missing field can be told apart from a zero value.
type DetectResponse struct {
	Success  bool          `json:"success"`
	Duration *float64      `json:"duration,omitempty"`
	Chords   *[]ChordEntry `json:"chords,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
