package model

type SubmissionState int

const (
	Idle SubmissionState = iota
	InFlight
	Succeeded
	Failed
)

func (s SubmissionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

func (s SubmissionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SelectedFile is the user's pick. Data is treated as opaque.
type SelectedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Snapshot is a copy of a session's state at one instant.
type Snapshot struct {
	File       *SelectedFile   `json:"-"`
	Filename   string          `json:"filename,omitempty"`
	PreviewURL string          `json:"preview_url,omitempty"`
	State      SubmissionState `json:"state"`
	Result     *ChordResult    `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}
