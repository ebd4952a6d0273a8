package violation

import "time"

// Violation is a record of a connection closed for misbehaving.
type Violation struct {
	Player string    `json:"player"`
	Addr   string    `json:"addr"`
	Cause  string    `json:"cause"`
	Reason string    `json:"reason"`
	Time   time.Time `json:"time"`
}

// Recorder records violations.
type Recorder interface {
	Record(v Violation)
}

// NopRecorder discards every violation.
type NopRecorder struct{}

// Record ...
func (NopRecorder) Record(Violation) {}
