package storyflow

import "time"

// Choice is one selectable option of a segment.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Segment is the client-side projection of a chapter. It lives only in the
// state machine and is never shared across sessions.
type Segment struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Choices     []Choice  `json:"choices"`
	IsGenerated bool      `json:"isGenerated"`
	Timestamp   time.Time `json:"timestamp"`
}

// State is a snapshot of the machine: the segment on screen, the
// back-navigable history (oldest first), the in-flight flag and the last
// error message.
type State struct {
	Current    *Segment
	History    []Segment
	Generating bool
	Err        string
}
