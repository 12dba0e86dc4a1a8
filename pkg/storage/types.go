package storage

import (
	"encoding/json"
	"time"
)

// Kind names the endpoint a submission came in through.
type Kind string

const (
	KindTracking Kind = "tracking"
	KindMeal     Kind = "meal"
	KindStool    Kind = "stool"
	KindMood     Kind = "mood"
)

// Kit is one issued kit id.
type Kit struct {
	KitID     string
	CreatedAt time.Time
}

// Submission is a stored save request. Payload is the body as received.
type Submission struct {
	ID        int64
	Kind      Kind
	KitID     string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// KindStats counts submissions of one kind.
type KindStats struct {
	Kind        Kind
	KitCount    int
	SubmitCount int
}
