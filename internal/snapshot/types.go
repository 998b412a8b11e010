package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// FormatVersion is bumped whenever the persisted layout changes.
const FormatVersion = 1

// ErrNoSnapshot is returned by Sink.Load when nothing has been persisted yet.
var ErrNoSnapshot = errors.New("snapshot: none stored")

// Question is the persisted form of a single quiz item.
type Question struct {
	ID          int       `json:"id"`
	Text        string    `json:"text"`
	Answer      string    `json:"answer"`
	Distractors []string  `json:"distractors"`
	LastUpdated time.Time `json:"last_updated"`
}

// Topic keeps questions in creation order.
type Topic struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Snapshot is the complete state of the question store at a point in time.
type Snapshot struct {
	Version int       `json:"version"`
	LastID  int       `json:"last_id"`
	SavedAt time.Time `json:"saved_at"`
	Topics  []Topic   `json:"topics"`
}

// QuestionCount returns the number of questions across all topics.
func (s Snapshot) QuestionCount() int {
	n := 0
	for _, t := range s.Topics {
		n += len(t.Questions)
	}
	return n
}

// Sink durably stores and reloads snapshots.
type Sink interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Encode serializes a snapshot to the JSON layout shared by every backend.
func Encode(snap Snapshot) ([]byte, error) {
	if snap.Version == 0 {
		snap.Version = FormatVersion
	}
	return json.Marshal(snap)
}

// Decode parses a snapshot previously written by Encode.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > FormatVersion {
		return Snapshot{}, fmt.Errorf("decode snapshot: unsupported version %d", snap.Version)
	}
	return snap, nil
}
