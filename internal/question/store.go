package question

import (
	"fmt"
	"sync"
	"time"

	"github.com/gokatarajesh/quiz-questions/internal/snapshot"
)

// Store owns every question, grouped by topic, and the global id counter.
type Store struct {
	mu     sync.RWMutex
	topics map[string][]*Question
	order  []string // topics in first-seen order
	lastID int
	now    func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store whose first id will be 1.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		topics: make(map[string][]*Question),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStoreFromSnapshot restores a store exactly as it was persisted. The id
// counter resumes from the question count, raised to the largest id seen so
// an inconsistent snapshot can never cause id reuse.
func NewStoreFromSnapshot(snap snapshot.Snapshot, opts ...StoreOption) (*Store, error) {
	s := NewStore(opts...)
	seen := make(map[int]struct{}, snap.QuestionCount())
	maxID := 0
	for _, t := range snap.Topics {
		name := normalizeKey(t.Name)
		if _, dup := s.topics[name]; dup {
			return nil, fmt.Errorf("snapshot: topic %q listed twice", name)
		}
		s.order = append(s.order, name)
		qs := make([]*Question, 0, len(t.Questions))
		for _, sq := range t.Questions {
			if sq.ID <= 0 {
				return nil, fmt.Errorf("snapshot: invalid id %d in topic %q", sq.ID, name)
			}
			if _, dup := seen[sq.ID]; dup {
				return nil, fmt.Errorf("snapshot: duplicate id %d", sq.ID)
			}
			seen[sq.ID] = struct{}{}
			if sq.ID > maxID {
				maxID = sq.ID
			}
			qs = append(qs, &Question{
				ID:          sq.ID,
				Topic:       name,
				Text:        sq.Text,
				Answer:      sq.Answer,
				Distractors: append([]string{}, sq.Distractors...),
				LastUpdated: sq.LastUpdated,
			})
		}
		s.topics[name] = qs
	}
	s.lastID = max(len(seen), maxID, snap.LastID)
	return s, nil
}

// Create appends a new question to topic. It fails with ErrDuplicate, leaving
// the store untouched, if topic already holds the same normalized text.
func (s *Store) Create(topic, text, answer string, distractors []string) (Question, error) {
	topic, text = normalizeKey(topic), normalizeKey(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range s.topics[topic] {
		if q.Text == text {
			return Question{}, fmt.Errorf("%w: %q in topic %q (id %d)", ErrDuplicate, text, topic, q.ID)
		}
	}

	s.lastID++
	q := &Question{
		ID:          s.lastID,
		Topic:       topic,
		Text:        text,
		Answer:      answer,
		Distractors: append([]string{}, distractors...),
		LastUpdated: s.now(),
	}
	if _, ok := s.topics[topic]; !ok {
		s.order = append(s.order, topic)
	}
	s.topics[topic] = append(s.topics[topic], q)
	return q.clone(), nil
}

// Edit overwrites a question's content in place. Duplicate text is not
// re-checked here, unlike Create.
func (s *Store) Edit(id int, text, answer string, distractors []string) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.findLocked(id)
	if q == nil {
		return Question{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	q.Text = normalizeKey(text)
	q.Answer = answer
	q.Distractors = append([]string{}, distractors...)
	now := s.now()
	if now.Before(q.LastUpdated) {
		now = q.LastUpdated
	}
	q.LastUpdated = now
	return q.clone(), nil
}

// Topics returns topic names in first-seen order.
func (s *Store) Topics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.order...)
}

// FindByID looks a question up across all topics.
func (s *Store) FindByID(id int) (Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := s.findLocked(id)
	if q == nil {
		return Question{}, false
	}
	return q.clone(), true
}

// QuestionsIn returns a copy of topic's questions in creation order; ok is
// false when the topic is unknown.
func (s *Store) QuestionsIn(topic string) ([]Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	qs, ok := s.topics[normalizeKey(topic)]
	if !ok {
		return nil, false
	}
	return copyQuestions(qs), true
}

// All returns every question, topic by topic.
func (s *Store) All() []Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Question, 0, s.countLocked())
	for _, name := range s.order {
		for _, q := range s.topics[name] {
			out = append(out, q.clone())
		}
	}
	return out
}

// LastID is the most recently assigned id (0 when none).
func (s *Store) LastID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastID
}

// Len counts questions across all topics.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked()
}

// Snapshot captures the full state for persistence.
func (s *Store) Snapshot() snapshot.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot.Snapshot{
		Version: snapshot.FormatVersion,
		LastID:  s.lastID,
		SavedAt: s.now(),
		Topics:  make([]snapshot.Topic, 0, len(s.order)),
	}
	for _, name := range s.order {
		t := snapshot.Topic{Name: name, Questions: make([]snapshot.Question, 0, len(s.topics[name]))}
		for _, q := range s.topics[name] {
			t.Questions = append(t.Questions, snapshot.Question{
				ID:          q.ID,
				Text:        q.Text,
				Answer:      q.Answer,
				Distractors: append([]string{}, q.Distractors...),
				LastUpdated: q.LastUpdated,
			})
		}
		snap.Topics = append(snap.Topics, t)
	}
	return snap
}

func (s *Store) findLocked(id int) *Question {
	if id <= 0 || id > s.lastID {
		return nil
	}
	for _, name := range s.order {
		for _, q := range s.topics[name] {
			if q.ID == id {
				return q
			}
		}
	}
	return nil
}

func (s *Store) countLocked() int {
	n := 0
	for _, qs := range s.topics {
		n += len(qs)
	}
	return n
}

func copyQuestions(qs []*Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.clone()
	}
	return out
}
