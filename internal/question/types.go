package question

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Domain errors. Handlers map them to HTTP status codes via errors.Is.
var (
	ErrUnknownTopic = errors.New("unknown topic")
	ErrEmptyTopic   = errors.New("topic has no questions")
	ErrNotFound     = errors.New("question not found")
	ErrDuplicate    = errors.New("question already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("snapshot not persisted")
)

// Question is a single multiple-choice quiz item.
type Question struct {
	ID          int       `json:"id"`
	Topic       string    `json:"topic"`
	Text        string    `json:"question"`
	Answer      string    `json:"answer,omitempty"`
	Distractors []string  `json:"distractors,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// clone copies the distractor slice so callers cannot alias stored state.
func (q Question) clone() Question {
	q.Distractors = append([]string(nil), q.Distractors...)
	return q
}

// DisplayText returns the prompt with its first letter upper-cased.
func (q Question) DisplayText() string {
	return capitalize(q.Text)
}

// Presented is a question as served to a quiz taker: answer hidden among
// shuffled choices.
type Presented struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
}

// CreateInput carries the fields of a create request. Nil means absent.
type CreateInput struct {
	Topic       *string `json:"Topic"`
	Question    *string `json:"Question"`
	Answer      *string `json:"Answer"`
	Distractors *string `json:"Distractors"`
}

// EditInput carries the fields of an edit request. Nil means absent.
type EditInput struct {
	Question    *string `json:"Question"`
	Answer      *string `json:"Answer"`
	Distractors *string `json:"Distractors"`
}

// ListOptions filters, limits and orders ListQuestions.
type ListOptions struct {
	Topic string
	// TopicRequired makes a blank Topic an unknown topic instead of "all".
	TopicRequired bool
	MaxCount      int
	SortByRecency bool
}

// Event kinds published to the change feed.
const (
	EventCreated = "question_created"
	EventEdited  = "question_edited"
)

// Event describes a successful mutation.
type Event struct {
	Kind     string   `json:"kind"`
	Question Question `json:"question"`
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
