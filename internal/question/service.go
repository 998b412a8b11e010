package question

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-questions/internal/metrics"
	"github.com/gokatarajesh/quiz-questions/internal/snapshot"
)

// Publisher receives successful mutations (implemented by the websocket feed).
type Publisher interface {
	Publish(evt Event)
}

// Service answers queries over the Store and orchestrates write-through
// persistence for create/edit.
type Service struct {
	store     *Store
	sink      snapshot.Sink
	publisher Publisher
	metrics   *metrics.Collectors
	logger    zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	// serializes snapshot writes so the sink always ends on the newest state
	persistMu sync.Mutex
}

// ServiceOptions wires optional collaborators.
type ServiceOptions struct {
	Publisher Publisher
	Metrics   *metrics.Collectors
	// Rand overrides the shuffling/selection source; nil uses the global one.
	Rand *rand.Rand
}

func NewService(store *Store, sink snapshot.Sink, logger zerolog.Logger, opts ServiceOptions) *Service {
	svc := &Service{
		store:     store,
		sink:      sink,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		logger:    logger.With().Str("component", "question_service").Logger(),
		rng:       opts.Rand,
	}
	svc.metrics.SetQuestions(store.Len())
	return svc
}

// Topics lists known topic names.
func (s *Service) Topics() []string {
	return s.store.Topics()
}

// QuestionByID fetches a single question.
func (s *Service) QuestionByID(id int) (Question, error) {
	q, ok := s.store.FindByID(id)
	if !ok {
		return Question{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return q, nil
}

// RandomQuestion picks uniformly among topic's questions.
func (s *Service) RandomQuestion(topic string) (Question, error) {
	qs, ok := s.store.QuestionsIn(topic)
	if !ok {
		return Question{}, fmt.Errorf("%w: %q", ErrUnknownTopic, normalizeKey(topic))
	}
	if len(qs) == 0 {
		return Question{}, fmt.Errorf("%w: %q", ErrEmptyTopic, normalizeKey(topic))
	}
	return qs[s.intN(len(qs))], nil
}

// Latest returns up to n questions newest first, from one topic or, when
// topic is empty, from all topics pooled. n <= 0 returns the whole pool.
func (s *Service) Latest(topic string, n int) ([]Question, error) {
	pool, err := s.pool(topic)
	if err != nil {
		return nil, err
	}
	return mostRecent(pool, n), nil
}

// ChoicesFor returns the answer and distractors in a fresh random order.
func (s *Service) ChoicesFor(q Question) []string {
	choices := make([]string, 0, len(q.Distractors)+1)
	choices = append(choices, q.Answer)
	choices = append(choices, q.Distractors...)
	s.shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
	return choices
}

// ListQuestions composes topic filtering, limiting and optional recency order.
func (s *Service) ListQuestions(opts ListOptions) ([]Question, error) {
	if opts.TopicRequired && normalizeKey(opts.Topic) == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, "")
	}
	if opts.SortByRecency {
		return s.Latest(opts.Topic, opts.MaxCount)
	}
	pool, err := s.pool(opts.Topic)
	if err != nil {
		return nil, err
	}
	return firstN(pool, opts.MaxCount), nil
}

// FetchQuestion resolves ref as an id when numeric, otherwise as a topic, and
// presents the result with shuffled choices. For a topic the newest question
// is served when sortByRecency is set, a random one otherwise.
func (s *Service) FetchQuestion(ref string, sortByRecency bool) (Presented, error) {
	ref = normalizeKey(ref)
	if ref == "" {
		return Presented{}, fmt.Errorf("%w: %q", ErrUnknownTopic, ref)
	}
	if id, err := strconv.Atoi(ref); err == nil {
		q, err := s.QuestionByID(id)
		if err != nil {
			return Presented{}, err
		}
		return s.Present(q), nil
	}

	if sortByRecency {
		latest, err := s.Latest(ref, 1)
		if err != nil {
			return Presented{}, err
		}
		if len(latest) == 0 {
			return Presented{}, fmt.Errorf("%w: %q", ErrEmptyTopic, ref)
		}
		return s.Present(latest[0]), nil
	}

	q, err := s.RandomQuestion(ref)
	if err != nil {
		return Presented{}, err
	}
	return s.Present(q), nil
}

// Present hides the answer among shuffled choices.
func (s *Service) Present(q Question) Presented {
	return Presented{
		ID:       q.ID,
		Question: q.DisplayText(),
		Choices:  s.ChoicesFor(q),
	}
}

// Create validates input, adds the question and persists a snapshot. When
// only persistence fails the created question is returned together with an
// error wrapping ErrPersistence; memory is not rolled back and no feed event
// is published.
func (s *Service) Create(ctx context.Context, in CreateInput) (Question, error) {
	topic, text, answer, distractors, err := validateCreate(in)
	if err != nil {
		s.metrics.ObserveMutation("create", metrics.ResultRejected)
		return Question{}, err
	}

	q, err := s.store.Create(topic, text, answer, distractors)
	if err != nil {
		s.metrics.ObserveMutation("create", metrics.ResultRejected)
		return Question{}, err
	}
	s.metrics.SetQuestions(s.store.Len())

	return s.afterMutation(ctx, "create", EventCreated, q)
}

// Edit validates input, rewrites question id and persists a snapshot, with
// the same persistence semantics as Create.
func (s *Service) Edit(ctx context.Context, id int, in EditInput) (Question, error) {
	text, answer, distractors, err := validateEdit(in)
	if err != nil {
		s.metrics.ObserveMutation("edit", metrics.ResultRejected)
		return Question{}, err
	}

	q, err := s.store.Edit(id, text, answer, distractors)
	if err != nil {
		s.metrics.ObserveMutation("edit", metrics.ResultRejected)
		return Question{}, err
	}

	return s.afterMutation(ctx, "edit", EventEdited, q)
}

// Persist writes the current store state through the sink.
func (s *Service) Persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	started := time.Now()
	err := s.sink.Save(ctx, s.store.Snapshot())
	s.metrics.ObserveSave(started, err)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (s *Service) afterMutation(ctx context.Context, op, kind string, q Question) (Question, error) {
	if err := s.Persist(ctx); err != nil {
		s.metrics.ObserveMutation(op, metrics.ResultPersistErr)
		s.logger.Error().Err(err).
			Str("op", op).
			Int("question_id", q.ID).
			Msg("in-memory store changed but snapshot write failed; persisted copy is stale")
		return q, err
	}

	s.metrics.ObserveMutation(op, metrics.ResultOK)
	if s.publisher != nil {
		s.publisher.Publish(Event{Kind: kind, Question: q})
	}
	s.logger.Info().Str("op", op).Int("question_id", q.ID).Str("topic", q.Topic).Msg("question saved")
	return q, nil
}

func (s *Service) pool(topic string) ([]Question, error) {
	if strings.TrimSpace(topic) == "" {
		return s.store.All(), nil
	}
	qs, ok := s.store.QuestionsIn(topic)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, normalizeKey(topic))
	}
	return qs, nil
}

func (s *Service) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.IntN(n)
}

func (s *Service) shuffle(n int, swap func(i, j int)) {
	if s.rng == nil {
		rand.Shuffle(n, swap)
		return
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(n, swap)
}

func validateCreate(in CreateInput) (topic, text, answer string, distractors []string, err error) {
	if in.Topic == nil || strings.TrimSpace(*in.Topic) == "" {
		return "", "", "", nil, missingField("Topic")
	}
	text, answer, distractors, err = validateEdit(EditInput{
		Question:    in.Question,
		Answer:      in.Answer,
		Distractors: in.Distractors,
	})
	if err != nil {
		return "", "", "", nil, err
	}
	return *in.Topic, text, answer, distractors, nil
}

func validateEdit(in EditInput) (text, answer string, distractors []string, err error) {
	switch {
	case in.Question == nil || strings.TrimSpace(*in.Question) == "":
		return "", "", nil, missingField("Question")
	case in.Answer == nil:
		return "", "", nil, missingField("Answer")
	case in.Distractors == nil:
		return "", "", nil, missingField("Distractors")
	}
	return *in.Question, *in.Answer, snapshot.SplitDistractors(*in.Distractors), nil
}

func missingField(name string) error {
	return &FieldError{Field: name, Err: ErrInvalidInput}
}

// FieldError names the request field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: missing or empty field %s", e.Err, e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// IsPersistenceOnly reports whether err means the mutation succeeded in
// memory but the snapshot could not be written.
func IsPersistenceOnly(err error) bool {
	return errors.Is(err, ErrPersistence)
}
