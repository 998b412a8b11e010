package question

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-questions/internal/snapshot"
)

// stepClock advances one second per call so every mutation gets a distinct
// timestamp. set pins the next reading.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *stepClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.Add(-time.Second)
}

type memorySink struct {
	mu    sync.Mutex
	snap  *snapshot.Snapshot
	saves int
}

func (m *memorySink) Load(context.Context) (snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return snapshot.Snapshot{}, snapshot.ErrNoSnapshot
	}
	return *m.snap, nil
}

func (m *memorySink) Save(_ context.Context, snap snapshot.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &snap
	m.saves++
	return nil
}

func (m *memorySink) last() snapshot.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return snapshot.Snapshot{}
	}
	return *m.snap
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Load(ctx context.Context) (snapshot.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(snapshot.Snapshot), args.Error(1)
}

func (m *mockSink) Save(ctx context.Context, snap snapshot.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(evt Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

func discardLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newTestService(t *testing.T, sink snapshot.Sink, opts ServiceOptions) (*Service, *stepClock) {
	t.Helper()
	clock := newStepClock()
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(1, 2))
	}
	return NewService(NewStore(WithClock(clock.Now)), sink, discardLogger(), opts), clock
}

func strPtr(s string) *string {
	return &s
}

func createInput(topic, text, answer, distractors string) CreateInput {
	return CreateInput{
		Topic:       strPtr(topic),
		Question:    strPtr(text),
		Answer:      strPtr(answer),
		Distractors: strPtr(distractors),
	}
}

func mustCreate(t *testing.T, svc *Service, topic, text, answer, distractors string) Question {
	t.Helper()
	q, err := svc.Create(context.Background(), createInput(topic, text, answer, distractors))
	require.NoError(t, err)
	return q
}
