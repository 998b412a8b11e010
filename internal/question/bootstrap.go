package question

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-questions/internal/snapshot"
)

// DefaultTopic receives every question parsed from a bootstrap source.
const DefaultTopic = "arithmetic"

// BootstrapOptions controls how the initial store is obtained.
type BootstrapOptions struct {
	SourcePath   string
	DefaultTopic string
	StoreOptions []StoreOption
}

// Bootstrap restores the store from sink when a snapshot exists. Otherwise it
// parses the pipe-delimited source into the default topic and persists the
// result before returning.
func Bootstrap(ctx context.Context, sink snapshot.Sink, opts BootstrapOptions, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", "bootstrap").Logger()

	snap, err := sink.Load(ctx)
	switch {
	case err == nil:
		store, err := NewStoreFromSnapshot(snap, opts.StoreOptions...)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Int("questions", store.Len()).
			Int("topics", len(snap.Topics)).
			Int("last_id", store.LastID()).
			Msg("restored question store from snapshot")
		return store, nil
	case !errors.Is(err, snapshot.ErrNoSnapshot):
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if opts.SourcePath == "" {
		return nil, errors.New("no snapshot found and no bootstrap source configured")
	}
	f, err := os.Open(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("open bootstrap source: %w", err)
	}
	defer f.Close()

	rows, err := snapshot.ParseSource(f)
	if err != nil {
		return nil, err
	}

	topic := opts.DefaultTopic
	if topic == "" {
		topic = DefaultTopic
	}
	store := NewStore(opts.StoreOptions...)
	for _, row := range rows {
		if _, err := store.Create(topic, row.Question, row.Answer, row.Distractors); err != nil {
			if errors.Is(err, ErrDuplicate) {
				logger.Warn().Int("line", row.Line).Str("question", row.Question).Msg("skipping duplicate source row")
				continue
			}
			return nil, fmt.Errorf("source line %d: %w", row.Line, err)
		}
	}

	if err := sink.Save(ctx, store.Snapshot()); err != nil {
		return nil, fmt.Errorf("persist bootstrap snapshot: %w", err)
	}
	logger.Info().
		Str("source", opts.SourcePath).
		Str("topic", normalizeKey(topic)).
		Int("questions", store.Len()).
		Msg("bootstrapped question store from source")
	return store, nil
}
