package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultFilePath = "parsed.data.json"

// FileSink keeps the snapshot as a JSON document on local disk.
type FileSink struct {
	path string
}

var _ Sink = (*FileSink)(nil)

func NewFileSink(path string) *FileSink {
	if path == "" {
		path = defaultFilePath
	}
	return &FileSink{path: path}
}

func (s *FileSink) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}
	return Decode(data)
}

// Save replaces the file atomically: the payload goes to a temp file in the
// same directory which is then renamed over the target.
func (s *FileSink) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}
