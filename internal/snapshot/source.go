package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// SourceRow is one line of the pipe-delimited bootstrap file.
type SourceRow struct {
	Line        int
	Question    string
	Answer      string
	Distractors []string
}

// ParseSource reads `question | answer | d1,d2,...` rows. The first line is a
// header and is skipped, as are blank lines.
func ParseSource(r io.Reader) ([]SourceRow, error) {
	scanner := bufio.NewScanner(r)
	var rows []SourceRow
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("source line %d: expected 3 fields, got %d", line, len(parts))
		}
		rows = append(rows, SourceRow{
			Line:        line,
			Question:    strings.TrimSpace(parts[0]),
			Answer:      strings.TrimSpace(parts[1]),
			Distractors: SplitDistractors(parts[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return rows, nil
}

// SplitDistractors splits a comma-joined list, trimming entries and dropping
// empty ones.
func SplitDistractors(joined string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
