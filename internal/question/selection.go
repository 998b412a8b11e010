package question

import (
	"slices"
)

// newerFirst orders by LastUpdated descending.
func newerFirst(a, b Question) int {
	return b.LastUpdated.Compare(a.LastUpdated)
}

// mostRecent returns the k most recently updated questions, newest first.
// k <= 0 or k >= len(pool) falls back to a full stable sort. Otherwise a
// bounded insertion into a k-sized buffer is used: O(k·n) time, no heap, and
// ties keep their encounter order. pool itself is never reordered.
func mostRecent(pool []Question, k int) []Question {
	if len(pool) == 0 {
		return []Question{}
	}
	if k <= 0 || k >= len(pool) {
		out := slices.Clone(pool)
		slices.SortStableFunc(out, newerFirst)
		return out
	}

	top := make([]Question, 0, k)
	for _, q := range pool {
		// first slot holding something strictly older than q
		pos := len(top)
		for i := range top {
			if q.LastUpdated.After(top[i].LastUpdated) {
				pos = i
				break
			}
		}
		if pos >= k {
			continue
		}
		if len(top) < k {
			top = append(top, Question{})
		}
		copy(top[pos+1:], top[pos:len(top)-1])
		top[pos] = q
	}
	return top
}

// firstN keeps at most n leading questions; n <= 0 means no limit.
func firstN(qs []Question, n int) []Question {
	if n <= 0 || n >= len(qs) {
		return qs
	}
	return qs[:n]
}
