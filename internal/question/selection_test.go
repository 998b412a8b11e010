package question

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func questionsAt(offsets ...int) []Question {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Question, len(offsets))
	for i, off := range offsets {
		out[i] = Question{ID: i + 1, LastUpdated: base.Add(time.Duration(off) * time.Minute)}
	}
	return out
}

func ids(qs []Question) []int {
	out := make([]int, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestMostRecent(t *testing.T) {
	pool := questionsAt(1, 2, 3, 4, 5)

	tests := []struct {
		name string
		k    int
		want []int
	}{
		{name: "top three", k: 3, want: []int{5, 4, 3}},
		{name: "one", k: 1, want: []int{5}},
		{name: "k equals len", k: 5, want: []int{5, 4, 3, 2, 1}},
		{name: "k exceeds len", k: 10, want: []int{5, 4, 3, 2, 1}},
		{name: "zero means all", k: 0, want: []int{5, 4, 3, 2, 1}},
		{name: "negative means all", k: -2, want: []int{5, 4, 3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(mostRecent(pool, tt.k)))
		})
	}
}

func TestMostRecentEmptyPool(t *testing.T) {
	got := mostRecent(nil, 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMostRecentTiesKeepEncounterOrder(t *testing.T) {
	pool := questionsAt(1, 5, 5, 3, 5)
	assert.Equal(t, []int{2, 3}, ids(mostRecent(pool, 2)))
	assert.Equal(t, []int{2, 3, 5, 4, 1}, ids(mostRecent(pool, 0)))
}

func TestMostRecentLeavesPoolUntouched(t *testing.T) {
	pool := questionsAt(3, 1, 2)
	before := slices.Clone(pool)
	mostRecent(pool, 2)
	mostRecent(pool, 0)
	assert.Equal(t, before, pool)
}

func TestMostRecentMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 50; round++ {
		offsets := make([]int, 1+rng.IntN(40))
		for i := range offsets {
			offsets[i] = rng.IntN(20)
		}
		pool := questionsAt(offsets...)
		k := 1 + rng.IntN(len(pool))

		full := slices.Clone(pool)
		slices.SortStableFunc(full, newerFirst)
		assert.Equal(t, ids(full[:k]), ids(mostRecent(pool, k)), "offsets=%v k=%d", offsets, k)
	}
}

func TestFirstN(t *testing.T) {
	pool := questionsAt(1, 2, 3)
	assert.Equal(t, []int{1, 2}, ids(firstN(pool, 2)))
	assert.Equal(t, []int{1, 2, 3}, ids(firstN(pool, 0)))
	assert.Equal(t, []int{1, 2, 3}, ids(firstN(pool, 9)))
}
