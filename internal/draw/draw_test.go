package draw

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identitySource всегда возвращает тождественную перестановку
type identitySource struct{ calls int }

func (s *identitySource) Perm(n int) []int {
	s.calls++
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

func assertDerangement(t *testing.T, ids []string, edges []Edge[string]) {
	t.Helper()
	require.Len(t, edges, len(ids))
	givers := map[string]int{}
	receivers := map[string]int{}
	for _, e := range edges {
		assert.NotEqual(t, e.Giver, e.Receiver, "self assignment")
		givers[e.Giver]++
		receivers[e.Receiver]++
	}
	for _, id := range ids {
		assert.Equal(t, 1, givers[id], "giver %s", id)
		assert.Equal(t, 1, receivers[id], "receiver %s", id)
	}
}

func TestDerange_ProducesDerangement(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(42)), DefaultMaxAttempts)

	for n := MinSize; n <= 40; n++ {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = string(rune('A'+i%26)) + string(rune('a'+i/26))
		}
		for round := 0; round < 20; round++ {
			res, err := Derange(engine, ids)
			require.NoError(t, err)
			assert.False(t, res.Fallback)
			assertDerangement(t, ids, res.Edges)
		}
	}
}

func TestDerange_ThreeIsAlwaysACycle(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(7)), DefaultMaxAttempts)
	ids := []string{"A", "B", "C"}
	forward := map[string]string{"A": "B", "B": "C", "C": "A"}
	backward := map[string]string{"A": "C", "B": "A", "C": "B"}

	seen := map[bool]int{}
	for i := 0; i < 200; i++ {
		res, err := Derange(engine, ids)
		require.NoError(t, err)
		assertDerangement(t, ids, res.Edges)

		got := map[string]string{}
		for _, e := range res.Edges {
			got[e.Giver] = e.Receiver
		}
		isForward := assert.ObjectsAreEqual(forward, got)
		if !isForward {
			require.Equal(t, backward, got)
		}
		seen[isForward]++
	}
	assert.Positive(t, seen[true])
	assert.Positive(t, seen[false])
}

func TestDerange_FallbackRotation(t *testing.T) {
	src := &identitySource{}
	engine := NewEngine(src, 5)
	ids := []string{"A", "B", "C", "D"}

	res, err := Derange(engine, ids)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, 5, src.calls)
	assert.Equal(t, []Edge[string]{
		{Giver: "A", Receiver: "B"},
		{Giver: "B", Receiver: "C"},
		{Giver: "C", Receiver: "D"},
		{Giver: "D", Receiver: "A"},
	}, res.Edges)
}

func TestDerange_Errors(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(1)), 0)

	_, err := Derange(engine, []string{"A", "B"})
	assert.ErrorIs(t, err, ErrTooFew)

	_, err = Derange(engine, []string{"A", "B", "A"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestNewSeededEngine(t *testing.T) {
	engine, err := NewSeededEngine(0)
	require.NoError(t, err)

	ids := []int{10, 20, 30, 40, 50}
	res, err := Derange(engine, ids)
	require.NoError(t, err)
	for _, e := range res.Edges {
		assert.NotEqual(t, e.Giver, e.Receiver)
	}
}
