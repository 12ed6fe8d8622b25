package ordering

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(ids ...string) []Item {
	out := make([]Item, len(ids))
	for i, id := range ids {
		out[i] = Item{ID: id, SortOrder: i + 1}
	}
	return out
}

func order(items []Item) []string {
	ranked := rank(items)
	ids := make([]string, len(ranked))
	for i, it := range ranked {
		ids[i] = it.ID
	}
	return ids
}

func TestParseMove(t *testing.T) {
	for _, m := range Moves {
		got, err := ParseMove(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMove("sideways")
	assert.ErrorIs(t, err, ErrUnknownMove)
}

func TestPlan_Moves(t *testing.T) {
	tests := []struct {
		name   string
		target string
		move   Move
		want   []string
		diff   []Assignment
	}{
		{"top", "C", MoveTop, []string{"C", "A", "B", "D"},
			[]Assignment{{"C", 1}, {"A", 2}, {"B", 3}}},
		{"bottom", "B", MoveBottom, []string{"A", "C", "D", "B"},
			[]Assignment{{"C", 2}, {"D", 3}, {"B", 4}}},
		{"up", "C", MoveUp, []string{"A", "C", "B", "D"},
			[]Assignment{{"C", 2}, {"B", 3}}},
		{"down", "B", MoveDown, []string{"A", "C", "B", "D"},
			[]Assignment{{"C", 2}, {"B", 3}}},
		{"first up is a no-op", "A", MoveUp, []string{"A", "B", "C", "D"}, nil},
		{"last down is a no-op", "D", MoveDown, []string{"A", "B", "C", "D"}, nil},
		{"top of top is a no-op", "A", MoveTop, []string{"A", "B", "C", "D"}, nil},
		{"bottom of bottom is a no-op", "D", MoveBottom, []string{"A", "B", "C", "D"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := items("A", "B", "C", "D")
			diff, err := Plan(start, tt.target, tt.move)
			require.NoError(t, err)

			assert.Equal(t, tt.diff, diff)
			after := Apply(start, diff)
			assert.Equal(t, tt.want, order(after))
			assert.True(t, Contiguous(after))
		})
	}
}

func TestPlan_EndToEndScenario(t *testing.T) {
	reviews := items("A", "B", "C", "D")

	diff, err := Plan(reviews, "C", MoveUp)
	require.NoError(t, err)
	reviews = Apply(reviews, diff)
	assert.Equal(t, []Item{{"A", 1}, {"C", 2}, {"B", 3}, {"D", 4}}, reviews)

	diff, err = Plan(reviews, "D", MoveTop)
	require.NoError(t, err)
	reviews = Apply(reviews, diff)
	assert.Equal(t, []Item{{"D", 1}, {"A", 2}, {"C", 3}, {"B", 4}}, reviews)
}

func TestPlan_TopIsIdempotent(t *testing.T) {
	reviews := items("A", "B", "C")

	diff, err := Plan(reviews, "B", MoveTop)
	require.NoError(t, err)
	once := Apply(reviews, diff)

	diff, err = Plan(once, "B", MoveTop)
	require.NoError(t, err)
	assert.Empty(t, diff)
	assert.Equal(t, once, Apply(once, diff))
}

func TestPlan_NormalizesGapsAndTies(t *testing.T) {
	// Legacy rows: every review defaulted to order 1, plus a gap.
	start := []Item{{"A", 1}, {"B", 1}, {"C", 1}, {"D", 7}}

	diff, err := Plan(start, "D", MoveUp)
	require.NoError(t, err)

	after := Apply(start, diff)
	assert.Equal(t, []string{"A", "B", "D", "C"}, order(after))
	assert.True(t, Contiguous(after))
	// A already held order 1 and is untouched.
	for _, a := range diff {
		assert.NotEqual(t, "A", a.ID)
	}
}

func TestPlan_Errors(t *testing.T) {
	_, err := Plan(items("A", "B"), "Z", MoveTop)
	assert.ErrorIs(t, err, ErrNotInSet)

	_, err = Plan(items("A", "B"), "A", Move("left"))
	assert.ErrorIs(t, err, ErrUnknownMove)

	_, err = Plan(nil, "A", MoveTop)
	assert.ErrorIs(t, err, ErrNotInSet)
}

func TestPlan_SingleItem(t *testing.T) {
	for _, m := range Moves {
		diff, err := Plan([]Item{{"A", 1}}, "A", m)
		require.NoError(t, err)
		assert.Empty(t, diff, string(m))
	}
}

func TestPlan_InvariantUnderRandomMoves(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	reviews := items("A", "B", "C", "D", "E", "F", "G")

	for range 500 {
		target := reviews[rng.IntN(len(reviews))].ID
		move := Moves[rng.IntN(len(Moves))]

		diff, err := Plan(reviews, target, move)
		require.NoError(t, err)
		reviews = Apply(reviews, diff)

		require.True(t, Contiguous(reviews), "after %s %s: %v", move, target, reviews)
	}
}

func TestNormalize(t *testing.T) {
	diff := Normalize([]Item{{"A", 2}, {"B", 5}, {"C", 9}})
	assert.Equal(t, []Assignment{{"A", 1}, {"B", 2}, {"C", 3}}, diff)

	assert.Empty(t, Normalize(items("A", "B", "C")))
}

func TestContiguous(t *testing.T) {
	assert.True(t, Contiguous(nil))
	assert.True(t, Contiguous([]Item{{"B", 2}, {"A", 1}}))
	assert.False(t, Contiguous([]Item{{"A", 1}, {"B", 1}}))
	assert.False(t, Contiguous([]Item{{"A", 1}, {"B", 3}}))
	assert.False(t, Contiguous([]Item{{"A", 0}}))
}
