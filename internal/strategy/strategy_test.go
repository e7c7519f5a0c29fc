package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartridge/sevens/internal/cards"
)

func TestRandomStrategy_PicksPlayableIndex(t *testing.T) {
	s := NewRandom(42)
	table := cards.NewTable()
	legal := []cards.Card{{Suit: cards.Clubs, Rank: 6}, {Suit: cards.Hearts, Rank: 7}, {Suit: cards.Spades, Rank: 8}}

	for i := 0; i < 100; i++ {
		idx := s.SelectCard(legal, table)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(legal))
	}
}

func TestRandomStrategy_MultipleSelections(t *testing.T) {
	s := NewRandom(1)
	table := cards.NewTable()
	legal := []cards.Card{{Suit: cards.Clubs, Rank: 6}, {Suit: cards.Hearts, Rank: 7}, {Suit: cards.Spades, Rank: 8}}

	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		seen[s.SelectCard(legal, table)] = true
	}
	assert.Greater(t, len(seen), 1, "expected variety across 100 draws")
}

func TestRandomStrategy_SameSeedSameChoices(t *testing.T) {
	a, b := NewRandom(5), NewRandom(5)
	table := cards.NewTable()
	legal := []cards.Card{{Suit: cards.Clubs, Rank: 6}, {Suit: cards.Hearts, Rank: 7}, {Suit: cards.Spades, Rank: 8}}

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.SelectCard(legal, table), b.SelectCard(legal, table))
	}
}

func TestRandomStrategy_PassesWithoutPlayableCards(t *testing.T) {
	s := NewRandom(3)
	assert.Equal(t, Pass, s.SelectCard(nil, cards.NewTable()))
	assert.Equal(t, Pass, s.SelectCard([]cards.Card{{Suit: cards.Clubs, Rank: 1}}, cards.NewTable()))
}

func TestRandomStrategy_SkipsUnplayableCandidates(t *testing.T) {
	s := NewRandom(3)
	legal := []cards.Card{{Suit: cards.Clubs, Rank: 1}, {Suit: cards.Clubs, Rank: 13}, {Suit: cards.Diamonds, Rank: 7}}
	for i := 0; i < 20; i++ {
		assert.Equal(t, 2, s.SelectCard(legal, cards.NewTable()))
	}
}

func TestGreedyStrategy_Priority(t *testing.T) {
	table := cards.NewTable()
	for _, c := range []cards.Card{
		{Suit: cards.Clubs, Rank: 6}, {Suit: cards.Clubs, Rank: 5}, {Suit: cards.Clubs, Rank: 4},
		{Suit: cards.Hearts, Rank: 8}, {Suit: cards.Hearts, Rank: 9}, {Suit: cards.Hearts, Rank: 10},
	} {
		table.Place(c)
	}

	tests := []struct {
		name  string
		legal []cards.Card
		want  int
	}{
		{
			name:  "farthest from seven wins",
			legal: []cards.Card{{Suit: cards.Spades, Rank: 7}, {Suit: cards.Clubs, Rank: 3}, {Suit: cards.Diamonds, Rank: 6}},
			want:  1,
		},
		{
			name:  "tie broken by higher suit",
			legal: []cards.Card{{Suit: cards.Clubs, Rank: 3}, {Suit: cards.Hearts, Rank: 11}},
			want:  1,
		},
		{
			name:  "tie in suit keeps first found",
			legal: []cards.Card{{Suit: cards.Spades, Rank: 6}, {Suit: cards.Spades, Rank: 8}},
			want:  0,
		},
		{
			name:  "unplayable cards are ignored",
			legal: []cards.Card{{Suit: cards.Spades, Rank: 1}, {Suit: cards.Diamonds, Rank: 8}},
			want:  1,
		},
		{
			name:  "nothing playable passes",
			legal: []cards.Card{{Suit: cards.Spades, Rank: 1}},
			want:  Pass,
		},
	}

	g := NewGreedy()
	g.Initialize(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.SelectCard(tt.legal, table))
		})
	}
}

func TestStrategiesDoNotMutateInputs(t *testing.T) {
	table := cards.NewTable()
	legal := []cards.Card{{Suit: cards.Clubs, Rank: 6}, {Suit: cards.Hearts, Rank: 8}}
	before := append([]cards.Card(nil), legal...)

	for _, s := range []Strategy{NewRandom(1), NewGreedy()} {
		s.SelectCard(legal, table)
		assert.Equal(t, before, legal, s.Name())
		assert.Equal(t, cards.NumSuits, table.FaceUpCount(), s.Name())
	}
}

func TestNew(t *testing.T) {
	s, err := New(KindRandom, 1)
	require.NoError(t, err)
	assert.Equal(t, "RandomStrategy", s.Name())

	s, err = New("Greedy", 1)
	require.NoError(t, err)
	assert.Equal(t, "GreedyStrategy", s.Name())

	_, err = New("minimax", 1)
	assert.Error(t, err)
}
