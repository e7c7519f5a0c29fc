package cards

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck_AllDistinct(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	seen := make(map[Card]bool, DeckSize)
	for _, c := range deck {
		assert.True(t, c.Valid(), "invalid card %v", c)
		assert.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
}

func TestCardID_RoundTrip(t *testing.T) {
	for i, c := range NewDeck() {
		assert.Equal(t, i, c.ID())
		back, err := FromID(c.ID())
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}

	_, err := FromID(52)
	assert.Error(t, err)
	_, err = FromID(-1)
	assert.Error(t, err)
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "AC", Card{Suit: Clubs, Rank: 1}.String())
	assert.Equal(t, "7H", Card{Suit: Hearts, Rank: 7}.String())
	assert.Equal(t, "KS", Card{Suit: Spades, Rank: 13}.String())
}

func TestDeal_EvenDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for n := 1; n <= DeckSize; n++ {
		deck := NewDeck()
		Shuffle(deck, rng)

		hands, err := Deal(deck, n)
		require.NoError(t, err)
		require.Len(t, hands, n)

		total := 0
		minSize, maxSize := DeckSize, 0
		seen := make(map[Card]bool, DeckSize)
		for _, h := range hands {
			total += len(h)
			minSize = min(minSize, len(h))
			maxSize = max(maxSize, len(h))
			for _, c := range h {
				assert.False(t, seen[c])
				seen[c] = true
			}
		}
		assert.Equal(t, DeckSize, total, "players=%d", n)
		assert.LessOrEqual(t, maxSize-minSize, 1, "players=%d", n)
		// Remainder goes to the lowest seats.
		assert.Len(t, hands[0], maxSize, "players=%d", n)
	}
}

func TestDeal_RejectsNoPlayers(t *testing.T) {
	_, err := Deal(NewDeck(), 0)
	assert.Error(t, err)
}

func TestShuffle_Deterministic(t *testing.T) {
	a, b := NewDeck(), NewDeck()
	Shuffle(a, rand.New(rand.NewSource(99)))
	Shuffle(b, rand.New(rand.NewSource(99)))
	assert.Equal(t, a, b)
	assert.NotEqual(t, NewDeck(), a)
}

func TestHand_Remove(t *testing.T) {
	h := Hand{{Clubs, 3}, {Hearts, 7}, {Spades, 12}}

	assert.True(t, h.Remove(Card{Hearts, 7}))
	assert.Equal(t, Hand{{Clubs, 3}, {Spades, 12}}, h)
	assert.False(t, h.Remove(Card{Hearts, 7}))
	assert.Len(t, h, 2)
}

func TestHand_CloneIsIndependent(t *testing.T) {
	h := Hand{{Clubs, 3}, {Hearts, 7}}
	c := h.Clone()
	c[0] = Card{Spades, 1}
	assert.Equal(t, Card{Clubs, 3}, h[0])
}
