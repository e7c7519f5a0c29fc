// Package cards models the 52-card deck, player hands and the face-up table
// used by a game of Sevens.
package cards

import (
	"fmt"
	"math/rand"
)

// Suit is one of the four suits. Its ordinal is used for tie-breaking,
// Spades being the highest.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// NumSuits is the number of suits in a deck.
const NumSuits = 4

const (
	MinRank   = 1
	MaxRank   = 13
	StartRank = 7

	// DeckSize is the number of distinct cards in a full deck.
	DeckSize = NumSuits * MaxRank
)

var suitSymbols = [NumSuits]string{"C", "D", "H", "S"}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s < NumSuits
}

func (s Suit) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Suit(%d)", uint8(s))
	}
	return suitSymbols[s]
}

// Card is an immutable (suit, rank) value. It is comparable and is used
// directly as a map key.
type Card struct {
	Suit Suit
	Rank int
}

// Valid reports whether the card exists in a standard deck.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank >= MinRank && c.Rank <= MaxRank
}

// ID returns a stable index in [0, 52): suit*13 + (rank-1).
func (c Card) ID() int {
	return int(c.Suit)*MaxRank + (c.Rank - 1)
}

// FromID is the inverse of Card.ID.
func FromID(id int) (Card, error) {
	if id < 0 || id >= DeckSize {
		return Card{}, fmt.Errorf("card id %d out of range", id)
	}
	return Card{Suit: Suit(id / MaxRank), Rank: id%MaxRank + 1}, nil
}

func (c Card) String() string {
	var r string
	switch c.Rank {
	case 1:
		r = "A"
	case 11:
		r = "J"
	case 12:
		r = "Q"
	case 13:
		r = "K"
	default:
		r = fmt.Sprintf("%d", c.Rank)
	}
	return r + c.Suit.String()
}

// NewDeck returns all 52 cards ordered by suit then rank.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for s := Suit(0); s < NumSuits; s++ {
		for r := MinRank; r <= MaxRank; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle permutes deck in place using rng.
func Shuffle(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}

// Deal distributes deck round-robin across n hands, so hand sizes differ
// by at most one and the first len(deck)%n hands get the extra card.
func Deal(deck []Card, n int) ([]Hand, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cannot deal to %d players", n)
	}
	hands := make([]Hand, n)
	for i := range hands {
		hands[i] = make(Hand, 0, len(deck)/n+1)
	}
	for i, c := range deck {
		hands[i%n] = append(hands[i%n], c)
	}
	return hands, nil
}
