package strategy

import (
	"math/rand"

	"github.com/cartridge/sevens/internal/cards"
)

// RandomStrategy selects uniformly among playable cards.
type RandomStrategy struct {
	rng *rand.Rand
}

// NewRandom creates a random strategy seeded with seed.
func NewRandom(seed int64) *RandomStrategy {
	return NewRandomWithSource(rand.New(rand.NewSource(seed)))
}

// NewRandomWithSource creates a random strategy drawing from rng. The caller
// must not use rng concurrently with the strategy.
func NewRandomWithSource(rng *rand.Rand) *RandomStrategy {
	return &RandomStrategy{rng: rng}
}

// Initialize implements Strategy.
func (p *RandomStrategy) Initialize(int) {}

// SelectCard implements Strategy
func (p *RandomStrategy) SelectCard(legal []cards.Card, table cards.Table) int {
	idx := Playable(legal, table)
	if len(idx) == 0 {
		return Pass
	}
	return idx[p.rng.Intn(len(idx))]
}

func (p *RandomStrategy) ObserveMove(int, cards.Card) {}

func (p *RandomStrategy) ObservePass(int) {}

func (p *RandomStrategy) Name() string { return "RandomStrategy" }
