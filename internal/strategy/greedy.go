package strategy

import (
	"github.com/cartridge/sevens/internal/cards"
)

// GreedyStrategy plays the card farthest from seven first, keeping the
// middle ranks for later. Ties go to the higher suit, then to the earlier
// card.
type GreedyStrategy struct {
	playerID int
}

func NewGreedy() *GreedyStrategy {
	return &GreedyStrategy{}
}

// Initialize implements Strategy.
func (g *GreedyStrategy) Initialize(playerID int) {
	g.playerID = playerID
}

// SelectCard implements Strategy.
func (g *GreedyStrategy) SelectCard(legal []cards.Card, table cards.Table) int {
	best := Pass
	for _, i := range Playable(legal, table) {
		if best == Pass || greedyBetter(legal[i], legal[best]) {
			best = i
		}
	}
	return best
}

func greedyBetter(a, b cards.Card) bool {
	da, db := distanceFromSeven(a), distanceFromSeven(b)
	if da != db {
		return da > db
	}
	return a.Suit > b.Suit
}

func distanceFromSeven(c cards.Card) int {
	d := c.Rank - cards.StartRank
	if d < 0 {
		return -d
	}
	return d
}

func (g *GreedyStrategy) ObserveMove(int, cards.Card) {}

func (g *GreedyStrategy) ObservePass(int) {}

func (g *GreedyStrategy) Name() string { return "GreedyStrategy" }
