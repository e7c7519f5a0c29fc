// Command edge is a strategy plugin that plays from the suit with the most
// playable cards, preferring suits that have seen the least play.
//
// Build with:
//
//	go build -buildmode=plugin -o edge.so ./plugins/edge
package main

import (
	"github.com/cartridge/sevens/internal/cards"
	"github.com/cartridge/sevens/internal/strategy"
)

type edgeStrategy struct {
	seat   int
	played [cards.NumSuits]int
}

// NewStrategy is the plugin factory looked up by the loader.
func NewStrategy() strategy.Strategy {
	return &edgeStrategy{}
}

func (e *edgeStrategy) Initialize(playerID int) {
	e.seat = playerID
	e.played = [cards.NumSuits]int{}
}

func (e *edgeStrategy) SelectCard(legal []cards.Card, table cards.Table) int {
	perSuit := [cards.NumSuits]int{}
	for _, c := range legal {
		perSuit[c.Suit]++
	}
	best := strategy.Pass
	for _, i := range strategy.Playable(legal, table) {
		if best == strategy.Pass {
			best = i
			continue
		}
		a, b := legal[i], legal[best]
		if perSuit[a.Suit] > perSuit[b.Suit] ||
			(perSuit[a.Suit] == perSuit[b.Suit] && e.played[a.Suit] < e.played[b.Suit]) {
			best = i
		}
	}
	return best
}

func (e *edgeStrategy) ObserveMove(_ int, card cards.Card) {
	e.played[card.Suit]++
}

func (e *edgeStrategy) ObservePass(int) {}

func (e *edgeStrategy) Name() string { return "EdgeStrategy" }

func main() {}
