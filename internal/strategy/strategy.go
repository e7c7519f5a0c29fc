// Package strategy provides the decision-making contract for Sevens players
// and the built-in Random and Greedy strategies.
package strategy

import (
	"github.com/cartridge/sevens/internal/cards"
)

// Pass is returned by SelectCard when the strategy makes no move.
const Pass = -1

// Observer receives a notification for every accepted move and every pass,
// whoever made it.
type Observer interface {
	ObserveMove(playerID int, card cards.Card)
	ObservePass(playerID int)
}

// Strategy decides which card a player plays.
type Strategy interface {
	Observer

	// Initialize binds the strategy to a seat and clears per-episode memory.
	Initialize(playerID int)

	// SelectCard chooses one of legal by index, or returns Pass. legal and
	// table are copies owned by the caller for the duration of the call.
	SelectCard(legal []cards.Card, table cards.Table) int

	// Name identifies the strategy in logs and standings.
	Name() string
}

// Playable returns the indices of legal that are actually playable on
// table. Strategies re-check so a misbehaving caller cannot make them pick
// an unplayable card.
func Playable(legal []cards.Card, table cards.Table) []int {
	idx := make([]int, 0, len(legal))
	for i, c := range legal {
		if table.Playable(c) {
			idx = append(idx, i)
		}
	}
	return idx
}
