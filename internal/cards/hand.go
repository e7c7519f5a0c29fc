package cards

// Hand is an ordered sequence of cards held by one player.
type Hand []Card

// Remove deletes the first occurrence of c, preserving order. It reports
// whether the card was present.
func (h *Hand) Remove(c Card) bool {
	for i, held := range *h {
		if held == c {
			*h = append((*h)[:i], (*h)[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether c is in the hand.
func (h Hand) Contains(c Card) bool {
	for _, held := range h {
		if held == c {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no storage with h.
func (h Hand) Clone() Hand {
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// LegalMoves returns the cards of hand playable on t, in hand order.
func LegalMoves(hand []Card, t Table) []Card {
	var legal []Card
	for _, c := range hand {
		if t.Playable(c) {
			legal = append(legal, c)
		}
	}
	return legal
}
