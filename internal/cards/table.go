package cards

// Table records which ranks of each suit are face-up. The zero value is an
// empty table; NewTable returns one with the four sevens already placed.
//
// Table is a value type. Strategies receive copies, so nothing they do can
// reach the engine's table.
type Table struct {
	faceUp [NumSuits][MaxRank + 2]bool
}

// NewTable returns a table with rank 7 of every suit face-up.
func NewTable() Table {
	var t Table
	for s := Suit(0); s < NumSuits; s++ {
		t.faceUp[s][StartRank] = true
	}
	return t
}

// IsFaceUp reports whether the given rank of suit s is on the table.
// Out-of-range suits and ranks are never face-up.
func (t Table) IsFaceUp(s Suit, rank int) bool {
	if !s.Valid() || rank < MinRank || rank > MaxRank {
		return false
	}
	return t.faceUp[s][rank]
}

// Place turns c face-up. Ranks never go back to face-down.
func (t *Table) Place(c Card) {
	if !c.Valid() {
		return
	}
	t.faceUp[c.Suit][c.Rank] = true
}

// Playable reports whether c may be played: it is a seven, or a card of the
// same suit one rank above or below is already face-up.
func (t Table) Playable(c Card) bool {
	if !c.Valid() {
		return false
	}
	if c.Rank == StartRank {
		return true
	}
	return t.IsFaceUp(c.Suit, c.Rank-1) || t.IsFaceUp(c.Suit, c.Rank+1)
}

// FaceUpCount returns the number of face-up cards.
func (t Table) FaceUpCount() int {
	n := 0
	for s := Suit(0); s < NumSuits; s++ {
		for r := MinRank; r <= MaxRank; r++ {
			if t.faceUp[s][r] {
				n++
			}
		}
	}
	return n
}

// Layout returns the face-up state as suit -> rank -> face-up for every
// suit and rank. It is a fresh map on each call.
func (t Table) Layout() map[Suit]map[int]bool {
	out := make(map[Suit]map[int]bool, NumSuits)
	for s := Suit(0); s < NumSuits; s++ {
		ranks := make(map[int]bool, MaxRank)
		for r := MinRank; r <= MaxRank; r++ {
			ranks[r] = t.faceUp[s][r]
		}
		out[s] = ranks
	}
	return out
}
