// Package rl implements an epsilon-greedy tabular Q-learning strategy for
// Sevens.
//
// The Q-table is keyed by card identity only. The agent also tracks a state
// string built from its hand and the table, but that string is diagnostic
// and never used as a learning key, so the agent behaves as a one-step
// bandit over which card to play.
package rl

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cartridge/sevens/internal/cards"
	"github.com/cartridge/sevens/internal/strategy"
)

const (
	// MoveReward is credited to the played card after each of the agent's
	// own moves.
	MoveReward = 1.0

	// PassPenalty is recorded as the last reward when the agent passes. It is
	// not applied to any Q-value since a pass has no card key.
	PassPenalty = -0.5
)

// Params configures the learner.
type Params struct {
	Epsilon float64 // exploration probability, constant over time
	Alpha   float64 // learning rate
	Gamma   float64 // discount factor; kept for compatibility, the update is one-step
	Steps   int     // return horizon; kept for compatibility, the update is one-step
}

// DefaultParams returns the standard learner settings.
func DefaultParams() Params {
	return Params{
		Epsilon: 0.3,
		Alpha:   0.1,
		Gamma:   0.9,
		Steps:   1,
	}
}

// Agent is a Q-learning strategy. One Agent may be reused across many
// episodes to accumulate learning; it must not be shared between episodes
// running concurrently.
type Agent struct {
	params Params
	rng    *rand.Rand
	logger zerolog.Logger

	playerID int
	q        map[cards.Card]float64

	state      string
	lastAction int
	lastCard   cards.Card
	lastReward float64
	observed   map[cards.Card]struct{}
}

// Option customises an Agent.
type Option func(*Agent)

// WithLogger sets the logger used for model persistence messages.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithRand sets the random source used for exploration.
func WithRand(rng *rand.Rand) Option {
	return func(a *Agent) { a.rng = rng }
}

// New creates an agent with every Q-value at zero.
func New(params Params, seed int64, opts ...Option) *Agent {
	a := &Agent{
		params:     params,
		rng:        rand.New(rand.NewSource(seed)),
		logger:     zerolog.Nop(),
		q:          make(map[cards.Card]float64, cards.DeckSize),
		lastAction: strategy.Pass,
		observed:   make(map[cards.Card]struct{}),
	}
	for _, c := range cards.NewDeck() {
		a.q[c] = 0
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ strategy.Strategy = (*Agent)(nil)

// Initialize implements strategy.Strategy.
func (a *Agent) Initialize(playerID int) {
	a.playerID = playerID
	a.state = ""
	a.lastAction = strategy.Pass
	a.lastReward = 0
	a.observed = make(map[cards.Card]struct{})
}

// SelectCard implements strategy.Strategy with an epsilon-greedy choice over
// the playable cards.
func (a *Agent) SelectCard(legal []cards.Card, table cards.Table) int {
	if len(legal) == 0 {
		a.lastAction = strategy.Pass
		return strategy.Pass
	}
	a.state = encodeState(legal, table)

	idx := strategy.Playable(legal, table)
	if len(idx) == 0 {
		a.lastAction = strategy.Pass
		return strategy.Pass
	}

	if a.rng.Float64() < a.params.Epsilon {
		a.lastAction = idx[a.rng.Intn(len(idx))]
	} else {
		best := idx[0]
		for _, i := range idx[1:] {
			if a.q[legal[i]] > a.q[legal[best]] {
				best = i
			}
		}
		a.lastAction = best
	}
	a.lastCard = legal[a.lastAction]
	return a.lastAction
}

// ObserveMove implements strategy.Strategy. Only the agent's own moves
// update the Q-table; other players' cards are remembered for the episode.
func (a *Agent) ObserveMove(playerID int, card cards.Card) {
	if playerID != a.playerID {
		a.observed[card] = struct{}{}
		return
	}
	if _, ok := a.q[card]; !ok {
		return
	}
	a.q[card] += a.params.Alpha * (MoveReward - a.q[card])
	a.lastReward = MoveReward
}

// ObservePass implements strategy.Strategy.
func (a *Agent) ObservePass(playerID int) {
	if playerID == a.playerID {
		a.lastReward = PassPenalty
	}
}

func (a *Agent) Name() string { return "RLStrategy" }

// Q returns the current value estimate for c.
func (a *Agent) Q(c cards.Card) float64 {
	return a.q[c]
}

// SetQ overwrites the value estimate for a valid card.
func (a *Agent) SetQ(c cards.Card, v float64) {
	if c.Valid() {
		a.q[c] = v
	}
}

func (a *Agent) Params() Params { return a.params }

// SetEpsilon changes the exploration rate, e.g. to 0 for evaluation play.
func (a *Agent) SetEpsilon(eps float64) { a.params.Epsilon = eps }

// State returns the snapshot taken at the last decision.
func (a *Agent) State() string { return a.state }

// LastReward returns the reward recorded by the last own move or pass.
func (a *Agent) LastReward() float64 { return a.lastReward }

// LastAction returns the index chosen at the last decision, or Pass.
func (a *Agent) LastAction() int { return a.lastAction }

// Observed reports whether another player played c this episode.
func (a *Agent) Observed(c cards.Card) bool {
	_, ok := a.observed[c]
	return ok
}

// encodeState renders "s,r;s,r;...|s,r;..." for the hand and the face-up
// cards, suits and ranks in ascending order.
func encodeState(hand []cards.Card, table cards.Table) string {
	var b strings.Builder
	for _, c := range hand {
		writeCard(&b, c)
	}
	b.WriteByte('|')
	for s := cards.Suit(0); s < cards.NumSuits; s++ {
		for r := cards.MinRank; r <= cards.MaxRank; r++ {
			if table.IsFaceUp(s, r) {
				writeCard(&b, cards.Card{Suit: s, Rank: r})
			}
		}
	}
	return b.String()
}

func writeCard(b *strings.Builder, c cards.Card) {
	b.WriteString(strconv.Itoa(int(c.Suit)))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(c.Rank))
	b.WriteByte(';')
}
