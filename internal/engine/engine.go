// Package engine runs a game of Sevens: it deals, asks each player's
// strategy for a card in turn, applies legal moves and ranks the players
// once someone runs out of cards.
package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/cartridge/sevens/internal/cards"
	"github.com/cartridge/sevens/internal/strategy"
)

// Phase is the engine's lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSetup
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSetup:
		return "setup"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

const (
	MinPlayers = 1
	MaxPlayers = cards.DeckSize

	// DefaultMaxIdleRounds is how many consecutive rounds without an accepted
	// move end an episode as stalled.
	DefaultMaxIdleRounds = 64
)

// Standing is one line of the final ranking. Rank 1 is the winner.
type Standing struct {
	PlayerID  int    `json:"player_id"`
	Name      string `json:"name,omitempty"`
	Rank      int    `json:"rank"`
	Remaining int    `json:"remaining"`
}

// Engine owns the deck, the hands and the table for one episode at a time.
// It is not safe for concurrent use.
type Engine struct {
	rng    *rand.Rand
	logger zerolog.Logger

	maxIdleRounds int

	strategies map[int]strategy.Strategy
	fallback   strategy.Strategy
	observers  []strategy.Observer

	phase   Phase
	hands   []cards.Hand
	table   cards.Table
	rounds  int
	turns   int
	winner  int
	stalled bool
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMaxIdleRounds overrides DefaultMaxIdleRounds. n <= 0 disables the
// stall guard.
func WithMaxIdleRounds(n int) Option {
	return func(e *Engine) { e.maxIdleRounds = n }
}

// WithFallback sets the strategy used for players without a binding. The
// default is a RandomStrategy drawing from the engine's generator.
func WithFallback(s strategy.Strategy) Option {
	return func(e *Engine) { e.fallback = s }
}

// New creates an engine whose shuffles and default policy draw from a
// generator seeded with seed.
func New(seed int64, opts ...Option) *Engine {
	e := &Engine{
		rng:           rand.New(rand.NewSource(seed)),
		logger:        zerolog.Nop(),
		maxIdleRounds: DefaultMaxIdleRounds,
		strategies:    make(map[int]strategy.Strategy),
		winner:        -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fallback == nil {
		e.fallback = strategy.NewRandomWithSource(e.rng)
	}
	return e
}

// RegisterStrategy binds s to playerID, replacing any earlier binding.
// Bindings survive across episodes run on the same engine. One instance may
// be bound to several seats; it is then notified of each event once. s must
// be a comparable value, normally a pointer.
func (e *Engine) RegisterStrategy(playerID int, s strategy.Strategy) {
	if playerID < 0 {
		panic(fmt.Sprintf("engine: negative player id %d", playerID))
	}
	if e.phase == PhasePlaying {
		panic("engine: RegisterStrategy during play")
	}
	if s == nil {
		delete(e.strategies, playerID)
		return
	}
	e.strategies[playerID] = s
	e.logger.Debug().Int("player", playerID).Str("strategy", s.Name()).Msg("strategy registered")
}

// HasRegisteredStrategies reports whether any player has a binding.
func (e *Engine) HasRegisteredStrategies() bool {
	return len(e.strategies) > 0
}

// AddObserver attaches an observer that is notified of every move and pass
// after the bound strategies.
func (e *Engine) AddObserver(o strategy.Observer) {
	e.observers = append(e.observers, o)
}

// StrategyFor returns the strategy deciding for playerID.
func (e *Engine) StrategyFor(playerID int) strategy.Strategy {
	if s, ok := e.strategies[playerID]; ok {
		return s
	}
	return e.fallback
}

// Setup shuffles a fresh deck, deals it round-robin to numPlayers hands,
// lays the four sevens face-up and initializes every bound strategy.
func (e *Engine) Setup(numPlayers int) error {
	if numPlayers < MinPlayers || numPlayers > MaxPlayers {
		return fmt.Errorf("number of players must be between %d and %d, got %d", MinPlayers, MaxPlayers, numPlayers)
	}
	e.phase = PhaseSetup

	deck := cards.NewDeck()
	cards.Shuffle(deck, e.rng)
	hands, err := cards.Deal(deck, numPlayers)
	if err != nil {
		return fmt.Errorf("deal: %w", err)
	}

	e.hands = hands
	e.table = cards.NewTable()
	e.rounds = 0
	e.turns = 0
	e.winner = -1
	e.stalled = false

	for id := 0; id < numPlayers; id++ {
		if s, ok := e.strategies[id]; ok {
			s.Initialize(id)
		}
	}

	e.logger.Debug().Int("players", numPlayers).Msg("game set up")
	return nil
}

// RunEpisode plays from the dealt position until a hand empties and returns
// the final ranking. Setup must have been called first.
func (e *Engine) RunEpisode(verbose bool) []Standing {
	if e.phase != PhaseSetup {
		panic(fmt.Sprintf("engine: RunEpisode in phase %s, want %s", e.phase, PhaseSetup))
	}
	e.phase = PhasePlaying

	idle := 0
	for e.phase == PhasePlaying {
		moved := e.playRound(verbose)
		if e.phase != PhasePlaying {
			break
		}
		if moved > 0 {
			idle = 0
			continue
		}
		idle++
		if e.maxIdleRounds > 0 && idle >= e.maxIdleRounds {
			e.stalled = true
			e.phase = PhaseFinished
			e.logger.Warn().Int("rounds", e.rounds).Int("idle_rounds", idle).Msg("no moves made, ending stalled game")
		}
	}

	standings := e.Rankings()
	if verbose {
		for _, s := range standings {
			e.logger.Info().Int("player", s.PlayerID).Int("rank", s.Rank).Int("remaining", s.Remaining).Msg("final standing")
		}
	}
	return standings
}

// RunNamed sets up one player per name, plays an episode and returns the
// ranking with names filled in.
func (e *Engine) RunNamed(names []string, verbose bool) ([]Standing, error) {
	if err := e.Setup(len(names)); err != nil {
		return nil, err
	}
	standings := e.RunEpisode(verbose)
	for i := range standings {
		standings[i].Name = names[standings[i].PlayerID]
	}
	return standings, nil
}

// playRound gives each player one turn in seat order and returns the number
// of accepted moves. It stops as soon as a hand empties.
func (e *Engine) playRound(verbose bool) int {
	e.rounds++
	moved := 0
	for id := range e.hands {
		if len(e.hands[id]) == 0 {
			continue
		}
		e.turns++
		if e.takeTurn(id, verbose) {
			moved++
		}
		if len(e.hands[id]) == 0 {
			e.winner = id
			e.phase = PhaseFinished
			e.logger.Debug().Int("player", id).Int("round", e.rounds).Int("turn", e.turns).Msg("hand emptied")
			return moved
		}
	}
	return moved
}

func (e *Engine) takeTurn(id int, verbose bool) bool {
	legal := cards.LegalMoves(e.hands[id], e.table)
	if len(legal) == 0 {
		e.logTurn(verbose).Int("player", id).Msg("no legal move, passes")
		e.notifyPass(id)
		return false
	}

	s := e.StrategyFor(id)
	choice := s.SelectCard(append([]cards.Card(nil), legal...), e.table)
	if choice < 0 || choice >= len(legal) {
		e.logTurn(verbose).Int("player", id).Int("choice", choice).Str("strategy", s.Name()).Msg("no move made, passes")
		e.notifyPass(id)
		return false
	}

	card := legal[choice]
	e.hands[id].Remove(card)
	e.table.Place(card)
	e.logTurn(verbose).Int("player", id).Stringer("card", card).Int("left", len(e.hands[id])).Msg("plays")
	e.notifyMove(id, card)
	return true
}

func (e *Engine) logTurn(verbose bool) *zerolog.Event {
	if verbose {
		return e.logger.Info().Int("round", e.rounds)
	}
	return e.logger.Debug().Int("round", e.rounds)
}

// notifyMove tells every distinct bound strategy once, ordered by the lowest
// seat it holds, then every attached observer.
func (e *Engine) notifyMove(playerID int, card cards.Card) {
	for _, s := range e.boundStrategies() {
		s.ObserveMove(playerID, card)
	}
	for _, o := range e.observers {
		o.ObserveMove(playerID, card)
	}
}

func (e *Engine) notifyPass(playerID int) {
	for _, s := range e.boundStrategies() {
		s.ObservePass(playerID)
	}
	for _, o := range e.observers {
		o.ObservePass(playerID)
	}
}

// boundStrategies lists the strategies bound to dealt seats, each instance
// once even when it plays several seats.
func (e *Engine) boundStrategies() []strategy.Strategy {
	seats := make([]int, 0, len(e.strategies))
	for id := range e.strategies {
		if id < len(e.hands) {
			seats = append(seats, id)
		}
	}
	sort.Ints(seats)

	seen := make(map[strategy.Strategy]struct{}, len(seats))
	out := make([]strategy.Strategy, 0, len(seats))
	for _, id := range seats {
		s := e.strategies[id]
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Rankings orders players by ascending cards left. Equal counts keep seat
// order, and ranks are 1..N with no shared ranks. Calling it before the
// game has finished is a programming error and panics.
func (e *Engine) Rankings() []Standing {
	if e.phase != PhaseFinished {
		panic(fmt.Sprintf("engine: Rankings in phase %s, want %s", e.phase, PhaseFinished))
	}
	standings := make([]Standing, len(e.hands))
	for id, h := range e.hands {
		standings[id] = Standing{PlayerID: id, Remaining: len(h)}
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Remaining < standings[j].Remaining
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func (e *Engine) Phase() Phase { return e.phase }

// Rounds returns the number of rounds started in the current episode.
func (e *Engine) Rounds() int { return e.rounds }

// Turns returns the number of turns taken in the current episode.
func (e *Engine) Turns() int { return e.turns }

// Winner returns the seat whose hand emptied, or -1.
func (e *Engine) Winner() int { return e.winner }

// Stalled reports whether the last episode ended by the idle-round guard.
func (e *Engine) Stalled() bool { return e.stalled }

// NumPlayers returns the number of seats dealt in.
func (e *Engine) NumPlayers() int { return len(e.hands) }

// HandSize returns how many cards playerID holds.
func (e *Engine) HandSize(playerID int) int {
	if playerID < 0 || playerID >= len(e.hands) {
		return 0
	}
	return len(e.hands[playerID])
}

// Hand returns a copy of playerID's hand.
func (e *Engine) Hand(playerID int) cards.Hand {
	if playerID < 0 || playerID >= len(e.hands) {
		return nil
	}
	return e.hands[playerID].Clone()
}

// Table returns a copy of the table.
func (e *Engine) Table() cards.Table { return e.table }
