package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartridge/sevens/internal/cards"
	"github.com/cartridge/sevens/internal/strategy"
	"github.com/cartridge/sevens/internal/strategy/rl"
)

// fixedStrategy always answers the same index.
type fixedStrategy struct {
	choice      int
	initialized []int
	moves       int
	passes      int
}

func (f *fixedStrategy) Initialize(id int) { f.initialized = append(f.initialized, id) }
func (f *fixedStrategy) SelectCard([]cards.Card, cards.Table) int { return f.choice }
func (f *fixedStrategy) ObserveMove(int, cards.Card) { f.moves++ }
func (f *fixedStrategy) ObservePass(int) { f.passes++ }
func (f *fixedStrategy) Name() string { return "fixed" }

// event is one observed move or pass.
type event struct {
	player int
	card   cards.Card
	pass   bool
}

type recorder struct {
	events []event
}

func (r *recorder) ObserveMove(id int, c cards.Card) { r.events = append(r.events, event{player: id, card: c}) }
func (r *recorder) ObservePass(id int) { r.events = append(r.events, event{player: id, pass: true}) }

func TestSetup_DealsAndLaysSevens(t *testing.T) {
	e := New(1)
	require.NoError(t, e.Setup(4))

	assert.Equal(t, PhaseSetup, e.Phase())
	assert.Equal(t, 4, e.NumPlayers())
	total := 0
	for id := 0; id < 4; id++ {
		assert.Equal(t, 13, e.HandSize(id))
		total += e.HandSize(id)
	}
	assert.Equal(t, cards.DeckSize, total)
	assert.Equal(t, cards.NumSuits, e.Table().FaceUpCount())
}

func TestSetup_PlayerCountBounds(t *testing.T) {
	e := New(1)
	assert.Error(t, e.Setup(0))
	assert.Error(t, e.Setup(53))
	for n := MinPlayers; n <= MaxPlayers; n++ {
		require.NoError(t, e.Setup(n), "players=%d", n)
		sizes := make([]int, n)
		for id := range sizes {
			sizes[id] = e.HandSize(id)
		}
		assert.LessOrEqual(t, maxOf(sizes)-minOf(sizes), 1, "players=%d", n)
	}
}

func TestSetup_InitializesBoundStrategies(t *testing.T) {
	e := New(1)
	s := &fixedStrategy{choice: 0}
	e.RegisterStrategy(2, s)
	e.RegisterStrategy(7, &fixedStrategy{})

	require.NoError(t, e.Setup(4))
	assert.Equal(t, []int{2}, s.initialized)
}

func TestRunEpisode_FourPlayerScenario(t *testing.T) {
	e := New(20240101)
	require.NoError(t, e.Setup(4))

	standings := e.RunEpisode(false)

	require.Len(t, standings, 4)
	assert.Equal(t, PhaseFinished, e.Phase())
	assert.False(t, e.Stalled())
	// The winner plays 13 cards at one per round; at least one card is
	// played every round since all 52 cards are in hands.
	assert.GreaterOrEqual(t, e.Rounds(), 13)
	assert.LessOrEqual(t, e.Rounds(), 52)

	seen := make(map[int]bool)
	for i, s := range standings {
		assert.Equal(t, i+1, s.Rank)
		assert.False(t, seen[s.PlayerID])
		seen[s.PlayerID] = true
		if i > 0 {
			assert.LessOrEqual(t, standings[i-1].Remaining, s.Remaining)
		}
	}
	assert.Equal(t, 0, standings[0].Remaining)
	assert.Equal(t, e.Winner(), standings[0].PlayerID)
}

func TestRunEpisode_SinglePlayerPlaysWholeDeck(t *testing.T) {
	e := New(3)
	require.NoError(t, e.Setup(1))

	standings := e.RunEpisode(false)

	assert.Equal(t, []Standing{{PlayerID: 0, Rank: 1, Remaining: 0}}, standings)
	assert.Equal(t, cards.DeckSize, e.Rounds())
	assert.Equal(t, cards.DeckSize, e.Turns())
	assert.Equal(t, cards.DeckSize, e.Table().FaceUpCount())
}

func TestRunEpisode_Deterministic(t *testing.T) {
	run := func() ([]Standing, int) {
		e := New(77)
		e.RegisterStrategy(0, strategy.NewGreedy())
		e.RegisterStrategy(1, strategy.NewRandom(5))
		require.NoError(t, e.Setup(4))
		return e.RunEpisode(false), e.Turns()
	}
	a, ta := run()
	b, tb := run()
	assert.Equal(t, a, b)
	assert.Equal(t, ta, tb)
}

func TestRunEpisode_StopsAtFirstEmptyHand(t *testing.T) {
	e := New(11)
	rec := &recorder{}
	e.AddObserver(rec)
	require.NoError(t, e.Setup(5))

	emptiedAt := -1
	e.AddObserver(observerFunc{move: func(id int, _ cards.Card) {
		if emptiedAt < 0 && e.HandSize(id) == 0 {
			emptiedAt = len(rec.events)
		}
	}})

	e.RunEpisode(false)

	require.GreaterOrEqual(t, emptiedAt, 1)
	assert.Len(t, rec.events, emptiedAt, "events after the hand emptied")
	last := rec.events[len(rec.events)-1]
	assert.False(t, last.pass)
	assert.Equal(t, e.Winner(), last.player)
	assert.Equal(t, len(rec.events), e.Turns())

	// Players seated after the winner did not get a turn in the last round.
	emptyHands := 0
	for id := 0; id < e.NumPlayers(); id++ {
		if e.HandSize(id) == 0 {
			emptyHands++
		}
	}
	assert.Equal(t, 1, emptyHands)
}

func TestRunEpisode_TableIsMonotonic(t *testing.T) {
	e := New(8)
	watcher := &tableWatcher{t: t}
	for id := 0; id < 3; id++ {
		e.RegisterStrategy(id, watcher)
	}
	require.NoError(t, e.Setup(3))
	e.RunEpisode(false)
	assert.Greater(t, watcher.calls, 0)
}

type tableWatcher struct {
	t     *testing.T
	prev  cards.Table
	seen  bool
	calls int
}

func (w *tableWatcher) Initialize(int) {}
func (w *tableWatcher) SelectCard(legal []cards.Card, table cards.Table) int {
	w.calls++
	for s := cards.Suit(0); s < cards.NumSuits; s++ {
		assert.True(w.t, table.IsFaceUp(s, cards.StartRank))
		for r := cards.MinRank; r <= cards.MaxRank; r++ {
			if w.seen && w.prev.IsFaceUp(s, r) {
				assert.True(w.t, table.IsFaceUp(s, r), "%v rank %d went face-down", s, r)
			}
		}
	}
	for _, c := range legal {
		assert.True(w.t, table.Playable(c))
	}
	w.prev, w.seen = table, true
	return 0
}
func (w *tableWatcher) ObserveMove(int, cards.Card) {}
func (w *tableWatcher) ObservePass(int) {}
func (w *tableWatcher) Name() string { return "watcher" }

type observerFunc struct {
	move func(int, cards.Card)
	pass func(int)
}

func (o observerFunc) ObserveMove(id int, c cards.Card) {
	if o.move != nil {
		o.move(id, c)
	}
}

func (o observerFunc) ObservePass(id int) {
	if o.pass != nil {
		o.pass(id)
	}
}

func TestRunEpisode_InvalidIndexIsPass(t *testing.T) {
	e := New(4)
	tooHigh := &fixedStrategy{choice: 99}
	negative := &fixedStrategy{choice: -5}
	e.RegisterStrategy(0, tooHigh)
	e.RegisterStrategy(1, negative)
	e.RegisterStrategy(2, strategy.NewGreedy())
	e.RegisterStrategy(3, strategy.NewGreedy())

	passes := make(map[int]int)
	e.AddObserver(observerFunc{pass: func(id int) { passes[id]++ }})

	require.NoError(t, e.Setup(4))
	e.hands = []cards.Hand{
		{{Suit: cards.Clubs, Rank: 6}},
		{{Suit: cards.Diamonds, Rank: 8}},
		{{Suit: cards.Spades, Rank: 7}, {Suit: cards.Spades, Rank: 8}},
		{{Suit: cards.Hearts, Rank: 1}, {Suit: cards.Hearts, Rank: 2}},
	}

	standings := e.RunEpisode(false)

	assert.Equal(t, 2, e.Rounds())
	assert.Equal(t, 7, e.Turns())
	assert.Equal(t, 2, e.Winner())
	assert.Equal(t, 1, e.HandSize(0))
	assert.Equal(t, 1, e.HandSize(1))
	assert.Equal(t, map[int]int{0: 2, 1: 2, 3: 1}, passes)
	assert.Equal(t, 2, tooHigh.moves)
	assert.Equal(t, 5, tooHigh.passes)

	order := make([]int, len(standings))
	for i, s := range standings {
		order[i] = s.PlayerID
	}
	assert.Equal(t, []int{2, 0, 1, 3}, order, "tied players keep seat order")
}

func TestRunEpisode_StallGuard(t *testing.T) {
	e := New(4, WithMaxIdleRounds(3))
	for id := 0; id < 4; id++ {
		e.RegisterStrategy(id, &fixedStrategy{choice: strategy.Pass})
	}
	require.NoError(t, e.Setup(4))

	standings := e.RunEpisode(false)

	assert.True(t, e.Stalled())
	assert.Equal(t, 3, e.Rounds())
	assert.Equal(t, -1, e.Winner())
	for i, s := range standings {
		assert.Equal(t, i, s.PlayerID)
		assert.Equal(t, 13, s.Remaining)
	}
}

func TestRunEpisode_UnboundPlayersUseFallback(t *testing.T) {
	fallback := &fixedStrategy{choice: 0}
	e := New(9, WithFallback(fallback))
	e.RegisterStrategy(0, strategy.NewGreedy())
	require.NoError(t, e.Setup(3))

	e.RunEpisode(false)

	assert.Same(t, fallback, e.StrategyFor(1))
	assert.NotSame(t, fallback, e.StrategyFor(0))
	assert.Empty(t, fallback.initialized, "fallback is not bound to a seat")
	assert.Zero(t, fallback.moves+fallback.passes, "fallback is not an observer")
}

func TestRunEpisode_NoBindingsStillFinishes(t *testing.T) {
	e := New(12)
	assert.False(t, e.HasRegisteredStrategies())
	require.NoError(t, e.Setup(6))
	standings := e.RunEpisode(true)
	assert.Len(t, standings, 6)
	assert.Equal(t, 0, standings[0].Remaining)
}

func TestRunEpisode_NotifiesEveryBoundStrategy(t *testing.T) {
	e := New(21)
	spies := []*fixedStrategy{{choice: 0}, {choice: 0}, {choice: 0}}
	for id, s := range spies {
		e.RegisterStrategy(id, s)
	}
	require.NoError(t, e.Setup(3))
	e.RunEpisode(false)

	for _, s := range spies {
		assert.Equal(t, e.Turns(), s.moves+s.passes)
	}
}

func TestRunEpisode_SharedStrategyNotifiedOnce(t *testing.T) {
	e := New(21)
	shared := &fixedStrategy{choice: 0}
	e.RegisterStrategy(0, shared)
	e.RegisterStrategy(1, shared)
	e.RegisterStrategy(2, strategy.NewGreedy())
	require.NoError(t, e.Setup(3))
	e.RunEpisode(false)

	assert.Equal(t, e.Turns(), shared.moves+shared.passes)
}

func TestRunEpisode_SharedAgentUpdatesOncePerMove(t *testing.T) {
	params := rl.DefaultParams()
	params.Epsilon = 0
	agent := rl.New(params, 1)

	e := New(5)
	e.RegisterStrategy(0, agent)
	e.RegisterStrategy(1, agent)
	require.NoError(t, e.Setup(2))
	e.hands = []cards.Hand{
		{{Suit: cards.Clubs, Rank: 1}},
		{{Suit: cards.Hearts, Rank: 7}},
	}

	e.RunEpisode(false)

	require.Equal(t, 1, e.Winner())
	assert.InDelta(t, 0.1, agent.Q(cards.Card{Suit: cards.Hearts, Rank: 7}), 1e-12)
}

func TestRunEpisode_RequiresSetup(t *testing.T) {
	e := New(1)
	assert.Panics(t, func() { e.RunEpisode(false) })

	require.NoError(t, e.Setup(2))
	e.RunEpisode(false)
	assert.Panics(t, func() { e.RunEpisode(false) }, "a finished game must be set up again")

	require.NoError(t, e.Setup(2))
	assert.NotPanics(t, func() { e.RunEpisode(false) })
}

func TestRankings_BeforeFinishPanics(t *testing.T) {
	e := New(1)
	assert.Panics(t, func() { e.Rankings() })
	require.NoError(t, e.Setup(4))
	assert.Panics(t, func() { e.Rankings() })
}

func TestRankings_StableTieBreakBySeat(t *testing.T) {
	e := New(1)
	e.hands = []cards.Hand{
		make(cards.Hand, 3),
		make(cards.Hand, 1),
		make(cards.Hand, 3),
		make(cards.Hand, 0),
		make(cards.Hand, 1),
	}
	e.phase = PhaseFinished

	assert.Equal(t, []Standing{
		{PlayerID: 3, Rank: 1, Remaining: 0},
		{PlayerID: 1, Rank: 2, Remaining: 1},
		{PlayerID: 4, Rank: 3, Remaining: 1},
		{PlayerID: 0, Rank: 4, Remaining: 3},
		{PlayerID: 2, Rank: 5, Remaining: 3},
	}, e.Rankings())
}

func TestRunNamed(t *testing.T) {
	e := New(31)
	names := []string{"Alice", "Bob", "Charlie", "David"}

	standings, err := e.RunNamed(names, false)
	require.NoError(t, err)
	require.Len(t, standings, 4)
	for _, s := range standings {
		assert.Equal(t, names[s.PlayerID], s.Name)
	}

	_, err = e.RunNamed(nil, false)
	assert.Error(t, err)
}

func TestRegisterStrategy(t *testing.T) {
	e := New(1)
	assert.Panics(t, func() { e.RegisterStrategy(-1, strategy.NewGreedy()) })

	g := strategy.NewGreedy()
	e.RegisterStrategy(0, g)
	assert.True(t, e.HasRegisteredStrategies())
	assert.Same(t, g, e.StrategyFor(0))

	e.RegisterStrategy(0, nil)
	assert.False(t, e.HasRegisteredStrategies())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "playing", PhasePlaying.String())
	assert.Equal(t, "Phase(9)", Phase(9).String())
}

func minOf(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		m = min(m, x)
	}
	return m
}

func maxOf(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		m = max(m, x)
	}
	return m
}
