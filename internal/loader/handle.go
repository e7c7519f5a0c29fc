package loader

import (
	"io"
	"sync"

	"github.com/cartridge/sevens/internal/cards"
	"github.com/cartridge/sevens/internal/strategy"
)

// Handle is a reference-counted strategy loaded from a module. It is itself
// a strategy and can be registered with the engine directly.
//
// When the count drops to zero the strategy is closed (if it implements
// io.Closer) and then the module. A released handle passes on every turn.
type Handle struct {
	path string
	name string

	mu          sync.Mutex
	refs        int
	s           strategy.Strategy
	closeModule func() error
}

func newHandle(path string, s strategy.Strategy, closeModule func() error) *Handle {
	return &Handle{
		path:        path,
		name:        s.Name(),
		refs:        1,
		s:           s,
		closeModule: closeModule,
	}
}

var _ strategy.Strategy = (*Handle)(nil)

// Path returns the module path the strategy came from.
func (h *Handle) Path() string { return h.path }

// Acquire adds an owner. It returns h for chaining.
func (h *Handle) Acquire() *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refs > 0 {
		h.refs++
	}
	return h
}

// Release drops an owner. The last release destroys the strategy, then
// unloads the module, and returns the first error from either step.
// Releasing more times than acquired is a no-op.
func (h *Handle) Release() error {
	h.mu.Lock()
	if h.refs == 0 {
		h.mu.Unlock()
		return nil
	}
	h.refs--
	if h.refs > 0 {
		h.mu.Unlock()
		return nil
	}
	s, closeModule := h.s, h.closeModule
	h.s, h.closeModule = nil, nil
	h.mu.Unlock()

	var err error
	if c, ok := s.(io.Closer); ok {
		err = c.Close()
	}
	if closeModule != nil {
		if cerr := closeModule(); err == nil {
			err = cerr
		}
	}
	return err
}

// Released reports whether the last owner has released the handle.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs == 0
}

func (h *Handle) current() strategy.Strategy {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.s
}

func (h *Handle) Initialize(playerID int) {
	if s := h.current(); s != nil {
		s.Initialize(playerID)
	}
}

func (h *Handle) SelectCard(legal []cards.Card, table cards.Table) int {
	if s := h.current(); s != nil {
		return s.SelectCard(legal, table)
	}
	return strategy.Pass
}

func (h *Handle) ObserveMove(playerID int, card cards.Card) {
	if s := h.current(); s != nil {
		s.ObserveMove(playerID, card)
	}
}

func (h *Handle) ObservePass(playerID int) {
	if s := h.current(); s != nil {
		s.ObservePass(playerID)
	}
}

func (h *Handle) Name() string { return h.name }
