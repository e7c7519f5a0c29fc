package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cartridge/sevens/internal/cards"
)

// Recorder observes one episode at a time and buffers its events until
// Flush writes them to a Backend as one batch.
type Recorder struct {
	backend Backend
	runID   string

	episodeID string
	step      uint32
	buffer    []*Event
	now       func() time.Time
}

// NewRecorder creates a recorder writing to backend under runID.
func NewRecorder(backend Backend, runID string) *Recorder {
	return &Recorder{
		backend: backend,
		runID:   runID,
		buffer:  make([]*Event, 0, cards.DeckSize),
		now:     time.Now,
	}
}

// Begin starts a new episode and returns its ID. Events still buffered from
// a previous episode are discarded.
func (r *Recorder) Begin() string {
	r.episodeID = uuid.New().String()
	r.step = 0
	r.buffer = r.buffer[:0]
	return r.episodeID
}

// EpisodeID returns the current episode ID.
func (r *Recorder) EpisodeID() string { return r.episodeID }

// Buffered returns the number of events waiting for Flush.
func (r *Recorder) Buffered() int { return len(r.buffer) }

func (r *Recorder) ObserveMove(playerID int, card cards.Card) {
	c := card
	r.add(playerID, KindMove, &c)
}

func (r *Recorder) ObservePass(playerID int) {
	r.add(playerID, KindPass, nil)
}

func (r *Recorder) add(playerID int, kind Kind, card *cards.Card) {
	if r.episodeID == "" {
		r.Begin()
	}
	r.buffer = append(r.buffer, &Event{
		RunID:     r.runID,
		EpisodeID: r.episodeID,
		Step:      r.step,
		PlayerID:  playerID,
		Kind:      kind,
		Card:      card,
		Timestamp: r.now(),
	})
	r.step++
}

// Flush sends buffered events to the backend.
func (r *Recorder) Flush(ctx context.Context) error {
	if len(r.buffer) == 0 {
		return nil
	}

	_, err := r.backend.StoreBatch(ctx, r.buffer)
	if err != nil {
		return fmt.Errorf("failed to store batch: %w", err)
	}

	// Clear buffer
	r.buffer = make([]*Event, 0, cards.DeckSize)
	return nil
}
