// Package replay stores episode transcripts: the ordered moves and passes
// of every game played during a run.
package replay

import (
	"context"
	"time"

	"github.com/cartridge/sevens/internal/cards"
)

// Kind distinguishes moves from passes.
type Kind string

const (
	KindMove Kind = "move"
	KindPass Kind = "pass"
)

// Event is a single observed turn outcome.
type Event struct {
	ID        string      `json:"id"`
	RunID     string      `json:"run_id"`
	EpisodeID string      `json:"episode_id"`
	Step      uint32      `json:"step"`
	PlayerID  int         `json:"player_id"`
	Kind      Kind        `json:"kind"`
	Card      *cards.Card `json:"card,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Stats summarises the stored events.
type Stats struct {
	TotalEvents     uint64
	TotalEpisodes   uint64
	Moves           uint64
	Passes          uint64
	MovesByPlayer   map[int]uint64
	OldestTimestamp *time.Time
	NewestTimestamp *time.Time
}

// Backend defines the interface for transcript storage implementations
type Backend interface {
	// Store a single event
	Store(ctx context.Context, event *Event) error

	// Store multiple events in a batch
	StoreBatch(ctx context.Context, events []*Event) ([]string, error)

	// Episode returns one episode's events ordered by step
	Episode(ctx context.Context, episodeID string) ([]*Event, error)

	// Get statistics, optionally limited to one run
	GetStats(ctx context.Context, runID string) (*Stats, error)

	// Clear events of a run (all runs if empty), keeping the newest keepLastN
	Clear(ctx context.Context, runID string, keepLastN uint32) (uint64, error)

	// Close the backend and cleanup resources
	Close() error
}
