// Package events fans out training progress and game results.
package events

import "context"

// Publisher is implemented by downstream fan-out mechanisms.
type Publisher interface {
	PublishTrainingProgress(ctx context.Context, payload ProgressEvent) error
	PublishGameResult(ctx context.Context, payload GameResultEvent) error
}

// ProgressEvent is emitted by the trainer at every checkpoint and at the end
// of a run.
type ProgressEvent struct {
	RunID      string  `json:"run_id"`
	Episode    int     `json:"episode"`
	Episodes   int     `json:"episodes"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
	Epsilon    float64 `json:"epsilon"`
	Checkpoint string  `json:"checkpoint,omitempty"`
	Final      bool    `json:"final,omitempty"`
}

// Placement is one player's result in a finished game.
type Placement struct {
	PlayerID  int    `json:"player_id"`
	Name      string `json:"name,omitempty"`
	Rank      int    `json:"rank"`
	Remaining int    `json:"remaining"`
}

// GameResultEvent describes a finished game.
type GameResultEvent struct {
	RunID      string      `json:"run_id"`
	EpisodeID  string      `json:"episode_id"`
	Rounds     int         `json:"rounds"`
	Turns      int         `json:"turns"`
	Winner     int         `json:"winner"`
	Stalled    bool        `json:"stalled,omitempty"`
	Placements []Placement `json:"placements"`
}

// NoopPublisher drops everything; useful for tests.
type NoopPublisher struct{}

// PublishTrainingProgress satisfies Publisher.
func (NoopPublisher) PublishTrainingProgress(context.Context, ProgressEvent) error { return nil }

// PublishGameResult satisfies Publisher.
func (NoopPublisher) PublishGameResult(context.Context, GameResultEvent) error { return nil }
