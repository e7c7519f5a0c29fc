package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSPublisher implements Publisher using NATS
type NATSPublisher struct {
	conn    Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher connects to natsURL and publishes under subject.
func NewNATSPublisher(natsURL, subject string, logger zerolog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(natsURL, nats.Name("sevens"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", natsURL, err)
	}
	return NewNATSPublisherWithConn(conn, subject, logger), nil
}

// NewNATSPublisherWithConn wraps an existing connection.
func NewNATSPublisherWithConn(conn Conn, subject string, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger,
	}
}

// Close closes the NATS connection
func (n *NATSPublisher) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

// ProgressSubject is where training progress is published.
func (n *NATSPublisher) ProgressSubject() string { return n.subject + ".progress" }

// ResultsSubject is where game results are published.
func (n *NATSPublisher) ResultsSubject() string { return n.subject + ".results" }

// PublishTrainingProgress publishes progress events to NATS
func (n *NATSPublisher) PublishTrainingProgress(ctx context.Context, event ProgressEvent) error {
	subject := n.ProgressSubject()
	if err := n.publish(subject, event); err != nil {
		n.logger.Error().Err(err).Str("subject", subject).Msg("Failed to publish training progress")
		return err
	}

	n.logger.Debug().
		Str("run_id", event.RunID).
		Int("episode", event.Episode).
		Float64("win_rate", event.WinRate).
		Str("subject", subject).
		Msg("Published training progress")

	return nil
}

// PublishGameResult publishes game results to NATS
func (n *NATSPublisher) PublishGameResult(ctx context.Context, event GameResultEvent) error {
	subject := n.ResultsSubject()
	if err := n.publish(subject, event); err != nil {
		n.logger.Error().Err(err).Str("subject", subject).Msg("Failed to publish game result")
		return err
	}

	n.logger.Debug().
		Str("episode_id", event.EpisodeID).
		Int("winner", event.Winner).
		Str("subject", subject).
		Msg("Published game result")

	return nil
}

func (n *NATSPublisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return n.conn.Publish(subject, data)
}
