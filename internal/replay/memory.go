package replay

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrClosed is returned by a closed backend.
var ErrClosed = errors.New("replay backend closed")

// MemoryBackend implements an in-memory transcript store
type MemoryBackend struct {
	mu        sync.RWMutex
	events    map[string]*Event   // ID -> Event
	episodes  map[string][]string // EpisodeID -> EventIDs
	runIndex  map[string][]string // RunID -> EventIDs
	timeIndex []string            // EventIDs in insertion order
	maxSize   uint64              // Maximum number of events to store
	closed    bool
}

// NewMemoryBackend creates a new in-memory storage backend. maxSize 0 means
// unbounded.
func NewMemoryBackend(maxSize uint64) *MemoryBackend {
	return &MemoryBackend{
		events:    make(map[string]*Event),
		episodes:  make(map[string][]string),
		runIndex:  make(map[string][]string),
		timeIndex: make([]string, 0),
		maxSize:   maxSize,
	}
}

// Store implements Backend.Store
func (m *MemoryBackend) Store(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	// Generate ID if not provided
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if _, exists := m.events[event.ID]; exists {
		return fmt.Errorf("event %s already stored", event.ID)
	}

	// Set timestamp if not provided
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	m.events[event.ID] = event

	if event.EpisodeID != "" {
		m.episodes[event.EpisodeID] = append(m.episodes[event.EpisodeID], event.ID)
	}
	if event.RunID != "" {
		m.runIndex[event.RunID] = append(m.runIndex[event.RunID], event.ID)
	}
	m.timeIndex = append(m.timeIndex, event.ID)

	// Evict old events if we exceed maxSize
	m.evictIfNeeded()

	return nil
}

// StoreBatch implements Backend.StoreBatch
func (m *MemoryBackend) StoreBatch(ctx context.Context, events []*Event) ([]string, error) {
	ids := make([]string, len(events))

	for i, event := range events {
		if err := m.Store(ctx, event); err != nil {
			return ids[:i], err
		}
		ids[i] = event.ID
	}

	return ids, nil
}

// Episode implements Backend.Episode
func (m *MemoryBackend) Episode(ctx context.Context, episodeID string) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	ids, ok := m.episodes[episodeID]
	if !ok {
		return nil, fmt.Errorf("episode %s not found", episodeID)
	}

	out := make([]*Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.events[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out, nil
}

// GetStats implements Backend.GetStats
func (m *MemoryBackend) GetStats(ctx context.Context, runID string) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	stats := &Stats{MovesByPlayer: make(map[int]uint64)}
	episodes := make(map[string]struct{})

	for _, id := range m.timeIndex {
		event := m.events[id]
		if runID != "" && event.RunID != runID {
			continue
		}
		stats.TotalEvents++
		episodes[event.EpisodeID] = struct{}{}
		switch event.Kind {
		case KindMove:
			stats.Moves++
			stats.MovesByPlayer[event.PlayerID]++
		case KindPass:
			stats.Passes++
		}
		ts := event.Timestamp
		if stats.OldestTimestamp == nil || ts.Before(*stats.OldestTimestamp) {
			stats.OldestTimestamp = &ts
		}
		if stats.NewestTimestamp == nil || ts.After(*stats.NewestTimestamp) {
			stats.NewestTimestamp = &ts
		}
	}
	stats.TotalEpisodes = uint64(len(episodes))

	return stats, nil
}

// Clear implements Backend.Clear
func (m *MemoryBackend) Clear(ctx context.Context, runID string, keepLastN uint32) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	source := m.timeIndex
	if runID != "" {
		source = m.runIndex[runID]
	}
	// deleteEvent rewrites the index slices in place
	relevant := append([]string(nil), source...)

	if uint64(len(relevant)) <= uint64(keepLastN) {
		return 0, nil
	}
	toDelete := relevant[:len(relevant)-int(keepLastN)]
	for _, id := range toDelete {
		m.deleteEvent(id)
	}

	return uint64(len(toDelete)), nil
}

// Close implements Backend.Close
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = nil
	m.episodes = nil
	m.runIndex = nil
	m.timeIndex = nil
	m.closed = true

	return nil
}

// Helper methods

func (m *MemoryBackend) evictIfNeeded() {
	if m.maxSize == 0 || uint64(len(m.events)) <= m.maxSize {
		return
	}

	// Remove oldest events
	toRemove := uint64(len(m.events)) - m.maxSize
	for i := uint64(0); i < toRemove; i++ {
		if len(m.timeIndex) > 0 {
			m.deleteEvent(m.timeIndex[0])
		}
	}
}

func (m *MemoryBackend) deleteEvent(id string) {
	event, exists := m.events[id]
	if !exists {
		return
	}

	delete(m.events, id)

	if event.EpisodeID != "" {
		m.episodes[event.EpisodeID] = removeString(m.episodes[event.EpisodeID], id)
		if len(m.episodes[event.EpisodeID]) == 0 {
			delete(m.episodes, event.EpisodeID)
		}
	}

	if event.RunID != "" {
		m.runIndex[event.RunID] = removeString(m.runIndex[event.RunID], id)
		if len(m.runIndex[event.RunID]) == 0 {
			delete(m.runIndex, event.RunID)
		}
	}

	m.timeIndex = removeString(m.timeIndex, id)
}

func removeString(slice []string, s string) []string {
	for i, item := range slice {
		if item == s {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
