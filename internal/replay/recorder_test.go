package replay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartridge/sevens/internal/cards"
)

func TestRecorder_FlushStoresEpisode(t *testing.T) {
	backend := NewMemoryBackend(0)
	defer backend.Close()

	rec := NewRecorder(backend, "run-1")
	episodeID := rec.Begin()

	rec.ObserveMove(0, cards.Card{Suit: cards.Clubs, Rank: 6})
	rec.ObservePass(1)
	rec.ObserveMove(2, cards.Card{Suit: cards.Hearts, Rank: 8})
	assert.Equal(t, 3, rec.Buffered())

	ctx := context.Background()
	require.NoError(t, rec.Flush(ctx))
	assert.Zero(t, rec.Buffered())

	events, err := backend.Episode(ctx, episodeID)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, KindMove, events[0].Kind)
	assert.Equal(t, cards.Card{Suit: cards.Clubs, Rank: 6}, *events[0].Card)
	assert.Equal(t, KindPass, events[1].Kind)
	assert.Nil(t, events[1].Card)
	assert.Equal(t, 2, events[2].PlayerID)
	for i, e := range events {
		assert.Equal(t, uint32(i), e.Step)
		assert.Equal(t, "run-1", e.RunID)
	}

	require.NoError(t, rec.Flush(ctx), "empty flush is a no-op")
}

func TestRecorder_BeginResetsEpisode(t *testing.T) {
	backend := NewMemoryBackend(0)
	defer backend.Close()

	rec := NewRecorder(backend, "run-1")
	first := rec.Begin()
	rec.ObservePass(0)

	second := rec.Begin()
	assert.NotEqual(t, first, second)
	assert.Zero(t, rec.Buffered())

	rec.ObservePass(0)
	require.NoError(t, rec.Flush(context.Background()))

	stats, err := backend.GetStats(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.TotalEvents)
	assert.Equal(t, uint64(1), stats.TotalEpisodes)
}

func TestRecorder_ImplicitBegin(t *testing.T) {
	rec := NewRecorder(NewMemoryBackend(0), "run-1")
	rec.ObservePass(3)
	assert.NotEmpty(t, rec.EpisodeID())
}

func TestRecorder_FlushErrorKeepsBuffer(t *testing.T) {
	backend := NewMemoryBackend(0)
	rec := NewRecorder(backend, "run-1")
	rec.Begin()
	rec.ObservePass(0)

	require.NoError(t, backend.Close())
	assert.Error(t, rec.Flush(context.Background()))
	assert.Equal(t, 1, rec.Buffered())
}
