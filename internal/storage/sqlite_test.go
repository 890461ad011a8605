package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axieum/hlna/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestWipeVotes(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create and fetch", func(t *testing.T) {
		store := newTestStore(t)
		vote := &domain.WipeVote{ID: "v1", UserID: "u1", Target: "island", CreatedAt: base}
		require.NoError(t, store.CreateVote(ctx, vote))

		got, err := store.GetVote(ctx, "v1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.OutcomePending, got.Outcome)
		assert.Equal(t, base, got.CreatedAt)
	})

	t.Run("missing vote is nil", func(t *testing.T) {
		store := newTestStore(t)
		got, err := store.GetVote(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("pending vote per target", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.CreateVote(ctx, &domain.WipeVote{ID: "v1", UserID: "u1", Target: "island", CreatedAt: base}))
		require.NoError(t, store.CreateVote(ctx, &domain.WipeVote{ID: "v2", UserID: "u1", Target: "scorched", CreatedAt: base}))

		got, err := store.PendingVote(ctx, "island")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "v1", got.ID)

		got, err = store.PendingVote(ctx, "aberration")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("resolve is terminal", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.CreateVote(ctx, &domain.WipeVote{ID: "v1", UserID: "u1", Target: "island", CreatedAt: base}))
		require.NoError(t, store.ResolveVote(ctx, "v1", domain.OutcomeSucceeded))

		// A second resolve must not change the outcome
		require.NoError(t, store.ResolveVote(ctx, "v1", domain.OutcomeFailed))

		got, err := store.GetVote(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSucceeded, got.Outcome)

		pending, err := store.PendingVote(ctx, "island")
		require.NoError(t, err)
		assert.Nil(t, pending)
	})

	t.Run("last successful vote", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.CreateVote(ctx, &domain.WipeVote{ID: "v1", UserID: "u1", Target: "island", CreatedAt: base}))
		require.NoError(t, store.ResolveVote(ctx, "v1", domain.OutcomeSucceeded))
		require.NoError(t, store.CreateVote(ctx, &domain.WipeVote{ID: "v2", UserID: "u2", Target: "island", CreatedAt: base.Add(time.Hour)}))
		require.NoError(t, store.ResolveVote(ctx, "v2", domain.OutcomeFailed))
		require.NoError(t, store.CreateVote(ctx, &domain.WipeVote{ID: "v3", UserID: "u3", Target: "island", CreatedAt: base.Add(2 * time.Hour)}))
		require.NoError(t, store.ResolveVote(ctx, "v3", domain.OutcomeSucceeded))

		got, err := store.LastSuccessfulVote(ctx, "island")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "v3", got.ID)
	})

	t.Run("recent votes newest first", func(t *testing.T) {
		store := newTestStore(t)
		for i, id := range []string{"v1", "v2", "v3"} {
			require.NoError(t, store.CreateVote(ctx, &domain.WipeVote{
				ID: id, UserID: "u1", Target: "island", CreatedAt: base.Add(time.Duration(i) * time.Hour),
			}))
		}

		votes, err := store.RecentVotes(ctx, 2)
		require.NoError(t, err)
		require.Len(t, votes, 2)
		assert.Equal(t, "v3", votes[0].ID)
		assert.Equal(t, "v2", votes[1].ID)
	})

	t.Run("set vote poll", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.CreateVote(ctx, &domain.WipeVote{ID: "v1", UserID: "u1", Target: "island", CreatedAt: base}))
		require.NoError(t, store.SetVotePoll(ctx, "v1", "poll-123"))

		got, err := store.GetVote(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, "poll-123", got.ExternalPollID)
	})
}

func TestHolds(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create and fetch", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.CreateHold(ctx, &domain.Hold{ID: "h1", UserID: "u1", Target: "island", CreatedAt: base}))

		got, err := store.GetHold(ctx, "island")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "h1", got.ID)

		got, err = store.GetHold(ctx, "scorched")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("one hold per target", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.CreateHold(ctx, &domain.Hold{ID: "h1", UserID: "u1", Target: "island", CreatedAt: base}))

		err := store.CreateHold(ctx, &domain.Hold{ID: "h2", UserID: "u2", Target: "island", CreatedAt: base})
		assert.ErrorIs(t, err, ErrDuplicateHold)
	})

	t.Run("delete reports existence", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.CreateHold(ctx, &domain.Hold{ID: "h1", UserID: "u1", Target: "island", CreatedAt: base}))

		released, err := store.DeleteHold(ctx, "island")
		require.NoError(t, err)
		assert.True(t, released)

		released, err = store.DeleteHold(ctx, "island")
		require.NoError(t, err)
		assert.False(t, released)
	})

	t.Run("list oldest first", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.CreateHold(ctx, &domain.Hold{ID: "h2", UserID: "u1", Target: "scorched", CreatedAt: base.Add(time.Hour)}))
		require.NoError(t, store.CreateHold(ctx, &domain.Hold{ID: "h1", UserID: "u1", Target: "island", CreatedAt: base}))

		holds, err := store.ListHolds(ctx)
		require.NoError(t, err)
		require.Len(t, holds, 2)
		assert.Equal(t, "island", holds[0].Target)
		assert.Equal(t, "scorched", holds[1].Target)
	})
}
