package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/rajbhoyar729/LokDarpan/internal/db"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/repository"
)

// startPostgres runs a migrated postgres container. Set TEST_INTEGRATION=1
// to enable; Docker is required.
func startPostgres(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("set TEST_INTEGRATION=1 to run postgres integration tests")
	}

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("lokdarpan"),
		postgres.WithUsername("lokdarpan"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, db.Migrate(dsn, zerolog.Nop()))

	pool, err := db.NewPool(ctx, dsn, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type repos struct {
	users    *repository.UserRepo
	channels *repository.ChannelRepo
	videos   *repository.VideoRepo
	comments *repository.CommentRepo
}

func newUser(ctx context.Context, t *testing.T, r repos, name string, withChannel bool) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", Phone: "9876543210", PasswordHash: "hash"}
	var ch *model.Channel
	if withChannel {
		ch = &model.Channel{Name: name}
	}
	require.NoError(t, r.users.Create(ctx, u, ch))
	return u
}

func newVideo(ctx context.Context, t *testing.T, r repos, ownerID, title string, status model.VideoStatus) *model.Video {
	t.Helper()
	v := &model.Video{
		OwnerID:  ownerID,
		Title:    title,
		Status:   status,
		VideoKey: "videos/" + title + ".mp4",
		Category: "music",
		Tags:     []string{"live"},
	}
	require.NoError(t, r.videos.Create(ctx, v))
	return v
}

func TestRepositoriesIntegration(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(ctx, t)
	r := repos{
		users:    repository.NewUserRepo(pool),
		channels: repository.NewChannelRepo(pool),
		videos:   repository.NewVideoRepo(pool),
		comments: repository.NewCommentRepo(pool),
	}

	owner := newUser(ctx, t, r, "owner", true)
	fan := newUser(ctx, t, r, "fan", false)
	require.NotNil(t, owner.ChannelID)

	t.Run("users", func(t *testing.T) {
		err := r.users.Create(ctx, &model.User{Name: "other", Email: "owner@example.com", PasswordHash: "h"}, nil)
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

		err = r.users.Create(ctx, &model.User{Name: "other", Email: "other@example.com", PasswordHash: "h"},
			&model.Channel{Name: "owner"})
		assert.ErrorIs(t, err, repository.ErrDuplicateChannelName)

		found, err := r.users.FindByEmail(ctx, "owner@example.com")
		require.NoError(t, err)
		assert.Equal(t, owner.ID, found.ID)
		assert.Equal(t, owner.ChannelID, found.ChannelID)

		_, err = r.users.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.True(t, repository.IsNotFound(err))

		err = r.channels.Create(ctx, &model.Channel{Name: "second", OwnerID: owner.ID})
		assert.ErrorIs(t, err, repository.ErrUserHasChannel)
	})

	t.Run("subscriptions", func(t *testing.T) {
		n, err := r.channels.Subscribe(ctx, fan.ID, *owner.ChannelID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = r.channels.Subscribe(ctx, fan.ID, *owner.ChannelID)
		assert.ErrorIs(t, err, repository.ErrAlreadySubscribed)

		subs, err := r.channels.ListSubscribed(ctx, fan.ID)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, *owner.ChannelID, subs[0].ID)

		_, err = pool.Exec(ctx, `UPDATE channels SET subscribers = 7 WHERE id = $1`, *owner.ChannelID)
		require.NoError(t, err)
		fixed, err := r.channels.ReconcileSubscribers(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), fixed)

		n, err = r.channels.Unsubscribe(ctx, fan.ID, *owner.ChannelID)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		_, err = r.channels.Unsubscribe(ctx, fan.ID, *owner.ChannelID)
		assert.ErrorIs(t, err, repository.ErrNotSubscribed)
	})

	t.Run("reactions", func(t *testing.T) {
		v := newVideo(ctx, t, r, owner.ID, "reacted", model.StatusCompleted)
		assert.Equal(t, owner.ChannelID, v.ChannelID)

		state, err := r.videos.ReactionState(ctx, v.ID, fan.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReactionNone, state.Current)

		like := model.ToggleReaction(state.Current, model.ReactionLike)
		likes, dislikes, err := r.videos.ApplyReaction(ctx, v.ID, fan.ID, state.Version, like)
		require.NoError(t, err)
		assert.Equal(t, 1, likes)
		assert.Equal(t, 0, dislikes)

		_, _, err = r.videos.ApplyReaction(ctx, v.ID, fan.ID, state.Version, like)
		assert.ErrorIs(t, err, repository.ErrStaleVersion)

		state, err = r.videos.ReactionState(ctx, v.ID, fan.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReactionLike, state.Current)

		liked, err := r.videos.List(ctx, repository.VideoFilter{LikedBy: fan.ID}, model.NewPage(1, 10))
		require.NoError(t, err)
		require.Len(t, liked, 1)
		assert.Equal(t, v.ID, liked[0].ID)

		_, err = pool.Exec(ctx, `UPDATE videos SET likes = 9 WHERE id = $1`, v.ID)
		require.NoError(t, err)
		fixed, err := r.videos.ReconcileReactions(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), fixed)

		got, err := r.videos.FindByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Likes)
	})

	t.Run("views", func(t *testing.T) {
		v := newVideo(ctx, t, r, owner.ID, "viewed", model.StatusCompleted)

		views, err := r.videos.RecordView(ctx, v.ID, fan.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), views)

		views, err = r.videos.RecordView(ctx, v.ID, fan.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), views)

		views, err = r.videos.RecordView(ctx, v.ID, "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), views)

		pending := newVideo(ctx, t, r, owner.ID, "unviewed", model.StatusPendingMetadata)
		_, err = r.videos.RecordView(ctx, pending.ID, fan.ID)
		assert.True(t, repository.IsNotFound(err), "got %v", err)
		_, err = r.videos.RecordView(ctx, pending.ID, "")
		assert.True(t, repository.IsNotFound(err), "got %v", err)
		got, err := r.videos.FindByID(ctx, pending.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Views)
	})

	t.Run("list filters", func(t *testing.T) {
		newVideo(ctx, t, r, owner.ID, "hidden-pending", model.StatusPendingMetadata)
		newVideo(ctx, t, r, owner.ID, "Percent_100%", model.StatusCompleted)

		found, err := r.videos.List(ctx, repository.VideoFilter{Query: "100%"}, model.NewPage(1, 10))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Percent_100%", found[0].Title)

		found, err = r.videos.List(ctx, repository.VideoFilter{Query: "hidden"}, model.NewPage(1, 10))
		require.NoError(t, err)
		assert.Empty(t, found)

		found, err = r.videos.List(ctx, repository.VideoFilter{OwnerID: owner.ID, AnyStatus: true}, model.NewPage(1, 100))
		require.NoError(t, err)
		for i := 1; i < len(found); i++ {
			assert.False(t, found[i].CreatedAt.After(found[i-1].CreatedAt), "newest first")
		}
	})

	t.Run("comments and delete cascade", func(t *testing.T) {
		v := newVideo(ctx, t, r, owner.ID, "discussed", model.StatusCompleted)

		c := &model.Comment{VideoID: v.ID, AuthorID: fan.ID, Text: "nice"}
		require.NoError(t, r.comments.Create(ctx, c))
		assert.Equal(t, "fan", c.AuthorName)

		detail, err := r.videos.FindDetail(ctx, v.ID, fan.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{c.ID}, detail.CommentIDs)

		updated, err := r.comments.UpdateText(ctx, c.ID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Text)

		require.NoError(t, r.videos.Delete(ctx, v.ID))
		_, err = r.comments.FindByID(ctx, c.ID)
		assert.True(t, repository.IsNotFound(err))

		err = r.comments.Create(ctx, &model.Comment{VideoID: v.ID, AuthorID: fan.ID, Text: "late"})
		assert.True(t, repository.IsNotFound(err))
		assert.True(t, repository.IsNotFound(r.videos.Delete(ctx, v.ID)))
	})

	t.Run("status transitions and stale uploads", func(t *testing.T) {
		v := newVideo(ctx, t, r, owner.ID, "direct", model.StatusPendingMetadata)

		moved, err := r.videos.TransitionStatus(ctx, v.ID, model.StatusPendingMetadata, model.StatusUploading)
		require.NoError(t, err)
		assert.Equal(t, model.StatusUploading, moved.Status)

		_, err = r.videos.TransitionStatus(ctx, v.ID, model.StatusPendingMetadata, model.StatusUploading)
		assert.ErrorIs(t, err, repository.ErrStaleVersion)

		stale, err := r.videos.FailStaleUploads(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		var ids []string
		for _, s := range stale {
			ids = append(ids, s.ID)
		}
		assert.Contains(t, ids, v.ID)

		got, err := r.videos.FindByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusFailed, got.Status)
	})

	t.Run("change notifications", func(t *testing.T) {
		v := newVideo(ctx, t, r, owner.ID, "notified", model.StatusCompleted)

		conn, err := pool.Acquire(ctx)
		require.NoError(t, err)
		defer conn.Release()
		_, err = conn.Exec(ctx, "LISTEN "+repository.VideoChangesChannel)
		require.NoError(t, err)

		title := "renamed"
		_, err = r.videos.Update(ctx, v.ID, model.VideoPatch{Title: &title})
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		n, err := conn.Conn().WaitForNotification(waitCtx)
		require.NoError(t, err)
		assert.Equal(t, v.ID, n.Payload)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := r.users.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalUsers)
		assert.Equal(t, 1, stats.TotalChannels)
	})
}
