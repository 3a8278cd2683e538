package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajbhoyar729/LokDarpan/internal/model"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

const videoColumns = `
	v.id, v.owner_id, v.channel_id, v.title, v.description, v.status,
	v.video_url, v.video_key, v.thumbnail_url, v.thumbnail_key,
	v.category, v.tags, v.is_short, v.likes, v.dislikes, v.views, v.version,
	v.created_at, v.updated_at`

func scanVideo(row interface{ Scan(...any) error }) (*model.Video, error) {
	var v model.Video
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.ChannelID, &v.Title, &v.Description, &v.Status,
		&v.VideoURL, &v.VideoKey, &v.ThumbnailURL, &v.ThumbnailKey,
		&v.Category, &v.Tags, &v.IsShort, &v.Likes, &v.Dislikes, &v.Views, &v.Version,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return &v, nil
}

func collectVideos(rows pgx.Rows) ([]*model.Video, error) {
	defer rows.Close()
	videos := []*model.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// Create inserts v, linking it to the owner's channel if the owner has one.
// ID, channel, version and timestamps are filled in on success.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) error {
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO videos (owner_id, channel_id, title, description, status,
		                    video_url, video_key, thumbnail_url, thumbnail_key,
		                    category, tags, is_short)
		VALUES ($1, (SELECT channel_id FROM users WHERE id = $1), $2, $3, $4,
		        $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, channel_id, version, created_at, updated_at`,
		v.OwnerID, v.Title, v.Description, v.Status,
		v.VideoURL, v.VideoKey, v.ThumbnailURL, v.ThumbnailKey,
		v.Category, v.Tags, v.IsShort,
	).Scan(&v.ID, &v.ChannelID, &v.Version, &v.CreatedAt, &v.UpdatedAt)
}

// FindByID returns a video by id regardless of status.
func (r *VideoRepo) FindByID(ctx context.Context, id string) (*model.Video, error) {
	return scanVideo(r.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos v WHERE v.id = $1`, id))
}

// FindDetail returns a video together with its owner, channel, comment ids
// and, when viewerID is set, the viewer's reaction.
func (r *VideoRepo) FindDetail(ctx context.Context, id, viewerID string) (*model.VideoDetail, error) {
	var (
		d         model.VideoDetail
		ownerName string
		chID      *string
		chName    *string
		chLogo    *string
		chSubs    *int
	)

	row := r.pool.QueryRow(ctx, `
		SELECT `+videoColumns+`, u.name, c.id, c.name, c.logo_url, c.subscribers
		FROM videos v
		JOIN users u ON u.id = v.owner_id
		LEFT JOIN channels c ON c.id = v.channel_id
		WHERE v.id = $1`, id)

	var v model.Video
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.ChannelID, &v.Title, &v.Description, &v.Status,
		&v.VideoURL, &v.VideoKey, &v.ThumbnailURL, &v.ThumbnailKey,
		&v.Category, &v.Tags, &v.IsShort, &v.Likes, &v.Dislikes, &v.Views, &v.Version,
		&v.CreatedAt, &v.UpdatedAt,
		&ownerName, &chID, &chName, &chLogo, &chSubs,
	)
	if err != nil {
		return nil, err
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	d.Video = &v
	d.Owner = &model.UserSummary{ID: v.OwnerID, Name: ownerName}
	if chID != nil {
		d.Channel = &model.ChannelSummary{ID: *chID, Name: deref(chName), LogoURL: deref(chLogo)}
		if chSubs != nil {
			d.Channel.Subscribers = *chSubs
		}
	}

	d.CommentIDs, err = r.CommentIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	if viewerID != "" {
		var kind string
		err := r.pool.QueryRow(ctx,
			`SELECT kind FROM video_reactions WHERE video_id = $1 AND user_id = $2`, id, viewerID).Scan(&kind)
		if err != nil && !IsNotFound(err) {
			return nil, err
		}
		d.ViewerReaction = model.Reaction(kind)
	}

	return &d, nil
}

// CommentIDs returns the ids of a video's comments in creation order.
func (r *VideoRepo) CommentIDs(ctx context.Context, videoID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM comments WHERE video_id = $1 ORDER BY created_at, id`, videoID)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Update applies a partial update and returns the updated video.
func (r *VideoRepo) Update(ctx context.Context, id string, p model.VideoPatch) (*model.Video, error) {
	sets := []string{"version = version + 1", "updated_at = NOW()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Tags != nil {
		add("tags", *p.Tags)
	}
	if p.IsShort != nil {
		add("is_short", *p.IsShort)
	}
	if p.ThumbnailURL != nil {
		add("thumbnail_url", *p.ThumbnailURL)
		add("thumbnail_key", deref(p.ThumbnailKey))
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	v, err := scanVideo(tx.QueryRow(ctx, `
		UPDATE videos v SET `+strings.Join(sets, ", ")+`
		WHERE v.id = $1
		RETURNING `+videoColumns, args...))
	if err != nil {
		return nil, err
	}
	if err := notifyVideoChange(ctx, tx, id); err != nil {
		return nil, err
	}
	return v, tx.Commit(ctx)
}

// TransitionStatus moves a video from one status to another. It returns
// ErrStaleVersion when the video is no longer in status from.
func (r *VideoRepo) TransitionStatus(ctx context.Context, id string, from, to model.VideoStatus) (*model.Video, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	v, err := scanVideo(tx.QueryRow(ctx, `
		UPDATE videos v SET status = $3, version = version + 1, updated_at = NOW()
		WHERE v.id = $1 AND v.status = $2
		RETURNING `+videoColumns, id, from, to))
	if IsNotFound(err) {
		return nil, ErrStaleVersion
	}
	if err != nil {
		return nil, err
	}
	if err := notifyVideoChange(ctx, tx, id); err != nil {
		return nil, err
	}
	return v, tx.Commit(ctx)
}

// Delete removes a video. Reactions, views and comments cascade.
func (r *VideoRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if err := notifyVideoChange(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReactionState reads the counters, version and userID's current reaction
// for a video.
func (r *VideoRepo) ReactionState(ctx context.Context, videoID, userID string) (*model.ReactionState, error) {
	var (
		s    model.ReactionState
		kind *string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT v.likes, v.dislikes, v.version, vr.kind
		FROM videos v
		LEFT JOIN video_reactions vr ON vr.video_id = v.id AND vr.user_id = $2
		WHERE v.id = $1`, videoID, userID).Scan(&s.Likes, &s.Dislikes, &s.Version, &kind)
	if err != nil {
		return nil, err
	}
	s.Current = model.Reaction(deref(kind))
	return &s, nil
}

// ApplyReaction writes a reaction transition computed from a state read at
// expectedVersion. The counter update is conditional on the version, so a
// concurrent toggle makes it return ErrStaleVersion and nothing is written.
// Returns the new counters.
func (r *VideoRepo) ApplyReaction(ctx context.Context, videoID, userID string, expectedVersion int64, t model.ReactionTransition) (likes, dislikes int, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	// Taking the row lock first serializes concurrent toggles on the video.
	err = tx.QueryRow(ctx, `
		UPDATE videos
		SET likes = likes + $3, dislikes = dislikes + $4, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING likes, dislikes`,
		videoID, expectedVersion, t.LikesDelta, t.DislikesDelta,
	).Scan(&likes, &dislikes)
	if IsNotFound(err) {
		return 0, 0, ErrStaleVersion
	}
	if err != nil {
		return 0, 0, err
	}

	switch {
	case t.To == model.ReactionNone:
		_, err = tx.Exec(ctx, `DELETE FROM video_reactions WHERE video_id = $1 AND user_id = $2`, videoID, userID)
	case t.From == model.ReactionNone:
		_, err = tx.Exec(ctx, `
			INSERT INTO video_reactions (video_id, user_id, kind) VALUES ($1, $2, $3)`,
			videoID, userID, string(t.To))
	default:
		_, err = tx.Exec(ctx, `
			UPDATE video_reactions SET kind = $3, created_at = NOW()
			WHERE video_id = $1 AND user_id = $2`,
			videoID, userID, string(t.To))
	}
	if err != nil {
		return 0, 0, err
	}

	if err := notifyVideoChange(ctx, tx, videoID); err != nil {
		return 0, 0, err
	}
	return likes, dislikes, tx.Commit(ctx)
}

// RecordView increments the view counter of a COMPLETED video; any other
// video reads as pgx.ErrNoRows. When viewerID is set the view is counted
// once per user.
func (r *VideoRepo) RecordView(ctx context.Context, videoID, viewerID string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var views int64
	err = tx.QueryRow(ctx, `
		SELECT views FROM videos WHERE id = $1 AND status = $2 FOR UPDATE`,
		videoID, model.StatusCompleted).Scan(&views)
	if err != nil {
		return 0, err
	}

	if viewerID != "" {
		tag, err := tx.Exec(ctx, `
			INSERT INTO video_views (video_id, user_id) VALUES ($1, $2)
			ON CONFLICT (video_id, user_id) DO NOTHING`, videoID, viewerID)
		if err != nil {
			if foreignKeyViolation(err) {
				return 0, pgx.ErrNoRows
			}
			return 0, err
		}
		if tag.RowsAffected() == 0 {
			return views, nil
		}
	}

	err = tx.QueryRow(ctx, `
		UPDATE videos SET views = views + 1 WHERE id = $1 RETURNING views`, videoID).Scan(&views)
	if err != nil {
		return 0, err
	}
	return views, tx.Commit(ctx)
}

// VideoFilter narrows List. Zero fields do not filter.
type VideoFilter struct {
	OwnerID      string
	ChannelID    string
	ShortsOnly   bool
	Query        string
	SubscriberID string // videos from channels this user follows
	LikedBy      string // videos this user liked
	Since        time.Time
	AnyStatus    bool // include videos that are not COMPLETED
}

// List returns videos matching f, newest first.
func (r *VideoRepo) List(ctx context.Context, f VideoFilter, page model.Page) ([]*model.Video, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.AnyStatus {
		where = append(where, "v.status = "+arg(model.StatusCompleted))
	}
	if f.OwnerID != "" {
		where = append(where, "v.owner_id = "+arg(f.OwnerID))
	}
	if f.ChannelID != "" {
		where = append(where, "v.channel_id = "+arg(f.ChannelID))
	}
	if f.ShortsOnly {
		where = append(where, "v.is_short")
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg("%" + escapeLike(q) + "%")
		where = append(where, fmt.Sprintf(
			"(v.title ILIKE %[1]s OR v.description ILIKE %[1]s OR v.category ILIKE %[1]s OR array_to_string(v.tags, ' ') ILIKE %[1]s)", p))
	}
	if f.SubscriberID != "" {
		where = append(where, "v.channel_id IN (SELECT channel_id FROM subscriptions WHERE user_id = "+arg(f.SubscriberID)+")")
	}
	if f.LikedBy != "" {
		where = append(where, "EXISTS (SELECT 1 FROM video_reactions vr WHERE vr.video_id = v.id AND vr.kind = 'like' AND vr.user_id = "+arg(f.LikedBy)+")")
	}
	if !f.Since.IsZero() {
		where = append(where, "v.created_at >= "+arg(f.Since))
	}

	query := `SELECT ` + videoColumns + ` FROM videos v`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY v.created_at DESC, v.id LIMIT %s OFFSET %s`, arg(page.Limit), arg(page.Offset()))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// ReconcileReactions resets like and dislike counters that drifted from the
// reaction rows. Returns the number of videos corrected.
func (r *VideoRepo) ReconcileReactions(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE videos v
		SET likes = a.likes, dislikes = a.dislikes, version = v.version + 1, updated_at = NOW()
		FROM (
			SELECT vid.id,
			       COUNT(vr.user_id) FILTER (WHERE vr.kind = 'like')    AS likes,
			       COUNT(vr.user_id) FILTER (WHERE vr.kind = 'dislike') AS dislikes
			FROM videos vid
			LEFT JOIN video_reactions vr ON vr.video_id = vid.id
			GROUP BY vid.id
		) a
		WHERE v.id = a.id AND (v.likes <> a.likes OR v.dislikes <> a.dislikes)`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// StaleUpload identifies an unfinished upload swept by FailStaleUploads.
type StaleUpload struct {
	ID       string
	VideoKey string
}

// FailStaleUploads marks PENDING_METADATA and UPLOADING videos last touched
// before cutoff as FAILED and returns them.
func (r *VideoRepo) FailStaleUploads(ctx context.Context, cutoff time.Time) ([]StaleUpload, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE videos
		SET status = 'FAILED', version = version + 1, updated_at = NOW()
		WHERE status IN ('PENDING_METADATA', 'UPLOADING') AND updated_at < $1
		RETURNING id, video_key`, cutoff)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (StaleUpload, error) {
		var s StaleUpload
		err := row.Scan(&s.ID, &s.VideoKey)
		return s, err
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
