package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajbhoyar729/LokDarpan/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `
	u.id, u.name, u.email, u.phone, u.password_hash, u.channel_id,
	COALESCE(c.logo_url, ''), u.created_at, u.updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.ChannelID,
		&u.LogoURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and, when ch is non-nil, the user's channel in the
// same transaction. IDs and timestamps are filled in on success.
func (r *UserRepo) Create(ctx context.Context, u *model.User, ch *model.Channel) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.Phone, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}

	if ch != nil {
		ch.OwnerID = u.ID
		if err := insertChannel(ctx, tx, ch); err != nil {
			return err
		}
		u.ChannelID = &ch.ID
		u.LogoURL = ch.LogoURL
	}

	return tx.Commit(ctx)
}

// FindByID returns a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN channels c ON c.id = u.channel_id
		WHERE u.id = $1`, id))
}

// FindByEmail returns a user by email, compared case-insensitively.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN channels c ON c.id = u.channel_id
		WHERE LOWER(u.email) = LOWER($1)`, email))
}

// EmailExists reports whether an account uses email.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	return exists, err
}

// NameExists reports whether a user or a channel already uses name.
func (r *UserRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(name) = LOWER($1))
		    OR EXISTS (SELECT 1 FROM channels WHERE LOWER(name) = LOWER($1))`, name).Scan(&exists)
	return exists, err
}

// GetStats returns platform-wide totals.
func (r *UserRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM channels) AS total_channels,
			(SELECT COUNT(*) FROM videos WHERE status = 'COMPLETED') AS total_videos,
			(SELECT COUNT(*) FROM comments) AS total_comments,
			(SELECT COALESCE(SUM(views), 0) FROM videos) AS total_views,
			(SELECT COALESCE(SUM(likes), 0) FROM videos) AS total_likes,
			(SELECT COUNT(*) FROM videos WHERE status IN ('PENDING_METADATA', 'UPLOADING', 'PROCESSING')) AS active_uploads,
			(SELECT COUNT(*) FROM videos WHERE status = 'COMPLETED' AND created_at > NOW() - INTERVAL '24 hours') AS new_videos_24h`

	var stats model.StatsResponse
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalUsers, &stats.TotalChannels, &stats.TotalVideos, &stats.TotalComments,
		&stats.TotalViews, &stats.TotalLikes, &stats.ActiveUploads, &stats.NewVideos24h,
	)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &stats, nil
}
