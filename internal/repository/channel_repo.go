package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajbhoyar729/LokDarpan/internal/model"
)

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

const channelColumns = `id, name, description, logo_url, logo_key, owner_id, subscribers, created_at, updated_at`

func scanChannel(row interface{ Scan(...any) error }) (*model.Channel, error) {
	var c model.Channel
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.LogoURL, &c.LogoKey, &c.OwnerID,
		&c.Subscribers, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// insertChannel creates ch inside tx and links it to its owner.
func insertChannel(ctx context.Context, tx pgx.Tx, ch *model.Channel) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO channels (name, description, logo_url, logo_key, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, subscribers, created_at, updated_at`,
		ch.Name, ch.Description, ch.LogoURL, ch.LogoKey, ch.OwnerID,
	).Scan(&ch.ID, &ch.Subscribers, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}

	_, err = tx.Exec(ctx, `UPDATE users SET channel_id = $1, updated_at = NOW() WHERE id = $2`, ch.ID, ch.OwnerID)
	return err
}

// Create inserts a channel for ch.OwnerID. It fails with ErrUserHasChannel
// when the owner already has one and pgx.ErrNoRows when the owner does not
// exist.
func (r *ChannelRepo) Create(ctx context.Context, ch *model.Channel) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var existing *string
	err = tx.QueryRow(ctx, `SELECT channel_id FROM users WHERE id = $1 FOR UPDATE`, ch.OwnerID).Scan(&existing)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserHasChannel
	}

	if err := insertChannel(ctx, tx, ch); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// FindByID returns a channel by id.
func (r *ChannelRepo) FindByID(ctx context.Context, id string) (*model.Channel, error) {
	return scanChannel(r.pool.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE id = $1`, id))
}

// FindByOwner returns the channel owned by a user.
func (r *ChannelRepo) FindByOwner(ctx context.Context, ownerID string) (*model.Channel, error) {
	return scanChannel(r.pool.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE owner_id = $1`, ownerID))
}

// Subscribe adds userID to the channel's subscriber set and increments the
// counter in one transaction. Returns the new subscriber count.
func (r *ChannelRepo) Subscribe(ctx context.Context, userID, channelID string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO subscriptions (user_id, channel_id) VALUES ($1, $2)
		ON CONFLICT (user_id, channel_id) DO NOTHING`, userID, channelID)
	if err != nil {
		if foreignKeyViolation(err) {
			return 0, pgx.ErrNoRows
		}
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrAlreadySubscribed
	}

	var subscribers int
	err = tx.QueryRow(ctx, `
		UPDATE channels SET subscribers = subscribers + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING subscribers`, channelID).Scan(&subscribers)
	if err != nil {
		return 0, err
	}

	return subscribers, tx.Commit(ctx)
}

// Unsubscribe removes userID from the subscriber set and decrements the
// counter, never below zero.
func (r *ChannelRepo) Unsubscribe(ctx context.Context, userID, channelID string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM subscriptions WHERE user_id = $1 AND channel_id = $2`, userID, channelID)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotSubscribed
	}

	var subscribers int
	err = tx.QueryRow(ctx, `
		UPDATE channels SET subscribers = GREATEST(subscribers - 1, 0), updated_at = NOW()
		WHERE id = $1
		RETURNING subscribers`, channelID).Scan(&subscribers)
	if err != nil {
		return 0, err
	}

	return subscribers, tx.Commit(ctx)
}

// ListSubscribed returns the channels a user follows, most recent first.
func (r *ChannelRepo) ListSubscribed(ctx context.Context, userID string) ([]*model.Channel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.description, c.logo_url, c.logo_key, c.owner_id,
		       c.subscribers, c.created_at, c.updated_at
		FROM subscriptions s
		JOIN channels c ON c.id = s.channel_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := []*model.Channel{}
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

// ReconcileSubscribers resets every channel whose counter differs from its
// subscription rows. Returns the number of channels corrected.
func (r *ChannelRepo) ReconcileSubscribers(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE channels c
		SET subscribers = s.actual, updated_at = NOW()
		FROM (
			SELECT ch.id, COUNT(sub.user_id) AS actual
			FROM channels ch
			LEFT JOIN subscriptions sub ON sub.channel_id = ch.id
			GROUP BY ch.id
		) s
		WHERE c.id = s.id AND c.subscribers <> s.actual`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
