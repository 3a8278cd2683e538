package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by repositories. Missing rows are reported as
// pgx.ErrNoRows.
var (
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrDuplicateName        = errors.New("name already exists")
	ErrDuplicateChannelName = errors.New("channel name already exists")
	ErrUserHasChannel       = errors.New("user already has a channel")
	ErrAlreadySubscribed    = errors.New("already subscribed")
	ErrNotSubscribed        = errors.New("not subscribed")
	// ErrStaleVersion means a conditional update lost to a concurrent writer.
	ErrStaleVersion = errors.New("stale version")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// VideoChangesChannel is the LISTEN/NOTIFY channel carrying ids of videos
// whose cached representation is stale.
const VideoChangesChannel = "video_changes"

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func uniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func foreignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// mapUniqueViolation translates the unique indexes of users and channels
// into sentinel errors.
func mapUniqueViolation(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case "users_email_key":
		return ErrDuplicateEmail
	case "users_name_key":
		return ErrDuplicateName
	case "channels_name_key":
		return ErrDuplicateChannelName
	case "channels_owner_id_key":
		return ErrUserHasChannel
	}
	return err
}

// notifyVideoChange queues a video_changes notification, delivered when tx
// commits.
func notifyVideoChange(ctx context.Context, tx pgx.Tx, videoID string) error {
	_, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, VideoChangesChannel, videoID)
	return err
}
