package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajbhoyar729/LokDarpan/internal/model"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

const commentColumns = `cm.id, cm.video_id, cm.author_id, u.name, cm.text, cm.created_at, cm.updated_at`

func scanComment(row interface{ Scan(...any) error }) (*model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.VideoID, &c.AuthorID, &c.AuthorName, &c.Text, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a comment on an existing video. The video row is locked
// for the duration so it cannot be deleted in between; a missing video is
// reported as pgx.ErrNoRows.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists int
	err = tx.QueryRow(ctx, `SELECT 1 FROM videos WHERE id = $1 FOR KEY SHARE`, c.VideoID).Scan(&exists)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO comments (video_id, author_id, text)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at, author_id
		)
		SELECT i.id, i.created_at, i.updated_at, u.name
		FROM inserted i JOIN users u ON u.id = i.author_id`,
		c.VideoID, c.AuthorID, c.Text,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.AuthorName)
	if err != nil {
		if foreignKeyViolation(err) {
			return pgx.ErrNoRows
		}
		return err
	}

	if err := notifyVideoChange(ctx, tx, c.VideoID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// FindByID returns a comment by id.
func (r *CommentRepo) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	return scanComment(r.pool.QueryRow(ctx, `
		SELECT `+commentColumns+`
		FROM comments cm JOIN users u ON u.id = cm.author_id
		WHERE cm.id = $1`, id))
}

// UpdateText replaces a comment's text.
func (r *CommentRepo) UpdateText(ctx context.Context, id, text string) (*model.Comment, error) {
	return scanComment(r.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE comments SET text = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT cm.id, cm.video_id, cm.author_id, u.name, cm.text, cm.created_at, cm.updated_at
		FROM updated cm JOIN users u ON u.id = cm.author_id`, id, text))
}

// Delete removes a comment, and with it its id from the video's comment
// list. Returns the video id the comment belonged to.
func (r *CommentRepo) Delete(ctx context.Context, id string) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var videoID string
	err = tx.QueryRow(ctx, `DELETE FROM comments WHERE id = $1 RETURNING video_id`, id).Scan(&videoID)
	if err != nil {
		return "", err
	}
	if err := notifyVideoChange(ctx, tx, videoID); err != nil {
		return "", err
	}
	return videoID, tx.Commit(ctx)
}

// ListByVideo returns a page of a video's comments, newest first.
func (r *CommentRepo) ListByVideo(ctx context.Context, videoID string, page model.Page) ([]*model.Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+commentColumns+`
		FROM comments cm JOIN users u ON u.id = cm.author_id
		WHERE cm.video_id = $1
		ORDER BY cm.created_at DESC, cm.id
		LIMIT $2 OFFSET $3`, videoID, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
