package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"autoposter-bot/internal/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL,
		title VARCHAR(200) NOT NULL,
		body TEXT NOT NULL,
		topic TEXT NOT NULL DEFAULT '',
		tags TEXT[] NOT NULL DEFAULT '{}',
		status VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status)`,
	`CREATE TABLE IF NOT EXISTS publications (
		post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		platform VARCHAR(20) NOT NULL,
		success BOOLEAN NOT NULL,
		platform_post_id TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMPTZ,
		PRIMARY KEY (post_id, position)
	)`,
}

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// Connect opens a pool for databaseURL and makes sure the schema exists.
func Connect(ctx context.Context, databaseURL string) (*PostRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not connect to postgres: %w", err)
	}
	repo := NewPostRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func (r *PostRepository) Migrate(ctx context.Context) error {
	for _, query := range schema {
		if _, err := r.pool.Exec(ctx, query); err != nil {
			return handlePostgresError("migrate", err)
		}
	}
	return nil
}

func (r *PostRepository) Close() {
	r.pool.Close()
}

func (r *PostRepository) Save(ctx context.Context, post *domain.Post) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return handlePostgresError("begin save", err)
	}
	defer tx.Rollback(ctx)

	content := post.Content()
	_, err = tx.Exec(ctx, `
		INSERT INTO posts (id, user_id, title, body, topic, tags, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			topic = EXCLUDED.topic,
			tags = EXCLUDED.tags,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		post.ID(), post.UserID(), content.Title, content.Body, content.Topic,
		content.Tags, string(post.Status()), post.CreatedAt(), post.UpdatedAt())
	if err != nil {
		return handlePostgresError("save post", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM publications WHERE post_id = $1`, post.ID()); err != nil {
		return handlePostgresError("clear publications", err)
	}
	for i, pub := range post.Publications() {
		_, err := tx.Exec(ctx, `
			INSERT INTO publications (post_id, position, platform, success, platform_post_id, url, error_message, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			post.ID(), i, string(pub.Platform), pub.Success, pub.PlatformPostID, pub.URL, pub.ErrorMessage, pub.PublishedAt)
		if err != nil {
			return handlePostgresError("save publication", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	posts, err := r.queryPosts(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, domain.ErrPostNotFound
	}
	return posts[0], nil
}

func (r *PostRepository) GetByUserID(ctx context.Context, userID int64) ([]*domain.Post, error) {
	return r.queryPosts(ctx, `WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
}

func (r *PostRepository) GetByStatus(ctx context.Context, status domain.Status) ([]*domain.Post, error) {
	return r.queryPosts(ctx, `WHERE status = $1 ORDER BY created_at DESC, id`, string(status))
}

func (r *PostRepository) GetConfirmedPosts(ctx context.Context) ([]*domain.Post, error) {
	return r.GetByStatus(ctx, domain.StatusConfirmed)
}

func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return handlePostgresError("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) queryPosts(ctx context.Context, where string, args ...interface{}) ([]*domain.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, body, topic, tags, status, created_at, updated_at
		FROM posts `+where, args...)
	if err != nil {
		return nil, handlePostgresError("query posts", err)
	}
	defer rows.Close()

	type record struct {
		id               uuid.UUID
		userID           int64
		content          domain.PostContent
		status           string
		created, updated time.Time
	}
	var records []record
	for rows.Next() {
		var rec record
		if err := rows.Scan(&rec.id, &rec.userID, &rec.content.Title, &rec.content.Body, &rec.content.Topic,
			&rec.content.Tags, &rec.status, &rec.created, &rec.updated); err != nil {
			return nil, handlePostgresError("scan post", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("query posts", err)
	}
	rows.Close()

	posts := make([]*domain.Post, 0, len(records))
	for _, rec := range records {
		pubs, err := loadPublications(ctx, r.pool, rec.id)
		if err != nil {
			return nil, err
		}
		status, err := domain.ParseStatus(rec.status)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", rec.id, err)
		}
		posts = append(posts, domain.RestorePost(rec.id, rec.userID, rec.content, status,
			rec.created.UTC(), rec.updated.UTC(), pubs))
	}
	return posts, nil
}

func loadPublications(ctx context.Context, db DBTX, postID uuid.UUID) ([]domain.PublicationResult, error) {
	rows, err := db.Query(ctx, `
		SELECT platform, success, platform_post_id, url, error_message, published_at
		FROM publications WHERE post_id = $1 ORDER BY position`, postID)
	if err != nil {
		return nil, handlePostgresError("query publications", err)
	}
	defer rows.Close()

	var pubs []domain.PublicationResult
	for rows.Next() {
		var (
			pub      domain.PublicationResult
			platform string
		)
		if err := rows.Scan(&platform, &pub.Success, &pub.PlatformPostID, &pub.URL, &pub.ErrorMessage, &pub.PublishedAt); err != nil {
			return nil, handlePostgresError("scan publication", err)
		}
		pub.Platform = domain.Platform(platform)
		if pub.PublishedAt != nil {
			utc := pub.PublishedAt.UTC()
			pub.PublishedAt = &utc
		}
		pubs = append(pubs, pub)
	}
	return pubs, rows.Err()
}

func handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrPostNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: duplicate entry: %w", operation, err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: referenced post not found: %w", operation, err)
		case "42P01": // undefined_table
			return fmt.Errorf("%s: table does not exist, migration required: %w", operation, err)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}
