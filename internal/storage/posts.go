package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"autoposter-bot/internal/domain"
)

const postColumns = `id, user_id, title, body, topic, tags, status, created_at, updated_at`

// Save upserts the post and replaces its publication list in one
// transaction.
func (s *Storage) Save(ctx context.Context, post *domain.Post) error {
	content := post.Content()
	tags, err := json.Marshal(content.Tags)
	if err != nil {
		return fmt.Errorf("could not encode tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO posts (` + postColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			topic = excluded.topic,
			tags = excluded.tags,
			status = excluded.status,
			updated_at = excluded.updated_at`
	_, err = tx.ExecContext(ctx, query,
		post.ID().String(),
		post.UserID(),
		content.Title,
		content.Body,
		content.Topic,
		string(tags),
		string(post.Status()),
		formatTime(post.CreatedAt()),
		formatTime(post.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("could not save post %s: %w", post.ID(), err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM publications WHERE post_id = ?`, post.ID().String()); err != nil {
		return fmt.Errorf("could not clear publications: %w", err)
	}
	for i, pub := range post.Publications() {
		var publishedAt sql.NullString
		if pub.PublishedAt != nil {
			publishedAt = sql.NullString{String: formatTime(*pub.PublishedAt), Valid: true}
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO publications
			(post_id, position, platform, success, platform_post_id, url, error_message, published_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			post.ID().String(), i, string(pub.Platform), pub.Success,
			pub.PlatformPostID, pub.URL, pub.ErrorMessage, publishedAt,
		)
		if err != nil {
			return fmt.Errorf("could not save publication: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id.String())
	rec, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	pubs, err := s.loadPublications(ctx, rec.id)
	if err != nil {
		return nil, err
	}
	return rec.toDomain(pubs)
}

func (s *Storage) GetByUserID(ctx context.Context, userID int64) ([]*domain.Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
}

func (s *Storage) GetByStatus(ctx context.Context, status domain.Status) ([]*domain.Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE status = ? ORDER BY created_at DESC, id`, string(status))
}

func (s *Storage) GetConfirmedPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.GetByStatus(ctx, domain.StatusConfirmed)
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM publications WHERE post_id = ?`, id.String()); err != nil {
		return fmt.Errorf("could not delete publications: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("could not delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrPostNotFound
	}
	return tx.Commit()
}

func (s *Storage) queryPosts(ctx context.Context, query string, args ...any) ([]*domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var records []postRecord
	for rows.Next() {
		rec, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	posts := make([]*domain.Post, 0, len(records))
	for _, rec := range records {
		pubs, err := s.loadPublications(ctx, rec.id)
		if err != nil {
			return nil, err
		}
		post, err := rec.toDomain(pubs)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Storage) loadPublications(ctx context.Context, postID string) ([]domain.PublicationResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT platform, success, platform_post_id, url, error_message, published_at
		FROM publications WHERE post_id = ? ORDER BY position`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []domain.PublicationResult
	for rows.Next() {
		var (
			pub         domain.PublicationResult
			platform    string
			publishedAt sql.NullString
		)
		if err := rows.Scan(&platform, &pub.Success, &pub.PlatformPostID, &pub.URL, &pub.ErrorMessage, &publishedAt); err != nil {
			return nil, err
		}
		pub.Platform = domain.Platform(platform)
		if publishedAt.Valid {
			t, err := parseTime(publishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("invalid published_at %q: %w", publishedAt.String, err)
			}
			pub.PublishedAt = &t
		}
		pubs = append(pubs, pub)
	}
	return pubs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

type postRecord struct {
	id        string
	userID    int64
	title     string
	body      string
	topic     string
	tags      string
	status    string
	createdAt string
	updatedAt string
}

func scanPost(row rowScanner) (postRecord, error) {
	var rec postRecord
	err := row.Scan(&rec.id, &rec.userID, &rec.title, &rec.body, &rec.topic, &rec.tags, &rec.status, &rec.createdAt, &rec.updatedAt)
	return rec, err
}

func (r postRecord) toDomain(pubs []domain.PublicationResult) (*domain.Post, error) {
	id, err := uuid.Parse(r.id)
	if err != nil {
		return nil, fmt.Errorf("invalid post id %q: %w", r.id, err)
	}
	var tags []string
	if err := json.Unmarshal([]byte(r.tags), &tags); err != nil {
		return nil, fmt.Errorf("invalid tags for post %s: %w", r.id, err)
	}
	created, err := parseTime(r.createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for post %s: %w", r.id, err)
	}
	updated, err := parseTime(r.updatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at for post %s: %w", r.id, err)
	}
	status, err := domain.ParseStatus(r.status)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", r.id, err)
	}
	content := domain.PostContent{Title: r.title, Body: r.body, Topic: r.topic, Tags: tags}
	return domain.RestorePost(id, r.userID, content, status, created, updated, pubs), nil
}
