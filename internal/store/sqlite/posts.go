package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

const postColumns = `id, song_id, slug, title, html_content, visible, include_in_search_results, published_on`

func scanPost(sc scanner) (*domain.PublicPost, error) {
	var (
		p           domain.PublicPost
		publishedOn string
	)
	err := sc.Scan(&p.ID, &p.SongID, &p.Slug, &p.Title, &p.HTMLContent, &p.Visible, &p.IncludeInSearchResults, &publishedOn)
	if err != nil {
		return nil, err
	}
	if p.PublishedOn, err = parseTime(publishedOn); err != nil {
		return nil, fmt.Errorf("parse published_on: %w", err)
	}
	return &p, nil
}

// CreatePublicPost inserts the public post for a song.
// Returns store.ErrAlreadyExists if the song already has one.
func (s *Store) CreatePublicPost(ctx context.Context, p *domain.PublicPost) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO public_posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SongID, p.Slug, p.Title, p.HTMLContent, p.Visible, p.IncludeInSearchResults, formatTime(p.PublishedOn))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetPublicPostBySong returns the post of a song.
func (s *Store) GetPublicPostBySong(ctx context.Context, songID string) (*domain.PublicPost, error) {
	p, err := scanPost(s.q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM public_posts WHERE song_id = ?`, songID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// ListSearchablePosts returns visible posts that opted into search.
func (s *Store) ListSearchablePosts(ctx context.Context) ([]*domain.PublicPost, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+postColumns+` FROM public_posts
		WHERE visible = 1 AND include_in_search_results = 1
		ORDER BY published_on DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*domain.PublicPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

const commentColumns = `id, song_id, name, mail, website, comment_text, visible, published_on`

func scanComment(sc scanner) (*domain.Comment, error) {
	var (
		c           domain.Comment
		website     sql.NullString
		publishedOn string
	)
	err := sc.Scan(&c.ID, &c.SongID, &c.Name, &c.Mail, &website, &c.CommentText, &c.Visible, &publishedOn)
	if err != nil {
		return nil, err
	}
	c.Website = website.String
	if c.PublishedOn, err = parseTime(publishedOn); err != nil {
		return nil, fmt.Errorf("parse published_on: %w", err)
	}
	return &c, nil
}

// CreateComment inserts a reader comment.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO comments (`+commentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SongID, c.Name, c.Mail, nullString(c.Website), c.CommentText, c.Visible, formatTime(c.PublishedOn))
	return err
}

// ListComments returns a song's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, songID string, visibleOnly bool) ([]*domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE song_id = ?`
	if visibleOnly {
		query += ` AND visible = 1`
	}
	query += ` ORDER BY published_on, rowid`

	rows, err := s.q.QueryContext(ctx, query, songID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
