// Package store defines the persistence interfaces for the jukebox server.
package store

import (
	"context"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
)

// ReviewOrder is a new sort order for one review.
type ReviewOrder struct {
	ReviewID  string
	SortOrder int
}

// SongFilter narrows ListSongs. Zero values match everything.
type SongFilter struct {
	Statuses []domain.SongStatus
}

// WriterReviewFilter narrows ListWriterReviews. Removed reviews are never returned.
type WriterReviewFilter struct {
	SongStatuses []domain.SongStatus // only reviews whose song is in one of these statuses
	Year         int                 // only reviews created in this calendar year (UTC); 0 for all
}

// ReviewRepository is the storage surface the reorder engine runs against.
type ReviewRepository interface {
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	// ListReviewsByStatus returns the song's reviews in the given statuses,
	// ordered by sort_order, then creation.
	ListReviewsByStatus(ctx context.Context, songID string, statuses domain.StatusSet) ([]*domain.Review, error)
	// SaveReviewOrders writes every order in one batch; any failure leaves all orders unchanged.
	SaveReviewOrders(ctx context.Context, orders []ReviewOrder) error
}

// Store defines every relational persistence operation.
type Store interface {
	ReviewRepository

	// Lifecycle
	Close() error
	// WithTx runs fn against a Store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// Writers
	CreateWriter(ctx context.Context, w *domain.Writer) error
	GetWriter(ctx context.Context, id string) (*domain.Writer, error)
	GetWriterByUsername(ctx context.Context, username string) (*domain.Writer, error)
	GetWritersByIDs(ctx context.Context, ids []string) (map[string]*domain.Writer, error)
	ListWriters(ctx context.Context) ([]*domain.Writer, error)
	ListAdmins(ctx context.Context) ([]*domain.Writer, error)
	UpdateWriter(ctx context.Context, w *domain.Writer) error

	// Songs
	CreateSong(ctx context.Context, song *domain.Song) error
	GetSong(ctx context.Context, id string) (*domain.Song, error)
	GetSongsByIDs(ctx context.Context, ids []string) (map[string]*domain.Song, error)
	UpdateSong(ctx context.Context, song *domain.Song) error
	ListSongs(ctx context.Context, filter SongFilter) ([]*domain.Song, error)
	// ListDueSongs returns unpublished songs whose publish date is at or before now.
	ListDueSongs(ctx context.Context, now time.Time) ([]*domain.Song, error)
	// ListPublishedSongs pages published songs, newest publish date first.
	ListPublishedSongs(ctx context.Context, page Page) (PageResult[*domain.Song], error)

	// Reviews
	CreateReview(ctx context.Context, r *domain.Review) error
	UpdateReview(ctx context.Context, r *domain.Review) error
	GetWriterReviewForSong(ctx context.Context, writerID, songID string) (*domain.Review, error)
	// ListSongReviews returns every review of a song, ordered by sort_order, then creation.
	ListSongReviews(ctx context.Context, songID string) ([]*domain.Review, error)
	// ListWriterReviews returns a writer's reviews, newest first.
	ListWriterReviews(ctx context.Context, writerID string, filter WriterReviewFilter) ([]*domain.Review, error)
	// SetReviewStatuses moves every review of the song in from to status to and reports how many changed.
	SetReviewStatuses(ctx context.Context, songID string, from domain.StatusSet, to domain.ReviewStatus) (int, error)

	// Schedule
	CreateWeek(ctx context.Context, w *domain.ScheduledWeek) error
	GetWeek(ctx context.Context, id string) (*domain.ScheduledWeek, error)
	// GetCurrentWeek returns the week flagged current, or the latest week when none is.
	GetCurrentWeek(ctx context.Context) (*domain.ScheduledWeek, error)
	ListWeeks(ctx context.Context) ([]*domain.ScheduledWeek, error)
	// UpdateWeek saves week_info and the full day schedule.
	UpdateWeek(ctx context.Context, w *domain.ScheduledWeek) error
	// SetCurrentWeek flags one week current and clears the flag everywhere else.
	SetCurrentWeek(ctx context.Context, id string) error

	// Public site
	CreatePublicPost(ctx context.Context, p *domain.PublicPost) error
	GetPublicPostBySong(ctx context.Context, songID string) (*domain.PublicPost, error)
	ListSearchablePosts(ctx context.Context) ([]*domain.PublicPost, error)
	CreateComment(ctx context.Context, c *domain.Comment) error
	ListComments(ctx context.Context, songID string, visibleOnly bool) ([]*domain.Comment, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	ListWriterSessions(ctx context.Context, writerID string) ([]*domain.Session, error)
	// DeleteWriterSessions signs a writer out everywhere.
	DeleteWriterSessions(ctx context.Context, writerID string) error
	Close() error
}
