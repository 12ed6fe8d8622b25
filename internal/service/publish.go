package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/id"
	"github.com/singlesjukebox/jukebox-server/internal/metrics"
	"github.com/singlesjukebox/jukebox-server/internal/render"
	"github.com/singlesjukebox/jukebox-server/internal/store"
	"github.com/singlesjukebox/jukebox-server/internal/wordpress"
)

// Publish triggers, used as metric labels.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// PostIndexer keeps public posts searchable.
type PostIndexer interface {
	IndexPost(ctx context.Context, post *domain.PublicPost) error
}

// BlogPublisher pushes a post to an external blog and returns its remote ID.
type BlogPublisher interface {
	NewPost(ctx context.Context, post wordpress.Post) (string, error)
}

// PublishService turns a closed or open song into a public post.
type PublishService struct {
	store   store.Store
	indexer PostIndexer
	blog    BlogPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewPublishService creates a publish service. indexer and blog may be nil.
func NewPublishService(store store.Store, indexer PostIndexer, blog BlogPublisher, metrics *metrics.Metrics, logger *slog.Logger) *PublishService {
	return &PublishService{
		store:   store,
		indexer: indexer,
		blog:    blog,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// PublishResult describes what a publish request did.
type PublishResult struct {
	Song      *domain.Song       `json:"song"`
	Post      *domain.PublicPost `json:"post,omitempty"`
	Scheduled bool               `json:"scheduled"`
	// BlogError is set when the post went live locally but the blog push failed.
	BlogError string `json:"blog_error,omitempty"`
}

// Preview renders the song's post from its counted reviews in sort order.
func (s *PublishService) Preview(ctx context.Context, songID string, showAdminLinks bool) (string, error) {
	song, err := s.store.GetSong(ctx, songID)
	if err != nil {
		return "", storeErr(err, "get song", "song", songID)
	}
	return renderPost(ctx, s.store, song, showAdminLinks)
}

// Publish publishes a song now, or schedules it when at lies in the future.
// A scheduled song is closed and keeps at as its publish date until the
// scheduler picks it up.
func (s *PublishService) Publish(ctx context.Context, songID string, at *time.Time) (*PublishResult, error) {
	now := s.now().UTC()
	if at != nil && at.After(now) {
		return s.schedule(ctx, songID, at.UTC())
	}

	res, err := s.publish(ctx, songID, now)
	s.metrics.ObservePublish(TriggerManual, err)
	return res, err
}

// PublishDue publishes every song whose publish date has passed and reports
// how many went out. One failing song does not stop the others.
func (s *PublishService) PublishDue(ctx context.Context) (int, error) {
	due, err := s.store.ListDueSongs(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("list due songs: %w", err)
	}

	var (
		published int
		errs      []error
	)
	for _, song := range due {
		if err := ctx.Err(); err != nil {
			return published, err
		}
		_, err := s.publish(ctx, song.ID, song.PublishDate.UTC())
		s.metrics.ObservePublish(TriggerScheduled, err)
		if err != nil {
			s.logger.Error("scheduled publish failed", "song_id", song.ID, "error", err)
			errs = append(errs, fmt.Errorf("publish %s: %w", song.ID, err))
			continue
		}
		published++
	}

	if published > 0 {
		s.logger.Info("due songs published", "count", published)
	}
	return published, errors.Join(errs...)
}

func (s *PublishService) schedule(ctx context.Context, songID string, at time.Time) (*PublishResult, error) {
	var song *domain.Song
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		song, err = tx.GetSong(ctx, songID)
		if err != nil {
			return storeErr(err, "get song", "song", songID)
		}
		if err := checkPublishable(song); err != nil {
			return err
		}
		song.Status = domain.SongClosed
		song.PublishDate = &at
		return storeErr(tx.UpdateSong(ctx, song), "update song", "song", songID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("song scheduled for publishing", "song_id", songID, "publish_date", at)
	return &PublishResult{Song: song, Scheduled: true}, nil
}

// publish marks the song and its counted reviews published and creates the
// public post, all in one transaction. Search indexing and the blog push
// happen after commit.
func (s *PublishService) publish(ctx context.Context, songID string, at time.Time) (*PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	postID, err := id.Post.New()
	if err != nil {
		return nil, fmt.Errorf("generate post ID: %w", err)
	}

	res := &PublishResult{}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		song, err := tx.GetSong(ctx, songID)
		if err != nil {
			return storeErr(err, "get song", "song", songID)
		}
		if err := checkPublishable(song); err != nil {
			return err
		}

		html, err := renderPost(ctx, tx, song, false)
		if err != nil {
			return err
		}

		song.Status = domain.SongPublished
		song.PublishDate = &at
		if err := tx.UpdateSong(ctx, song); err != nil {
			return storeErr(err, "update song", "song", songID)
		}
		if _, err := tx.SetReviewStatuses(ctx, songID, domain.CountedStatuses, domain.ReviewPublished); err != nil {
			return fmt.Errorf("publish reviews: %w", err)
		}

		post := &domain.PublicPost{
			ID:                     postID,
			SongID:                 songID,
			Slug:                   render.Slugify(song.DisplayName()),
			Title:                  song.DisplayName(),
			HTMLContent:            html,
			Visible:                true,
			IncludeInSearchResults: true,
			PublishedOn:            at,
		}
		if err := tx.CreatePublicPost(ctx, post); err != nil {
			return storeErr(err, "create post", "post for song", songID)
		}

		res.Song = song
		res.Post = post
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("song published", "song_id", songID, "post_id", res.Post.ID, "slug", res.Post.Slug)

	if s.indexer != nil {
		if err := s.indexer.IndexPost(ctx, res.Post); err != nil {
			s.logger.Warn("failed to index post", "song_id", songID, "error", err)
		}
	}

	if s.blog != nil {
		if err := s.pushToBlog(ctx, res); err != nil {
			s.logger.Warn("blog push failed", "song_id", songID, "error", err)
			res.BlogError = err.Error()
		}
	}
	return res, nil
}

func (s *PublishService) pushToBlog(ctx context.Context, res *PublishResult) error {
	remoteID, err := s.blog.NewPost(ctx, wordpress.Post{
		Title:   res.Song.DisplayName(),
		Content: res.Post.HTMLContent,
		Excerpt: res.Song.Tagline,
	})
	if err != nil {
		return err
	}

	res.Song.WordPressPostID = remoteID
	if err := s.store.UpdateSong(ctx, res.Song); err != nil {
		return fmt.Errorf("save wordpress post id: %w", err)
	}
	return nil
}

func checkPublishable(song *domain.Song) error {
	switch song.Status {
	case domain.SongPublished:
		return domainerrors.Conflict(fmt.Sprintf("song %s is already published", song.ID))
	case domain.SongRemoved:
		return domainerrors.Conflict(fmt.Sprintf("song %s has been removed", song.ID))
	}
	return nil
}

// renderPost renders the post for song from its counted reviews.
func renderPost(ctx context.Context, st store.Store, song *domain.Song, showAdminLinks bool) (string, error) {
	counted, err := st.ListReviewsByStatus(ctx, song.ID, domain.CountedStatuses)
	if err != nil {
		return "", fmt.Errorf("list counted reviews: %w", err)
	}

	writerIDs := make([]string, len(counted))
	for i, r := range counted {
		writerIDs[i] = r.WriterID
	}
	writers, err := st.GetWritersByIDs(ctx, writerIDs)
	if err != nil {
		return "", fmt.Errorf("get writers: %w", err)
	}

	views := make([]render.ReviewView, 0, len(counted))
	for _, r := range counted {
		w, ok := writers[r.WriterID]
		if !ok {
			w = &domain.Writer{ID: r.WriterID}
		}
		views = append(views, render.ReviewView{Review: r, Writer: w})
	}

	html, err := render.PostHTML(render.PostData{
		Song:           song,
		Reviews:        views,
		Summary:        SummarizeSong(song, counted).Summary,
		ShowAdminLinks: showAdminLinks,
	})
	if err != nil {
		return "", fmt.Errorf("render post: %w", err)
	}
	return html, nil
}
