package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/id"
	"github.com/singlesjukebox/jukebox-server/internal/metrics"
	"github.com/singlesjukebox/jukebox-server/internal/ratelimit"
	"github.com/singlesjukebox/jukebox-server/internal/search"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

// PostSearcher runs full-text queries over public posts.
type PostSearcher interface {
	Search(ctx context.Context, q search.Query) (*search.Results, error)
}

// PublicService serves the reader-facing site: posts, comments and search.
type PublicService struct {
	store    store.Store
	searcher PostSearcher
	limiter  *ratelimit.KeyedRateLimiter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	pageSize int
	now      func() time.Time
}

// NewPublicService creates a public service. limiter throttles comment
// submissions per client; nil disables throttling.
func NewPublicService(
	store store.Store,
	searcher PostSearcher,
	limiter *ratelimit.KeyedRateLimiter,
	pageSize int,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *PublicService {
	return &PublicService{
		store:    store,
		searcher: searcher,
		limiter:  limiter,
		metrics:  metrics,
		logger:   logger,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// PostListItem is one entry of the public home page.
type PostListItem struct {
	Song *domain.Song       `json:"song"`
	Post *domain.PublicPost `json:"post,omitempty"` // nil when the post is hidden
}

// ListPosts returns one page of published songs, newest first.
func (s *PublicService) ListPosts(ctx context.Context, page int) (store.PageResult[PostListItem], error) {
	p := store.Page{Number: page, Size: s.pageSize}
	songs, err := s.store.ListPublishedSongs(ctx, p)
	if err != nil {
		return store.PageResult[PostListItem]{}, fmt.Errorf("list published songs: %w", err)
	}

	items := make([]PostListItem, 0, len(songs.Items))
	for _, song := range songs.Items {
		item := PostListItem{Song: song}
		post, err := s.store.GetPublicPostBySong(ctx, song.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return store.PageResult[PostListItem]{}, fmt.Errorf("get post: %w", err)
		case post.Visible:
			item.Post = post
		}
		items = append(items, item)
	}
	return store.NewPageResult(items, p, songs.Total), nil
}

// PostView is a single public post.
type PostView struct {
	Song *domain.Song       `json:"song"`
	Post *domain.PublicPost `json:"post"`
}

// GetPost returns the post of a published song. Unpublished songs, missing
// posts and hidden posts are all reported as not found.
func (s *PublicService) GetPost(ctx context.Context, songID string) (*PostView, error) {
	notFound := domainerrors.NotFoundf("post %s not found", songID)

	song, err := s.store.GetSong(ctx, songID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("get song: %w", err)
	}
	if song.Status != domain.SongPublished {
		return nil, notFound
	}

	post, err := s.store.GetPublicPostBySong(ctx, songID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if !post.Visible {
		return nil, notFound
	}
	return &PostView{Song: song, Post: post}, nil
}

// ListComments returns the visible comments of a public post, oldest first.
func (s *PublicService) ListComments(ctx context.Context, songID string) ([]*domain.Comment, error) {
	if _, err := s.GetPost(ctx, songID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, songID, true)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, nil
}

// AddCommentRequest is a reader comment.
type AddCommentRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Mail        string `json:"mail,omitempty" validate:"omitempty,email"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
	CommentText string `json:"comment_text" validate:"required,max=5000"`
}

// AddComment posts a comment on a public post. Each client address may only
// comment so often.
func (s *PublicService) AddComment(ctx context.Context, songID, clientIP string, req AddCommentRequest) (*domain.Comment, error) {
	if s.limiter != nil {
		if ok, wait := s.limiter.Take(clientIP); !ok {
			return nil, domainerrors.RateLimited("too many comments, try again later").
				WithDetails(map[string]int{"retry_after": ratelimit.RetryAfterSeconds(wait)})
		}
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.GetPost(ctx, songID); err != nil {
		return nil, err
	}

	commentID, err := id.Comment.New()
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}

	c := &domain.Comment{
		ID:          commentID,
		SongID:      songID,
		Name:        strings.TrimSpace(req.Name),
		Mail:        req.Mail,
		Website:     req.Website,
		CommentText: strings.TrimSpace(req.CommentText),
		Visible:     true,
		PublishedOn: s.now().UTC(),
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.metrics.ObserveComment()
	s.logger.Info("comment added", "comment_id", c.ID, "song_id", songID, "client_ip", clientIP)
	return c, nil
}

// Search runs a full-text query over searchable posts.
func (s *PublicService) Search(ctx context.Context, q string, limit, offset int) (*search.Results, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"q": "is required"})
	}
	if s.searcher == nil {
		return nil, domainerrors.Internal("search is not available")
	}

	res, err := s.searcher.Search(ctx, search.Query{
		Text:   q,
		Limit:  min(limit, 100),
		Offset: offset,
		Order:  search.ByRelevance,
	})
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return res, nil
}
