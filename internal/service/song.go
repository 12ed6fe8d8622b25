package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/id"
	"github.com/singlesjukebox/jukebox-server/internal/media"
	"github.com/singlesjukebox/jukebox-server/internal/scoring"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

// SongSummary is the score summary of a song plus its schedule bucket.
type SongSummary struct {
	scoring.Summary
	Class scoring.Class `json:"css_class"`
}

// SummarizeSong computes the summary of song from its counted reviews.
func SummarizeSong(song *domain.Song, counted []*domain.Review) SongSummary {
	summary := scoring.Summarize(domain.Scores(counted))
	return SongSummary{
		Summary: summary,
		Class:   scoring.Classify(song.Status, summary.BlurbCount),
	}
}

// SongDetail is a song with its current score summary.
type SongDetail struct {
	*domain.Song
	Summary SongSummary `json:"summary"`
}

// SongService manages songs: creation, uploads, closing and summaries.
type SongService struct {
	store   store.Store
	storage *media.Storage
	logger  *slog.Logger
	now     func() time.Time
}

// NewSongService creates a new song service.
func NewSongService(store store.Store, storage *media.Storage, logger *slog.Logger) *SongService {
	return &SongService{
		store:   store,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateSongRequest holds the editable fields of a new song. Artist and
// title may be left blank when an MP3 will be uploaded to fill them.
type CreateSongRequest struct {
	Artist             string     `json:"artist" validate:"max=200"`
	Title              string     `json:"title" validate:"max=200"`
	MP3Link            string     `json:"mp3_link,omitempty" validate:"omitempty,url"`
	YoutubeLink        string     `json:"youtube_link,omitempty" validate:"omitempty,url"`
	WebLink            string     `json:"web_link,omitempty" validate:"omitempty,url"`
	ImageURL           string     `json:"image_url,omitempty" validate:"omitempty,url"`
	Tagline            string     `json:"tagline,omitempty" validate:"max=500"`
	PublishDate        *time.Time `json:"publish_date,omitempty"`
	DisplayUserRatings bool       `json:"display_user_ratings,omitempty"`
}

// Create adds an open song uploaded now.
func (s *SongService) Create(ctx context.Context, req CreateSongRequest) (*domain.Song, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	songID, err := id.Song.New()
	if err != nil {
		return nil, fmt.Errorf("generate song ID: %w", err)
	}

	song := &domain.Song{
		ID:                 songID,
		Artist:             strings.TrimSpace(req.Artist),
		Title:              strings.TrimSpace(req.Title),
		MP3Link:            req.MP3Link,
		YoutubeLink:        req.YoutubeLink,
		WebLink:            req.WebLink,
		ImageURL:           req.ImageURL,
		Tagline:            req.Tagline,
		PublishDate:        req.PublishDate,
		DisplayUserRatings: req.DisplayUserRatings,
		Status:             domain.SongOpen,
		UploadDate:         s.now().UTC(),
	}
	if err := s.store.CreateSong(ctx, song); err != nil {
		return nil, storeErr(err, "create song", "song", songID)
	}

	s.logger.Info("song created", "song_id", song.ID, "name", song.DisplayName())
	return song, nil
}

// Get returns a song with its score summary.
func (s *SongService) Get(ctx context.Context, songID string) (*SongDetail, error) {
	song, err := s.store.GetSong(ctx, songID)
	if err != nil {
		return nil, storeErr(err, "get song", "song", songID)
	}
	return s.detail(ctx, song)
}

// List returns songs in any of statuses (all songs when empty), newest upload first.
func (s *SongService) List(ctx context.Context, statuses []domain.SongStatus) ([]*SongDetail, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, domainerrors.Validationf("unknown song status %q", st)
		}
	}

	songs, err := s.store.ListSongs(ctx, store.SongFilter{Statuses: statuses})
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}

	out := make([]*SongDetail, 0, len(songs))
	for _, song := range songs {
		d, err := s.detail(ctx, song)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *SongService) detail(ctx context.Context, song *domain.Song) (*SongDetail, error) {
	counted, err := s.store.ListReviewsByStatus(ctx, song.ID, domain.CountedStatuses)
	if err != nil {
		return nil, fmt.Errorf("list counted reviews: %w", err)
	}
	return &SongDetail{Song: song, Summary: SummarizeSong(song, counted)}, nil
}

// UploadMP3 stores the song's audio file. Tags in the file fill in the
// artist and title when those are still blank.
func (s *SongService) UploadMP3(ctx context.Context, songID string, r io.Reader) (*domain.Song, error) {
	if s.storage == nil {
		return nil, domainerrors.Internal("media storage is not configured")
	}

	song, err := s.store.GetSong(ctx, songID)
	if err != nil {
		return nil, storeErr(err, "get song", "song", songID)
	}

	rel, err := s.storage.Save(songID, r)
	if errors.Is(err, media.ErrTooLarge) {
		return nil, domainerrors.Validationf("mp3 exceeds %d MB", media.MaxUploadBytes>>20)
	}
	if err != nil {
		return nil, fmt.Errorf("save mp3: %w", err)
	}
	song.MP3Path = rel

	tags, err := media.ReadTags(ctx, s.storage.Path(songID))
	if err != nil {
		s.logger.Warn("could not read mp3 tags", "song_id", songID, "error", err)
	} else {
		if song.Artist == "" {
			song.Artist = tags.Artist
		}
		if song.Title == "" {
			song.Title = tags.Title
		}
	}

	if err := s.store.UpdateSong(ctx, song); err != nil {
		return nil, storeErr(err, "update song", "song", songID)
	}

	s.logger.Info("mp3 uploaded", "song_id", songID, "path", rel, "name", song.DisplayName())
	return song, nil
}

// Close stops a song from taking more blurbs. Closing a closed song is a no-op.
func (s *SongService) Close(ctx context.Context, songID string) (*domain.Song, error) {
	var song *domain.Song
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		song, err = tx.GetSong(ctx, songID)
		if err != nil {
			return storeErr(err, "get song", "song", songID)
		}

		switch song.Status {
		case domain.SongClosed:
			return nil
		case domain.SongOpen:
		default:
			return domainerrors.Conflict(fmt.Sprintf("song %s is %s and cannot be closed", songID, song.Status))
		}

		song.Status = domain.SongClosed
		return storeErr(tx.UpdateSong(ctx, song), "update song", "song", songID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("song closed", "song_id", songID)
	return song, nil
}
