package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/auth"
	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/id"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

// Blurb buckets for a writer's history.
const (
	BucketSaved     = "saved"     // song still open or closed
	BucketPublished = "published" // song published
)

// noBlurbsDate is reported as the last blurb date of a writer with no blurbs.
var noBlurbsDate = time.Unix(0, 0).UTC()

// WriterService manages writer accounts and their blurb history.
type WriterService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewWriterService creates a new writer service.
func NewWriterService(store store.Store, logger *slog.Logger) *WriterService {
	return &WriterService{store: store, logger: logger, now: time.Now}
}

// CreateWriterRequest holds a new writer account.
type CreateWriterRequest struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	BioLink   string `json:"bio_link,omitempty" validate:"omitempty,url"`
	Password  string `json:"password" validate:"required,min=8,max=1024"`
	IsStaff   bool   `json:"is_staff"`
	IsAdmin   bool   `json:"is_admin"`
}

// Create adds an active writer with an argon2 password hash.
func (s *WriterService) Create(ctx context.Context, req CreateWriterRequest) (*domain.Writer, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	writerID, err := id.Writer.New()
	if err != nil {
		return nil, fmt.Errorf("generate writer ID: %w", err)
	}

	w := &domain.Writer{
		ID:           writerID,
		Username:     strings.TrimSpace(req.Username),
		Email:        req.Email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		BioLink:      req.BioLink,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      req.IsStaff,
		IsAdmin:      req.IsAdmin,
		DateJoined:   s.now().UTC(),
	}
	if err := s.store.CreateWriter(ctx, w); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists(fmt.Sprintf("username %q is taken", w.Username))
		}
		return nil, fmt.Errorf("create writer: %w", err)
	}

	s.logger.Info("writer created", "writer_id", w.ID, "username", w.Username, "staff", w.IsStaff, "admin", w.IsAdmin)
	return w, nil
}

// Get returns a writer by ID.
func (s *WriterService) Get(ctx context.Context, writerID string) (*domain.Writer, error) {
	w, err := s.store.GetWriter(ctx, writerID)
	if err != nil {
		return nil, storeErr(err, "get writer", "writer", writerID)
	}
	return w, nil
}

// BlurbQuery filters a writer's blurb history. Year is explicit: 0 means
// every year, there is no implied current year.
type BlurbQuery struct {
	Bucket string // BucketSaved, BucketPublished or empty for both
	Year   int
}

// Blurb is one of a writer's reviews with its song.
type Blurb struct {
	*domain.Review
	Song *domain.Song `json:"song"`
}

// WriterBlurbs is a writer's filtered blurb history.
type WriterBlurbs struct {
	Writer        *domain.Writer `json:"writer"`
	Blurbs        []Blurb        `json:"blurbs"`
	LastBlurbDate time.Time      `json:"last_blurb_date"`
}

// Blurbs returns the writer's non-removed reviews, newest first.
// LastBlurbDate covers every bucket and year and is 1970-01-01 when the
// writer has never written a blurb.
func (s *WriterService) Blurbs(ctx context.Context, writerID string, q BlurbQuery) (*WriterBlurbs, error) {
	w, err := s.Get(ctx, writerID)
	if err != nil {
		return nil, err
	}

	filter := store.WriterReviewFilter{Year: q.Year}
	switch q.Bucket {
	case "":
	case BucketSaved:
		filter.SongStatuses = []domain.SongStatus{domain.SongOpen, domain.SongClosed}
	case BucketPublished:
		filter.SongStatuses = []domain.SongStatus{domain.SongPublished}
	default:
		return nil, domainerrors.Validationf("unknown blurb status %q", q.Bucket)
	}
	if q.Year < 0 {
		return nil, domainerrors.Validationf("invalid year %d", q.Year)
	}

	reviews, err := s.store.ListWriterReviews(ctx, writerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list writer reviews: %w", err)
	}

	all := reviews
	if q.Bucket != "" || q.Year != 0 {
		all, err = s.store.ListWriterReviews(ctx, writerID, store.WriterReviewFilter{})
		if err != nil {
			return nil, fmt.Errorf("list writer reviews: %w", err)
		}
	}

	songIDs := make([]string, len(reviews))
	for i, r := range reviews {
		songIDs[i] = r.SongID
	}
	songs, err := s.store.GetSongsByIDs(ctx, songIDs)
	if err != nil {
		return nil, fmt.Errorf("get songs: %w", err)
	}

	out := &WriterBlurbs{
		Writer:        w,
		Blurbs:        make([]Blurb, 0, len(reviews)),
		LastBlurbDate: noBlurbsDate,
	}
	if len(all) > 0 {
		out.LastBlurbDate = all[0].CreateDate
	}
	for _, r := range reviews {
		out.Blurbs = append(out.Blurbs, Blurb{Review: r, Song: songs[r.SongID]})
	}
	return out, nil
}
