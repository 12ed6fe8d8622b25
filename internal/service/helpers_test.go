package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/mail"
	"github.com/singlesjukebox/jukebox-server/internal/store/sqlite"
	"github.com/singlesjukebox/jukebox-server/internal/wordpress"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(dbPath, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close() //nolint:errcheck // Test cleanup
	})
	return s
}

func createWriter(t *testing.T, s *sqlite.Store, id string) *domain.Writer {
	t.Helper()
	w := &domain.Writer{
		ID:         id,
		Username:   id,
		Email:      id + "@example.com",
		FirstName:  "First",
		LastName:   "Last " + id,
		IsActive:   true,
		DateJoined: testNow,
	}
	require.NoError(t, s.CreateWriter(context.Background(), w))
	return w
}

func createSong(t *testing.T, s *sqlite.Store, id string, status domain.SongStatus) *domain.Song {
	t.Helper()
	song := &domain.Song{
		ID:         id,
		Artist:     "Artist " + id,
		Title:      "Title " + id,
		Status:     status,
		UploadDate: testNow,
	}
	require.NoError(t, s.CreateSong(context.Background(), song))
	return song
}

// createReviews adds one saved review per id to song, ordered as given and
// each by its own writer.
func createReviews(t *testing.T, s *sqlite.Store, songID string, ids ...string) {
	t.Helper()
	for i, reviewID := range ids {
		writerID := "wri-" + reviewID + "-" + songID
		createWriter(t, s, writerID)
		require.NoError(t, s.CreateReview(context.Background(), &domain.Review{
			ID:         reviewID,
			WriterID:   writerID,
			SongID:     songID,
			Blurb:      "blurb " + reviewID,
			Score:      5,
			SortOrder:  i + 1,
			Status:     domain.ReviewSaved,
			CreateDate: testNow.Add(time.Duration(i) * time.Minute),
		}))
	}
}

// orderOf returns review ID -> sort order for every review of the song.
func orderOf(t *testing.T, s *sqlite.Store, songID string) map[string]int {
	t.Helper()
	reviews, err := s.ListSongReviews(context.Background(), songID)
	require.NoError(t, err)
	out := make(map[string]int, len(reviews))
	for _, r := range reviews {
		out[r.ID] = r.SortOrder
	}
	return out
}

// countedIDs returns the song's counted reviews in sort order.
func countedIDs(t *testing.T, s *sqlite.Store, songID string) []string {
	t.Helper()
	reviews, err := s.ListReviewsByStatus(context.Background(), songID, domain.CountedStatuses)
	require.NoError(t, err)
	ids := make([]string, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}
	return ids
}

type fakeSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeBlog struct {
	posts []wordpress.Post
	err   error
}

func (f *fakeBlog) NewPost(_ context.Context, p wordpress.Post) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.posts = append(f.posts, p)
	return fmt.Sprintf("%d", 100+len(f.posts)), nil
}

type fakeIndexer struct {
	indexed []*domain.PublicPost
}

func (f *fakeIndexer) IndexPost(_ context.Context, p *domain.PublicPost) error {
	f.indexed = append(f.indexed, p)
	return nil
}
