package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

// songColumns is the ordered list of columns selected in song queries.
// Must match the scan order in scanSong.
const songColumns = `id, artist, title, mp3_path, mp3_link, youtube_link, web_link, image_url,
	tagline, wordpress_post_id, display_user_ratings, status, publish_date, upload_date`

func scanSong(sc scanner) (*domain.Song, error) {
	var (
		song        domain.Song
		mp3Path     sql.NullString
		mp3Link     sql.NullString
		youtubeLink sql.NullString
		webLink     sql.NullString
		imageURL    sql.NullString
		tagline     sql.NullString
		wpPostID    sql.NullString
		status      string
		publishDate sql.NullString
		uploadDate  string
	)

	err := sc.Scan(
		&song.ID,
		&song.Artist,
		&song.Title,
		&mp3Path,
		&mp3Link,
		&youtubeLink,
		&webLink,
		&imageURL,
		&tagline,
		&wpPostID,
		&song.DisplayUserRatings,
		&status,
		&publishDate,
		&uploadDate,
	)
	if err != nil {
		return nil, err
	}

	song.MP3Path = mp3Path.String
	song.MP3Link = mp3Link.String
	song.YoutubeLink = youtubeLink.String
	song.WebLink = webLink.String
	song.ImageURL = imageURL.String
	song.Tagline = tagline.String
	song.WordPressPostID = wpPostID.String
	song.Status = domain.SongStatus(status)

	if song.PublishDate, err = parseNullableTime(publishDate); err != nil {
		return nil, fmt.Errorf("parse publish_date: %w", err)
	}
	if song.UploadDate, err = parseTime(uploadDate); err != nil {
		return nil, fmt.Errorf("parse upload_date: %w", err)
	}
	return &song, nil
}

// CreateSong inserts a new song.
func (s *Store) CreateSong(ctx context.Context, song *domain.Song) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO songs (`+songColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		song.ID,
		song.Artist,
		song.Title,
		nullString(song.MP3Path),
		nullString(song.MP3Link),
		nullString(song.YoutubeLink),
		nullString(song.WebLink),
		nullString(song.ImageURL),
		nullString(song.Tagline),
		nullString(song.WordPressPostID),
		song.DisplayUserRatings,
		string(song.Status),
		nullTimeString(song.PublishDate),
		formatTime(song.UploadDate),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetSong returns a song by ID.
func (s *Store) GetSong(ctx context.Context, id string) (*domain.Song, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	song, err := scanSong(row)
	if err != nil {
		return nil, notFound(err)
	}
	return song, nil
}

// GetSongsByIDs returns the songs found among ids, keyed by ID.
func (s *Store) GetSongsByIDs(ctx context.Context, ids []string) (map[string]*domain.Song, error) {
	out := make(map[string]*domain.Song, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	songs, err := s.querySongs(ctx,
		`SELECT `+songColumns+` FROM songs WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, song := range songs {
		out[song.ID] = song
	}
	return out, nil
}

// UpdateSong saves every mutable song field.
func (s *Store) UpdateSong(ctx context.Context, song *domain.Song) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE songs SET
			artist = ?, title = ?, mp3_path = ?, mp3_link = ?, youtube_link = ?, web_link = ?,
			image_url = ?, tagline = ?, wordpress_post_id = ?, display_user_ratings = ?,
			status = ?, publish_date = ?
		WHERE id = ?`,
		song.Artist,
		song.Title,
		nullString(song.MP3Path),
		nullString(song.MP3Link),
		nullString(song.YoutubeLink),
		nullString(song.WebLink),
		nullString(song.ImageURL),
		nullString(song.Tagline),
		nullString(song.WordPressPostID),
		song.DisplayUserRatings,
		string(song.Status),
		nullTimeString(song.PublishDate),
		song.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListSongs returns songs newest upload first.
func (s *Store) ListSongs(ctx context.Context, filter store.SongFilter) ([]*domain.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs`
	var args []any
	if len(filter.Statuses) > 0 {
		query += ` WHERE status IN (` + placeholders(len(filter.Statuses)) + `)`
		args = stringArgs(filter.Statuses)
	}
	query += ` ORDER BY upload_date DESC, rowid DESC`
	return s.querySongs(ctx, query, args...)
}

// ListDueSongs returns songs with a publish date at or before now that are not yet published.
func (s *Store) ListDueSongs(ctx context.Context, now time.Time) ([]*domain.Song, error) {
	return s.querySongs(ctx, `
		SELECT `+songColumns+` FROM songs
		WHERE status IN ('open', 'closed') AND publish_date IS NOT NULL AND publish_date <= ?
		ORDER BY publish_date`,
		formatTime(now))
}

// ListPublishedSongs pages published songs, most recently published first.
func (s *Store) ListPublishedSongs(ctx context.Context, page store.Page) (store.PageResult[*domain.Song], error) {
	page = page.Normalize()

	var total int
	if err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM songs WHERE status = 'published'`).Scan(&total); err != nil {
		return store.PageResult[*domain.Song]{}, err
	}

	songs, err := s.querySongs(ctx, `
		SELECT `+songColumns+` FROM songs
		WHERE status = 'published'
		ORDER BY publish_date DESC, rowid DESC
		LIMIT ? OFFSET ?`,
		page.Size, page.Offset())
	if err != nil {
		return store.PageResult[*domain.Song]{}, err
	}
	return store.NewPageResult(songs, page, total), nil
}

func (s *Store) querySongs(ctx context.Context, query string, args ...any) ([]*domain.Song, error) {
	rows, err := s.q.QueryContext(ctx, strings.TrimSpace(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []*domain.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}
