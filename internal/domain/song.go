package domain

import "time"

// Song is a single track put up for review.
type Song struct {
	UploadDate         time.Time  `json:"upload_date"`
	PublishDate        *time.Time `json:"publish_date,omitempty"`
	ID                 string     `json:"id"`
	Artist             string     `json:"artist"`
	Title              string     `json:"title"`
	MP3Path            string     `json:"mp3_path,omitempty"` // relative to the media directory
	MP3Link            string     `json:"mp3_link,omitempty"`
	YoutubeLink        string     `json:"youtube_link,omitempty"`
	WebLink            string     `json:"web_link,omitempty"`
	ImageURL           string     `json:"image_url,omitempty"`
	Tagline            string     `json:"tagline,omitempty"`
	WordPressPostID    string     `json:"wordpress_post_id,omitempty"`
	Status             SongStatus `json:"status"`
	DisplayUserRatings bool       `json:"display_user_ratings"`
}

// DisplayName is the "Artist - Title" form used in listings and post titles.
func (s *Song) DisplayName() string {
	return s.Artist + " - " + s.Title
}

// Closed reports whether the song no longer accepts blurbs.
func (s *Song) Closed() bool {
	return s.Status == SongClosed || s.Status == SongPublished
}

// AcceptsReviews reports whether writers may still submit blurbs.
func (s *Song) AcceptsReviews() bool {
	return s.Status == SongOpen
}

// DueForPublish reports whether the song has a publish date at or before now
// and has not been published yet.
func (s *Song) DueForPublish(now time.Time) bool {
	if s.PublishDate == nil || s.Status == SongPublished || s.Status == SongRemoved {
		return false
	}
	return !s.PublishDate.After(now)
}
