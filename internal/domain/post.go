package domain

import "time"

// PublicPost is the public-site rendition of a published song.
type PublicPost struct {
	PublishedOn            time.Time `json:"published_on"`
	ID                     string    `json:"id"`
	SongID                 string    `json:"song_id"`
	Slug                   string    `json:"slug"`
	Title                  string    `json:"title"`
	HTMLContent            string    `json:"html_content"`
	Visible                bool      `json:"visible"`
	IncludeInSearchResults bool      `json:"include_in_search_results"`
}

// Comment is a reader comment on a public post.
type Comment struct {
	PublishedOn time.Time `json:"published_on"`
	ID          string    `json:"id"`
	SongID      string    `json:"song_id"`
	Name        string    `json:"name"`
	Mail        string    `json:"-"`
	Website     string    `json:"website,omitempty"`
	CommentText string    `json:"comment_text"`
	Visible     bool      `json:"visible"`
}
