package domain

import "time"

// MaxBlurbLength is the longest blurb a writer may submit, in characters.
const MaxBlurbLength = 5000

// Score bounds.
const (
	MinScore = 0
	MaxScore = 10
)

// Review is one writer's blurb and score for a song.
//
// SortOrder ranks the review among the song's counted reviews. For every song
// the counted reviews hold the orders 1..N exactly once each.
type Review struct {
	CreateDate  time.Time    `json:"create_date"`
	ID          string       `json:"id"`
	WriterID    string       `json:"writer_id"`
	SongID      string       `json:"song_id"`
	Blurb       string       `json:"blurb"`
	BlurbBackup string       `json:"-"`
	Status      ReviewStatus `json:"status"`
	Score       int          `json:"score"`
	SortOrder   int          `json:"sort_order"`
}

// IsCounted reports whether the review contributes to ordering and scoring.
func (r *Review) IsCounted() bool {
	return r.Status.IsCounted()
}

// Scores extracts the score of each review, in order.
func Scores(reviews []*Review) []int {
	out := make([]int, len(reviews))
	for i, r := range reviews {
		out[i] = r.Score
	}
	return out
}
