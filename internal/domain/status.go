package domain

import "slices"

// SongStatus is the editorial state of a song.
type SongStatus string

// Song statuses.
const (
	SongOpen      SongStatus = "open"
	SongClosed    SongStatus = "closed"
	SongPublished SongStatus = "published"
	SongRemoved   SongStatus = "removed"
)

// Valid reports whether s is a known song status.
func (s SongStatus) Valid() bool {
	switch s {
	case SongOpen, SongClosed, SongPublished, SongRemoved:
		return true
	}
	return false
}

// ReviewStatus is the lifecycle state of a review.
type ReviewStatus string

// Review statuses.
const (
	ReviewDraft     ReviewStatus = "draft"
	ReviewSaved     ReviewStatus = "saved"
	ReviewPublished ReviewStatus = "published"
	ReviewRemoved   ReviewStatus = "removed"
)

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewDraft, ReviewSaved, ReviewPublished, ReviewRemoved:
		return true
	}
	return false
}

// StatusSet is an ordered set of review statuses used to filter reviews.
type StatusSet []ReviewStatus

// Contains reports whether status is in the set.
func (s StatusSet) Contains(status ReviewStatus) bool {
	return slices.Contains(s, status)
}

// Strings returns the statuses as plain strings, for query arguments.
func (s StatusSet) Strings() []string {
	out := make([]string, len(s))
	for i, st := range s {
		out[i] = string(st)
	}
	return out
}

// CountedStatuses are the review statuses that contribute to a song's
// blurb count, average score and controversy index.
var CountedStatuses = StatusSet{ReviewSaved, ReviewPublished}

// ReorderStatuses returns the review statuses that take part in move
// operations. Published reviews join only when includePublished is set.
//
// Without includePublished, moves renumber the saved reviews 1..K on their
// own. A song holding both saved and published reviews then ends up with
// two counted reviews sharing an order. Publishing flips every counted
// review at once, so the normal workflow never produces that mix.
func ReorderStatuses(includePublished bool) StatusSet {
	if includePublished {
		return StatusSet{ReviewSaved, ReviewPublished}
	}
	return StatusSet{ReviewSaved}
}

// IsCounted reports whether a review in status s is a counted review.
func (s ReviewStatus) IsCounted() bool {
	return CountedStatuses.Contains(s)
}
