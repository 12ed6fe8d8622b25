package scoring

import "github.com/singlesjukebox/jukebox-server/internal/domain"

// Class is the schedule bucket a song falls into, used as its CSS class.
type Class string

// Schedule buckets.
const (
	ClassNew     Class = "new"
	ClassOpen    Class = "open"
	ClassPublish Class = "publish"
	ClassClosing Class = "closing"
	ClassDead    Class = "dead"
)

// Classify buckets a song by its blurb count. Closed and published songs are
// always dead, whatever their count.
func Classify(status domain.SongStatus, blurbCount int) Class {
	if status == domain.SongPublished || status == domain.SongClosed {
		return ClassDead
	}
	switch {
	case blurbCount == 0:
		return ClassNew
	case blurbCount > 10:
		return ClassClosing
	case blurbCount > 5:
		return ClassPublish
	default:
		return ClassOpen
	}
}
