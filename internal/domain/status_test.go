package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountedStatuses(t *testing.T) {
	assert.True(t, ReviewSaved.IsCounted())
	assert.True(t, ReviewPublished.IsCounted())
	assert.False(t, ReviewDraft.IsCounted())
	assert.False(t, ReviewRemoved.IsCounted())
}

func TestReorderStatuses(t *testing.T) {
	assert.Equal(t, StatusSet{ReviewSaved}, ReorderStatuses(false))
	assert.Equal(t, StatusSet{ReviewSaved, ReviewPublished}, ReorderStatuses(true))
	assert.Equal(t, []string{"saved", "published"}, ReorderStatuses(true).Strings())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, SongClosed.Valid())
	assert.False(t, SongStatus("archived").Valid())
	assert.True(t, ReviewDraft.Valid())
	assert.False(t, ReviewStatus("").Valid())
}

func TestSong_State(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := &Song{Artist: "Sisqo", Title: "Thong Song", Status: SongOpen}
	assert.Equal(t, "Sisqo - Thong Song", open.DisplayName())
	assert.True(t, open.AcceptsReviews())
	assert.False(t, open.Closed())
	assert.False(t, open.DueForPublish(now))

	closed := &Song{Status: SongClosed, PublishDate: &past}
	assert.True(t, closed.Closed())
	assert.True(t, closed.DueForPublish(now))

	scheduled := &Song{Status: SongClosed, PublishDate: &future}
	assert.False(t, scheduled.DueForPublish(now))

	published := &Song{Status: SongPublished, PublishDate: &past}
	assert.True(t, published.Closed())
	assert.False(t, published.DueForPublish(now))
}
