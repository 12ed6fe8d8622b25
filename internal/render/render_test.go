package render

import (
	"strings"
	"testing"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Beyoncé - Halo":         "beyonce-halo",
		"AC/DC - T.N.T.":         "ac-dc-t-n-t",
		"  Sisqó -- Thong Song ": "sisqo-thong-song",
		"":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestParagraphs(t *testing.T) {
	got := paragraphs("First line\nstill first.\r\n\r\nSecond.\n\n\n")
	assert.Equal(t, []string{"First line\nstill first.", "Second."}, got)
	assert.Empty(t, paragraphs("   "))
}

func testData() PostData {
	song := &domain.Song{
		ID:          "song-1",
		Artist:      "Kelly Rowland",
		Title:       "Dilemma",
		Tagline:     "Nelly's finest hour",
		YoutubeLink: "https://youtube.example/dilemma",
		Status:      domain.SongClosed,
	}
	writerA := &domain.Writer{ID: "wri-a", FirstName: "Ann", LastName: "Lee"}
	writerB := &domain.Writer{ID: "wri-b", FirstName: "Bo", LastName: "Diddley", BioLink: "https://bo.example"}
	reviews := []ReviewView{
		{Review: &domain.Review{ID: "rev-a", Score: 9, SortOrder: 1, Blurb: "Glorious.\n\n<script>alert(1)</script>"}, Writer: writerA},
		{Review: &domain.Review{ID: "rev-b", Score: 2, SortOrder: 2, Blurb: "Dreary."}, Writer: writerB},
	}
	return PostData{
		Song:    song,
		Reviews: reviews,
		Summary: scoring.Summarize([]int{9, 2}),
	}
}

func TestPostHTML(t *testing.T) {
	html, err := PostHTML(testData())
	require.NoError(t, err)

	assert.Contains(t, html, `data-song="song-1"`)
	assert.Contains(t, html, "Nelly&#39;s finest hour")
	assert.Contains(t, html, `<a href="https://youtube.example/dilemma">Video</a>`)
	assert.Contains(t, html, `<a href="?s=ann&#43;lee">Ann Lee</a>: [9]`)
	assert.Contains(t, html, `<a href="https://bo.example">Bo Diddley</a>: [2]`)
	assert.Contains(t, html, "<p>Glorious.</p>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "<strong>[5.5]</strong>")
	assert.NotContains(t, html, "Controversy")

	// Reviews keep the order they were given.
	assert.Less(t, strings.Index(html, "rev-a"), strings.Index(html, "rev-b"))
}

func TestPostHTML_AdminLinks(t *testing.T) {
	data := testData()
	data.ShowAdminLinks = true

	html, err := PostHTML(data)
	require.NoError(t, err)
	assert.Contains(t, html, `<span class="admin">#1</span>`)
	assert.Contains(t, html, "Controversy: [3.5][1][2]")
}

func TestPost_NoSong(t *testing.T) {
	_, err := PostHTML(PostData{})
	assert.Error(t, err)
}
