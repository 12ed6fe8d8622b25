// Package search keeps a bleve full-text index of the public posts.
package search

import (
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
)

// docType is the bleve type of every document in the index.
const docType = "post"

// Document is a post as indexed. It is keyed by song ID, so publishing a
// song again replaces its entry.
type Document struct {
	SongID      string    `json:"-"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	PublishedOn time.Time `json:"published_on"`
}

// BleveType routes documents to the post mapping.
func (Document) BleveType() string { return docType }

// NewDocument builds the index entry for p.
func NewDocument(p *domain.PublicPost) *Document {
	return &Document{
		SongID:      p.SongID,
		Slug:        p.Slug,
		Title:       p.Title,
		Body:        plainText(p.HTMLContent),
		PublishedOn: p.PublishedOn,
	}
}

// mdMarkers are markdown emphasis sequences left behind by conversion.
var mdMarkers = strings.NewReplacer("**", "", "__", "", "`", "")

// plainText renders post HTML as readable text so tags and attributes never
// match a query and snippets read cleanly.
func plainText(html string) string {
	if !strings.ContainsRune(html, '<') {
		return strings.TrimSpace(html)
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(mdMarkers.Replace(md))
}
