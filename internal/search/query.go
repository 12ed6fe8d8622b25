package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Order is the ordering of search hits.
type Order string

const (
	ByRelevance Order = "relevance"
	ByDate      Order = "recent"
)

// DefaultLimit is the page size when a query gives none.
const DefaultLimit = 20

// Query is a full-text search request. Double-quoted parts of Text must
// match as phrases; the remaining words match loosely.
type Query struct {
	Text   string
	Limit  int
	Offset int
	Order  Order
}

// Results is one page of hits.
type Results struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is one matching post.
type Hit struct {
	SongID      string    `json:"song_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	PublishedOn time.Time `json:"published_on"`
	Score       float64   `json:"score"`
	Snippet     string    `json:"snippet,omitempty"`
}

// Search runs q against the index.
func (s *SearchIndex) Search(ctx context.Context, q Query) (*Results, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(compile(q.Text), limit, max(q.Offset, 0), false)
	req.Fields = []string{fieldSlug, fieldTitle, fieldPublished}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField(fieldBody)
	req.Highlight.AddField(fieldTitle)
	if q.Order == ByDate {
		req.SortBy([]string{"-" + fieldPublished})
	} else {
		req.SortBy([]string{"-_score", "-" + fieldPublished})
	}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Text, err)
	}

	out := &Results{
		Query:  q.Text,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{SongID: h.ID, Score: h.Score}
		hit.Slug, _ = h.Fields[fieldSlug].(string)
		hit.Title, _ = h.Fields[fieldTitle].(string)
		if ts, ok := h.Fields[fieldPublished].(string); ok {
			hit.PublishedOn, _ = time.Parse(time.RFC3339, ts)
		}
		for _, field := range []string{fieldBody, fieldTitle} {
			if frags := h.Fragments[field]; len(frags) > 0 {
				hit.Snippet = frags[0]
				break
			}
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

var phrasePattern = regexp.MustCompile(`"([^"]+)"`)

// compile turns search text into a bleve query. Every quoted phrase is
// required; loose words are optional matches ranked by where they hit.
func compile(text string) query.Query {
	text = strings.TrimSpace(text)
	if text == "" {
		return bleve.NewMatchAllQuery()
	}

	var parts []query.Query
	for _, m := range phrasePattern.FindAllStringSubmatch(text, -1) {
		parts = append(parts, inTitleOrBody(m[1]))
	}
	if loose := strings.Join(strings.Fields(phrasePattern.ReplaceAllString(text, " ")), " "); loose != "" {
		parts = append(parts, looseMatch(loose))
	}

	switch len(parts) {
	case 0:
		return bleve.NewMatchNoneQuery()
	case 1:
		return parts[0]
	}
	return bleve.NewConjunctionQuery(parts...)
}

func inTitleOrBody(phrase string) query.Query {
	title := bleve.NewMatchPhraseQuery(phrase)
	title.SetField(fieldTitle)
	title.SetBoost(3)
	body := bleve.NewMatchPhraseQuery(phrase)
	body.SetField(fieldBody)
	return bleve.NewDisjunctionQuery(title, body)
}

// looseMatch matches words in the title (boosted) or body. The last word
// also matches title terms by prefix and with one typo, so partially typed
// artist names still find their post.
func looseMatch(words string) query.Query {
	title := bleve.NewMatchQuery(words)
	title.SetField(fieldTitle)
	title.SetBoost(3)
	body := bleve.NewMatchQuery(words)
	body.SetField(fieldBody)
	alts := []query.Query{title, body}

	last := strings.ToLower(words[strings.LastIndexByte(words, ' ')+1:])
	if len(last) >= 3 {
		typo := bleve.NewFuzzyQuery(last)
		typo.SetField(fieldTitle)
		typo.SetFuzziness(1)
		typo.SetBoost(0.8)
		partial := bleve.NewPrefixQuery(last)
		partial.SetField(fieldTitle)
		partial.SetBoost(0.5)
		alts = append(alts, typo, partial)
	}
	return bleve.NewDisjunctionQuery(alts...)
}
