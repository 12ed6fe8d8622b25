package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Index field names.
const (
	fieldSlug      = "slug"
	fieldTitle     = "title"
	fieldBody      = "body"
	fieldPublished = "published_on"
)

// newMapping describes post documents. Text fields use the English analyzer
// and keep term vectors for highlighting. Only declared fields are indexed.
func newMapping() mapping.IndexMapping {
	text := func(store bool) *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = en.AnalyzerName
		f.Store = store
		f.IncludeTermVectors = true
		return f
	}

	slug := bleve.NewTextFieldMapping()
	slug.Analyzer = keyword.Name

	published := bleve.NewDateTimeFieldMapping()

	post := bleve.NewDocumentStaticMapping()
	post.AddFieldMappingsAt(fieldSlug, slug)
	post.AddFieldMappingsAt(fieldTitle, text(true))
	post.AddFieldMappingsAt(fieldBody, text(true))
	post.AddFieldMappingsAt(fieldPublished, published)

	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = en.AnalyzerName
	m.DefaultType = docType
	m.AddDocumentMapping(docType, post)
	return m
}
