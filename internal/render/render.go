// Package render produces the HTML of a song's review post.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/scoring"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var postTemplate = template.Must(
	template.New("post").
		Funcs(template.FuncMap{
			"paragraphs": paragraphs,
			"number":     number,
		}).
		ParseFS(templateFS, "templates/post.html.tmpl"),
)

// ReviewView is one review with its writer, in display order.
type ReviewView struct {
	Review *domain.Review
	Writer *domain.Writer
}

// PostData is everything the post template needs.
type PostData struct {
	Song           *domain.Song
	Reviews        []ReviewView
	Summary        scoring.Summary
	ShowAdminLinks bool
}

// Post writes the post HTML for data to w.
func Post(w io.Writer, data PostData) error {
	if data.Song == nil {
		return fmt.Errorf("render post: no song")
	}
	return postTemplate.ExecuteTemplate(w, "post", data)
}

// PostHTML renders the post into a string.
func PostHTML(data PostData) (string, error) {
	var buf bytes.Buffer
	if err := Post(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// paragraphs splits a blurb on blank lines. Single newlines stay inside a paragraph.
func paragraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// number prints a score without trailing zeros: 6, 5.67, 3.5.
func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
