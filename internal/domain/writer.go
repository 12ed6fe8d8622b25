package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Writer is a contributor account. Staff writers act as editors.
type Writer struct {
	DateJoined   time.Time `json:"date_joined"`
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	BioLink      string    `json:"bio_link,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsAdmin      bool      `json:"is_admin"`
}

// FullName returns "First Last".
func (w *Writer) FullName() string {
	return strings.TrimSpace(w.FirstName + " " + w.LastName)
}

// ShortName returns the first name.
func (w *Writer) ShortName() string {
	return w.FirstName
}

// Initials returns the upper-cased first letters of the first and last name.
func (w *Writer) Initials() string {
	var b strings.Builder
	for _, name := range []string{w.FirstName, w.LastName} {
		if r, _ := utf8.DecodeRuneInString(name); r != utf8.RuneError {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// BioName returns "Last, F." as printed under published blurbs.
func (w *Writer) BioName() string {
	if w.FirstName == "" {
		return w.LastName
	}
	r, _ := utf8.DecodeRuneInString(w.FirstName)
	return w.LastName + ", " + string(unicode.ToUpper(r)) + "."
}

// BioLinkDisplay returns the writer's bio link, or a site search for their
// name when none is set.
func (w *Writer) BioLinkDisplay() string {
	if w.BioLink != "" {
		return w.BioLink
	}
	return "?s=" + url.QueryEscape(strings.ToLower(w.FullName()))
}

// CanEdit reports whether the writer may perform editor operations.
func (w *Writer) CanEdit() bool {
	return w.IsActive && (w.IsStaff || w.IsAdmin)
}
