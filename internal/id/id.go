// Package id issues the prefixed, URL-safe identifiers used for every record.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Kind is the record type encoded in an identifier's prefix.
type Kind string

const (
	Song    Kind = "song"
	Review  Kind = "rev"
	Writer  Kind = "wri"
	Week    Kind = "week"
	Post    Kind = "post"
	Comment Kind = "cmt"
	Session Kind = "sess"
)

var kinds = []Kind{Song, Review, Writer, Week, Post, Comment, Session}

// nanoidLen is the length of the random part.
const nanoidLen = 21

// New returns a fresh identifier such as "rev-V1StGXR8_Z5jdHi6B-myT".
// It fails only when secure randomness is unavailable.
func (k Kind) New() (string, error) {
	suffix, err := gonanoid.New(nanoidLen)
	if err != nil {
		return "", fmt.Errorf("new %s id: %w", k, err)
	}
	return string(k) + "-" + suffix, nil
}

// Owns reports whether s looks like an identifier of this kind.
func (k Kind) Owns(s string) bool {
	rest, ok := strings.CutPrefix(s, string(k)+"-")
	return ok && len(rest) == nanoidLen
}

// KindOf returns the kind of s, if any.
func KindOf(s string) (Kind, bool) {
	for _, k := range kinds {
		if k.Owns(s) {
			return k, true
		}
	}
	return "", false
}
