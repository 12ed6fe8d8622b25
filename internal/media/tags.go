package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simonhull/audiometa"
)

// Tags is the subset of embedded metadata used to prefill a song.
type Tags struct {
	Artist   string
	Title    string
	Format   string
	Duration time.Duration
}

// ReadTags opens an audio file and returns its tags.
func ReadTags(ctx context.Context, path string) (*Tags, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only

	return &Tags{
		Artist:   strings.TrimSpace(file.Tags.Artist),
		Title:    strings.TrimSpace(file.Tags.Title),
		Format:   file.Format.String(),
		Duration: file.Audio.Duration,
	}, nil
}
