package search

import (
	"context"
	"fmt"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
)

// IndexPost adds or replaces a post. Posts that are hidden or opted out of
// search are removed instead.
func (s *SearchIndex) IndexPost(ctx context.Context, p *domain.PublicPost) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.Visible || !p.IncludeInSearchResults {
		return s.DeleteDocument(p.SongID)
	}
	if err := s.IndexDocument(NewDocument(p)); err != nil {
		return fmt.Errorf("index post %s: %w", p.ID, err)
	}
	s.logger.Debug("indexed post", "song_id", p.SongID, "slug", p.Slug)
	return nil
}

// Reindex drops the index and fills it from posts.
func (s *SearchIndex) Reindex(ctx context.Context, posts []*domain.PublicPost) error {
	if err := s.Rebuild(); err != nil {
		return err
	}

	docs := make([]*Document, 0, len(posts))
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.Visible && p.IncludeInSearchResults {
			docs = append(docs, NewDocument(p))
		}
	}
	if err := s.IndexDocuments(docs); err != nil {
		return err
	}

	s.logger.Info("search index rebuilt", "documents", len(docs))
	return nil
}
