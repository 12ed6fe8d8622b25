package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
	"github.com/singlesjukebox/jukebox-server/internal/search"
)

// SearchIndexHandle owns the bleve index for the container's lifetime.
type SearchIndexHandle struct {
	*search.SearchIndex
	done chan struct{}
}

// Shutdown waits for a running catch-up reindex and closes the index.
func (h *SearchIndexHandle) Shutdown() error {
	<-h.done
	return h.Close()
}

// ProvideSearchIndex opens the post index. When its document count differs
// from the number of searchable posts in the database, for example after a
// mapping change or a restored database, it is rebuilt in the background.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	db := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Storage.SearchPath(),
		Logger:   log.For("search"),
	})
	if err != nil {
		return nil, err
	}
	h := &SearchIndexHandle{SearchIndex: index, done: make(chan struct{})}

	ctx := context.Background()
	posts, err := db.ListSearchablePosts(ctx)
	if err != nil {
		_ = index.Close()
		return nil, err
	}
	indexed, _ := index.DocumentCount()
	log.Info("Search index opened", "documents", indexed, "searchable_posts", len(posts))

	if indexed == uint64(len(posts)) {
		close(h.done)
		return h, nil
	}
	go func() {
		defer close(h.done)
		if err := index.Reindex(ctx, posts); err != nil {
			log.Error("Search catch-up reindex failed", "error", err)
		}
	}()
	return h, nil
}
