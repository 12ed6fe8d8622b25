package search

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// mappingVersion changes whenever newMapping does; an index written
// under another version is thrown away at startup and refilled by Reindex.
const mappingVersion = "posts-2"

// batchSize caps how many documents go into one bleve batch.
const batchSize = 500

// SearchIndex is the bleve index of public posts, keyed by song ID.
// All methods are safe for concurrent use.
type SearchIndex struct {
	mu     sync.RWMutex // write-held only while the index is swapped out
	index  bleve.Index
	dir    string
	logger *slog.Logger
}

// Options configures the search index.
type Options struct {
	DataPath string       // directory holding posts.bleve and its version stamp
	Logger   *slog.Logger // defaults to slog.Default()
}

// NewSearchIndex opens the index under DataPath, creating it when missing.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create search dir: %w", err)
	}

	s := &SearchIndex{dir: opts.DataPath, logger: logger}
	index, err := s.open()
	if err != nil {
		return nil, err
	}
	s.index = index
	return s, nil
}

func (s *SearchIndex) indexPath() string   { return filepath.Join(s.dir, "posts.bleve") }
func (s *SearchIndex) versionPath() string { return filepath.Join(s.dir, "posts.version") }

// open reuses the on-disk index when its version stamp matches and it opens
// cleanly. Anything else is removed and recreated empty.
func (s *SearchIndex) open() (bleve.Index, error) {
	stamp, err := os.ReadFile(s.versionPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("search index has no version stamp")
	case err != nil:
		return nil, fmt.Errorf("read search version: %w", err)
	case string(stamp) != mappingVersion:
		s.logger.Info("search mapping changed, recreating index", "old_version", string(stamp), "new_version", mappingVersion)
	default:
		index, openErr := bleve.Open(s.indexPath())
		if openErr == nil {
			s.logger.Info("opened search index", "path", s.indexPath())
			return index, nil
		}
		s.logger.Warn("could not open search index, recreating", "path", s.indexPath(), "error", openErr)
	}
	return s.create()
}

func (s *SearchIndex) create() (bleve.Index, error) {
	if err := os.RemoveAll(s.indexPath()); err != nil {
		return nil, fmt.Errorf("remove old index: %w", err)
	}
	index, err := bleve.New(s.indexPath(), newMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(s.versionPath(), []byte(mappingVersion), 0o644); err != nil {
		s.logger.Warn("could not write search version stamp", "error", err)
	}
	s.logger.Info("created search index", "path", s.indexPath(), "mapping_version", mappingVersion)
	return index, nil
}

// Close releases the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument adds or replaces one document.
func (s *SearchIndex) IndexDocument(doc *Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.SongID, doc)
}

// IndexDocuments adds documents in batches.
func (s *SearchIndex) IndexDocuments(docs []*Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		batch := s.index.NewBatch()
		for _, doc := range docs[start:end] {
			if err := batch.Index(doc.SongID, doc); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.SongID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteDocument removes a document. Unknown IDs are ignored.
func (s *SearchIndex) DeleteDocument(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed posts.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild swaps the index for an empty one. Searches wait until it returns.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	index, err := s.create()
	if err != nil {
		return err
	}
	s.index = index
	return nil
}
