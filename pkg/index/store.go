package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
)

// Store owns the on-disk inverted index directory. Bleve's scorch segment
// store takes its own file lock on open, so exactly one process may hold a
// Store open on a given directory at a time; a second Open call on the same
// path fails.
type Store struct {
	index bleve.Index
}

// Open opens the index directory at path, creating it with the sgrep schema
// on first use. Mirrors the teacher's open-or-create fallback: an Open
// failure for any reason (including "does not exist yet") is treated as
// "needs creating", since Bleve does not expose a narrower sentinel for a
// missing directory versus some other open failure.
func Open(path string) (*Store, error) {
	idx, err := bleve.Open(path)
	if err == nil {
		return &Store{index: idx}, nil
	}

	m, mapErr := buildMapping()
	if mapErr != nil {
		return nil, fmt.Errorf("build index mapping: %w", mapErr)
	}

	idx, err = bleve.New(path, m)
	if err != nil {
		return nil, fmt.Errorf("create index at %s: %w", path, err)
	}

	return &Store{index: idx}, nil
}

// Close releases the store's file lock. The Store must not be used
// afterwards.
func (s *Store) Close() error {
	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	return nil
}

// Index exposes the underlying Bleve index for the searcher package, which
// builds and runs queries directly against it.
func (s *Store) Index() bleve.Index {
	return s.index
}

// DocCount returns the number of documents currently in the index.
func (s *Store) DocCount() (uint64, error) {
	count, err := s.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return count, nil
}
