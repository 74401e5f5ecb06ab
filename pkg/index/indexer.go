package index

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Hexilee/sgrep/pkg/collect"
)

// DefaultHeapBudgetBytes mirrors the original writer heap budget. Bleve's
// Batch API has no equivalent knob (segments are flushed by Batch size, not
// by a configured heap ceiling); the field is kept on Indexer purely so the
// index command can log the configured value for parity with the documented
// CLI contract, not because anything reads it.
const DefaultHeapBudgetBytes = 100 * 1024 * 1024

// Result summarizes one Index call.
type Result struct {
	Indexed int // paths newly added, replaced, or removed (no collector accepts them any more) because their content hash changed
	Skipped int // paths whose stored hash is unchanged, or that no collector accepted
}

// Indexer applies the collector registry to a set of paths and commits the
// resulting documents to a Store, deduplicating on content hash.
type Indexer struct {
	store           *Store
	registry        *collect.Registry
	HeapBudgetBytes int
}

// New builds an Indexer over store using registry to turn paths into
// collected documents.
func New(store *Store, registry *collect.Registry) *Indexer {
	return &Indexer{
		store:           store,
		registry:        registry,
		HeapBudgetBytes: DefaultHeapBudgetBytes,
	}
}

// Index hashes, collects, and commits paths. Per spec.md §3's quiescence
// contract, nothing becomes visible to concurrent searches until all workers
// finish and the batch commits: workers hold the read side of a gate RWMutex
// while mutating the shared batch (itself guarded by a plain Mutex, since
// *bleve.Batch is not safe for concurrent use), and the commit takes the
// write side once every worker has returned.
func (ix *Indexer) Index(ctx context.Context, paths []string) (Result, error) {
	slog.DebugContext(ctx, "indexing", "paths", len(paths), "heap_budget_bytes", ix.HeapBudgetBytes)

	batch := ix.store.index.NewBatch()
	var batchMu sync.Mutex
	var gate sync.RWMutex

	var indexed, skipped int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, path := range paths {
		g.Go(func() error {
			gate.RLock()
			defer gate.RUnlock()

			mutated, err := ix.indexOne(gctx, &batchMu, batch, path)
			if err != nil {
				return fmt.Errorf("index %s: %w", path, err)
			}

			if mutated {
				atomic.AddInt64(&indexed, 1)
			} else {
				atomic.AddInt64(&skipped, 1)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	gate.Lock()
	defer gate.Unlock()

	if err := ix.store.index.Batch(batch); err != nil {
		return Result{}, fmt.Errorf("commit index batch: %w", err)
	}

	return Result{Indexed: int(indexed), Skipped: int(skipped)}, nil
}

// indexOne hashes path, skips it if the stored hash is already current,
// otherwise collects it and stages a delete-then-add pair (or a bare add)
// in batch. Reports whether it staged any mutation.
func (ix *Indexer) indexOne(ctx context.Context, mu *sync.Mutex, batch *bleve.Batch, path string) (bool, error) {
	hash, err := hashFile(path)
	if err != nil {
		return false, err
	}

	existingHash, found, err := ix.lookupHash(path)
	if err != nil {
		return false, err
	}

	if found && existingHash == hash {
		return false, nil
	}

	doc, ok := ix.registry.Collect(ctx, path)
	if !ok {
		if found {
			mu.Lock()
			batch.Delete(path)
			mu.Unlock()

			return true, nil
		}

		return false, nil
	}

	positions := make([]string, len(doc.Lines))
	lines := make([]string, len(doc.Lines))

	for i, l := range doc.Lines {
		positions[i] = l.Position
		lines[i] = l.Line
	}

	record := Document{
		Path:      path,
		Collector: doc.Collector,
		Hash:      hash,
		Position:  positions,
		Line:      lines,
	}

	mu.Lock()
	defer mu.Unlock()

	if found {
		batch.Delete(path)
	}

	if err := batch.Index(path, record); err != nil {
		return false, fmt.Errorf("stage %s: %w", path, err)
	}

	return true, nil
}

// Remove deletes paths from the index, whether or not they still exist on
// disk. Paths not currently indexed are ignored.
func (ix *Indexer) Remove(paths []string) (int, error) {
	batch := ix.store.index.NewBatch()

	var removed int

	for _, path := range paths {
		found, err := ix.exists(path)
		if err != nil {
			return 0, err
		}

		if !found {
			continue
		}

		batch.Delete(path)
		removed++
	}

	if removed == 0 {
		return 0, nil
	}

	if err := ix.store.index.Batch(batch); err != nil {
		return 0, fmt.Errorf("commit remove batch: %w", err)
	}

	return removed, nil
}

// RemoveAll empties the index. Bleve has no bulk-clear call, so this walks
// the index in pages of matched documents and deletes each page, repeating
// against offset 0 until a pass returns nothing (deleted documents drop out
// of the match-all result set, so the walk always converges).
func (ix *Indexer) RemoveAll() error {
	const pageSize = 1000

	for {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), pageSize, 0, false)

		result, err := ix.store.index.Search(req)
		if err != nil {
			return fmt.Errorf("enumerate index: %w", err)
		}

		if len(result.Hits) == 0 {
			return nil
		}

		batch := ix.store.index.NewBatch()
		for _, hit := range result.Hits {
			batch.Delete(hit.ID)
		}

		if err := ix.store.index.Batch(batch); err != nil {
			return fmt.Errorf("commit remove-all batch: %w", err)
		}
	}
}

func (ix *Indexer) lookupHash(path string) (hash string, found bool, err error) {
	q := bleve.NewTermQuery(path)
	q.SetField(fieldPath)

	req := bleve.NewSearchRequestOptions(q, 1, 0, false)
	req.Fields = []string{fieldHash}

	result, err := ix.store.index.Search(req)
	if err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", path, err)
	}

	if len(result.Hits) == 0 {
		return "", false, nil
	}

	h, _ := result.Hits[0].Fields[fieldHash].(string)

	return h, true, nil
}

func (ix *Indexer) exists(path string) (bool, error) {
	q := bleve.NewTermQuery(path)
	q.SetField(fieldPath)

	req := bleve.NewSearchRequestOptions(q, 1, 0, false)
	req.Fields = nil

	result, err := ix.store.index.Search(req)
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", path, err)
	}

	return len(result.Hits) > 0, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
