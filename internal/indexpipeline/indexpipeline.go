// Package indexpipeline is the indexing-phase orchestration of spec.md
// §5: file discovery feeds a worker pool that runs AST extraction, cache
// writes are serialized through the Tag Cache's single-writer contract,
// and cancellation happens at file granularity.
//
// The worker pool itself is grounded on golang.org/x/sync/errgroup (which
// the teacher's go.mod already carries), trading the teacher's own
// hand-rolled channel-based FileProcessor/pipeline_processor.go (task
// channel + result channel + manual back-pressure retry loop) for
// errgroup's SetLimit bounded-concurrency model — the same functional
// shape (bounded worker pool over a task queue) expressed with the
// stdlib-adjacent primitive the teacher's dependency set already pulls
// in, rather than reimplementing channel back-pressure by hand.
package indexpipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	cerrors "github.com/codelensdev/codelens/internal/errors"
	"github.com/codelensdev/codelens/internal/types"
)

// ContentReader loads a file's bytes for extraction. Abstracted so the
// pipeline doesn't hard-code os.ReadFile, easing testing.
type ContentReader func(path string) ([]byte, error)

// CacheWriter is the Tag Cache's single-writer contract (spec.md §4.1,
// §5): every cache mutation, across every worker, funnels through one
// Put call at a time.
type CacheWriter interface {
	Get(path string) ([]types.Tag, bool)
	Put(path string, language types.Language, tags []types.Tag) error
}

// FileResult is one file's outcome.
type FileResult struct {
	Path    string
	Tags    []types.Tag
	Skipped bool // unsupported language
	Failed  bool
	Err     *cerrors.Error
}

// Options configures one indexing run (spec.md §5).
type Options struct {
	WorkerPoolSize int
	PerFileTimeout time.Duration
	MaxFileSize    int64 // 0 disables the size check
	Read           ContentReader
}

// Run dispatches files across a bounded worker pool: discovery already
// produced the ordered work queue, extraction runs on the pool, and cache
// writes are serialized (cacheMu) regardless of how many workers are
// extracting concurrently. Cancellation stops dispatching new files and
// lets in-flight extractions finish (spec.md §5's file-granularity
// cancellation).
func Run(ctx context.Context, files []string, languageOf func(string) types.Language, extract func(path string, content []byte) ([]types.Tag, *cerrors.Error), cache CacheWriter, opts Options) []FileResult {
	if opts.WorkerPoolSize <= 0 {
		opts.WorkerPoolSize = 1
	}
	if opts.Read == nil {
		panic("indexpipeline: Options.Read is required")
	}

	results := make([]FileResult, len(files))
	var cacheMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.WorkerPoolSize)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil // cancellation: stop dispatching, let in-flight finish
			}

			lang := languageOf(path)
			if lang == types.LangUnknown {
				results[i] = FileResult{Path: path, Skipped: true}
				return nil
			}

			if tags, hit := cachedLookup(cache, path, &cacheMu); hit {
				results[i] = FileResult{Path: path, Tags: tags}
				return nil
			}

			result := extractOne(gctx, path, lang, extract, opts)
			if !result.Failed {
				cacheMu.Lock()
				_ = cache.Put(path, lang, result.Tags)
				cacheMu.Unlock()
			}
			results[i] = result
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func cachedLookup(cache CacheWriter, path string, mu *sync.Mutex) ([]types.Tag, bool) {
	mu.Lock()
	defer mu.Unlock()
	return cache.Get(path)
}

// extractOne runs one file's extraction under a per-file wall-clock
// timeout (default 30s, spec.md §5); a timed-out file is recorded as
// failed and not cached.
func extractOne(ctx context.Context, path string, lang types.Language, extract func(string, []byte) ([]types.Tag, *cerrors.Error), opts Options) FileResult {
	timeout := opts.PerFileTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	done := make(chan FileResult, 1)
	go func() {
		content, err := opts.Read(path)
		if err != nil {
			done <- FileResult{Path: path, Failed: true, Err: cerrors.New(cerrors.KindReadError, path, err.Error(), err)}
			return
		}
		if opts.MaxFileSize > 0 && int64(len(content)) > opts.MaxFileSize {
			done <- FileResult{Path: path, Failed: true, Err: cerrors.New(cerrors.KindFileTooLarge, path, "file exceeds configured size limit", nil)}
			return
		}
		tags, extractErr := extract(path, content)
		if extractErr != nil {
			done <- FileResult{Path: path, Failed: true, Err: extractErr}
			return
		}
		done <- FileResult{Path: path, Tags: tags}
	}()

	select {
	case r := <-done:
		return r
	case <-time.After(timeout):
		return FileResult{Path: path, Failed: true, Err: cerrors.New(cerrors.KindExtractionTimeout, path, "extraction exceeded per-file timeout", nil)}
	case <-ctx.Done():
		return FileResult{Path: path, Failed: true, Err: cerrors.New(cerrors.KindExtractionTimeout, path, "cancelled", ctx.Err())}
	}
}
