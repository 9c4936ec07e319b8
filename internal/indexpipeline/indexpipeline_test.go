package indexpipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cerrors "github.com/codelensdev/codelens/internal/errors"
	"github.com/codelensdev/codelens/internal/types"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]types.Tag
	puts int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]types.Tag{}} }

func (c *fakeCache) Get(path string) ([]types.Tag, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tags, ok := c.data[path]
	return tags, ok
}

func (c *fakeCache) Put(path string, language types.Language, tags []types.Tag) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[path] = tags
	c.puts++
	return nil
}

func languageOfGo(path string) types.Language { return types.LangGo }

func TestRun_ExtractsEveryFile(t *testing.T) {
	files := []string{"a.go", "b.go", "c.go"}
	cache := newFakeCache()

	results := Run(context.Background(), files, languageOfGo,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) {
			return []types.Tag{{Name: path, FilePath: path}}, nil
		},
		cache,
		Options{WorkerPoolSize: 2, Read: func(path string) ([]byte, error) { return []byte("x"), nil }},
	)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, files[i], r.Path)
		assert.False(t, r.Failed)
		require.Len(t, r.Tags, 1)
	}
	assert.Equal(t, 3, cache.puts)
}

func TestRun_CacheHitSkipsExtraction(t *testing.T) {
	cache := newFakeCache()
	cache.data["cached.go"] = []types.Tag{{Name: "cachedSymbol"}}

	extractCalls := 0
	results := Run(context.Background(), []string{"cached.go"}, languageOfGo,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) {
			extractCalls++
			return nil, nil
		},
		cache,
		Options{WorkerPoolSize: 1, Read: func(path string) ([]byte, error) { return []byte("x"), nil }},
	)

	require.Len(t, results, 1)
	assert.Equal(t, "cachedSymbol", results[0].Tags[0].Name)
	assert.Equal(t, 0, extractCalls)
}

func TestRun_UnsupportedLanguageIsSkippedNotFailed(t *testing.T) {
	cache := newFakeCache()
	results := Run(context.Background(), []string{"data.unknown"}, func(string) types.Language { return types.LangUnknown },
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) { return nil, nil },
		cache,
		Options{WorkerPoolSize: 1, Read: func(path string) ([]byte, error) { return nil, nil }},
	)

	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
	assert.False(t, results[0].Failed)
}

func TestRun_ReadErrorMarksFileFailedWithoutCaching(t *testing.T) {
	cache := newFakeCache()
	results := Run(context.Background(), []string{"missing.go"}, languageOfGo,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) { return nil, nil },
		cache,
		Options{WorkerPoolSize: 1, Read: func(path string) ([]byte, error) { return nil, errors.New("no such file") }},
	)

	require.Len(t, results, 1)
	assert.True(t, results[0].Failed)
	require.NotNil(t, results[0].Err)
	assert.Equal(t, 0, cache.puts)
}

func TestRun_ExtractionFailureIsNotCached(t *testing.T) {
	cache := newFakeCache()
	results := Run(context.Background(), []string{"bad.go"}, languageOfGo,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) {
			return nil, cerrors.New(cerrors.KindParseFailure, path, "syntax error", nil)
		},
		cache,
		Options{WorkerPoolSize: 1, Read: func(path string) ([]byte, error) { return []byte("x"), nil }},
	)

	require.Len(t, results, 1)
	assert.True(t, results[0].Failed)
	assert.Equal(t, 0, cache.puts)
}

func TestRun_OversizedFileFailsWithoutExtractingOrCaching(t *testing.T) {
	cache := newFakeCache()
	extractCalls := 0
	results := Run(context.Background(), []string{"big.go"}, languageOfGo,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) {
			extractCalls++
			return []types.Tag{{Name: "x"}}, nil
		},
		cache,
		Options{
			WorkerPoolSize: 1,
			MaxFileSize:    4,
			Read:           func(path string) ([]byte, error) { return []byte("way too big"), nil },
		},
	)

	require.Len(t, results, 1)
	assert.True(t, results[0].Failed)
	require.NotNil(t, results[0].Err)
	assert.Equal(t, cerrors.KindFileTooLarge, results[0].Err.Kind)
	assert.Equal(t, 0, extractCalls, "oversized files must never reach the extractor")
	assert.Equal(t, 0, cache.puts)
}

func TestRun_MaxFileSizeZeroDisablesTheCheck(t *testing.T) {
	cache := newFakeCache()
	results := Run(context.Background(), []string{"big.go"}, languageOfGo,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) {
			return []types.Tag{{Name: "x"}}, nil
		},
		cache,
		Options{
			WorkerPoolSize: 1,
			MaxFileSize:    0,
			Read:           func(path string) ([]byte, error) { return []byte("way too big"), nil },
		},
	)

	require.Len(t, results, 1)
	assert.False(t, results[0].Failed)
}

func TestRun_PerFileTimeoutFailsSlowFile(t *testing.T) {
	cache := newFakeCache()
	results := Run(context.Background(), []string{"slow.go"}, languageOfGo,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) {
			time.Sleep(50 * time.Millisecond)
			return []types.Tag{{Name: "late"}}, nil
		},
		cache,
		Options{
			WorkerPoolSize: 1,
			PerFileTimeout: 5 * time.Millisecond,
			Read:           func(path string) ([]byte, error) { return []byte("x"), nil },
		},
	)

	require.Len(t, results, 1)
	assert.True(t, results[0].Failed)
}

func TestRun_CancelledContextStopsNewDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cache := newFakeCache()
	results := Run(ctx, []string{"a.go", "b.go"}, languageOfGo,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) {
			return []types.Tag{{Name: path}}, nil
		},
		cache,
		Options{WorkerPoolSize: 1, Read: func(path string) ([]byte, error) { return []byte("x"), nil }},
	)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Empty(t, r.Tags)
	}
}

// TestRun_TimedOutFilesLeaveNoGoroutinesBehind mirrors the teacher's
// leak_test.go pattern: Run must not leak the per-file timeout watcher
// goroutine once a slow extraction has been abandoned.
func TestRun_TimedOutFilesLeaveNoGoroutinesBehind(t *testing.T) {
	defer goleak.VerifyNone(t)

	cache := newFakeCache()
	done := make(chan struct{})
	results := Run(context.Background(), []string{"slow.go"}, languageOfGo,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) {
			defer close(done)
			time.Sleep(5 * time.Millisecond)
			return []types.Tag{{Name: "late"}}, nil
		},
		cache,
		Options{
			WorkerPoolSize: 1,
			PerFileTimeout: 1 * time.Millisecond,
			Read:           func(path string) ([]byte, error) { return []byte("x"), nil },
		},
	)
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("abandoned extraction goroutine never finished")
	}
}

func TestRun_DefaultsWorkerPoolSizeToOne(t *testing.T) {
	cache := newFakeCache()
	results := Run(context.Background(), []string{"a.go"}, languageOfGo,
		func(path string, content []byte) ([]types.Tag, *cerrors.Error) { return nil, nil },
		cache,
		Options{WorkerPoolSize: 0, Read: func(path string) ([]byte, error) { return []byte("x"), nil }},
	)
	require.Len(t, results, 1)
	assert.False(t, results[0].Failed)
}
