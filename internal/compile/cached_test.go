package compile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCompiler struct {
	calls int
	err   error
}

func (c *countingCompiler) Compile(_ context.Context, document string) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []byte("pdf:" + document), nil
}

type enginedCompiler struct {
	countingCompiler
	engine string
}

func (c *enginedCompiler) Engine() string { return c.engine }

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
	failSet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, false, errors.New("connection refused")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("connection refused")
	}
	m.data[key] = data
	m.ttls[key] = ttl
	return nil
}

func TestCachedCompiler_HitSkipsInner(t *testing.T) {
	inner := &countingCompiler{}
	cache := newMemoryCache()
	c := NewCachedCompiler(inner, cache, time.Hour, nil)

	first, err := c.Compile(context.Background(), "doc")
	require.NoError(t, err)
	second, err := c.Compile(context.Background(), "doc")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, time.Hour, cache.ttls[CacheKey("", "doc")])
}

func TestCachedCompiler_DifferentDocumentsMiss(t *testing.T) {
	inner := &countingCompiler{}
	c := NewCachedCompiler(inner, newMemoryCache(), time.Minute, nil)

	_, err := c.Compile(context.Background(), "a")
	require.NoError(t, err)
	_, err = c.Compile(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedCompiler_FailuresAreNotCached(t *testing.T) {
	inner := &countingCompiler{err: &CompilationError{Message: "bad"}}
	cache := newMemoryCache()
	c := NewCachedCompiler(inner, cache, time.Minute, nil)

	_, err := c.Compile(context.Background(), "doc")
	require.Error(t, err)
	assert.Empty(t, cache.data)
}

func TestCachedCompiler_CacheErrorsAreLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	inner := &countingCompiler{}
	cache := newMemoryCache()
	cache.failGet = true
	cache.failSet = true

	c := NewCachedCompiler(inner, cache, time.Minute, logger)
	pdf, err := c.Compile(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "pdf:doc", string(pdf))

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "pdf cache store failed", hook.LastEntry().Message)
}

func TestCachedCompiler_EngineChangeMisses(t *testing.T) {
	cache := newMemoryCache()
	pdflatex := &enginedCompiler{engine: "pdflatex"}
	xelatex := &enginedCompiler{engine: "xelatex"}

	_, err := NewCachedCompiler(pdflatex, cache, time.Minute, nil).Compile(context.Background(), "doc")
	require.NoError(t, err)
	_, err = NewCachedCompiler(xelatex, cache, time.Minute, nil).Compile(context.Background(), "doc")
	require.NoError(t, err)

	assert.Equal(t, 1, pdflatex.calls)
	assert.Equal(t, 1, xelatex.calls)
	assert.Contains(t, cache.data, CacheKey("pdflatex", "doc"))
	assert.Contains(t, cache.data, CacheKey("xelatex", "doc"))
}

func TestCacheKey_Stable(t *testing.T) {
	assert.Equal(t, CacheKey("pdflatex", "x"), CacheKey("pdflatex", "x"))
	assert.NotEqual(t, CacheKey("pdflatex", "x"), CacheKey("pdflatex", "y"))
	assert.NotEqual(t, CacheKey("pdflatex", "x"), CacheKey("xelatex", "x"))
	assert.NotEqual(t, CacheKey("a", "bc"), CacheKey("ab", "c"))
	assert.Len(t, CacheKey("pdflatex", "x"), len("pdf:")+64)
}

func TestCompilers_ReportEngine(t *testing.T) {
	assert.Equal(t, DefaultEngine, NewRemoteCompiler("", "", nil).Engine())
	assert.Equal(t, "xelatex", NewLocalCompiler("xelatex", 0).Engine())
}
