package glossary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestLoaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.json")
	writeFile(t, path, sampleGlossary)

	l := NewLoader(path, time.Hour)
	v, err := l.View(context.Background(), "https://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "example.com", v.Key)
}

func TestLoaderStaleFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.json")
	writeFile(t, path, sampleGlossary)

	l := NewLoader(path, time.Hour)
	first, err := l.Load(context.Background())
	require.NoError(t, err)

	writeFile(t, path, `{"broken": `)
	l.Reload()

	again, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, again)

	writeFile(t, path, `{"default": {"characters": {"Zed": {"gender": "male"}}}}`)
	l.Reload()

	fresh, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultKey}, fresh.Keys())
}

func TestLoaderRefreshReportsFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.json")
	writeFile(t, path, sampleGlossary)

	l := NewLoader(path, time.Hour)
	first, err := l.Refresh(context.Background())
	require.NoError(t, err)

	writeFile(t, path, `{broken`)
	_, err = l.Refresh(context.Background())
	require.ErrorIs(t, err, ErrGlossaryUnavailable)

	again, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestLoaderUnavailable(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "missing.json"), time.Hour)
	_, err := l.Load(context.Background())
	require.ErrorIs(t, err, ErrGlossaryUnavailable)
}

func TestLoaderEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.json")
	writeFile(t, path, `{"default": {"characters": {}}}`)

	_, err := NewLoader(path, time.Hour).View(context.Background(), "")
	require.ErrorIs(t, err, ErrGlossaryEmpty)
}

func TestLoaderDownloadRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleGlossary))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, time.Hour)
	l.Delay = time.Millisecond

	doc, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Keys(), 4)
	assert.EqualValues(t, 3, calls.Load())
}

func TestLoaderDownloadClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, time.Hour)
	l.Delay = time.Millisecond

	_, err := l.Load(context.Background())
	require.ErrorIs(t, err, ErrGlossaryUnavailable)
	assert.EqualValues(t, 1, calls.Load())
}

func TestLoaderWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.json")
	writeFile(t, path, sampleGlossary)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLoader(path, time.Hour)
	_, err := l.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, l.Watch(ctx))

	writeFile(t, path, `{"default": {"characters": {"Zed": {"gender": "male"}}}}`)

	assert.Eventually(t, func() bool {
		doc, err := l.Load(ctx)
		return err == nil && len(doc.Keys()) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestLoaderWatchRemoteNoop(t *testing.T) {
	l := NewLoader("https://example.com/glossary.json", time.Hour)
	assert.NoError(t, l.Watch(context.Background()))
}
