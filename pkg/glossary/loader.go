package glossary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"

	"pronounfix/pkg/flight"
)

const maxGlossaryBytes = 8 << 20

// Loader fetches a glossary document from a local path or an http(s) URL and
// caches it. A failed reload falls back to the last document that parsed.
type Loader struct {
	Source   string
	Client   *http.Client
	Attempts uint
	Delay    time.Duration

	cache *flight.Cache[string, *Document]
}

func NewLoader(source string, ttl time.Duration) *Loader {
	l := &Loader{
		Source:   source,
		Client:   &http.Client{Timeout: 15 * time.Second},
		Attempts: 3,
		Delay:    500 * time.Millisecond,
	}
	l.cache = flight.NewCache(l.fetch)
	l.cache.Expiry(ttl)
	return l
}

// Load returns the current glossary document.
func (l *Loader) Load(ctx context.Context) (*Document, error) {
	doc, err := l.cache.Get(ctx, l.Source)
	if err == nil {
		return doc, nil
	}
	if last, at, ok := l.cache.Last(l.Source); ok {
		log.Warn("glossary reload failed, using cached copy", "source", l.Source, "loaded", at.Format(time.RFC3339), "error", err)
		return last, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrGlossaryUnavailable, err)
}

// View loads the glossary and resolves it for a document URL.
func (l *Loader) View(ctx context.Context, url string) (View, error) {
	doc, err := l.Load(ctx)
	if err != nil {
		return View{}, err
	}
	v := doc.Resolve(url)
	if v.Empty() {
		return v, fmt.Errorf("%w: key %q", ErrGlossaryEmpty, v.Key)
	}
	return v, nil
}

// Reload drops the freshness of the cached document; the next Load refetches.
func (l *Loader) Reload() {
	l.cache.Invalidate(l.Source)
}

// Refresh refetches the glossary now and reports a failed fetch or parse even
// when a cached copy exists. On failure the cached copy stays in service.
func (l *Loader) Refresh(ctx context.Context) (*Document, error) {
	doc, err := l.cache.Force(ctx, l.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGlossaryUnavailable, err)
	}
	return doc, nil
}

func (l *Loader) remote() bool {
	return strings.HasPrefix(l.Source, "http://") || strings.HasPrefix(l.Source, "https://")
}

func (l *Loader) fetch(ctx context.Context, source string) (*Document, error) {
	var (
		data []byte
		err  error
	)
	if l.remote() {
		data, err = l.download(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	log.Debug("glossary loaded", "source", source, "keys", len(doc.Keys()))
	return doc, nil
}

func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	return retry.DoWithData(
		func() ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, retry.Unrecoverable(err)
			}
			resp, err := l.Client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode >= 500:
				return nil, fmt.Errorf("glossary server returned %d", resp.StatusCode)
			case resp.StatusCode != http.StatusOK:
				return nil, retry.Unrecoverable(fmt.Errorf("glossary server returned %d", resp.StatusCode))
			}
			return io.ReadAll(io.LimitReader(resp.Body, maxGlossaryBytes))
		},
		retry.Context(ctx),
		retry.Attempts(max(l.Attempts, 1)),
		retry.Delay(l.Delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug("retrying glossary download", "url", url, "attempt", n+1, "error", err)
		}),
	)
}
