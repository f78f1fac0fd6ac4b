package flight

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Cache coalesces concurrent loads of the same key and keeps each result fresh
// for a TTL. The last good value of a key survives expiry and failed reloads so
// callers can fall back to it.
type Cache[K comparable, V any] struct {
	finished map[K]*entry[V]
	fmu      *sync.RWMutex

	pending map[K]*job[V]
	pmu     *sync.Mutex

	work func(context.Context, K) (V, error)

	// ttl stores the freshness window in nanoseconds.
	// <= 0 means a value never goes stale.
	ttl *atomic.Int64

	now func() time.Time
}

type entry[V any] struct {
	val      V
	loaded   time.Time
	deadline time.Time // zero => never stale
}

type job[V any] struct {
	val  V
	err  error
	done chan struct{}
}

func NewCache[K comparable, V any](work func(context.Context, K) (V, error)) *Cache[K, V] {
	var ttl atomic.Int64
	ttl.Store(int64(time.Hour))
	return &Cache[K, V]{
		finished: make(map[K]*entry[V]),
		fmu:      new(sync.RWMutex),
		pending:  make(map[K]*job[V]),
		pmu:      new(sync.Mutex),
		work:     work,
		ttl:      &ttl,
		now:      time.Now,
	}
}

// Expiry sets the freshness window for future writes.
// d <= 0 keeps values fresh forever.
func (p *Cache[K, V]) Expiry(d time.Duration) {
	if d <= 0 {
		p.ttl.Store(0)
		return
	}
	p.ttl.Store(int64(d))
}

// Get returns a fresh value for k, running the loader at most once for all
// concurrent callers when the cached value is missing or stale.
func (p *Cache[K, V]) Get(ctx context.Context, k K) (V, error) {
	p.pmu.Lock()

	if e, ok := p.loadEntry(k); ok && p.fresh(e) {
		p.pmu.Unlock()
		return e.val, nil
	}

	// Join existing in-flight job if any.
	if pending, ok := p.pending[k]; ok {
		p.pmu.Unlock()
		return p.wait(ctx, pending)
	}

	j := &job[V]{done: make(chan struct{})}
	p.pending[k] = j
	p.pmu.Unlock()

	p.run(ctx, k, j)
	return j.val, j.err
}

// Force reloads k even if a fresh value is cached.
func (p *Cache[K, V]) Force(ctx context.Context, k K) (V, error) {
	var j *job[V]
	for {
		p.pmu.Lock()
		if existing, ok := p.pending[k]; ok {
			p.pmu.Unlock()
			<-existing.done
			continue
		}
		j = &job[V]{done: make(chan struct{})}
		p.pending[k] = j
		p.pmu.Unlock()
		break
	}

	p.run(ctx, k, j)
	return j.val, j.err
}

// Last returns the most recent successful value for k regardless of age.
func (p *Cache[K, V]) Last(k K) (V, time.Time, bool) {
	e, ok := p.loadEntry(k)
	if !ok {
		var zero V
		return zero, time.Time{}, false
	}
	return e.val, e.loaded, true
}

// Invalidate marks k stale. The value stays available through Last.
func (p *Cache[K, V]) Invalidate(k K) {
	p.fmu.Lock()
	if e, ok := p.finished[k]; ok {
		e.deadline = e.loaded
	}
	p.fmu.Unlock()
}

// --- internals ---

func (p *Cache[K, V]) run(ctx context.Context, k K, j *job[V]) {
	j.val, j.err = p.work(ctx, k)
	if j.err == nil {
		p.storeEntry(k, j.val)
	}

	p.pmu.Lock()
	close(j.done)
	delete(p.pending, k)
	p.pmu.Unlock()
}

func (p *Cache[K, V]) wait(ctx context.Context, j *job[V]) (V, error) {
	select {
	case <-j.done:
		return j.val, j.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (p *Cache[K, V]) fresh(e *entry[V]) bool {
	return e.deadline.IsZero() || p.now().Before(e.deadline)
}

func (p *Cache[K, V]) loadEntry(k K) (*entry[V], bool) {
	p.fmu.RLock()
	defer p.fmu.RUnlock()
	e, ok := p.finished[k]
	if !ok {
		return nil, false
	}
	cp := *e
	return &cp, true
}

func (p *Cache[K, V]) storeEntry(k K, val V) {
	now := p.now()
	e := &entry[V]{val: val, loaded: now}
	if d := time.Duration(p.ttl.Load()); d > 0 {
		e.deadline = now.Add(d)
	}

	p.fmu.Lock()
	p.finished[k] = e
	p.fmu.Unlock()
}
