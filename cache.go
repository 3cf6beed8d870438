package spacetraveling

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// PageCache holds generated pages by route. Stale pages keep being served
// while a single background generation replaces them; a failed generation
// leaves the previous page in place.
//
// Not-found pages live in memory only and are dropped once their
// revalidation window has passed. Pages purged from the store by another
// process disappear from memory at the next sync.
type PageCache struct {
	mu       sync.RWMutex
	pages    map[string]Page
	failures map[string]time.Time
	pending  map[string]struct{}
	group    singleflight.Group
	wg       sync.WaitGroup

	epoch  int64     // store epoch the pages were read at
	synced time.Time // last store epoch check
	swept  time.Time // last sweep of expired not-found pages

	store      *Store
	logger     Logger
	timeout    time.Duration // bound on background generations
	backoff    time.Duration // how long a failure is remembered
	syncEvery  time.Duration
	sweepEvery time.Duration
	now        func() time.Time
}

// Logger is the subset of echo.Logger the cache and the content client use.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NewPageCache creates a PageCache persisted to s. A nil store keeps pages
// in memory only.
func NewPageCache(s *Store, logger Logger) *PageCache {
	return &PageCache{
		pages:    make(map[string]Page),
		failures: make(map[string]time.Time),
		pending:  make(map[string]struct{}),
		store:    s,
		logger:   logger,
		timeout:    30 * time.Second,
		backoff:    10 * time.Second,
		syncEvery:  5 * time.Second,
		sweepEvery: time.Minute,
		now:        time.Now,
	}
}

// Load reads every persisted page into memory, replacing what is there.
func (c *PageCache) Load() error {
	if c.store == nil {
		return nil
	}
	epoch, err := c.store.Epoch()
	if err != nil {
		return err
	}
	return c.reload(epoch)
}

func (c *PageCache) reload(epoch int64) error {
	pages, err := c.store.ListPages()
	if err != nil {
		return err
	}
	loaded := make(map[string]Page, len(pages))
	for _, p := range pages {
		if p.negative() {
			continue
		}
		loaded[p.Key] = p
	}
	c.mu.Lock()
	c.pages = loaded
	c.epoch = epoch
	c.synced = c.now()
	c.mu.Unlock()
	return nil
}

// Sync reloads the pages when the store was purged or invalidated since they
// were read, by this process or another one such as the purge command.
func (c *PageCache) Sync() error {
	if c.store == nil {
		return nil
	}
	epoch, err := c.store.Epoch()
	if err != nil {
		return err
	}
	c.mu.RLock()
	same := epoch == c.epoch
	c.mu.RUnlock()
	if same {
		return nil
	}
	c.logger.Debugf("page cache: store changed (epoch %d), reloading", epoch)
	return c.reload(epoch)
}

func (c *PageCache) syncIfDue() {
	if c.store == nil {
		return
	}
	c.mu.Lock()
	now := c.now()
	if now.Sub(c.synced) < c.syncEvery {
		c.mu.Unlock()
		return
	}
	c.synced = now
	c.mu.Unlock()
	if err := c.Sync(); err != nil {
		c.logger.Errorf("page cache: sync: %v", err)
	}
}

// followEpoch records a bump of the store epoch made by this cache, so it
// does not reload its own change.
func (c *PageCache) followEpoch() error {
	epoch, err := c.store.Epoch()
	if err != nil {
		return err
	}
	c.mu.Lock()
	if epoch == c.epoch+1 {
		c.epoch = epoch
	}
	c.mu.Unlock()
	return nil
}

// Lookup returns the page cached under key, fresh or stale. An expired
// not-found page is dropped instead.
func (c *PageCache) Lookup(key string) (Page, bool) {
	c.syncIfDue()

	c.mu.RLock()
	p, ok := c.pages[key]
	c.mu.RUnlock()
	if !ok {
		return Page{}, false
	}
	if p.negative() && !c.Fresh(p) {
		c.mu.Lock()
		if cur, ok := c.pages[key]; ok && cur.GeneratedAt.Equal(p.GeneratedAt) {
			delete(c.pages, key)
		}
		c.mu.Unlock()
		return Page{}, false
	}
	return p, true
}

// Fresh reports whether p is inside its revalidation window.
func (c *PageCache) Fresh(p Page) bool {
	return p.Fresh(c.now())
}

// Put stores p in memory and in the persistent tier. Not-found pages are
// kept in memory only; one replacing a stored page removes that page.
func (c *PageCache) Put(p Page) error {
	if p.GeneratedAt.IsZero() {
		p.GeneratedAt = c.now()
	}
	c.mu.Lock()
	prev, had := c.pages[p.Key]
	c.pages[p.Key] = p
	delete(c.failures, p.Key)
	if p.negative() {
		c.sweepLocked()
	}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if !p.negative() {
		return c.store.SavePage(p)
	}
	if had && !prev.negative() {
		if err := c.store.DeletePage(p.Key); err != nil {
			return err
		}
		return c.followEpoch()
	}
	return nil
}

// sweepLocked drops expired not-found pages, at most once per sweepEvery.
// c.mu must be held.
func (c *PageCache) sweepLocked() {
	now := c.now()
	if now.Sub(c.swept) < c.sweepEvery {
		return
	}
	c.swept = now
	for key, p := range c.pages {
		if p.negative() && !p.Fresh(now) {
			delete(c.pages, key)
		}
	}
}

// Generate runs fn for key and caches its page. Concurrent calls for the same
// key share one run of fn. On error the cached page, if any, is kept.
func (c *PageCache) Generate(ctx context.Context, key string, fn Generator) (Page, error) {
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		p, err := fn(ctx)
		if err != nil {
			c.mu.Lock()
			c.failures[key] = c.now()
			c.mu.Unlock()
			return Page{}, err
		}
		p.Key = key
		if err := c.Put(p); err != nil {
			c.logger.Errorf("page cache: persist %s: %v", key, err)
		}
		return p, nil
	})
	if err != nil {
		return Page{}, err
	}
	return v.(Page), nil
}

// Revalidate regenerates key in the background unless a regeneration is
// already running. It reports whether a new one was started. The context's
// values are kept but not its cancellation.
func (c *PageCache) Revalidate(ctx context.Context, key string, fn Generator) bool {
	c.mu.Lock()
	if _, ok := c.pending[key]; ok {
		c.mu.Unlock()
		return false
	}
	c.pending[key] = struct{}{}
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			delete(c.pending, key)
			c.mu.Unlock()
		}()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		if _, err := c.Generate(bg, key, fn); err != nil {
			c.logger.Errorf("page cache: regenerate %s: %v", key, err)
			return
		}
		c.logger.Debugf("page cache: regenerated %s", key)
	}()
	return true
}

// Pending reports whether a background generation of key is running.
func (c *PageCache) Pending(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.pending[key]
	return ok
}

// RecentlyFailed reports whether the last generation of key failed within
// the backoff window.
func (c *PageCache) RecentlyFailed(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	at, ok := c.failures[key]
	return ok && c.now().Sub(at) < c.backoff
}

// Invalidate drops the page cached under key.
func (c *PageCache) Invalidate(key string) error {
	c.mu.Lock()
	delete(c.pages, key)
	delete(c.failures, key)
	c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	if err := c.store.DeletePage(key); err != nil {
		return err
	}
	return c.followEpoch()
}

// Purge drops every cached page.
func (c *PageCache) Purge() error {
	c.mu.Lock()
	c.pages = make(map[string]Page)
	c.failures = make(map[string]time.Time)
	c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	if err := c.store.DeleteAllPages(); err != nil {
		return err
	}
	return c.followEpoch()
}

// Wait blocks until background generations finish or ctx is done.
func (c *PageCache) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("page cache: background generations still running"), ctx.Err())
	}
}
