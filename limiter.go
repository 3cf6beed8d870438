package spacetraveling

import (
	"sync"
	"time"
)

// GenerationLimiter caps how many on-demand page generations each IP address
// may start per window.
type GenerationLimiter struct {
	mu     sync.Mutex
	starts map[string][]time.Time
	max    int
	window time.Duration
	done   chan struct{}
	once   sync.Once
}

// NewGenerationLimiter creates a GenerationLimiter that allows max starts per
// window. Call Stop to end its cleanup goroutine.
func NewGenerationLimiter(max int, window time.Duration) *GenerationLimiter {
	l := &GenerationLimiter{
		starts: make(map[string][]time.Time),
		max:    max,
		window: window,
		done:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *GenerationLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for ip, hits := range l.starts {
			kept := prune(hits, cutoff)
			if len(kept) == 0 {
				delete(l.starts, ip)
			} else {
				l.starts[ip] = kept
			}
		}
		l.mu.Unlock()
	}
}

// Allow reports whether ip may start another generation and, if so,
// records it.
func (l *GenerationLimiter) Allow(ip string) bool {
	cutoff := time.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.starts[ip], cutoff)
	if len(kept) >= l.max {
		l.starts[ip] = kept
		return false
	}
	l.starts[ip] = append(kept, time.Now())
	return true
}

// Stop ends the cleanup goroutine.
func (l *GenerationLimiter) Stop() {
	l.once.Do(func() { close(l.done) })
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
