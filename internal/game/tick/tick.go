// Package tick drives the simulation: a single scheduler goroutine
// delivers measured wall-clock deltas to named subscribers in
// registration order.
package tick

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pokengu/idlemon/internal/storage"
)

const (
	// DefaultInterval is the live tick cadence.
	DefaultInterval = 500 * time.Millisecond
	// DefaultMarkerEvery is how often the last-tick marker is persisted.
	DefaultMarkerEvery = 5 * time.Second
)

// Subscriber receives the elapsed wall-clock time since the previous
// delivery. Subscribers run on the scheduler goroutine, one at a time.
type Subscriber func(elapsed time.Duration)

// Scheduler delivers ticks to subscribers in registration order.
//
// Invariant: deliveries never overlap; every subscriber sees the same
// elapsed value for a given tick.
type Scheduler struct {
	interval    time.Duration
	markerEvery time.Duration
	markers     storage.MarkerStore
	log         *zap.Logger
	now         func() time.Time

	mu    sync.Mutex
	names []string
	subs  map[string]Subscriber

	last       time.Time
	lastMarker time.Time

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewScheduler returns a stopped scheduler. A nil markers store disables
// marker persistence and catch-up.
//
// Precondition: interval > 0.
func NewScheduler(interval, markerEvery time.Duration, markers storage.MarkerStore, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		panic("tick.NewScheduler: interval must be > 0")
	}
	if markerEvery <= 0 {
		markerEvery = DefaultMarkerEvery
	}
	return &Scheduler{
		interval:    interval,
		markerEvery: markerEvery,
		markers:     markers,
		log:         log,
		now:         time.Now,
		subs:        make(map[string]Subscriber),
		done:        make(chan struct{}),
	}
}

// Subscribe registers fn under name. Re-subscribing an existing name
// replaces the callback in its original position.
func (s *Scheduler) Subscribe(name string, fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subs[name]; !exists {
		s.names = append(s.names, name)
	}
	s.subs[name] = fn
}

// Unsubscribe removes the subscriber under name.
func (s *Scheduler) Unsubscribe(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subs[name]; !exists {
		return
	}
	delete(s.subs, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
}

// CatchUp delivers the offline gap once, synchronously, before the live
// loop starts. The gap is measured from the persisted marker; without a
// marker (first run, or no marker store) nothing is delivered. A marker
// that cannot be loaded is logged and skipped; startup proceeds without
// the gap.
//
// Postcondition: the next live tick measures from now, not the marker.
func (s *Scheduler) CatchUp(ctx context.Context) {
	now := s.now()
	s.last = now
	if s.markers == nil {
		return
	}
	marker, err := s.markers.LoadMarker(ctx)
	if err != nil {
		s.log.Warn("loading tick marker failed, skipping catch-up", zap.Error(err))
		return
	}
	if !marker.IsZero() {
		if gap := now.Sub(marker); gap > 0 {
			s.deliver(gap)
		}
	}
	s.saveMarker(ctx, now)
}

// Start launches the live tick loop. It runs until ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	if s.last.IsZero() {
		s.last = s.now()
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				now := s.now()
				s.deliver(now.Sub(s.last))
				s.last = now
				if s.markers != nil && now.Sub(s.lastMarker) >= s.markerEvery {
					s.saveMarker(ctx, now)
				}
			}
		}
	}()
}

// Stop halts the live loop and waits for the in-flight delivery to
// finish. Idempotent.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

// deliver invokes every subscriber in registration order. A panicking
// subscriber is logged and skipped; the rest still receive the tick.
func (s *Scheduler) deliver(elapsed time.Duration) {
	s.mu.Lock()
	names := make([]string, len(s.names))
	copy(names, s.names)
	subs := make(map[string]Subscriber, len(s.subs))
	for k, v := range s.subs {
		subs[k] = v
	}
	s.mu.Unlock()

	for _, name := range names {
		s.invoke(name, subs[name], elapsed)
	}
}

func (s *Scheduler) invoke(name string, fn Subscriber, elapsed time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tick subscriber panicked",
				zap.String("subscriber", name),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	fn(elapsed)
}

// saveMarker persists the marker, keeping the previous cadence stamp on
// failure so the next tick retries.
func (s *Scheduler) saveMarker(ctx context.Context, now time.Time) {
	if err := s.markers.SaveMarker(ctx, now); err != nil {
		s.log.Warn("saving tick marker failed", zap.Error(err))
		return
	}
	s.lastMarker = now
}
