package viewmodel

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kevinxuez/social-map/internal/geometry"
	"github.com/kevinxuez/social-map/internal/socialgraph"
)

// Remote is the part of the API client the session needs.
type Remote interface {
	GetGraph(ctx context.Context) (socialgraph.Snapshot, error)
	SavePositions(ctx context.Context, positions []socialgraph.Position) (int, error)
}

type Options struct {
	PollInterval  time.Duration
	FlushInterval time.Duration
	MaxBackoff    time.Duration
	Spread        float64
	HullPadding   float64
}

// Session owns the live graph and the two background loops that keep it in
// sync: a snapshot poll and a dirty position flush.
type Session struct {
	log    zerolog.Logger
	remote Remote
	rec    Reconciler

	pollInterval  time.Duration
	flushInterval time.Duration
	maxBackoff    time.Duration
	hullPadding   float64

	mu        sync.RWMutex
	graph     *Graph
	listeners []func(*Graph)

	overlay Overlay
	dirty   *DirtyPositions

	refresh   chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func NewSession(log zerolog.Logger, remote Remote, opts Options) *Session {
	pi := opts.PollInterval
	if pi <= 0 {
		pi = 10 * time.Second
	}
	fi := opts.FlushInterval
	if fi <= 0 {
		fi = 1500 * time.Millisecond
	}
	mb := opts.MaxBackoff
	if mb <= 0 {
		mb = time.Minute
	}
	pad := opts.HullPadding
	if pad <= 0 {
		pad = geometry.DefaultPadding
	}
	return &Session{
		log:           log,
		remote:        remote,
		rec:           Reconciler{Spread: opts.Spread},
		pollInterval:  pi,
		flushInterval: fi,
		maxBackoff:    mb,
		hullPadding:   pad,
		graph:         Empty(),
		dirty:         NewDirtyPositions(),
		refresh:       make(chan struct{}, 1),
		closed:        make(chan struct{}),
	}
}

// Graph returns the current graph with locally deleted records hidden.
func (s *Session) Graph() *Graph {
	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()
	return s.overlay.Apply(g)
}

func (s *Session) Hulls() []geometry.GroupHull {
	return s.Graph().Hulls(s.hullPadding)
}

// OnUpdate registers fn to receive each new graph. fn runs on the goroutine
// that produced the update and must not block.
func (s *Session) OnUpdate(fn func(*Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// DragEnd moves a node locally and buffers the position for the next flush.
func (s *Session) DragEnd(id string, x, y float64) {
	s.dirty.Record(id, x, y)
	s.mu.Lock()
	s.graph = s.graph.WithPosition(id, x, y)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) DirtyCount() int { return s.dirty.Len() }

// HideEntity removes an entity from the view ahead of its remote delete.
func (s *Session) HideEntity(id string) {
	s.overlay.HideEntity(id)
	s.notify()
}

func (s *Session) HideGroup(id string) {
	s.overlay.HideGroup(id)
	s.notify()
}

// RequestRefresh asks the poll loop to fetch now. It never blocks.
func (s *Session) RequestRefresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// Refresh fetches a snapshot and reconciles it into the live graph.
func (s *Session) Refresh(ctx context.Context) error {
	snap, err := s.remote.GetGraph(ctx)
	if err != nil {
		return err
	}
	snap.Normalize()

	// Pinned is read under mu so a DragEnd cannot land between the read and
	// the swap.
	s.mu.Lock()
	s.graph = s.rec.Reconcile(s.graph, snap, s.dirty.Pinned())
	s.mu.Unlock()
	s.overlay.Reset()
	s.notify()
	return nil
}

// Flush sends buffered positions in one call. It is a no-op when nothing is
// buffered.
func (s *Session) Flush(ctx context.Context) error {
	pending := s.dirty.Pending()
	if len(pending) == 0 {
		return nil
	}
	n, err := s.remote.SavePositions(ctx, pending)
	if err != nil {
		return err
	}
	s.dirty.Clear(pending)
	s.log.Debug().Int("sent", len(pending)).Int("updated", n).Msg("positions flushed")
	s.RequestRefresh()
	return nil
}

// Run fetches immediately, then polls and flushes until ctx is done or
// Close is called. Failures are logged and retried on the next tick.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.closed:
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.pollLoop(ctx) })
	g.Go(func() error { return s.flushLoop(ctx) })
	return g.Wait()
}

// Close stops Run. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *Session) pollLoop(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	var consecutiveFailures int
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.refresh:
			timer.Stop()
		case <-timer.C:
		}

		if err := s.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			consecutiveFailures++
			s.log.Warn().Err(err).Int("failures", consecutiveFailures).Msg("graph refresh failed")
		} else {
			consecutiveFailures = 0
		}

		timer.Reset(backoffDuration(s.pollInterval, consecutiveFailures, s.maxBackoff))
	}
}

func (s *Session) flushLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := s.Flush(ctx); err != nil && ctx.Err() == nil {
			s.log.Debug().Err(err).Int("pending", s.dirty.Len()).Msg("position flush failed")
		}
	}
}

func (s *Session) notify() {
	g := s.Graph()
	s.mu.RLock()
	listeners := append([]func(*Graph){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(g)
	}
}

func backoffDuration(base time.Duration, failures int, ceiling time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}

	// base * 2^failures, capped.
	if failures > 6 {
		failures = 6
	}
	d := base * time.Duration(1<<failures)
	if d > ceiling {
		return ceiling
	}
	return d
}
