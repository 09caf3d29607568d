package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinxuez/social-map/internal/socialgraph"
)

type fakePoster struct {
	mu     sync.Mutex
	events []socialgraph.TelemetryEvent
	err    error
}

func (f *fakePoster) SendTelemetry(_ context.Context, ev socialgraph.TelemetryEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePoster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestEventIsSentInBackground(t *testing.T) {
	p := &fakePoster{}
	s := NewSender(zerolog.Nop(), p, "ann@example.com")
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	ctx, cancel := context.WithCancel(context.Background())
	s.Event(ctx, "entity_saved", map[string]any{"id": "a"})
	cancel()

	require.Eventually(t, func() bool { return p.count() == 1 }, time.Second, 5*time.Millisecond)
	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, "entity_saved", p.events[0].Type)
	assert.Equal(t, int64(1700000000000), p.events[0].TS)
	assert.Equal(t, "ann@example.com", p.events[0].User)
}

func TestSendSwallowsErrors(t *testing.T) {
	p := &fakePoster{err: errors.New("offline")}
	s := NewSender(zerolog.Nop(), p, "")
	s.Send(context.Background(), "graph_loaded", nil)
	assert.Equal(t, 1, p.count())
}

func TestNilSenderIsNoop(t *testing.T) {
	var s *Sender
	s.Event(context.Background(), "x", nil)
	s.Send(context.Background(), "x", nil)
}
