package viewmodel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinxuez/social-map/internal/apiclient"
	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/socialgraph"
)

type fakeRemote struct {
	mu       sync.Mutex
	snap     socialgraph.Snapshot
	getErr   error
	saveErr  error
	gets     int
	saved    [][]socialgraph.Position
	entities []socialgraph.Node
	created  []socialgraph.EntityInput
}

func (f *fakeRemote) GetGraph(context.Context) (socialgraph.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return socialgraph.Snapshot{}, f.getErr
	}
	return f.snap, nil
}

func (f *fakeRemote) SavePositions(_ context.Context, p []socialgraph.Position) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved = append(f.saved, p)
	return len(p), nil
}

func (f *fakeRemote) ListEntities(context.Context, apiclient.EntityFilter) ([]socialgraph.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entities, nil
}

func (f *fakeRemote) CreateEntity(_ context.Context, in socialgraph.EntityInput) (socialgraph.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return socialgraph.Node{ID: "new", Name: in.Name, ContactEmail: in.ContactEmail, IsCurrentUser: in.IsCurrentUser}, nil
}

func (f *fakeRemote) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

func (f *fakeRemote) savedBatches() [][]socialgraph.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]socialgraph.Position(nil), f.saved...)
}

func TestSessionFlushCoalescesDrags(t *testing.T) {
	r := &fakeRemote{snap: socialgraph.Snapshot{Nodes: []socialgraph.Node{{ID: "a"}}}}
	s := NewSession(zerolog.Nop(), r, Options{})
	require.NoError(t, s.Refresh(context.Background()))

	s.DragEnd("a", 1, 1)
	s.DragEnd("a", 9, 8)
	n, _ := s.Graph().Node("a")
	assert.Equal(t, 9.0, n.X)

	require.NoError(t, s.Flush(context.Background()))
	batches := r.savedBatches()
	require.Len(t, batches, 1)
	assert.Equal(t, []socialgraph.Position{{ID: "a", X: 9, Y: 8}}, batches[0])
	assert.Equal(t, 0, s.DirtyCount())

	require.NoError(t, s.Flush(context.Background()))
	assert.Len(t, r.savedBatches(), 1, "empty buffer is not flushed")
}

func TestSessionFailedFlushKeepsBuffer(t *testing.T) {
	r := &fakeRemote{saveErr: errors.New("down")}
	s := NewSession(zerolog.Nop(), r, Options{})
	s.DragEnd("a", 1, 1)
	require.Error(t, s.Flush(context.Background()))
	assert.Equal(t, 1, s.DirtyCount())
}

func TestSessionDirtyPositionsSurviveRefresh(t *testing.T) {
	r := &fakeRemote{snap: socialgraph.Snapshot{Nodes: []socialgraph.Node{{ID: "a", X: fp(100), Y: fp(100)}}}}
	s := NewSession(zerolog.Nop(), r, Options{})
	require.NoError(t, s.Refresh(context.Background()))
	s.DragEnd("a", 5, 5)

	require.NoError(t, s.Refresh(context.Background()))
	n, _ := s.Graph().Node("a")
	assert.Equal(t, 5.0, n.X)
}

// dragDuringFetch moves a node while a snapshot is in flight.
type dragDuringFetch struct {
	*fakeRemote
	onGet func()
}

func (d dragDuringFetch) GetGraph(ctx context.Context) (socialgraph.Snapshot, error) {
	snap, err := d.fakeRemote.GetGraph(ctx)
	d.onGet()
	return snap, err
}

func TestSessionDragDuringFetchBeatsSnapshot(t *testing.T) {
	r := &fakeRemote{snap: socialgraph.Snapshot{Nodes: []socialgraph.Node{{ID: "a", X: fp(100), Y: fp(100)}}}}
	var s *Session
	remote := dragDuringFetch{fakeRemote: r, onGet: func() { s.DragEnd("a", 7, 8) }}
	s = NewSession(zerolog.Nop(), remote, Options{})

	require.NoError(t, s.Refresh(context.Background()))
	n, ok := s.Graph().Node("a")
	require.True(t, ok)
	assert.Equal(t, 7.0, n.X)
	assert.Equal(t, 8.0, n.Y)
	assert.Equal(t, 1, s.DirtyCount())
}

func TestSessionRefreshClearsOverlay(t *testing.T) {
	r := &fakeRemote{snap: socialgraph.Snapshot{Nodes: []socialgraph.Node{{ID: "a"}, {ID: "b"}}}}
	s := NewSession(zerolog.Nop(), r, Options{})
	require.NoError(t, s.Refresh(context.Background()))

	s.HideEntity("a")
	assert.Len(t, s.Graph().Nodes, 1)

	// the delete failed remotely, so the entity comes back on the next fetch
	require.NoError(t, s.Refresh(context.Background()))
	assert.Len(t, s.Graph().Nodes, 2)
}

func TestSessionRunPollsAndStopsOnClose(t *testing.T) {
	r := &fakeRemote{snap: socialgraph.Snapshot{Nodes: []socialgraph.Node{{ID: "a"}}}}
	s := NewSession(zerolog.Nop(), r, Options{PollInterval: 10 * time.Millisecond, FlushInterval: 5 * time.Millisecond})

	var mu sync.Mutex
	updates := 0
	s.OnUpdate(func(*Graph) {
		mu.Lock()
		updates++
		mu.Unlock()
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	require.Eventually(t, func() bool { return r.getCount() >= 3 }, time.Second, 5*time.Millisecond)
	s.DragEnd("a", 2, 3)
	require.Eventually(t, func() bool { return len(r.savedBatches()) == 1 }, time.Second, 5*time.Millisecond)

	s.Close()
	s.Close()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after Close")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Greater(t, updates, 0)
}

func TestSessionRunStopsOnContextCancel(t *testing.T) {
	r := &fakeRemote{getErr: errors.New("offline")}
	s := NewSession(zerolog.Nop(), r, Options{PollInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return r.getCount() >= 2 }, time.Second, 2*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestBackoffDuration(t *testing.T) {
	base := 10 * time.Second
	assert.Equal(t, base, backoffDuration(base, 0, time.Minute))
	assert.Equal(t, 20*time.Second, backoffDuration(base, 1, time.Minute))
	assert.Equal(t, 40*time.Second, backoffDuration(base, 2, time.Minute))
	assert.Equal(t, time.Minute, backoffDuration(base, 3, time.Minute))
	assert.Equal(t, time.Minute, backoffDuration(base, 50, time.Minute))
}

func TestEnsureCurrentUser(t *testing.T) {
	email := "ann@example.com"
	r := &fakeRemote{entities: []socialgraph.Node{
		{ID: "x", Name: "Ann", ContactEmail: &email, IsCurrentUser: false},
	}}

	n, created, err := EnsureCurrentUser(context.Background(), r, "", "ann@example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ann@example.com", n.Name)
	require.Len(t, r.created, 1)
	assert.True(t, r.created[0].IsCurrentUser)

	r.entities = append(r.entities, socialgraph.Node{ID: "me", ContactEmail: sp("ANN@example.com"), IsCurrentUser: true})
	n, created, err = EnsureCurrentUser(context.Background(), r, "Ann", email)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "me", n.ID)

	_, _, err = EnsureCurrentUser(context.Background(), r, "Ann", " ")
	assert.Error(t, err)
}

func TestEnsureCurrentUserKeepsShortProfileNames(t *testing.T) {
	for _, name := range []string{"J", "N/A", "  Jane   Doe "} {
		r := &fakeRemote{}
		n, created, err := EnsureCurrentUser(context.Background(), r, name, "jane.doe@example.com")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, naming.Clean(name), n.Name)
	}
}
