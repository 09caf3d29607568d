package viewmodel

import (
	"sort"
	"sync"

	"github.com/kevinxuez/social-map/internal/socialgraph"
)

// DirtyPositions buffers drag results until they are flushed. It keeps only
// the last position per node.
type DirtyPositions struct {
	mu      sync.Mutex
	pending map[string]socialgraph.Position
}

func NewDirtyPositions() *DirtyPositions {
	return &DirtyPositions{pending: make(map[string]socialgraph.Position)}
}

func (d *DirtyPositions) Record(id string, x, y float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[id] = socialgraph.Position{ID: id, X: x, Y: y}
}

func (d *DirtyPositions) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Pending returns the buffered positions sorted by id.
func (d *DirtyPositions) Pending() []socialgraph.Position {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]socialgraph.Position, 0, len(d.pending))
	for _, p := range d.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Pinned returns a copy of the buffer keyed by node id.
func (d *DirtyPositions) Pinned() map[string]socialgraph.Position {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]socialgraph.Position, len(d.pending))
	for id, p := range d.pending {
		out[id] = p
	}
	return out
}

// Clear removes flushed entries. An entry moved again while the flush was in
// flight stays buffered for the next flush.
func (d *DirtyPositions) Clear(flushed []socialgraph.Position) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range flushed {
		if cur, ok := d.pending[p.ID]; ok && cur == p {
			delete(d.pending, p.ID)
		}
	}
}
