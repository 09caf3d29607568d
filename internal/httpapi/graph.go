package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/kevinxuez/social-map/internal/graphcache"
	"github.com/kevinxuez/social-map/internal/socialgraph"
	"github.com/kevinxuez/social-map/internal/sqlcgen"
)

func (h *Handler) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStore(w) {
		return
	}
	ctx := r.Context()

	cached, ok, err := h.cache.Get(ctx, graphcache.SnapshotKey)
	if err != nil {
		h.log.Warn().Err(err).Msg("graph cache read failed")
	}
	if ok {
		h.metrics.ObserveGraphCache(true)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}
	h.metrics.ObserveGraphCache(false)

	snap, err := buildSnapshot(ctx, h.store)
	if err != nil {
		h.storeError(w, err, "graph", "load graph", "")
		return
	}

	b, err := json.Marshal(snap)
	if err != nil {
		h.log.Error().Err(err).Msg("encode graph failed")
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to encode graph", nil)
		return
	}
	if err := h.cache.Set(ctx, graphcache.SnapshotKey, b, graphcache.DefaultTTL); err != nil {
		h.log.Warn().Err(err).Msg("graph cache write failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// invalidateGraph drops the cached snapshot after a write. Failures only
// leave a stale snapshot for at most the cache TTL.
func (h *Handler) invalidateGraph(ctx context.Context) {
	if err := h.cache.Delete(context.WithoutCancel(ctx), graphcache.SnapshotKey); err != nil {
		h.log.Warn().Err(err).Msg("graph cache invalidation failed")
	}
}

// membershipIndex groups memberships, in join order, by entity and by group.
type membershipIndex struct {
	byEntity map[string][]string
	byGroup  map[string][]string
}

func indexMemberships(ms []sqlcgen.Membership) membershipIndex {
	idx := membershipIndex{
		byEntity: make(map[string][]string),
		byGroup:  make(map[string][]string),
	}
	for _, m := range ms {
		idx.byEntity[m.EntityID] = append(idx.byEntity[m.EntityID], m.GroupID)
		idx.byGroup[m.GroupID] = append(idx.byGroup[m.GroupID], m.EntityID)
	}
	return idx
}

func buildSnapshot(ctx context.Context, s Store) (socialgraph.Snapshot, error) {
	groups, err := s.ListGroups(ctx)
	if err != nil {
		return socialgraph.Snapshot{}, err
	}
	entities, err := s.ListEntities(ctx, sqlcgen.ListEntitiesParams{})
	if err != nil {
		return socialgraph.Snapshot{}, err
	}
	memberships, err := s.ListMemberships(ctx)
	if err != nil {
		return socialgraph.Snapshot{}, err
	}
	edges, err := s.ListEdges(ctx)
	if err != nil {
		return socialgraph.Snapshot{}, err
	}

	idx := indexMemberships(memberships)
	snap := socialgraph.Snapshot{
		Nodes:  make([]socialgraph.Node, 0, len(entities)),
		Links:  make([]socialgraph.Link, 0, len(edges)),
		Groups: make([]socialgraph.Group, 0, len(groups)),
	}
	for _, e := range entities {
		snap.Nodes = append(snap.Nodes, toNode(e, idx.byEntity[e.ID]))
	}
	for _, e := range edges {
		snap.Links = append(snap.Links, socialgraph.Link{
			ID:     e.ID,
			Source: e.AEntityID,
			Target: e.BEntityID,
			Label:  e.Label,
		})
	}
	for _, g := range groups {
		snap.Groups = append(snap.Groups, socialgraph.Group{
			ID:        g.ID,
			Name:      g.Name,
			Color:     g.ColorHex,
			ParentID:  g.ParentGroupID,
			MemberIDs: idx.byGroup[g.ID],
		})
	}
	snap.Normalize()
	return snap, nil
}

func toNode(e sqlcgen.Entity, groupIDs []string) socialgraph.Node {
	if groupIDs == nil {
		groupIDs = []string{}
	}
	return socialgraph.Node{
		ID:            e.ID,
		Name:          e.Name,
		ContactEmail:  e.ContactEmail,
		ContactPhone:  e.ContactPhone,
		Notes:         e.Notes,
		GroupIDs:      groupIDs,
		MainGroupID:   e.MainGroupID,
		IsCurrentUser: e.IsCurrentUser,
		X:             e.PosX,
		Y:             e.PosY,
	}
}

func (h *Handler) handleSavePositions(w http.ResponseWriter, r *http.Request) {
	var req []socialgraph.Position
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !h.ensureStore(w) {
		return
	}

	updated := 0
	err := h.inTx(r.Context(), func(s Store) error {
		for _, p := range req {
			// Unknown or malformed ids are not counted.
			if _, err := uuid.Parse(p.ID); err != nil {
				continue
			}
			n, err := s.UpdateEntityPosition(r.Context(), sqlcgen.UpdateEntityPositionParams{ID: p.ID, X: p.X, Y: p.Y})
			if err != nil {
				return err
			}
			updated += int(n)
		}
		return nil
	})
	if err != nil {
		h.storeError(w, err, "positions", "save positions", "")
		return
	}

	h.metrics.ObservePositions(len(req), updated)
	if updated > 0 {
		h.invalidateGraph(r.Context())
	}
	h.writeJSON(w, http.StatusOK, socialgraph.PositionsResult{Updated: updated})
}
