package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/socialgraph"
	"github.com/kevinxuez/social-map/internal/sqlcgen"
)

var errSelfEdge = errors.New("an entity cannot be connected to itself")

// canonicalPair orders two entity ids the way graph_edges stores them.
func canonicalPair(x, y string) (string, string) {
	x, y = strings.ToLower(x), strings.ToLower(y)
	if y < x {
		return y, x
	}
	return x, y
}

// ensureEdge returns the edge between x and y, creating it when missing.
// created is false when the pair was already connected.
func ensureEdge(ctx context.Context, s Store, x, y string, label *string) (sqlcgen.Edge, bool, error) {
	a, b := canonicalPair(x, y)
	if a == b {
		return sqlcgen.Edge{}, false, errSelfEdge
	}
	pair := sqlcgen.EdgePairParams{AEntityID: a, BEntityID: b}

	existing, err := s.FindEdgeByPair(ctx, pair)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return sqlcgen.Edge{}, false, err
	}

	edge, err := s.CreateEdge(ctx, sqlcgen.CreateEdgeParams{AEntityID: a, BEntityID: b, Label: label})
	if err != nil {
		if hasPgCode(err, "23505") {
			// Lost a race with a concurrent create of the same pair.
			existing, ferr := s.FindEdgeByPair(ctx, pair)
			if ferr == nil {
				return existing, false, nil
			}
		}
		return sqlcgen.Edge{}, false, err
	}
	return edge, true, nil
}

func (h *Handler) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	var req socialgraph.EdgeInput
	if !h.decodeBody(w, r, &req) {
		return
	}
	req.Label = naming.OptionalPtr(req.Label)
	if !h.validateStruct(w, req) {
		return
	}
	if !h.ensureStore(w) {
		return
	}

	edge, created, err := ensureEdge(r.Context(), h.store, req.AID, req.BID, req.Label)
	if errors.Is(err, errSelfEdge) {
		h.writeError(w, http.StatusBadRequest, "self_edge", errSelfEdge.Error(), map[string]any{"a_id": req.AID, "b_id": req.BID})
		return
	}
	if err != nil {
		h.storeError(w, err, "edge", "create edge", "")
		return
	}

	if !created {
		h.writeJSON(w, http.StatusOK, socialgraph.Created{ID: edge.ID})
		return
	}
	h.invalidateGraph(r.Context())
	h.writeJSON(w, http.StatusCreated, socialgraph.Created{ID: edge.ID})
}

func (h *Handler) handlePatchEdge(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "edge")
	if !ok {
		return
	}
	var req socialgraph.EdgePatch
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !req.Label.Set {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "request validation failed", map[string]any{"label": "required"})
		return
	}
	label := naming.OptionalPtr(req.Label.Ptr())
	if label != nil && !h.validationResult(w, h.validate.Var(*label, "max=200")) {
		return
	}
	if !h.ensureStore(w) {
		return
	}

	n, err := h.store.UpdateEdgeLabel(r.Context(), sqlcgen.UpdateEdgeLabelParams{ID: id, Label: label})
	if err == nil && n == 0 {
		err = errNotFound
	}
	if err != nil {
		h.storeError(w, err, "edge", "update edge", id)
		return
	}

	h.invalidateGraph(r.Context())
	h.writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "edge")
	if !ok {
		return
	}
	if !h.ensureStore(w) {
		return
	}

	n, err := h.store.DeleteEdge(r.Context(), id)
	if err == nil && n == 0 {
		err = errNotFound
	}
	if err != nil {
		h.storeError(w, err, "edge", "delete edge", id)
		return
	}

	h.invalidateGraph(r.Context())
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
