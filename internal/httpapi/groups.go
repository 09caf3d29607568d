package httpapi

import (
	"net/http"

	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/socialgraph"
	"github.com/kevinxuez/social-map/internal/sqlcgen"
)

func toGroupRecord(g sqlcgen.Group) socialgraph.GroupRecord {
	return socialgraph.GroupRecord{
		ID:            g.ID,
		Name:          g.Name,
		Description:   g.Description,
		ColorHex:      g.ColorHex,
		ParentGroupID: g.ParentGroupID,
	}
}

func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStore(w) {
		return
	}

	rows, err := h.store.ListGroups(r.Context())
	if err != nil {
		h.storeError(w, err, "groups", "list groups", "")
		return
	}

	resp := make([]socialgraph.GroupRecord, 0, len(rows))
	for _, g := range rows {
		resp = append(resp, toGroupRecord(g))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req socialgraph.GroupInput
	if !h.decodeBody(w, r, &req) {
		return
	}
	req.Name = naming.Clean(req.Name)
	req.Description = naming.OptionalPtr(req.Description)
	req.ColorHex = naming.OptionalPtr(req.ColorHex)
	req.ParentGroupID = naming.OptionalPtr(req.ParentGroupID)
	if !h.validateStruct(w, req) {
		return
	}
	if !h.ensureStore(w) {
		return
	}

	row, err := h.store.CreateGroup(r.Context(), sqlcgen.CreateGroupParams{
		Name:          req.Name,
		Description:   req.Description,
		ColorHex:      req.ColorHex,
		ParentGroupID: req.ParentGroupID,
	})
	if err != nil {
		h.storeError(w, err, "group", "create group", "")
		return
	}

	h.invalidateGraph(r.Context())
	h.writeJSON(w, http.StatusCreated, socialgraph.Created{ID: row.ID})
}

func (h *Handler) handlePatchGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "group")
	if !ok {
		return
	}
	var req socialgraph.GroupPatch
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Name.Set {
		if !req.Name.Valid || naming.Clean(req.Name.V) == "" {
			h.writeError(w, http.StatusBadRequest, "validation_failed", "request validation failed", map[string]any{"name": "required"})
			return
		}
		req.Name.V = naming.Clean(req.Name.V)
	}
	if req.ParentGroupID.Set {
		req.ParentGroupID = socialgraph.FromPtr(naming.OptionalPtr(req.ParentGroupID.Ptr()))
		if req.ParentGroupID.Valid {
			if !h.validationResult(w, h.validate.Var(req.ParentGroupID.V, "uuid")) {
				return
			}
			if containsID([]string{id}, req.ParentGroupID.V) {
				h.writeError(w, http.StatusBadRequest, "validation_failed", "a group cannot be its own parent", map[string]any{"parent_group_id": id})
				return
			}
		}
	}
	if !h.ensureStore(w) {
		return
	}

	ctx := r.Context()
	err := h.inTx(ctx, func(s Store) error {
		cur, err := s.GetGroup(ctx, id)
		if err != nil {
			return err
		}
		params := sqlcgen.UpdateGroupParams{
			ID:            cur.ID,
			Name:          cur.Name,
			Description:   cur.Description,
			ColorHex:      cur.ColorHex,
			ParentGroupID: cur.ParentGroupID,
		}
		if req.Name.Set {
			params.Name = req.Name.V
		}
		if req.Description.Set {
			params.Description = naming.OptionalPtr(req.Description.Ptr())
		}
		if req.ColorHex.Set {
			params.ColorHex = naming.OptionalPtr(req.ColorHex.Ptr())
		}
		if req.ParentGroupID.Set {
			params.ParentGroupID = req.ParentGroupID.Ptr()
		}
		_, err = s.UpdateGroup(ctx, params)
		return err
	})
	if err != nil {
		h.storeError(w, err, "group", "update group", id)
		return
	}

	h.invalidateGraph(ctx)
	h.writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

// handleDeleteGroup moves entities whose main group is being deleted to
// their earliest-joined remaining group before removing it.
func (h *Handler) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "group")
	if !ok {
		return
	}
	if !h.ensureStore(w) {
		return
	}

	ctx := r.Context()
	err := h.inTx(ctx, func(s Store) error {
		if _, err := s.ReassignMainGroup(ctx, id); err != nil {
			return err
		}
		if err := s.DeleteGroupMemberships(ctx, id); err != nil {
			return err
		}
		n, err := s.DeleteGroup(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return errNotFound
		}
		return nil
	})
	if err != nil {
		h.storeError(w, err, "group", "delete group", id)
		return
	}

	h.invalidateGraph(ctx)
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
