package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/socialgraph"
	"github.com/kevinxuez/social-map/internal/sqlcgen"
)

func (h *Handler) handleListEntities(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStore(w) {
		return
	}

	var params sqlcgen.ListEntitiesParams
	params.Search = naming.Optional(r.URL.Query().Get("search"))
	if gid := naming.Optional(r.URL.Query().Get("group_id")); gid != nil {
		if _, err := uuid.Parse(*gid); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_id", "group_id is not a valid uuid", map[string]any{"group_id": *gid})
			return
		}
		params.GroupID = gid
	}

	rows, err := h.store.ListEntities(r.Context(), params)
	if err != nil {
		h.storeError(w, err, "entities", "list entities", "")
		return
	}
	memberships, err := h.store.ListMemberships(r.Context())
	if err != nil {
		h.storeError(w, err, "entities", "list entities", "")
		return
	}
	idx := indexMemberships(memberships)

	resp := make([]socialgraph.Node, 0, len(rows))
	for _, e := range rows {
		resp = append(resp, toNode(e, idx.byEntity[e.ID]))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// sanitizeEntityInput trims text, turns blanks into nulls and dedupes id
// lists. The main group defaults to the first group and is always a member.
func sanitizeEntityInput(in socialgraph.EntityInput) socialgraph.EntityInput {
	in.Name = naming.Clean(in.Name)
	in.ContactEmail = naming.Email(in.ContactEmail)
	in.ContactPhone = naming.OptionalPtr(in.ContactPhone)
	in.Notes = naming.OptionalPtr(in.Notes)
	in.MainGroupID = naming.OptionalPtr(in.MainGroupID)
	in.GroupsIn = naming.DedupeIDs(in.GroupsIn)
	in.ConnectedPeople = naming.DedupeIDs(in.ConnectedPeople)

	if in.MainGroupID == nil && len(in.GroupsIn) > 0 {
		main := in.GroupsIn[0]
		in.MainGroupID = &main
	}
	if in.MainGroupID != nil && !containsID(in.GroupsIn, *in.MainGroupID) {
		in.GroupsIn = append([]string{*in.MainGroupID}, in.GroupsIn...)
	}
	return in
}

func (h *Handler) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	var req socialgraph.EntityInput
	if !h.decodeBody(w, r, &req) {
		return
	}
	req = sanitizeEntityInput(req)
	if !h.validateStruct(w, req) {
		return
	}
	if !h.ensureStore(w) {
		return
	}

	ctx := r.Context()
	var out socialgraph.Node
	err := h.inTx(ctx, func(s Store) error {
		row, err := s.CreateEntity(ctx, sqlcgen.CreateEntityParams{
			Name:          req.Name,
			ContactEmail:  req.ContactEmail,
			ContactPhone:  req.ContactPhone,
			Notes:         req.Notes,
			MainGroupID:   req.MainGroupID,
			IsCurrentUser: req.IsCurrentUser,
		})
		if err != nil {
			return err
		}
		for _, gid := range req.GroupsIn {
			if err := s.AddMembership(ctx, sqlcgen.AddMembershipParams{EntityID: row.ID, GroupID: gid}); err != nil {
				return err
			}
		}
		for _, pid := range req.ConnectedPeople {
			if _, _, err := ensureEdge(ctx, s, row.ID, pid, nil); err != nil && !errors.Is(err, errSelfEdge) {
				return err
			}
		}
		groupIDs, err := s.ListEntityGroupIDs(ctx, row.ID)
		if err != nil {
			return err
		}
		out = toNode(row, groupIDs)
		return nil
	})
	if err != nil {
		h.storeError(w, err, "entity", "create entity", "")
		return
	}

	h.invalidateGraph(ctx)
	h.writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) validateEntityPatch(w http.ResponseWriter, p *socialgraph.EntityPatch) bool {
	if p.Name.Set {
		if !p.Name.Valid || naming.Clean(p.Name.V) == "" {
			h.writeError(w, http.StatusBadRequest, "validation_failed", "request validation failed", map[string]any{"name": "required"})
			return false
		}
		p.Name.V = naming.Clean(p.Name.V)
		if !h.validationResult(w, h.validate.Var(p.Name.V, "max=200")) {
			return false
		}
	}
	if p.ContactEmail.Set {
		p.ContactEmail = socialgraph.FromPtr(naming.Email(p.ContactEmail.Ptr()))
		if p.ContactEmail.Valid && !h.validationResult(w, h.validate.Var(p.ContactEmail.V, "email")) {
			return false
		}
	}
	if p.ContactPhone.Set {
		p.ContactPhone = socialgraph.FromPtr(naming.OptionalPtr(p.ContactPhone.Ptr()))
	}
	if p.Notes.Set {
		p.Notes = socialgraph.FromPtr(naming.OptionalPtr(p.Notes.Ptr()))
	}
	if p.MainGroupID.Set {
		p.MainGroupID = socialgraph.FromPtr(naming.OptionalPtr(p.MainGroupID.Ptr()))
		if p.MainGroupID.Valid && !h.validationResult(w, h.validate.Var(p.MainGroupID.V, "uuid")) {
			return false
		}
	}
	if p.GroupsIn.Set {
		p.GroupsIn = socialgraph.Some(naming.DedupeIDs(p.GroupsIn.V))
		if !h.validationResult(w, h.validate.Var(p.GroupsIn.V, "dive,uuid")) {
			return false
		}
	}
	if p.ConnectedPeople.Set {
		p.ConnectedPeople = socialgraph.Some(naming.DedupeIDs(p.ConnectedPeople.V))
		if !h.validationResult(w, h.validate.Var(p.ConnectedPeople.V, "dive,uuid")) {
			return false
		}
	}
	return true
}

func (h *Handler) handlePatchEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "entity")
	if !ok {
		return
	}
	var req socialgraph.EntityPatch
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !h.validateEntityPatch(w, &req) {
		return
	}
	if !h.ensureStore(w) {
		return
	}

	ctx := r.Context()
	var out socialgraph.Node
	err := h.inTx(ctx, func(s Store) error {
		cur, err := s.GetEntity(ctx, id)
		if err != nil {
			return err
		}
		params := sqlcgen.UpdateEntityParams{
			ID:            cur.ID,
			Name:          cur.Name,
			ContactEmail:  cur.ContactEmail,
			ContactPhone:  cur.ContactPhone,
			Notes:         cur.Notes,
			MainGroupID:   cur.MainGroupID,
			IsCurrentUser: cur.IsCurrentUser,
		}
		if req.Name.Set {
			params.Name = req.Name.V
		}
		if req.ContactEmail.Set {
			params.ContactEmail = req.ContactEmail.Ptr()
		}
		if req.ContactPhone.Set {
			params.ContactPhone = req.ContactPhone.Ptr()
		}
		if req.Notes.Set {
			params.Notes = req.Notes.Ptr()
		}
		if req.IsCurrentUser.Set {
			params.IsCurrentUser = req.IsCurrentUser.Valid && req.IsCurrentUser.V
		}
		if req.MainGroupID.Set {
			params.MainGroupID = req.MainGroupID.Ptr()
		}

		groupIDs, err := s.ListEntityGroupIDs(ctx, id)
		if err != nil {
			return err
		}
		if req.GroupsIn.Set {
			desired := req.GroupsIn.V
			if req.MainGroupID.Valid && !containsID(desired, req.MainGroupID.V) {
				desired = append(desired, req.MainGroupID.V)
			}
			if groupIDs, err = reconcileMemberships(ctx, s, id, groupIDs, desired); err != nil {
				return err
			}
		} else if req.MainGroupID.Valid && !containsID(groupIDs, req.MainGroupID.V) {
			if err := s.AddMembership(ctx, sqlcgen.AddMembershipParams{EntityID: id, GroupID: req.MainGroupID.V}); err != nil {
				return err
			}
			groupIDs = append(groupIDs, req.MainGroupID.V)
		}
		if params.MainGroupID != nil && !containsID(groupIDs, *params.MainGroupID) {
			params.MainGroupID = nil
			if len(groupIDs) > 0 {
				first := groupIDs[0]
				params.MainGroupID = &first
			}
		}

		if req.ConnectedPeople.Set {
			if err := reconcileNeighbors(ctx, s, id, req.ConnectedPeople.V); err != nil {
				return err
			}
		}

		row, err := s.UpdateEntity(ctx, params)
		if err != nil {
			return err
		}
		out = toNode(row, groupIDs)
		return nil
	})
	if err != nil {
		h.storeError(w, err, "entity", "update entity", id)
		return
	}

	h.invalidateGraph(ctx)
	h.writeJSON(w, http.StatusOK, out)
}

// reconcileMemberships makes the entity's memberships equal desired and
// returns the resulting group ids in join order.
func reconcileMemberships(ctx context.Context, s Store, entityID string, current, desired []string) ([]string, error) {
	for _, gid := range current {
		if containsID(desired, gid) {
			continue
		}
		if err := s.RemoveMembership(ctx, sqlcgen.AddMembershipParams{EntityID: entityID, GroupID: gid}); err != nil {
			return nil, err
		}
	}
	for _, gid := range desired {
		if containsID(current, gid) {
			continue
		}
		if err := s.AddMembership(ctx, sqlcgen.AddMembershipParams{EntityID: entityID, GroupID: gid}); err != nil {
			return nil, err
		}
	}
	return s.ListEntityGroupIDs(ctx, entityID)
}

func reconcileNeighbors(ctx context.Context, s Store, entityID string, desired []string) error {
	current, err := s.ListNeighborIDs(ctx, entityID)
	if err != nil {
		return err
	}
	for _, nid := range current {
		if containsID(desired, nid) {
			continue
		}
		a, b := canonicalPair(entityID, nid)
		if _, err := s.DeleteEdgeByPair(ctx, sqlcgen.EdgePairParams{AEntityID: a, BEntityID: b}); err != nil {
			return err
		}
	}
	for _, nid := range desired {
		if containsID(current, nid) {
			continue
		}
		if _, _, err := ensureEdge(ctx, s, entityID, nid, nil); err != nil && !errors.Is(err, errSelfEdge) {
			return err
		}
	}
	return nil
}

func (h *Handler) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "entity")
	if !ok {
		return
	}
	if !h.ensureStore(w) {
		return
	}

	ctx := r.Context()
	err := h.inTx(ctx, func(s Store) error {
		if err := s.DeleteEntityEdges(ctx, id); err != nil {
			return err
		}
		n, err := s.DeleteEntity(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if err != nil {
		h.storeError(w, err, "entity", "delete entity", id)
		return
	}

	h.invalidateGraph(ctx)
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if strings.EqualFold(v, id) {
			return true
		}
	}
	return false
}
