package httpapi

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/kevinxuez/social-map/internal/csvio"
	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/socialgraph"
	"github.com/kevinxuez/social-map/internal/sqlcgen"
)

const exportFilename = "export.zip"

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if !h.ensureStore(w) {
		return
	}

	d, err := exportDataset(r.Context(), h.store)
	if err != nil {
		h.storeError(w, err, "export", "export csv", "")
		return
	}

	var buf bytes.Buffer
	if err := csvio.WriteZip(&buf, d); err != nil {
		h.log.Error().Err(err).Msg("write export zip failed")
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to build export", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, socialgraph.Export{
		Filename: exportFilename,
		Content:  hex.EncodeToString(buf.Bytes()),
	})
}

func exportDataset(ctx context.Context, s Store) (csvio.Dataset, error) {
	groups, err := s.ListGroups(ctx)
	if err != nil {
		return csvio.Dataset{}, err
	}
	entities, err := s.ListEntities(ctx, sqlcgen.ListEntitiesParams{})
	if err != nil {
		return csvio.Dataset{}, err
	}
	memberships, err := s.ListMemberships(ctx)
	if err != nil {
		return csvio.Dataset{}, err
	}
	edges, err := s.ListEdges(ctx)
	if err != nil {
		return csvio.Dataset{}, err
	}

	groupNames := make(map[string]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}
	idx := indexMemberships(memberships)

	var d csvio.Dataset
	for _, g := range groups {
		row := csvio.GroupRow{Name: g.Name, Description: deref(g.Description), ColorHex: deref(g.ColorHex)}
		if g.ParentGroupID != nil {
			row.ParentName = groupNames[*g.ParentGroupID]
		}
		d.Groups = append(d.Groups, row)
	}

	identifiers := make(map[string]string, len(entities))
	for _, e := range entities {
		identifiers[e.ID] = naming.Identifier(e.ContactEmail, e.Name)
		row := csvio.PersonRow{
			Name:         e.Name,
			ContactEmail: deref(e.ContactEmail),
			ContactPhone: deref(e.ContactPhone),
			Notes:        deref(e.Notes),
		}
		if e.MainGroupID != nil {
			row.MainGroupName = groupNames[*e.MainGroupID]
		}
		for _, gid := range idx.byEntity[e.ID] {
			row.Groups = append(row.Groups, groupNames[gid])
		}
		d.People = append(d.People, row)
	}

	for _, e := range edges {
		d.Connections = append(d.Connections, csvio.ConnectionRow{
			A:     identifiers[e.AEntityID],
			B:     identifiers[e.BEntityID],
			Label: deref(e.Label),
		})
	}
	return d, nil
}

func (h *Handler) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid multipart body", map[string]any{"error": err.Error()})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	d, err := readImportDataset(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid csv upload", map[string]any{"error": err.Error()})
		return
	}
	if !h.ensureStore(w) {
		return
	}

	ctx := r.Context()
	var res socialgraph.ImportResult
	err = h.inTx(ctx, func(s Store) error {
		var err error
		res, err = importDataset(ctx, s, d)
		return err
	})
	if err != nil {
		h.storeError(w, err, "import", "import csv", "")
		return
	}

	h.invalidateGraph(ctx)
	h.writeJSON(w, http.StatusOK, res)
}

// readImportDataset reads either an archive_file zip (as produced by export)
// or the three individual CSV parts. Missing parts are empty.
func readImportDataset(r *http.Request) (csvio.Dataset, error) {
	if f, hdr, err := r.FormFile("archive_file"); err == nil {
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return csvio.Dataset{}, err
		}
		if hdr.Size > 0 && int64(len(b)) != hdr.Size {
			return csvio.Dataset{}, errors.New("archive_file truncated")
		}
		return csvio.ReadZip(bytes.NewReader(b), int64(len(b)))
	}

	var d csvio.Dataset
	parts := []struct {
		field string
		read  func(io.Reader) error
	}{
		{"groups_file", func(rd io.Reader) (err error) { d.Groups, err = csvio.ReadGroups(rd); return }},
		{"people_file", func(rd io.Reader) (err error) { d.People, err = csvio.ReadPeople(rd); return }},
		{"connections_file", func(rd io.Reader) (err error) { d.Connections, err = csvio.ReadConnections(rd); return }},
	}
	for _, p := range parts {
		f, _, err := r.FormFile(p.field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return csvio.Dataset{}, err
		}
		err = p.read(f)
		f.Close()
		if err != nil {
			return csvio.Dataset{}, fmt.Errorf("%s: %w", p.field, err)
		}
	}
	return d, nil
}

// importDataset creates groups, then resolves parents by name, then people
// with memberships, then connections. Existing groups (by name) and people
// (by email) are reused rather than duplicated and are not counted.
func importDataset(ctx context.Context, s Store, d csvio.Dataset) (socialgraph.ImportResult, error) {
	res := socialgraph.ImportResult{Imported: true}

	existingGroups, err := s.ListGroups(ctx)
	if err != nil {
		return res, err
	}
	groupsByName := make(map[string]sqlcgen.Group, len(existingGroups))
	for _, g := range existingGroups {
		if _, ok := groupsByName[naming.Key(g.Name)]; !ok {
			groupsByName[naming.Key(g.Name)] = g
		}
	}

	for _, row := range d.Groups {
		key := naming.Key(row.Name)
		if _, ok := groupsByName[key]; ok {
			continue
		}
		g, err := s.CreateGroup(ctx, sqlcgen.CreateGroupParams{
			Name:        row.Name,
			Description: naming.Optional(row.Description),
			ColorHex:    naming.Optional(row.ColorHex),
		})
		if err != nil {
			return res, err
		}
		groupsByName[key] = g
		res.Groups++
	}

	for _, row := range d.Groups {
		if row.ParentName == "" {
			continue
		}
		g, ok := groupsByName[naming.Key(row.Name)]
		parent, pok := groupsByName[naming.Key(row.ParentName)]
		if !ok || !pok || parent.ID == g.ID {
			continue
		}
		parentID := parent.ID
		if _, err := s.UpdateGroup(ctx, sqlcgen.UpdateGroupParams{
			ID:            g.ID,
			Name:          g.Name,
			Description:   g.Description,
			ColorHex:      g.ColorHex,
			ParentGroupID: &parentID,
		}); err != nil {
			return res, err
		}
	}

	for _, row := range d.People {
		email := naming.Email(naming.Optional(row.ContactEmail))
		name := row.Name
		if name == "" && email != nil {
			name = *email
		}

		var groupIDs []string
		for _, gname := range row.Groups {
			if g, ok := groupsByName[naming.Key(gname)]; ok {
				groupIDs = append(groupIDs, g.ID)
			}
		}
		var mainID *string
		if g, ok := groupsByName[naming.Key(row.MainGroupName)]; ok && row.MainGroupName != "" {
			id := g.ID
			mainID = &id
			if !containsID(groupIDs, id) {
				groupIDs = append([]string{id}, groupIDs...)
			}
		} else if len(groupIDs) > 0 {
			id := groupIDs[0]
			mainID = &id
		}
		groupIDs = naming.DedupeIDs(groupIDs)

		if email != nil {
			if _, err := s.FindEntityByEmail(ctx, *email); err == nil {
				continue
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return res, err
			}
		}

		e, err := s.CreateEntity(ctx, sqlcgen.CreateEntityParams{
			Name:         name,
			ContactEmail: email,
			ContactPhone: naming.Optional(row.ContactPhone),
			Notes:        naming.Optional(row.Notes),
			MainGroupID:  mainID,
		})
		if err != nil {
			return res, err
		}
		for _, gid := range groupIDs {
			if err := s.AddMembership(ctx, sqlcgen.AddMembershipParams{EntityID: e.ID, GroupID: gid}); err != nil {
				return res, err
			}
		}
		res.People++
	}

	if len(d.Connections) == 0 {
		return res, nil
	}
	entities, err := s.ListEntities(ctx, sqlcgen.ListEntitiesParams{})
	if err != nil {
		return res, err
	}
	resolve := newIdentifierIndex(entities)
	for _, row := range d.Connections {
		a, aok := resolve.lookup(row.A)
		b, bok := resolve.lookup(row.B)
		if !aok || !bok {
			continue
		}
		_, created, err := ensureEdge(ctx, s, a, b, naming.Optional(row.Label))
		if errors.Is(err, errSelfEdge) {
			continue
		}
		if err != nil {
			return res, err
		}
		if created {
			res.Connections++
		}
	}
	return res, nil
}

// identifierIndex resolves a connection identifier by email, then name,
// then raw entity id.
type identifierIndex struct {
	byEmail map[string]string
	byName  map[string]string
	byID    map[string]string
}

func newIdentifierIndex(entities []sqlcgen.Entity) identifierIndex {
	idx := identifierIndex{
		byEmail: make(map[string]string),
		byName:  make(map[string]string),
		byID:    make(map[string]string),
	}
	for _, e := range entities {
		if e.ContactEmail != nil {
			idx.byEmail[naming.Key(*e.ContactEmail)] = e.ID
		}
		// First entity with a name wins.
		if _, ok := idx.byName[naming.Key(e.Name)]; !ok {
			idx.byName[naming.Key(e.Name)] = e.ID
		}
		idx.byID[naming.Key(e.ID)] = e.ID
	}
	return idx
}

func (idx identifierIndex) lookup(identifier string) (string, bool) {
	key := naming.Key(identifier)
	if key == "" {
		return "", false
	}
	if id, ok := idx.byEmail[key]; ok {
		return id, true
	}
	if id, ok := idx.byName[key]; ok {
		return id, true
	}
	id, ok := idx.byID[key]
	return id, ok
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
