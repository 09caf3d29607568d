package httpapi

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kevinxuez/social-map/internal/sqlcgen"
)

// memStore is an in-memory Store with the same constraint behavior as the
// Postgres schema: unique emails, canonical edge pairs, cascading deletes.
// failFn, when set, can fail any call by method name.
type memStore struct {
	mu          sync.Mutex
	clock       time.Time
	groups      []sqlcgen.Group
	entities    []sqlcgen.Entity
	memberships []sqlcgen.Membership
	edges       []sqlcgen.Edge
	failFn      func(method string) error
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func (m *memStore) fail(method string) error {
	if m.failFn == nil {
		return nil
	}
	return m.failFn(method)
}

func pgErr(code string) error { return &pgconn.PgError{Code: code} }

func (m *memStore) groupIndex(id string) int {
	for i, g := range m.groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (m *memStore) entityIndex(id string) int {
	for i, e := range m.entities {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func validUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return pgErr("22P02")
	}
	return nil
}

func (m *memStore) ListGroups(ctx context.Context) ([]sqlcgen.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListGroups"); err != nil {
		return nil, err
	}
	return append([]sqlcgen.Group(nil), m.groups...), nil
}

func (m *memStore) GetGroup(ctx context.Context, id string) (sqlcgen.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := validUUID(id); err != nil {
		return sqlcgen.Group{}, err
	}
	if i := m.groupIndex(id); i >= 0 {
		return m.groups[i], nil
	}
	return sqlcgen.Group{}, pgx.ErrNoRows
}

func (m *memStore) CreateGroup(ctx context.Context, arg sqlcgen.CreateGroupParams) (sqlcgen.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateGroup"); err != nil {
		return sqlcgen.Group{}, err
	}
	if arg.ParentGroupID != nil && m.groupIndex(*arg.ParentGroupID) < 0 {
		return sqlcgen.Group{}, pgErr("23503")
	}
	g := sqlcgen.Group{
		ID:            uuid.NewString(),
		Name:          arg.Name,
		Description:   arg.Description,
		ColorHex:      arg.ColorHex,
		ParentGroupID: arg.ParentGroupID,
		CreatedAt:     m.tick(),
	}
	m.groups = append(m.groups, g)
	return g, nil
}

func (m *memStore) UpdateGroup(ctx context.Context, arg sqlcgen.UpdateGroupParams) (sqlcgen.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.groupIndex(arg.ID)
	if i < 0 {
		return sqlcgen.Group{}, pgx.ErrNoRows
	}
	if arg.ParentGroupID != nil {
		if *arg.ParentGroupID == arg.ID {
			return sqlcgen.Group{}, pgErr("23514")
		}
		if m.groupIndex(*arg.ParentGroupID) < 0 {
			return sqlcgen.Group{}, pgErr("23503")
		}
	}
	g := &m.groups[i]
	g.Name, g.Description, g.ColorHex, g.ParentGroupID = arg.Name, arg.Description, arg.ColorHex, arg.ParentGroupID
	return *g, nil
}

func (m *memStore) DeleteGroup(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.groupIndex(id)
	if i < 0 {
		return 0, nil
	}
	m.groups = append(m.groups[:i], m.groups[i+1:]...)
	for j := range m.groups {
		if p := m.groups[j].ParentGroupID; p != nil && *p == id {
			m.groups[j].ParentGroupID = nil
		}
	}
	for j := range m.entities {
		if p := m.entities[j].MainGroupID; p != nil && *p == id {
			m.entities[j].MainGroupID = nil
		}
	}
	m.memberships = filterMemberships(m.memberships, func(ms sqlcgen.Membership) bool { return ms.GroupID != id })
	return 1, nil
}

func (m *memStore) ReassignMainGroup(ctx context.Context, groupID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.entities {
		e := &m.entities[i]
		if e.MainGroupID == nil || *e.MainGroupID != groupID {
			continue
		}
		e.MainGroupID = nil
		for _, ms := range m.memberships {
			if ms.EntityID == e.ID && ms.GroupID != groupID {
				gid := ms.GroupID
				e.MainGroupID = &gid
				break
			}
		}
		n++
	}
	return n, nil
}

func (m *memStore) DeleteGroupMemberships(ctx context.Context, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memberships = filterMemberships(m.memberships, func(ms sqlcgen.Membership) bool { return ms.GroupID != groupID })
	return nil
}

func (m *memStore) ListEntities(ctx context.Context, arg sqlcgen.ListEntitiesParams) ([]sqlcgen.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListEntities"); err != nil {
		return nil, err
	}
	var out []sqlcgen.Entity
	for _, e := range m.entities {
		if arg.Search != nil {
			q := strings.ToLower(*arg.Search)
			email := ""
			if e.ContactEmail != nil {
				email = strings.ToLower(*e.ContactEmail)
			}
			if !strings.Contains(strings.ToLower(e.Name), q) && !strings.Contains(email, q) {
				continue
			}
		}
		if arg.GroupID != nil && !m.isMember(e.ID, *arg.GroupID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memStore) isMember(entityID, groupID string) bool {
	for _, ms := range m.memberships {
		if ms.EntityID == entityID && ms.GroupID == groupID {
			return true
		}
	}
	return false
}

func (m *memStore) GetEntity(ctx context.Context, id string) (sqlcgen.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := validUUID(id); err != nil {
		return sqlcgen.Entity{}, err
	}
	if i := m.entityIndex(id); i >= 0 {
		return m.entities[i], nil
	}
	return sqlcgen.Entity{}, pgx.ErrNoRows
}

func (m *memStore) FindEntityByEmail(ctx context.Context, email string) (sqlcgen.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entities {
		if e.ContactEmail != nil && strings.EqualFold(*e.ContactEmail, email) {
			return e, nil
		}
	}
	return sqlcgen.Entity{}, pgx.ErrNoRows
}

func (m *memStore) emailTaken(email *string, except string) bool {
	if email == nil {
		return false
	}
	for _, e := range m.entities {
		if e.ID != except && e.ContactEmail != nil && *e.ContactEmail == *email {
			return true
		}
	}
	return false
}

func (m *memStore) CreateEntity(ctx context.Context, arg sqlcgen.CreateEntityParams) (sqlcgen.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateEntity"); err != nil {
		return sqlcgen.Entity{}, err
	}
	if m.emailTaken(arg.ContactEmail, "") {
		return sqlcgen.Entity{}, pgErr("23505")
	}
	if arg.MainGroupID != nil && m.groupIndex(*arg.MainGroupID) < 0 {
		return sqlcgen.Entity{}, pgErr("23503")
	}
	e := sqlcgen.Entity{
		ID:            uuid.NewString(),
		Name:          arg.Name,
		ContactEmail:  arg.ContactEmail,
		ContactPhone:  arg.ContactPhone,
		Notes:         arg.Notes,
		MainGroupID:   arg.MainGroupID,
		IsCurrentUser: arg.IsCurrentUser,
		CreatedAt:     m.tick(),
	}
	m.entities = append(m.entities, e)
	return e, nil
}

func (m *memStore) UpdateEntity(ctx context.Context, arg sqlcgen.UpdateEntityParams) (sqlcgen.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.entityIndex(arg.ID)
	if i < 0 {
		return sqlcgen.Entity{}, pgx.ErrNoRows
	}
	if m.emailTaken(arg.ContactEmail, arg.ID) {
		return sqlcgen.Entity{}, pgErr("23505")
	}
	e := &m.entities[i]
	e.Name, e.ContactEmail, e.ContactPhone, e.Notes = arg.Name, arg.ContactEmail, arg.ContactPhone, arg.Notes
	e.MainGroupID, e.IsCurrentUser = arg.MainGroupID, arg.IsCurrentUser
	return *e, nil
}

func (m *memStore) UpdateEntityPosition(ctx context.Context, arg sqlcgen.UpdateEntityPositionParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.entityIndex(arg.ID)
	if i < 0 {
		return 0, nil
	}
	x, y := arg.X, arg.Y
	m.entities[i].PosX, m.entities[i].PosY = &x, &y
	return 1, nil
}

func (m *memStore) DeleteEntity(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.entityIndex(id)
	if i < 0 {
		return 0, nil
	}
	m.entities = append(m.entities[:i], m.entities[i+1:]...)
	m.memberships = filterMemberships(m.memberships, func(ms sqlcgen.Membership) bool { return ms.EntityID != id })
	return 1, nil
}

func (m *memStore) ListMemberships(ctx context.Context) ([]sqlcgen.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sqlcgen.Membership(nil), m.memberships...), nil
}

func (m *memStore) ListEntityGroupIDs(ctx context.Context, entityID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, ms := range m.memberships {
		if ms.EntityID == entityID {
			out = append(out, ms.GroupID)
		}
	}
	return out, nil
}

func (m *memStore) AddMembership(ctx context.Context, arg sqlcgen.AddMembershipParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.groupIndex(arg.GroupID) < 0 || m.entityIndex(arg.EntityID) < 0 {
		return pgErr("23503")
	}
	if m.isMember(arg.EntityID, arg.GroupID) {
		return nil
	}
	m.memberships = append(m.memberships, sqlcgen.Membership{EntityID: arg.EntityID, GroupID: arg.GroupID, JoinedAt: m.tick()})
	return nil
}

func (m *memStore) RemoveMembership(ctx context.Context, arg sqlcgen.AddMembershipParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memberships = filterMemberships(m.memberships, func(ms sqlcgen.Membership) bool {
		return ms.EntityID != arg.EntityID || ms.GroupID != arg.GroupID
	})
	return nil
}

func (m *memStore) ListEdges(ctx context.Context) ([]sqlcgen.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sqlcgen.Edge(nil), m.edges...), nil
}

func (m *memStore) FindEdgeByPair(ctx context.Context, arg sqlcgen.EdgePairParams) (sqlcgen.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.edges {
		if e.AEntityID == arg.AEntityID && e.BEntityID == arg.BEntityID {
			return e, nil
		}
	}
	return sqlcgen.Edge{}, pgx.ErrNoRows
}

func (m *memStore) CreateEdge(ctx context.Context, arg sqlcgen.CreateEdgeParams) (sqlcgen.Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !(arg.AEntityID < arg.BEntityID) {
		return sqlcgen.Edge{}, pgErr("23514")
	}
	if m.entityIndex(arg.AEntityID) < 0 || m.entityIndex(arg.BEntityID) < 0 {
		return sqlcgen.Edge{}, pgErr("23503")
	}
	for _, e := range m.edges {
		if e.AEntityID == arg.AEntityID && e.BEntityID == arg.BEntityID {
			return sqlcgen.Edge{}, pgErr("23505")
		}
	}
	e := sqlcgen.Edge{ID: uuid.NewString(), AEntityID: arg.AEntityID, BEntityID: arg.BEntityID, Label: arg.Label, CreatedAt: m.tick()}
	m.edges = append(m.edges, e)
	return e, nil
}

func (m *memStore) UpdateEdgeLabel(ctx context.Context, arg sqlcgen.UpdateEdgeLabelParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.edges {
		if m.edges[i].ID == arg.ID {
			m.edges[i].Label = arg.Label
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memStore) DeleteEdge(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.edges)
	m.edges = filterEdges(m.edges, func(e sqlcgen.Edge) bool { return e.ID != id })
	return int64(before - len(m.edges)), nil
}

func (m *memStore) DeleteEdgeByPair(ctx context.Context, arg sqlcgen.EdgePairParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.edges)
	m.edges = filterEdges(m.edges, func(e sqlcgen.Edge) bool {
		return e.AEntityID != arg.AEntityID || e.BEntityID != arg.BEntityID
	})
	return int64(before - len(m.edges)), nil
}

func (m *memStore) DeleteEntityEdges(ctx context.Context, entityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = filterEdges(m.edges, func(e sqlcgen.Edge) bool {
		return e.AEntityID != entityID && e.BEntityID != entityID
	})
	return nil
}

func (m *memStore) ListNeighborIDs(ctx context.Context, entityID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.edges {
		switch entityID {
		case e.AEntityID:
			out = append(out, e.BEntityID)
		case e.BEntityID:
			out = append(out, e.AEntityID)
		}
	}
	return out, nil
}

func filterMemberships(in []sqlcgen.Membership, keep func(sqlcgen.Membership) bool) []sqlcgen.Membership {
	out := in[:0]
	for _, ms := range in {
		if keep(ms) {
			out = append(out, ms)
		}
	}
	return out
}

func filterEdges(in []sqlcgen.Edge, keep func(sqlcgen.Edge) bool) []sqlcgen.Edge {
	out := in[:0]
	for _, e := range in {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
