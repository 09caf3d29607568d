package editor

import (
	"context"
	"sync"

	"github.com/kevinxuez/social-map/internal/socialgraph"
)

type labelCall struct {
	id    string
	label *string
}

type fakeRemote struct {
	mu sync.Mutex

	createEntityFn func(in socialgraph.EntityInput) (socialgraph.Node, error)
	updateEntityFn func(id string, p socialgraph.EntityPatch) (socialgraph.Node, error)
	deleteErr      error

	labels       []labelCall
	createdEdges [][2]string
	deletedEdges []string
	deleted      []string
	groups       []socialgraph.GroupInput
}

func (f *fakeRemote) CreateEntity(_ context.Context, in socialgraph.EntityInput) (socialgraph.Node, error) {
	if f.createEntityFn == nil {
		return socialgraph.Node{ID: "new-entity", Name: in.Name}, nil
	}
	return f.createEntityFn(in)
}

func (f *fakeRemote) UpdateEntity(_ context.Context, id string, p socialgraph.EntityPatch) (socialgraph.Node, error) {
	if f.updateEntityFn == nil {
		return socialgraph.Node{ID: id}, nil
	}
	return f.updateEntityFn(id, p)
}

func (f *fakeRemote) DeleteEntity(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeRemote) CreateGroup(_ context.Context, in socialgraph.GroupInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = append(f.groups, in)
	return "new-group", nil
}

func (f *fakeRemote) UpdateGroup(context.Context, string, socialgraph.GroupPatch) error {
	return nil
}

func (f *fakeRemote) DeleteGroup(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeRemote) CreateEdge(_ context.Context, a, b string, _ *string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdEdges = append(f.createdEdges, [2]string{a, b})
	return "new-edge", nil
}

func (f *fakeRemote) DeleteEdge(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedEdges = append(f.deletedEdges, id)
	return nil
}

func (f *fakeRemote) UpdateEdgeLabel(_ context.Context, id string, label *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = append(f.labels, labelCall{id: id, label: label})
	return nil
}

func (f *fakeRemote) labelCalls() []labelCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]labelCall(nil), f.labels...)
}
