package editor

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const labelWindow = 20 * time.Millisecond

func TestTypingAutosavesLatestDraft(t *testing.T) {
	r := &fakeRemote{}
	e := NewEdgeLabelEditor(zerolog.Nop(), r, labelWindow)

	e.Begin("e1", sp("old"))
	assert.Equal(t, "old", e.Draft())
	e.Type("fr")
	e.Type("friends")

	require.Eventually(t, func() bool { return len(r.labelCalls()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * labelWindow)
	calls := r.labelCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "e1", calls[0].id)
	assert.Equal(t, "friends", *calls[0].label)
}

func TestSwitchingEdgesKeepsPendingAutosave(t *testing.T) {
	r := &fakeRemote{}
	e := NewEdgeLabelEditor(zerolog.Nop(), r, labelWindow)

	e.Begin("e1", nil)
	e.Type("coworker")
	e.Begin("e2", nil)
	e.Type("neighbor")
	e.Cancel()

	_, editing := e.Editing()
	assert.False(t, editing)

	require.Eventually(t, func() bool { return len(r.labelCalls()) == 2 }, time.Second, 5*time.Millisecond)
	got := map[string]string{}
	for _, c := range r.labelCalls() {
		got[c.id] = *c.label
	}
	assert.Equal(t, map[string]string{"e1": "coworker", "e2": "neighbor"}, got)
}

func TestFinishSendsImmediately(t *testing.T) {
	r := &fakeRemote{}
	e := NewEdgeLabelEditor(zerolog.Nop(), r, time.Hour)

	e.Begin("e1", nil)
	e.Type("  team  ")
	require.NoError(t, e.Finish(context.Background()))

	calls := r.labelCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "team", *calls[0].label)
	assert.Equal(t, 0, e.Pending())
	_, editing := e.Editing()
	assert.False(t, editing)
}

func TestClearSendsNull(t *testing.T) {
	r := &fakeRemote{}
	e := NewEdgeLabelEditor(zerolog.Nop(), r, time.Hour)

	e.Begin("e1", sp("old"))
	require.NoError(t, e.Clear(context.Background()))
	calls := r.labelCalls()
	require.Len(t, calls, 1)
	assert.Nil(t, calls[0].label)

	require.NoError(t, e.Finish(context.Background()))
	assert.Len(t, r.labelCalls(), 1, "finish without an open edge sends nothing")
}

func TestEmptyDraftAutosavesAsNull(t *testing.T) {
	r := &fakeRemote{}
	e := NewEdgeLabelEditor(zerolog.Nop(), r, labelWindow)
	e.Begin("e1", sp("x"))
	e.Type("")
	require.Eventually(t, func() bool { return len(r.labelCalls()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Nil(t, r.labelCalls()[0].label)
}
