package socialgraph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestRemoveGroupClearsMainGroup(t *testing.T) {
	groups := []string{"g1", "g2", "g3"}
	for _, main := range groups {
		for _, removed := range groups {
			n := Node{ID: "a", GroupIDs: append([]string(nil), groups...), MainGroupID: strp(main)}
			n.RemoveGroup(removed)

			assert.False(t, n.HasGroup(removed))
			if main == removed {
				assert.Nil(t, n.MainGroupID, "main %s removed %s", main, removed)
			} else {
				require.NotNil(t, n.MainGroupID)
				assert.Equal(t, main, *n.MainGroupID)
			}
		}
	}
}

func TestAddGroupSetsMainWhenUnset(t *testing.T) {
	var n Node
	n.AddGroup("g1")
	n.AddGroup("g2")
	n.AddGroup("g1")

	assert.Equal(t, []string{"g1", "g2"}, n.GroupIDs)
	require.NotNil(t, n.MainGroupID)
	assert.Equal(t, "g1", *n.MainGroupID)

	assert.False(t, n.SetMainGroup("g9"))
	assert.True(t, n.SetMainGroup("g2"))
	assert.Equal(t, "g2", *n.MainGroupID)
}

func TestRemoveGroupDoesNotAliasInput(t *testing.T) {
	orig := []string{"g1", "g2"}
	n := Node{GroupIDs: orig}
	n.RemoveGroup("g1")
	assert.Equal(t, []string{"g1", "g2"}, orig)
	assert.Equal(t, []string{"g2"}, n.GroupIDs)
}

func TestSeededColorIsStable(t *testing.T) {
	a := SeededColor("Climbing Club")
	assert.Equal(t, a, SeededColor("Climbing Club"))
	assert.True(t, strings.HasPrefix(a, "hsl("))
	assert.True(t, strings.HasSuffix(a, " 60% 60%)"))

	// djb2 over "a": 5381*33 + 97 = 177670, 177670 % 360 = 190.
	assert.Equal(t, "hsl(190 60% 60%)", SeededColor("a"))
	// empty name hashes to the seed: 5381 % 360 = 341.
	assert.Equal(t, "hsl(341 60% 60%)", SeededColor(""))
}

func TestSeededColorLongNameWraps(t *testing.T) {
	name := strings.Repeat("friends of friends ", 20)
	assert.Equal(t, SeededColor(name), SeededColor(name))
}

func TestGroupDisplayColor(t *testing.T) {
	g := Group{Name: "a"}
	assert.Equal(t, SeededColor("a"), g.DisplayColor())
	g.Color = strp("#112233")
	assert.Equal(t, "#112233", g.DisplayColor())
}

func TestSnapshotNormalizeFillsMissingCollections(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"nodes":[{"id":"a","name":"A","mainGroupId":"g1"}]}`), &s))
	s.Normalize()

	assert.NotNil(t, s.Links)
	assert.NotNil(t, s.Groups)
	require.Len(t, s.Nodes, 1)
	assert.Equal(t, []string{}, s.Nodes[0].GroupIDs)
	assert.Nil(t, s.Nodes[0].MainGroupID)
}

func TestOptDistinguishesNullFromAbsent(t *testing.T) {
	var p EdgePatch
	require.NoError(t, json.Unmarshal([]byte(`{"label":null}`), &p))
	assert.True(t, p.Label.Set)
	assert.False(t, p.Label.Valid)
	assert.Nil(t, p.Label.Ptr())

	var e EntityPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ann"}`), &e))
	assert.True(t, e.Name.Valid)
	assert.Equal(t, "Ann", e.Name.V)
	assert.False(t, e.Notes.Set)

	b, err := json.Marshal(EntityPatch{Notes: Null[string](), Name: Some("Bo")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Bo","notes":null}`, string(b))
}
