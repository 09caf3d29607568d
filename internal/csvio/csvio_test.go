package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipRoundTrip(t *testing.T) {
	in := Dataset{
		Groups: []GroupRow{{Name: "Club", ColorHex: "#ff0000"}, {Name: "Juniors", ParentName: "Club"}},
		People: []PersonRow{
			{Name: "Ann", ContactEmail: "ann@example.com", MainGroupName: "Club", Groups: []string{"Club", "Juniors"}},
			{Name: "Bo, Jr.", Notes: "met at \"the\" park"},
		},
		Connections: []ConnectionRow{{A: "ann@example.com", B: "Bo, Jr.", Label: "friends"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteZip(&buf, in))

	out, err := ReadZip(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadPeopleByHeaderName(t *testing.T) {
	src := "\ufeffGroups,Name,contact_email\n\"A; B ;\",  Ann ,ann@example.com\n,,\n,,bo@example.com\n"
	got, err := ReadPeople(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ann", got[0].Name)
	assert.Equal(t, []string{"A", "B"}, got[0].Groups)
	assert.Equal(t, "bo@example.com", got[1].ContactEmail)
}

func TestReadGroupsRequiresName(t *testing.T) {
	_, err := ReadGroups(strings.NewReader("title\nx\n"))
	assert.ErrorContains(t, err, "name")

	got, err := ReadGroups(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadConnectionsSkipsIncompleteRows(t *testing.T) {
	got, err := ReadConnections(strings.NewReader("a_identifier,b_identifier,label\nann,bo,\nann,,x\n"))
	require.NoError(t, err)
	assert.Equal(t, []ConnectionRow{{A: "ann", B: "bo"}}, got)
}
