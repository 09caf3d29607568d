package apiclient

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinxuez/social-map/internal/socialgraph"
)

func TestGetGraphFillsMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graph", r.URL.Path)
		_, _ = io.WriteString(w, `{"nodes":[{"id":"a","name":"A"}]}`)
	}))
	defer srv.Close()

	snap, err := New(srv.URL).GetGraph(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, []string{}, snap.Nodes[0].GroupIDs)
	assert.NotNil(t, snap.Links)
	assert.NotNil(t, snap.Groups)
}

func TestErrorEnvelopeDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":"not_found","message":"entity not found","details":{"id":"x"}}}`)
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteEntity(context.Background(), "x")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "not_found", apiErr.Code)
	assert.Equal(t, "entity not found", apiErr.Message)
	assert.True(t, IsNotFound(err))
}

func TestPlainTextErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListGroups(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "boom", apiErr.Message)
}

func TestTokenAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "ann@example.com", r.URL.Query().Get("search"))
		assert.Equal(t, "g1", r.URL.Query().Get("group_id"))
		_, _ = io.WriteString(w, `[{"id":"a","name":"Ann","groupIds":["g1"]}]`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithToken(" tok "))
	got, err := c.ListEntities(context.Background(), EntityFilter{Search: "ann@example.com", GroupID: "g1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].Name)
}

func TestUpdateEdgeLabelSendsExplicitNull(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/edges/e1", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		_, _ = io.WriteString(w, `{"updated":true}`)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).UpdateEdgeLabel(context.Background(), "e1", nil))
	assert.JSONEq(t, `{"label":null}`, body)
}

func TestSavePositions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var in []socialgraph.Position
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(socialgraph.PositionsResult{Updated: len(in)})
	}))
	defer srv.Close()

	n, err := New(srv.URL).SavePositions(context.Background(), []socialgraph.Position{{ID: "a", X: 1, Y: 2}, {ID: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExportAndImport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/csv/export":
			_ = json.NewEncoder(w).Encode(socialgraph.Export{Filename: "export.zip", Content: hex.EncodeToString([]byte("PK"))})
		case "/csv/import":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			f, _, err := r.FormFile("people_file")
			require.NoError(t, err)
			b, _ := io.ReadAll(f)
			assert.Equal(t, "name\nAnn\n", string(b))
			_, _, err = r.FormFile("groups_file")
			assert.Error(t, err)
			_ = json.NewEncoder(w).Encode(socialgraph.ImportResult{Imported: true, People: 1})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	name, b, err := c.ExportCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "export.zip", name)
	assert.Equal(t, []byte("PK"), b)

	res, err := c.ImportCSV(context.Background(), ImportFiles{People: strings.NewReader("name\nAnn\n")})
	require.NoError(t, err)
	assert.True(t, res.Imported)
	assert.Equal(t, 1, res.People)
}

func TestBreakerOpensOnServerErrorsOnly(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusBadRequest)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	c := New(srv.URL, WithBreaker("test"))
	for i := 0; i < 10; i++ {
		_, err := c.GetGraph(context.Background())
		require.Error(t, err)
		require.False(t, errors.Is(err, gobreaker.ErrOpenState))
	}

	status.Store(http.StatusInternalServerError)
	for i := 0; i < 5; i++ {
		_, _ = c.GetGraph(context.Background())
	}
	before := hits.Load()
	_, err := c.GetGraph(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, hits.Load())
}
