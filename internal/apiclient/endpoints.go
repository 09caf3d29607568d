package apiclient

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/kevinxuez/social-map/internal/socialgraph"
)

func (c *Client) GetGraph(ctx context.Context) (socialgraph.Snapshot, error) {
	var s socialgraph.Snapshot
	if err := c.doJSON(ctx, http.MethodGet, "/graph", nil, &s); err != nil {
		return socialgraph.Snapshot{}, err
	}
	s.Normalize()
	return s, nil
}

func (c *Client) SavePositions(ctx context.Context, positions []socialgraph.Position) (int, error) {
	if positions == nil {
		positions = []socialgraph.Position{}
	}
	var res socialgraph.PositionsResult
	if err := c.doJSON(ctx, http.MethodPut, "/graph/positions", positions, &res); err != nil {
		return 0, err
	}
	return res.Updated, nil
}

// EntityFilter narrows GET /entities. Empty fields are not sent.
type EntityFilter struct {
	Search  string
	GroupID string
}

func (c *Client) ListEntities(ctx context.Context, f EntityFilter) ([]socialgraph.Node, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.GroupID != "" {
		q.Set("group_id", f.GroupID)
	}
	path := "/entities"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []socialgraph.Node
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []socialgraph.Node{}
	}
	return out, nil
}

func (c *Client) CreateEntity(ctx context.Context, in socialgraph.EntityInput) (socialgraph.Node, error) {
	var out socialgraph.Node
	err := c.doJSON(ctx, http.MethodPost, "/entities", in, &out)
	return out, err
}

func (c *Client) UpdateEntity(ctx context.Context, id string, patch socialgraph.EntityPatch) (socialgraph.Node, error) {
	var out socialgraph.Node
	err := c.doJSON(ctx, http.MethodPatch, pathID("/entities", id), patch, &out)
	return out, err
}

func (c *Client) DeleteEntity(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, pathID("/entities", id), nil, nil)
}

func (c *Client) ListGroups(ctx context.Context) ([]socialgraph.GroupRecord, error) {
	var out []socialgraph.GroupRecord
	if err := c.doJSON(ctx, http.MethodGet, "/groups", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []socialgraph.GroupRecord{}
	}
	return out, nil
}

func (c *Client) CreateGroup(ctx context.Context, in socialgraph.GroupInput) (string, error) {
	var out socialgraph.Created
	if err := c.doJSON(ctx, http.MethodPost, "/groups", in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) UpdateGroup(ctx context.Context, id string, patch socialgraph.GroupPatch) error {
	return c.doJSON(ctx, http.MethodPatch, pathID("/groups", id), patch, nil)
}

func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, pathID("/groups", id), nil, nil)
}

// CreateEdge returns the id of the new edge, or of the existing edge when the
// pair is already connected.
func (c *Client) CreateEdge(ctx context.Context, aID, bID string, label *string) (string, error) {
	var out socialgraph.Created
	in := socialgraph.EdgeInput{AID: aID, BID: bID, Label: label}
	if err := c.doJSON(ctx, http.MethodPost, "/edges", in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateEdgeLabel sets the label. A nil label clears it.
func (c *Client) UpdateEdgeLabel(ctx context.Context, id string, label *string) error {
	patch := socialgraph.EdgePatch{Label: socialgraph.FromPtr(label)}
	return c.doJSON(ctx, http.MethodPatch, pathID("/edges", id), patch, nil)
}

func (c *Client) DeleteEdge(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, pathID("/edges", id), nil, nil)
}

// ExportCSV downloads the zip of groups, people and connections.
func (c *Client) ExportCSV(ctx context.Context) (string, []byte, error) {
	var out socialgraph.Export
	if err := c.doJSON(ctx, http.MethodGet, "/csv/export", nil, &out); err != nil {
		return "", nil, err
	}
	b, err := hex.DecodeString(out.Content)
	if err != nil {
		return "", nil, fmt.Errorf("decode export: %w", err)
	}
	return out.Filename, b, nil
}

// ImportFiles carries the CSV readers for POST /csv/import. Nil readers are
// not sent. Archive is a zip as returned by ExportCSV and takes precedence
// on the server.
type ImportFiles struct {
	Groups      io.Reader
	People      io.Reader
	Connections io.Reader
	Archive     io.Reader
}

func (c *Client) ImportCSV(ctx context.Context, files ImportFiles) (socialgraph.ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	parts := []struct {
		field string
		name  string
		r     io.Reader
	}{
		{"groups_file", "groups.csv", files.Groups},
		{"people_file", "people.csv", files.People},
		{"connections_file", "connections.csv", files.Connections},
		{"archive_file", "export.zip", files.Archive},
	}
	for _, p := range parts {
		if p.r == nil {
			continue
		}
		fw, err := mw.CreateFormFile(p.field, p.name)
		if err != nil {
			return socialgraph.ImportResult{}, err
		}
		if _, err := io.Copy(fw, p.r); err != nil {
			return socialgraph.ImportResult{}, fmt.Errorf("read %s: %w", p.name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return socialgraph.ImportResult{}, err
	}

	var out socialgraph.ImportResult
	err := c.do(ctx, http.MethodPost, "/csv/import", mw.FormDataContentType(), &buf, &out)
	return out, err
}

func (c *Client) SendTelemetry(ctx context.Context, ev socialgraph.TelemetryEvent) error {
	return c.doJSON(ctx, http.MethodPost, "/telemetry", ev, nil)
}
