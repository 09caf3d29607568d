package sqlcgen

import (
	"context"
)

const edgeColumns = `id, a_entity_id, b_entity_id, label, created_at`

func scanEdge(row rowScanner) (Edge, error) {
	var i Edge
	err := row.Scan(&i.ID, &i.AEntityID, &i.BEntityID, &i.Label, &i.CreatedAt)
	return i, err
}

const listEdges = `-- name: ListEdges :many
SELECT ` + edgeColumns + `
FROM graph_edges
ORDER BY created_at ASC, id ASC
`

func (q *Queries) ListEdges(ctx context.Context) ([]Edge, error) {
	rows, err := q.db.Query(ctx, listEdges)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Edge
	for rows.Next() {
		i, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findEdgeByPair = `-- name: FindEdgeByPair :one
SELECT ` + edgeColumns + `
FROM graph_edges
WHERE a_entity_id = $1
  AND b_entity_id = $2
`

// EdgePairParams must already be in canonical order.
type EdgePairParams struct {
	AEntityID string
	BEntityID string
}

func (q *Queries) FindEdgeByPair(ctx context.Context, arg EdgePairParams) (Edge, error) {
	return scanEdge(q.db.QueryRow(ctx, findEdgeByPair, arg.AEntityID, arg.BEntityID))
}

const createEdge = `-- name: CreateEdge :one
INSERT INTO graph_edges (a_entity_id, b_entity_id, label)
VALUES ($1, $2, $3)
RETURNING ` + edgeColumns

type CreateEdgeParams struct {
	AEntityID string
	BEntityID string
	Label     *string
}

func (q *Queries) CreateEdge(ctx context.Context, arg CreateEdgeParams) (Edge, error) {
	return scanEdge(q.db.QueryRow(ctx, createEdge, arg.AEntityID, arg.BEntityID, arg.Label))
}

const updateEdgeLabel = `-- name: UpdateEdgeLabel :execrows
UPDATE graph_edges
SET label = $2
WHERE id = $1
`

type UpdateEdgeLabelParams struct {
	ID    string
	Label *string
}

func (q *Queries) UpdateEdgeLabel(ctx context.Context, arg UpdateEdgeLabelParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateEdgeLabel, arg.ID, arg.Label)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteEdge = `-- name: DeleteEdge :execrows
DELETE FROM graph_edges
WHERE id = $1
`

func (q *Queries) DeleteEdge(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteEdge, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteEdgeByPair = `-- name: DeleteEdgeByPair :execrows
DELETE FROM graph_edges
WHERE a_entity_id = $1
  AND b_entity_id = $2
`

func (q *Queries) DeleteEdgeByPair(ctx context.Context, arg EdgePairParams) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteEdgeByPair, arg.AEntityID, arg.BEntityID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteEntityEdges = `-- name: DeleteEntityEdges :exec
DELETE FROM graph_edges
WHERE a_entity_id = $1
   OR b_entity_id = $1
`

func (q *Queries) DeleteEntityEdges(ctx context.Context, entityID string) error {
	_, err := q.db.Exec(ctx, deleteEntityEdges, entityID)
	return err
}

const listNeighborIDs = `-- name: ListNeighborIDs :many
SELECT CASE WHEN a_entity_id = $1 THEN b_entity_id ELSE a_entity_id END AS neighbor_id
FROM graph_edges
WHERE a_entity_id = $1
   OR b_entity_id = $1
ORDER BY created_at ASC
`

func (q *Queries) ListNeighborIDs(ctx context.Context, entityID string) ([]string, error) {
	rows, err := q.db.Query(ctx, listNeighborIDs, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
