package sqlcgen

import (
	"context"
)

const groupColumns = `id, name, description, color_hex, parent_group_id, created_at`

func scanGroup(row rowScanner) (Group, error) {
	var i Group
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.ColorHex, &i.ParentGroupID, &i.CreatedAt)
	return i, err
}

const listGroups = `-- name: ListGroups :many
SELECT ` + groupColumns + `
FROM groups
ORDER BY created_at ASC, id ASC
`

func (q *Queries) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := q.db.Query(ctx, listGroups)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Group
	for rows.Next() {
		i, err := scanGroup(rows)
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

const getGroup = `-- name: GetGroup :one
SELECT ` + groupColumns + `
FROM groups
WHERE id = $1
`

func (q *Queries) GetGroup(ctx context.Context, id string) (Group, error) {
	return scanGroup(q.db.QueryRow(ctx, getGroup, id))
}

const createGroup = `-- name: CreateGroup :one
INSERT INTO groups (name, description, color_hex, parent_group_id)
VALUES ($1, $2, $3, $4)
RETURNING ` + groupColumns

type CreateGroupParams struct {
	Name          string
	Description   *string
	ColorHex      *string
	ParentGroupID *string
}

func (q *Queries) CreateGroup(ctx context.Context, arg CreateGroupParams) (Group, error) {
	return scanGroup(q.db.QueryRow(ctx, createGroup, arg.Name, arg.Description, arg.ColorHex, arg.ParentGroupID))
}

const updateGroup = `-- name: UpdateGroup :one
UPDATE groups
SET name = $2,
    description = $3,
    color_hex = $4,
    parent_group_id = $5,
    updated_at = now()
WHERE id = $1
RETURNING ` + groupColumns

type UpdateGroupParams struct {
	ID            string
	Name          string
	Description   *string
	ColorHex      *string
	ParentGroupID *string
}

func (q *Queries) UpdateGroup(ctx context.Context, arg UpdateGroupParams) (Group, error) {
	return scanGroup(q.db.QueryRow(ctx, updateGroup, arg.ID, arg.Name, arg.Description, arg.ColorHex, arg.ParentGroupID))
}

const deleteGroup = `-- name: DeleteGroup :execrows
DELETE FROM groups
WHERE id = $1
`

func (q *Queries) DeleteGroup(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteGroup, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const reassignMainGroup = `-- name: ReassignMainGroup :execrows
UPDATE entities e
SET main_group_id = (
      SELECT eg.group_id
      FROM entity_groups eg
      WHERE eg.entity_id = e.id
        AND eg.group_id <> $1
      ORDER BY eg.joined_at ASC, eg.group_id ASC
      LIMIT 1
    ),
    updated_at = now()
WHERE e.main_group_id = $1
`

// ReassignMainGroup moves every entity whose main group is groupID to its
// earliest-joined other group, or to none.
func (q *Queries) ReassignMainGroup(ctx context.Context, groupID string) (int64, error) {
	tag, err := q.db.Exec(ctx, reassignMainGroup, groupID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteGroupMemberships = `-- name: DeleteGroupMemberships :exec
DELETE FROM entity_groups
WHERE group_id = $1
`

func (q *Queries) DeleteGroupMemberships(ctx context.Context, groupID string) error {
	_, err := q.db.Exec(ctx, deleteGroupMemberships, groupID)
	return err
}
