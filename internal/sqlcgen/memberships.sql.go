package sqlcgen

import (
	"context"
)

const listMemberships = `-- name: ListMemberships :many
SELECT entity_id, group_id, joined_at
FROM entity_groups
ORDER BY joined_at ASC, group_id ASC
`

func (q *Queries) ListMemberships(ctx context.Context) ([]Membership, error) {
	rows, err := q.db.Query(ctx, listMemberships)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Membership
	for rows.Next() {
		var i Membership
		if err := rows.Scan(&i.EntityID, &i.GroupID, &i.JoinedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listEntityGroupIDs = `-- name: ListEntityGroupIDs :many
SELECT group_id
FROM entity_groups
WHERE entity_id = $1
ORDER BY joined_at ASC, group_id ASC
`

func (q *Queries) ListEntityGroupIDs(ctx context.Context, entityID string) ([]string, error) {
	rows, err := q.db.Query(ctx, listEntityGroupIDs, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var groupID string
		if err := rows.Scan(&groupID); err != nil {
			return nil, err
		}
		items = append(items, groupID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const addMembership = `-- name: AddMembership :exec
INSERT INTO entity_groups (entity_id, group_id)
VALUES ($1, $2)
ON CONFLICT (entity_id, group_id) DO NOTHING
`

type AddMembershipParams struct {
	EntityID string
	GroupID  string
}

func (q *Queries) AddMembership(ctx context.Context, arg AddMembershipParams) error {
	_, err := q.db.Exec(ctx, addMembership, arg.EntityID, arg.GroupID)
	return err
}

const removeMembership = `-- name: RemoveMembership :exec
DELETE FROM entity_groups
WHERE entity_id = $1
  AND group_id = $2
`

func (q *Queries) RemoveMembership(ctx context.Context, arg AddMembershipParams) error {
	_, err := q.db.Exec(ctx, removeMembership, arg.EntityID, arg.GroupID)
	return err
}
