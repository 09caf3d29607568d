package sqlcgen

import (
	"context"
)

const entityColumns = `id, name, contact_email, contact_phone, notes, main_group_id, is_current_user, pos_x, pos_y, created_at`

func scanEntity(row rowScanner) (Entity, error) {
	var i Entity
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.ContactEmail,
		&i.ContactPhone,
		&i.Notes,
		&i.MainGroupID,
		&i.IsCurrentUser,
		&i.PosX,
		&i.PosY,
		&i.CreatedAt,
	)
	return i, err
}

const listEntities = `-- name: ListEntities :many
SELECT ` + entityColumns + `
FROM entities e
WHERE ($1::text IS NULL
       OR e.name ILIKE '%' || $1::text || '%'
       OR e.contact_email ILIKE '%' || $1::text || '%')
  AND ($2::uuid IS NULL
       OR EXISTS (SELECT 1 FROM entity_groups eg WHERE eg.entity_id = e.id AND eg.group_id = $2::uuid))
ORDER BY e.created_at ASC, e.id ASC
`

type ListEntitiesParams struct {
	Search  *string
	GroupID *string
}

func (q *Queries) ListEntities(ctx context.Context, arg ListEntitiesParams) ([]Entity, error) {
	rows, err := q.db.Query(ctx, listEntities, arg.Search, arg.GroupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Entity
	for rows.Next() {
		i, err := scanEntity(rows)
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

const getEntity = `-- name: GetEntity :one
SELECT ` + entityColumns + `
FROM entities
WHERE id = $1
`

func (q *Queries) GetEntity(ctx context.Context, id string) (Entity, error) {
	return scanEntity(q.db.QueryRow(ctx, getEntity, id))
}

const findEntityByEmail = `-- name: FindEntityByEmail :one
SELECT ` + entityColumns + `
FROM entities
WHERE lower(contact_email) = lower($1)
LIMIT 1
`

func (q *Queries) FindEntityByEmail(ctx context.Context, email string) (Entity, error) {
	return scanEntity(q.db.QueryRow(ctx, findEntityByEmail, email))
}

const findEntityByName = `-- name: FindEntityByName :one
SELECT ` + entityColumns + `
FROM entities
WHERE lower(name) = lower($1)
ORDER BY created_at ASC
LIMIT 1
`

func (q *Queries) FindEntityByName(ctx context.Context, name string) (Entity, error) {
	return scanEntity(q.db.QueryRow(ctx, findEntityByName, name))
}

const createEntity = `-- name: CreateEntity :one
INSERT INTO entities (name, contact_email, contact_phone, notes, main_group_id, is_current_user)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + entityColumns

type CreateEntityParams struct {
	Name          string
	ContactEmail  *string
	ContactPhone  *string
	Notes         *string
	MainGroupID   *string
	IsCurrentUser bool
}

func (q *Queries) CreateEntity(ctx context.Context, arg CreateEntityParams) (Entity, error) {
	return scanEntity(q.db.QueryRow(ctx, createEntity,
		arg.Name,
		arg.ContactEmail,
		arg.ContactPhone,
		arg.Notes,
		arg.MainGroupID,
		arg.IsCurrentUser,
	))
}

const updateEntity = `-- name: UpdateEntity :one
UPDATE entities
SET name = $2,
    contact_email = $3,
    contact_phone = $4,
    notes = $5,
    main_group_id = $6,
    is_current_user = $7,
    updated_at = now()
WHERE id = $1
RETURNING ` + entityColumns

type UpdateEntityParams struct {
	ID            string
	Name          string
	ContactEmail  *string
	ContactPhone  *string
	Notes         *string
	MainGroupID   *string
	IsCurrentUser bool
}

func (q *Queries) UpdateEntity(ctx context.Context, arg UpdateEntityParams) (Entity, error) {
	return scanEntity(q.db.QueryRow(ctx, updateEntity,
		arg.ID,
		arg.Name,
		arg.ContactEmail,
		arg.ContactPhone,
		arg.Notes,
		arg.MainGroupID,
		arg.IsCurrentUser,
	))
}

const setMainGroup = `-- name: SetMainGroup :exec
UPDATE entities
SET main_group_id = $2,
    updated_at = now()
WHERE id = $1
`

type SetMainGroupParams struct {
	ID          string
	MainGroupID *string
}

func (q *Queries) SetMainGroup(ctx context.Context, arg SetMainGroupParams) error {
	_, err := q.db.Exec(ctx, setMainGroup, arg.ID, arg.MainGroupID)
	return err
}

const updateEntityPosition = `-- name: UpdateEntityPosition :execrows
UPDATE entities
SET pos_x = $2,
    pos_y = $3
WHERE id = $1
`

type UpdateEntityPositionParams struct {
	ID string
	X  float64
	Y  float64
}

func (q *Queries) UpdateEntityPosition(ctx context.Context, arg UpdateEntityPositionParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateEntityPosition, arg.ID, arg.X, arg.Y)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteEntity = `-- name: DeleteEntity :execrows
DELETE FROM entities
WHERE id = $1
`

func (q *Queries) DeleteEntity(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteEntity, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
