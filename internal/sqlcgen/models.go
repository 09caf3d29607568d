package sqlcgen

import "time"

type Group struct {
	ID            string
	Name          string
	Description   *string
	ColorHex      *string
	ParentGroupID *string
	CreatedAt     time.Time
}

type Entity struct {
	ID            string
	Name          string
	ContactEmail  *string
	ContactPhone  *string
	Notes         *string
	MainGroupID   *string
	IsCurrentUser bool
	PosX          *float64
	PosY          *float64
	CreatedAt     time.Time
}

type Membership struct {
	EntityID string
	GroupID  string
	JoinedAt time.Time
}

// Edge endpoints are stored in canonical order: AEntityID < BEntityID.
type Edge struct {
	ID        string
	AEntityID string
	BEntityID string
	Label     *string
	CreatedAt time.Time
}
