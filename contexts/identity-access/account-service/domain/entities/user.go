package entities

import (
	"strings"
	"time"

	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

type User struct {
	UserID       string
	Username     string
	FirstName    string
	LastName     string
	Contact      string
	PasswordHash string
	Tier         identityv1.PermissionTier
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal builds the request principal for an account that has been
// resolved from a valid token.
func (u User) Principal() identityv1.Principal {
	return identityv1.Principal{
		UserID:        u.UserID,
		Username:      u.Username,
		Tier:          u.Tier,
		Authenticated: true,
	}
}

func (u User) IsRoot() bool {
	return u.Tier == identityv1.TierRoot
}

// Profile holds the user-editable account fields.
type Profile struct {
	Username  string
	FirstName string
	LastName  string
	Contact   string
}

func (p Profile) Normalize() Profile {
	return Profile{
		Username:  strings.TrimSpace(p.Username),
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Contact:   strings.TrimSpace(p.Contact),
	}
}

// RootReconciliationAction names the outcome of startup root reconciliation.
type RootReconciliationAction string

const (
	RootCreated   RootReconciliationAction = "created"
	RootUpdated   RootReconciliationAction = "updated"
	RootUnchanged RootReconciliationAction = "unchanged"
)

// RootReconciliation records the root account before and after startup
// reconciliation. Before is nil when no root account existed.
type RootReconciliation struct {
	Action RootReconciliationAction
	Before *User
	After  User
}
