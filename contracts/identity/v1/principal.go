// Package v1 is the cross-module identity contract. Modules exchange the
// authenticated caller through these types instead of importing each other.
package v1

import (
	"context"
	"strings"
)

// PermissionTier is the closed set of account tiers. Ordering is
// read < write < admin, with root above every other tier.
type PermissionTier string

const (
	TierRead  PermissionTier = "read"
	TierWrite PermissionTier = "write"
	TierAdmin PermissionTier = "admin"
	TierRoot  PermissionTier = "root"
)

// ParseTier accepts the canonical lower-case names, case-insensitively.
func ParseTier(raw string) (PermissionTier, bool) {
	tier := PermissionTier(strings.ToLower(strings.TrimSpace(raw)))
	if !tier.Valid() {
		return "", false
	}
	return tier, true
}

func (t PermissionTier) Valid() bool {
	return t.rank() > 0
}

func (t PermissionTier) String() string {
	return string(t)
}

// AtLeast reports whether t is the same as or above min. Unknown tiers never
// satisfy any minimum.
func (t PermissionTier) AtLeast(min PermissionTier) bool {
	if !t.Valid() || !min.Valid() {
		return false
	}
	return t.rank() >= min.rank()
}

// Privileged is true for admin and root.
func (t PermissionTier) Privileged() bool {
	return t == TierAdmin || t == TierRoot
}

// Assignable reports whether the tier can be granted through user management.
// Root only comes from startup reconciliation.
func (t PermissionTier) Assignable() bool {
	return t == TierRead || t == TierWrite || t == TierAdmin
}

func (t PermissionTier) rank() int {
	switch t {
	case TierRead:
		return 1
	case TierWrite:
		return 2
	case TierAdmin:
		return 3
	case TierRoot:
		return 4
	default:
		return 0
	}
}

// Principal is the caller resolved for a single request.
type Principal struct {
	UserID        string
	Username      string
	Tier          PermissionTier
	Authenticated bool
}

// Anonymous is the principal of a request without a usable credential.
func Anonymous() Principal {
	return Principal{}
}

// HasIdentity reports whether the principal is backed by a stored user.
func (p Principal) HasIdentity() bool {
	return p.Authenticated && strings.TrimSpace(p.UserID) != ""
}

type principalKey struct{}

// WithPrincipal attaches p to ctx. Only the authentication gateway calls this.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the attached principal or Anonymous.
func PrincipalFromContext(ctx context.Context) Principal {
	if ctx == nil {
		return Anonymous()
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok {
		return Anonymous()
	}
	return p
}
