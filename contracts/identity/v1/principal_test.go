package v1

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierOrdering(t *testing.T) {
	assert.True(t, TierWrite.AtLeast(TierRead))
	assert.True(t, TierAdmin.AtLeast(TierWrite))
	assert.True(t, TierRoot.AtLeast(TierAdmin))
	assert.True(t, TierRead.AtLeast(TierRead))
	assert.False(t, TierRead.AtLeast(TierWrite))
	assert.False(t, TierAdmin.AtLeast(TierRoot))
	assert.False(t, PermissionTier("owner").AtLeast(TierRead))
	assert.False(t, TierRoot.AtLeast(PermissionTier("")))
}

func TestParseTier(t *testing.T) {
	tier, ok := ParseTier(" ADMIN ")
	require.True(t, ok)
	assert.Equal(t, TierAdmin, tier)

	_, ok = ParseTier("ROLE_ADMIN")
	assert.False(t, ok)
}

func TestRootIsNotAssignable(t *testing.T) {
	assert.False(t, TierRoot.Assignable())
	assert.True(t, TierAdmin.Assignable())
	assert.True(t, TierRead.Assignable())
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	assert.Equal(t, Anonymous(), PrincipalFromContext(context.Background()))

	p := Principal{UserID: "u-1", Username: "alice", Tier: TierWrite, Authenticated: true}
	ctx := WithPrincipal(context.Background(), p)
	assert.Equal(t, p, PrincipalFromContext(ctx))
	assert.True(t, PrincipalFromContext(ctx).HasIdentity())
	assert.False(t, Anonymous().HasIdentity())
}
