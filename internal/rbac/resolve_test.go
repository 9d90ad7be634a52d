package rbac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveRoleAdminIsSticky(t *testing.T) {
	now := time.Now()

	assert.Equal(t, RoleAdmin, ResolveRole(RoleAdmin, nil, now))

	expired := &Membership{Plan: PlanPrime, Status: MembershipActive, ExpiresAt: now.Add(-time.Hour)}
	assert.Equal(t, RoleAdmin, ResolveRole(RoleAdmin, expired, now))
}

func TestResolveRoleActivePrimeMembership(t *testing.T) {
	now := time.Now()
	m := &Membership{Plan: PlanPrime, Status: MembershipActive, ExpiresAt: now.Add(24 * time.Hour)}

	assert.Equal(t, RolePrime, ResolveRole(RoleFree, m, now))
	assert.Equal(t, RolePrime, ResolveRole(RolePrime, m, now))
}

func TestResolveRoleNoExpirySet(t *testing.T) {
	m := &Membership{Plan: PlanPrime, Status: MembershipActive}
	assert.Equal(t, RolePrime, ResolveRole(RoleFree, m, time.Now()))
}

func TestResolveRoleInactiveMembership(t *testing.T) {
	now := time.Now()

	expired := &Membership{Plan: PlanPrime, Status: MembershipActive, ExpiresAt: now.Add(-time.Minute)}
	assert.Equal(t, RoleFree, ResolveRole(RoleFree, expired, now))

	canceled := &Membership{Plan: PlanPrime, Status: MembershipCanceled, ExpiresAt: now.Add(time.Hour)}
	assert.Equal(t, RoleFree, ResolveRole(RoleFree, canceled, now))

	wrongPlan := &Membership{Plan: MembershipPlan("BASIC"), Status: MembershipActive, ExpiresAt: now.Add(time.Hour)}
	assert.Equal(t, RoleFree, ResolveRole(RoleFree, wrongPlan, now))

	assert.Equal(t, RoleFree, ResolveRole(RoleFree, nil, now))
}
