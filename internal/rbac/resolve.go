package rbac

import "time"

// MembershipPlan identifies the subscription product.
type MembershipPlan string

const (
	PlanPrime MembershipPlan = "PRIME"
)

// MembershipStatus is the lifecycle state of a membership record.
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "ACTIVE"
	MembershipExpired  MembershipStatus = "EXPIRED"
	MembershipCanceled MembershipStatus = "CANCELED"
)

// Membership is the subscription state consulted when computing an
// effective role.
type Membership struct {
	Plan      MembershipPlan
	Status    MembershipStatus
	ExpiresAt time.Time
}

func (m *Membership) activeAt(now time.Time) bool {
	if m == nil || m.Status != MembershipActive || m.Plan != PlanPrime {
		return false
	}
	// A zero expiry means the membership does not expire.
	return m.ExpiresAt.IsZero() || m.ExpiresAt.After(now)
}

// ResolveRole computes the effective role from the stored base role and the
// latest membership record. ADMIN is sticky and never demoted by membership
// state. This is the only place an effective role is derived from ground
// truth; a role carried in an issued token is a point-in-time snapshot.
func ResolveRole(base Role, m *Membership, now time.Time) Role {
	if base == RoleAdmin {
		return RoleAdmin
	}
	if m.activeAt(now) {
		return RolePrime
	}
	return RoleFree
}
