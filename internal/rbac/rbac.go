package rbac

// Role is a principal's authorization tier. The three tiers form a total
// order: FREE < PRIME < ADMIN.
type Role string

const (
	RoleFree  Role = "FREE"
	RolePrime Role = "PRIME"
	RoleAdmin Role = "ADMIN"
)

// Action is a named permission key, namespaced by feature area.
type Action string

const (
	HangoutsListPublic  Action = "hangouts.listPublic"
	HangoutsJoinPublic  Action = "hangouts.joinPublic"
	HangoutsJoinPrivate Action = "hangouts.joinPrivate"
	HangoutsCreate      Action = "hangouts.create"
	VideoramaPlayPublic Action = "videorama.playPublic"
	VideoramaPlayPrime  Action = "videorama.playPrime"
	VideoramaCreate     Action = "videorama.create"
	VideoramaEditOwn    Action = "videorama.editOwn"
	VideoramaEditAny    Action = "videorama.editAny"
	VideoramaDeleteOwn  Action = "videorama.deleteOwn"
	VideoramaDeleteAny  Action = "videorama.deleteAny"
)

// Visibility of a videorama collection.
type Visibility string

const (
	VisibilityPublic Visibility = "PUBLIC"
	VisibilityPrime  Visibility = "PRIME"
)

// ResourceContext carries ownership metadata for owner-scoped actions.
// Ownership requires both ids present and equal.
type ResourceContext struct {
	OwnerID     string
	RequesterID string
	Visibility  Visibility
}

var roleHierarchy = map[Role]int{
	RoleFree:  0,
	RolePrime: 1,
	RoleAdmin: 2,
}

// IsPrimeOrAbove reports whether role ranks at least PRIME. Unknown roles
// rank below FREE.
func IsPrimeOrAbove(role Role) bool {
	return roleHierarchy[role] >= roleHierarchy[RolePrime]
}

// IsAdmin reports whether role ranks at least ADMIN.
func IsAdmin(role Role) bool {
	return roleHierarchy[role] >= roleHierarchy[RoleAdmin]
}

func isKnown(action Action) bool {
	switch action {
	case HangoutsListPublic, HangoutsJoinPublic, HangoutsJoinPrivate, HangoutsCreate,
		VideoramaPlayPublic, VideoramaPlayPrime, VideoramaCreate,
		VideoramaEditOwn, VideoramaEditAny, VideoramaDeleteOwn, VideoramaDeleteAny:
		return true
	}
	return false
}

func isOwner(resource *ResourceContext) bool {
	return resource != nil &&
		resource.OwnerID != "" &&
		resource.RequesterID != "" &&
		resource.OwnerID == resource.RequesterID
}

// Can decides whether role may perform action. Pure and total: unknown
// actions are denied for every role, including ADMIN. For known actions
// ADMIN short-circuits to allow.
func Can(role Role, action Action, resource *ResourceContext) bool {
	if !isKnown(action) {
		return false
	}
	if IsAdmin(role) {
		return true
	}

	switch action {
	case HangoutsListPublic, HangoutsJoinPublic, HangoutsJoinPrivate, VideoramaPlayPublic:
		return true
	case HangoutsCreate, VideoramaCreate, VideoramaPlayPrime:
		return IsPrimeOrAbove(role)
	case VideoramaEditAny, VideoramaDeleteAny:
		return false
	case VideoramaEditOwn, VideoramaDeleteOwn:
		return IsPrimeOrAbove(role) && isOwner(resource)
	default:
		return false
	}
}

// CanAccessVideorama is the visibility-gate shortcut for playback: PUBLIC
// collections are open to everyone, PRIME collections need a PRIME tier.
func CanAccessVideorama(role Role, visibility Visibility) bool {
	if visibility == VisibilityPublic {
		return true
	}
	return IsPrimeOrAbove(role)
}
