package permissions

// SuperAdmin decides whether a user bypasses organization-scoped checks.
// A user qualifies either by id allow-list or by platform role. This check
// runs before any organization-role check.
type SuperAdmin struct {
	userIDs map[string]struct{}
	roles   map[string]struct{}
}

// NewSuperAdmin builds the checker from configured user ids and role names.
func NewSuperAdmin(userIDs, roles []string) *SuperAdmin {
	sa := &SuperAdmin{
		userIDs: make(map[string]struct{}, len(userIDs)),
		roles:   make(map[string]struct{}, len(roles)),
	}
	for _, id := range userIDs {
		sa.userIDs[id] = struct{}{}
	}
	for _, r := range roles {
		sa.roles[r] = struct{}{}
	}
	return sa
}

// Is reports whether the user id or platform role grants super-admin access.
func (sa *SuperAdmin) Is(userID, role string) bool {
	if _, ok := sa.userIDs[userID]; ok {
		return true
	}
	if role == "" {
		return false
	}
	_, ok := sa.roles[role]
	return ok
}
