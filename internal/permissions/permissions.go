// Package permissions defines the role to capability mapping consumed at the
// authorization boundary. An AccessControl instance is built once at startup
// and passed by reference into the middleware; there is no package-level
// role state.
package permissions

// Statements maps a resource name to the actions a role may perform on it.
type Statements map[string][]string

// Role is a named set of statements.
type Role struct {
	Name       string
	Statements Statements
}

// AccessControl answers whether a role grants an action on a resource.
type AccessControl struct {
	statements Statements
	roles      map[string]Role
}

// NewAccessControl creates an access control instance from the full
// statement table. Roles are registered with NewRole.
func NewAccessControl(statements Statements) *AccessControl {
	return &AccessControl{
		statements: statements,
		roles:      make(map[string]Role),
	}
}

// NewRole registers a role. Its statements are merged from base roles left
// to right, then overridden by the explicit statements.
func (ac *AccessControl) NewRole(name string, statements Statements, bases ...Role) Role {
	merged := make(Statements)
	for _, base := range bases {
		for resource, actions := range base.Statements {
			merged[resource] = append([]string(nil), actions...)
		}
	}
	for resource, actions := range statements {
		merged[resource] = append([]string(nil), actions...)
	}
	role := Role{Name: name, Statements: merged}
	ac.roles[name] = role
	return role
}

// Can reports whether the role grants the action on the resource. Unknown
// roles, resources, and actions all deny.
func (ac *AccessControl) Can(roleName, resource, action string) bool {
	role, ok := ac.roles[roleName]
	if !ok {
		return false
	}
	actions, ok := role.Statements[resource]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// Roles returns the registered role names.
func (ac *AccessControl) Roles() []string {
	names := make([]string, 0, len(ac.roles))
	for name := range ac.roles {
		names = append(names, name)
	}
	return names
}
