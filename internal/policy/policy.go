// Package policy declares which roles each route requires. The table is
// ordinary data evaluated against the resolved principal before dispatch, so
// authorization rules stay reviewable in one place instead of scattering across
// handlers.
package policy

// Declared application roles, in declaration order. Token claims preserve this
// order regardless of how the principal's memberships arrive.
var DeclaredRoles = []string{"admin", "user"}

// Table maps a route name to the roles allowed to call it.
//
// Rules:
//   - route absent from the table: public, no authentication required
//   - route present with roles: authenticated principal holding any listed role
type Table map[string][]string

// Default returns the authorization policy for this service.
func Default() Table {
	return Table{
		"logEvent":      {"admin", "user"},
		"getUserEvents": {"admin", "user"},
		"issueToken":    {"admin", "user"},
	}
}

// RolesFor returns the required roles for a route and whether the route is
// gated at all.
func (t Table) RolesFor(route string) ([]string, bool) {
	roles, ok := t[route]
	return roles, ok
}
