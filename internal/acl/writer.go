package acl

import "context"

// Writer persists ACL graph units into one destination store. The seeder
// drives two Writers — cache first, then relational — so tests can inject
// fakes and simulate a crash between the two writes.
type Writer interface {
	// AssignRole records userID holding role, updating both the user's
	// role set and the role's user set.
	AssignRole(ctx context.Context, userID uint, role string) error

	// GrantPermissions records the permission strings a role holds on one
	// resource.
	GrantPermissions(ctx context.Context, role, resource string, permissions []string) error

	// AddRoleParents records role's explicit inheritance edges.
	AddRoleParents(ctx context.Context, role string, parents []string) error
}

// LookupWriter persists the cache-only derived lookup keys.
type LookupWriter interface {
	SetUsernameLookup(ctx context.Context, username string, userID uint) error
	SetEventLookup(ctx context.Context, name string, ownerID, eventID uint) error
	InitStarCount(ctx context.Context, eventID uint) error
}
