package permission

import "context"

// Enforcer gates forum access through named groups. Group membership and
// per-forum grants are policies: removing the last member of a group never
// deletes the group's grants.
type Enforcer interface {
	// Grant gives a group one permission on one forum. Granting an
	// already-granted permission is a no-op.
	Grant(ctx context.Context, groupName string, forumID uint, codename Codename) error
	// Revoke removes one grant. Revoking an absent grant is a no-op.
	Revoke(ctx context.Context, groupName string, forumID uint, codename Codename) error
	// GroupPermissions lists the codenames a group holds on a forum.
	GroupPermissions(ctx context.Context, groupName string, forumID uint) ([]Codename, error)

	// AddUserToGroup and RemoveUserFromGroup manage membership.
	AddUserToGroup(ctx context.Context, userID uint, groupName string) error
	RemoveUserFromGroup(ctx context.Context, userID uint, groupName string) error
	// UserGroups lists every group the user belongs to.
	UserGroups(ctx context.Context, userID uint) ([]string, error)
	// GroupMembers lists the user ids belonging to a group.
	GroupMembers(ctx context.Context, groupName string) ([]uint, error)

	// HasPermission checks whether the user holds a permission on a
	// forum through any of their groups.
	HasPermission(ctx context.Context, userID uint, forumID uint, codename Codename) (bool, error)

	// Reload re-reads policies from the backing store, picking up rows
	// written around the enforcer (lock transitions).
	Reload(ctx context.Context) error
}

// LockStore flips a context's lock flag and rewrites the base group's
// grants across the context's forums in one transaction, so readers only
// ever see the full OPEN or the full LOCKED permission set.
type LockStore interface {
	LockContext(ctx context.Context, contextID uint, baseGroupName string, forumIDs []uint) error
	UnlockContext(ctx context.Context, contextID uint, baseGroupName string, forumIDs []uint) error
}
