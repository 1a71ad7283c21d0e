// Package permission declares the forum permission codenames, the default
// grants per group category and the enforcement interface that backs them.
package permission

// Codename identifies one forum permission.
type Codename string

const (
	CanSeeForum             Codename = "can_see_forum"
	CanReadForum            Codename = "can_read_forum"
	CanStartNewTopics       Codename = "can_start_new_topics"
	CanReplyToTopics        Codename = "can_reply_to_topics"
	CanEditOwnPosts         Codename = "can_edit_own_posts"
	CanPostWithoutApproval  Codename = "can_post_without_approval"
	CanVoteInPolls          Codename = "can_vote_in_polls"
	CanPostAnnouncements    Codename = "can_post_announcements"
	CanPostStickies         Codename = "can_post_stickies"
	CanDeleteOwnPosts       Codename = "can_delete_own_posts"
	CanCreatePolls          Codename = "can_create_polls"
	CanLockTopics           Codename = "can_lock_topics"
	CanEditPosts            Codename = "can_edit_posts"
	CanDeletePosts          Codename = "can_delete_posts"
	CanApprovePosts         Codename = "can_approve_posts"
	CanReplyToLockedTopics  Codename = "can_reply_to_locked_topics"
	CanRenameForum          Codename = "can_rename_forum"
	CanArchiveForum         Codename = "can_archive_forum"
	CanLockCourse           Codename = "can_lock_course"
	CanUnlockCourse         Codename = "can_unlock_course"
	CanManageModerator      Codename = "can_manage_moderator"
)

// BasePermissions is granted to the base group of every context.
func BasePermissions() []Codename {
	return []Codename{
		CanSeeForum,
		CanReadForum,
		CanStartNewTopics,
		CanReplyToTopics,
		CanEditOwnPosts,
		CanPostWithoutApproval,
		CanVoteInPolls,
	}
}

// BaseWritePermissions is the subset of the base set stripped from the
// base group while a context is locked. The read permissions stay.
func BaseWritePermissions() []Codename {
	return []Codename{
		CanStartNewTopics,
		CanReplyToTopics,
		CanEditOwnPosts,
		CanPostWithoutApproval,
		CanVoteInPolls,
	}
}

// BaseReadPermissions is the part of the base set a locked context keeps.
func BaseReadPermissions() []Codename {
	return []Codename{
		CanSeeForum,
		CanReadForum,
	}
}

// AdminPermissions extends the base set for privileged role groups.
func AdminPermissions() []Codename {
	return append(BasePermissions(),
		CanPostAnnouncements,
		CanPostStickies,
		CanDeleteOwnPosts,
		CanCreatePolls,
		CanLockTopics,
		CanEditPosts,
		CanDeletePosts,
		CanApprovePosts,
		CanReplyToLockedTopics,
		CanRenameForum,
		CanArchiveForum,
		CanLockCourse,
		CanUnlockCourse,
		CanManageModerator,
	)
}

// RolePermissions is the declared permission table for role groups. Roles
// absent from the table fall back to the base set when their group is
// materialized.
type RolePermissions map[string][]Codename

// DefaultRolePermissions returns the built-in role permission table. It is
// a value, not a mutable global: callers get their own copy, and deployers
// may override it through configuration loading.
func DefaultRolePermissions() RolePermissions {
	return RolePermissions{
		"administrator": AdminPermissions(),
		"instructor":    AdminPermissions(),
		"moderator":     AdminPermissions(),
	}
}

// ForRole returns the declared set for one role, defaulting to the base
// set for roles outside the table.
func (rp RolePermissions) ForRole(role string) []Codename {
	if perms, ok := rp[role]; ok {
		return append([]Codename(nil), perms...)
	}
	return BasePermissions()
}

// Contains reports whether a codename belongs to a set.
func Contains(set []Codename, codename Codename) bool {
	for _, c := range set {
		if c == codename {
			return true
		}
	}
	return false
}
