package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionSets(t *testing.T) {
	t.Run("base set splits exactly into read and write", func(t *testing.T) {
		base := BasePermissions()
		read := BaseReadPermissions()
		write := BaseWritePermissions()

		assert.Len(t, base, len(read)+len(write))
		for _, c := range read {
			assert.True(t, Contains(base, c), "read permission %s missing from base set", c)
			assert.False(t, Contains(write, c), "read permission %s must not be in the write set", c)
		}
		for _, c := range write {
			assert.True(t, Contains(base, c), "write permission %s missing from base set", c)
		}
	})

	t.Run("admin set extends the base set", func(t *testing.T) {
		admin := AdminPermissions()
		for _, c := range BasePermissions() {
			assert.True(t, Contains(admin, c))
		}
		assert.True(t, Contains(admin, CanLockCourse))
		assert.True(t, Contains(admin, CanUnlockCourse))
		assert.True(t, Contains(admin, CanManageModerator))
	})
}

func TestRolePermissions_ForRole(t *testing.T) {
	rp := DefaultRolePermissions()

	t.Run("privileged roles get the admin set", func(t *testing.T) {
		assert.ElementsMatch(t, AdminPermissions(), rp.ForRole("instructor"))
		assert.ElementsMatch(t, AdminPermissions(), rp.ForRole("administrator"))
		assert.ElementsMatch(t, AdminPermissions(), rp.ForRole("moderator"))
	})

	t.Run("unknown roles fall back to the base set", func(t *testing.T) {
		assert.ElementsMatch(t, BasePermissions(), rp.ForRole("student"))
		assert.ElementsMatch(t, BasePermissions(), rp.ForRole("learner"))
	})

	t.Run("returned sets are copies", func(t *testing.T) {
		set := rp.ForRole("instructor")
		set[0] = Codename("mutated")
		assert.NotContains(t, rp.ForRole("instructor"), Codename("mutated"))
	})
}
