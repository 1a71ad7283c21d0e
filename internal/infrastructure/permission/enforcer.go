package permission

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/openfun/ashley-sub000/internal/domain/permission"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

// Grants and memberships are casbin policies: p rules carry
// (group, forum, codename) grants, g rules carry user-to-group
// membership. A group exists exactly as long as rules mention it.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

const (
	userSubjectPrefix = "user:"
	forumObjectPrefix = "forum:"
)

var _ permission.Enforcer = (*Enforcer)(nil)

type Enforcer struct {
	enforcer   *casbin.Enforcer
	mu         sync.RWMutex
	persistent bool
	logger     logger.Interface
}

// NewEnforcer builds an enforcer persisting its rules through the given
// database. Policy writes auto-save row by row.
func NewEnforcer(db *gorm.DB, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to build casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer:   enforcer,
		persistent: true,
		logger:     log,
	}, nil
}

// NewMemoryEnforcer builds an enforcer holding its rules in memory only.
func NewMemoryEnforcer(log logger.Interface) (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to build casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

func (e *Enforcer) Grant(ctx context.Context, groupName string, forumID uint, codename permission.Codename) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.AddPolicy(groupName, forumObject(forumID), string(codename))
	if err != nil {
		e.logger.Errorw("failed to grant permission", "error", err, "group", groupName, "forum_id", forumID, "codename", codename)
		return fmt.Errorf("failed to grant permission: %w", err)
	}

	return nil
}

func (e *Enforcer) Revoke(ctx context.Context, groupName string, forumID uint, codename permission.Codename) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.RemovePolicy(groupName, forumObject(forumID), string(codename))
	if err != nil {
		e.logger.Errorw("failed to revoke permission", "error", err, "group", groupName, "forum_id", forumID, "codename", codename)
		return fmt.Errorf("failed to revoke permission: %w", err)
	}

	return nil
}

func (e *Enforcer) GroupPermissions(ctx context.Context, groupName string, forumID uint) ([]permission.Codename, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policies, err := e.enforcer.GetFilteredPolicy(0, groupName, forumObject(forumID))
	if err != nil {
		return nil, fmt.Errorf("failed to get group permissions: %w", err)
	}

	codenames := make([]permission.Codename, 0, len(policies))
	for _, policy := range policies {
		codenames = append(codenames, permission.Codename(policy[2]))
	}

	return codenames, nil
}

func (e *Enforcer) AddUserToGroup(ctx context.Context, userID uint, groupName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.AddRoleForUser(userSubject(userID), groupName)
	if err != nil {
		e.logger.Errorw("failed to add user to group", "error", err, "user_id", userID, "group", groupName)
		return fmt.Errorf("failed to add user to group: %w", err)
	}

	return nil
}

func (e *Enforcer) RemoveUserFromGroup(ctx context.Context, userID uint, groupName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.DeleteRoleForUser(userSubject(userID), groupName)
	if err != nil {
		e.logger.Errorw("failed to remove user from group", "error", err, "user_id", userID, "group", groupName)
		return fmt.Errorf("failed to remove user from group: %w", err)
	}

	return nil
}

func (e *Enforcer) UserGroups(ctx context.Context, userID uint) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	groups, err := e.enforcer.GetRolesForUser(userSubject(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get user groups: %w", err)
	}

	return groups, nil
}

func (e *Enforcer) GroupMembers(ctx context.Context, groupName string) ([]uint, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	subjects, err := e.enforcer.GetUsersForRole(groupName)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}

	members := make([]uint, 0, len(subjects))
	for _, subject := range subjects {
		id, ok := parseUserSubject(subject)
		if !ok {
			continue
		}
		members = append(members, id)
	}

	return members, nil
}

func (e *Enforcer) HasPermission(ctx context.Context, userID uint, forumID uint, codename permission.Codename) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(userSubject(userID), forumObject(forumID), string(codename))
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "user_id", userID, "forum_id", forumID, "codename", codename)
		return false, fmt.Errorf("permission check failed: %w", err)
	}

	return allowed, nil
}

func (e *Enforcer) Reload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// A memory-only enforcer has no store to reload from.
	if !e.persistent {
		return nil
	}

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	return nil
}

func userSubject(userID uint) string {
	return userSubjectPrefix + strconv.FormatUint(uint64(userID), 10)
}

func forumObject(forumID uint) string {
	return forumObjectPrefix + strconv.FormatUint(uint64(forumID), 10)
}

func parseUserSubject(subject string) (uint, bool) {
	raw, found := strings.CutPrefix(subject, userSubjectPrefix)
	if !found {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
