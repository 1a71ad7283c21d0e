// Package lticontext models the course-side context of an LTI launch: one
// course on one consumer, together with the groups that gate forum
// permissions for its members.
package lticontext

import (
	"fmt"
	"strings"
	"time"
)

const (
	groupPrefix    = "cg"
	groupDelimiter = ":"
	roleSegment    = "role"

	// RoleModerator is the internal-only role: it is granted from inside
	// the tool, never declared by launches, and survives group syncs.
	RoleModerator = "moderator"
)

// LTIContext represents a course on a consumer, identified by the pair
// (consumer, lti context id). It owns a base group for all members and one
// role group per encountered role.
type LTIContext struct {
	id             uint
	consumerSlug   string
	ltiID          string
	isMarkedLocked bool
	createdAt      time.Time
	updatedAt      time.Time
}

func NewLTIContext(consumerSlug, ltiID string) (*LTIContext, error) {
	if consumerSlug == "" {
		return nil, fmt.Errorf("context consumer is required")
	}
	if ltiID == "" {
		return nil, fmt.Errorf("context lti id is required")
	}
	now := time.Now()
	return &LTIContext{
		consumerSlug: consumerSlug,
		ltiID:        ltiID,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func ReconstructLTIContext(id uint, consumerSlug, ltiID string, isMarkedLocked bool, createdAt, updatedAt time.Time) *LTIContext {
	return &LTIContext{
		id:             id,
		consumerSlug:   consumerSlug,
		ltiID:          ltiID,
		isMarkedLocked: isMarkedLocked,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (c *LTIContext) ID() uint {
	return c.id
}

func (c *LTIContext) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("context ID is already set")
	}
	c.id = id
	return nil
}

func (c *LTIContext) ConsumerSlug() string {
	return c.consumerSlug
}

func (c *LTIContext) LTIID() string {
	return c.ltiID
}

// IsMarkedLocked is the authoritative read-only flag for the whole course.
func (c *LTIContext) IsMarkedLocked() bool {
	return c.isMarkedLocked
}

func (c *LTIContext) Lock() {
	c.isMarkedLocked = true
	c.updatedAt = time.Now()
}

func (c *LTIContext) Unlock() {
	c.isMarkedLocked = false
	c.updatedAt = time.Now()
}

func (c *LTIContext) CreatedAt() time.Time {
	return c.createdAt
}

func (c *LTIContext) UpdatedAt() time.Time {
	return c.updatedAt
}

// BaseGroupName is the group every member of the context belongs to.
func (c *LTIContext) BaseGroupName() string {
	return fmt.Sprintf("%s%s%d", groupPrefix, groupDelimiter, c.id)
}

// RoleGroupName names the group for one LTI role within the context.
func (c *LTIContext) RoleGroupName(role string) string {
	return c.BaseGroupName() + groupDelimiter + roleSegment + groupDelimiter + strings.ToLower(role)
}

// ModeratorGroupName names the internal-only moderator group.
func (c *LTIContext) ModeratorGroupName() string {
	return c.RoleGroupName(RoleModerator)
}

// OwnsGroup reports whether a group name belongs to this context, i.e. is
// the base group or one of its role groups.
func (c *LTIContext) OwnsGroup(groupName string) bool {
	base := c.BaseGroupName()
	return groupName == base || strings.HasPrefix(groupName, base+groupDelimiter)
}

// IsInternalGroup reports whether a group of this context must be
// preserved across role syncs.
func (c *LTIContext) IsInternalGroup(groupName string) bool {
	return groupName == c.ModeratorGroupName()
}
