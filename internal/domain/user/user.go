package user

import (
	"fmt"
	"time"
)

// Default display names materialized for privileged launches that carry no
// usable public name.
const (
	DefaultInstructorName    = "Educational team"
	DefaultAdministratorName = "Administrator"
)

// User is an account provisioned from LTI launches. The same remote id may
// exist on several consumers, so identity is the (consumer, remote id)
// pair and the username namespaces the remote id with the consumer slug.
type User struct {
	id             uint
	consumerSlug   string
	remoteUserID   string
	username       string
	publicUsername string
	email          string
	isActive       bool
	isSuperuser    bool
	createdAt      time.Time
	updatedAt      time.Time
}

// NewUser builds a first-contact user. The username is derived as
// remoteUserID@consumerSlug and is unique across the whole system.
func NewUser(consumerSlug, remoteUserID, email, publicUsername string) (*User, error) {
	if consumerSlug == "" {
		return nil, fmt.Errorf("user consumer is required")
	}
	if remoteUserID == "" {
		return nil, fmt.Errorf("user remote id is required")
	}
	now := time.Now()
	return &User{
		consumerSlug:   consumerSlug,
		remoteUserID:   remoteUserID,
		username:       BuildUsername(remoteUserID, consumerSlug),
		publicUsername: publicUsername,
		email:          email,
		isActive:       true,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructUser(id uint, consumerSlug, remoteUserID, username, publicUsername, email string, isActive, isSuperuser bool, createdAt, updatedAt time.Time) *User {
	return &User{
		id:             id,
		consumerSlug:   consumerSlug,
		remoteUserID:   remoteUserID,
		username:       username,
		publicUsername: publicUsername,
		email:          email,
		isActive:       isActive,
		isSuperuser:    isSuperuser,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// BuildUsername derives the internal unique username.
func BuildUsername(remoteUserID, consumerSlug string) string {
	return fmt.Sprintf("%s@%s", remoteUserID, consumerSlug)
}

func (u *User) ID() uint {
	return u.id
}

func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	u.id = id
	return nil
}

func (u *User) ConsumerSlug() string {
	return u.consumerSlug
}

func (u *User) RemoteUserID() string {
	return u.remoteUserID
}

func (u *User) Username() string {
	return u.username
}

// PublicUsername is the display name shown with posts. It may stay empty
// until the user registers one.
func (u *User) PublicUsername() string {
	return u.publicUsername
}

func (u *User) Email() string {
	return u.email
}

func (u *User) IsActive() bool {
	return u.isActive
}

func (u *User) IsSuperuser() bool {
	return u.isSuperuser
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = time.Now()
}

// SetPublicUsername registers the display name. It is a one-shot
// operation: once set, the name never changes.
func (u *User) SetPublicUsername(name string) error {
	if u.publicUsername != "" {
		return fmt.Errorf("public username is already set")
	}
	if name == "" {
		return fmt.Errorf("public username cannot be empty")
	}
	u.publicUsername = name
	u.updatedAt = time.Now()
	return nil
}

// ApplyRoleDefaultName fills an empty public username for privileged
// launches. Instructor wins over Administrator when both roles appear.
// It reports whether the user changed.
func (u *User) ApplyRoleDefaultName(roles []string) bool {
	if u.publicUsername != "" {
		return false
	}
	hasInstructor := false
	hasAdministrator := false
	for _, role := range roles {
		switch role {
		case "instructor":
			hasInstructor = true
		case "administrator":
			hasAdministrator = true
		}
	}
	switch {
	case hasInstructor:
		u.publicUsername = DefaultInstructorName
	case hasAdministrator:
		u.publicUsername = DefaultAdministratorName
	default:
		return false
	}
	u.updatedAt = time.Now()
	return true
}
