package domain

import "time"

// Role enumerates marketplace account roles.
type Role string

const (
	RoleBuyer     Role = "BUYER"
	RoleSeller    Role = "SELLER"
	RoleDeveloper Role = "DEVELOPER"
	RoleAdmin     Role = "ADMIN"
)

// Switchable reports whether users may move to or from this role on
// their own. Developer and admin are assigned administratively.
func (r Role) Switchable() bool {
	return r == RoleBuyer || r == RoleSeller
}

// CanSell reports whether the role is allowed to submit listings.
func (r Role) CanSell() bool {
	return r == RoleSeller || r == RoleDeveloper
}

// User is the domain model for marketplace accounts.
type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	Role               Role
	AvatarURL          *string
	DevUsername        *string
	MustRotatePassword bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
