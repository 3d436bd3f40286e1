package auth

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the base role every account starts with
	RoleUser UserRole = "user"
	// RoleAdmin can manage resources
	RoleAdmin UserRole = "admin"
	// RoleSuperUser can manage everything, including other admins
	RoleSuperUser UserRole = "super-user"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	FullName      string     `bun:"full_name,notnull" json:"fullName,omitempty"`
	IsActive      bool       `bun:"is_active" json:"isActive"`
	Roles         []string   `bun:"roles,notnull" json:"roles,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

// BeforeAppendModel normalizes the email before every persistence write.
func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		u.Email = NormalizeEmail(u.Email)
	case *bun.UpdateQuery:
		u.Email = NormalizeEmail(u.Email)
		now := time.Now()
		u.UpdatedAt = &now
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email address. Every lookup and
// persistence write goes through this, so case and padding never produce
// duplicate accounts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasAnyRole reports whether the user holds at least one of the given
// roles. An empty requirement never matches; callers decide what absence
// of a requirement means.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if slices.Contains(u.Roles, role) {
			return true
		}
	}
	return false
}

// AddRole appends a role if the user does not already hold it.
func (u *User) AddRole(role string) *User {
	if !slices.Contains(u.Roles, role) {
		u.Roles = append(u.Roles, role)
	}
	return u
}

// Sanitize strips credential material from the record. Called before a
// user is handed back alongside a token.
func (u *User) Sanitize() *User {
	u.PasswordHash = ""
	return u
}
