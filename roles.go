package auth

import "sync"

// ValidRoles returns the predefined role names.
func ValidRoles() []UserRole {
	return []UserRole{RoleUser, RoleAdmin, RoleSuperUser}
}

// IsValidRole checks a role name against the predefined set.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleSuperUser:
		return true
	default:
		return false
	}
}

// RoleRegistry maps a handler identifier to its required role set. It is
// populated at startup, before the server accepts traffic, and consulted
// by the authorization guard at dispatch time. Declaring no requirement
// for a route means any authenticated identity may call it.
type RoleRegistry struct {
	mu    sync.RWMutex
	rules map[string][]string
}

// NewRoleRegistry returns an empty registry.
func NewRoleRegistry() *RoleRegistry {
	return &RoleRegistry{
		rules: map[string][]string{},
	}
}

// Declare attaches a required role set to a handler identifier. Declaring
// twice replaces the previous requirement; declaring with no roles clears
// it.
func (r *RoleRegistry) Declare(handlerID string, roles ...string) *RoleRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(roles) == 0 {
		delete(r.rules, handlerID)
		return r
	}

	required := make([]string, 0, len(roles))
	for _, role := range roles {
		if role != "" {
			required = append(required, role)
		}
	}
	r.rules[handlerID] = required

	return r
}

// RolesFor returns the declared requirement for a handler. An empty slice
// means no role restriction.
func (r *RoleRegistry) RolesFor(handlerID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	required, ok := r.rules[handlerID]
	if !ok {
		return nil
	}

	out := make([]string, len(required))
	copy(out, required)
	return out
}
