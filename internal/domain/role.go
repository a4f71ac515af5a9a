package domain

import "strings"

type RoleName string

const (
	RoleUser    RoleName = "USER"
	RoleAdmin   RoleName = "ADMIN"
	RoleManager RoleName = "MANAGER"
)

type Role struct {
	ID   int64    `json:"id"`
	Name RoleName `json:"name"`
}

// ParseRoleName normalizes authority strings such as "ROLE_admin" to ADMIN.
// ok is false for names outside the known set.
func ParseRoleName(s string) (RoleName, bool) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "ROLE_")
	switch RoleName(name) {
	case RoleUser, RoleAdmin, RoleManager:
		return RoleName(name), true
	}
	return "", false
}

// IsElevated reports whether the role may perform administrative operations.
func (r RoleName) IsElevated() bool {
	return r == RoleAdmin || r == RoleManager
}

// Principal is the authenticated actor of a request.
type Principal struct {
	ID    string
	Roles []RoleName
}

// NewPrincipal builds a principal from raw role strings, dropping unknown ones.
func NewPrincipal(id string, roles []string) Principal {
	p := Principal{ID: id}
	seen := make(map[RoleName]bool, len(roles))
	for _, raw := range roles {
		name, ok := ParseRoleName(raw)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		p.Roles = append(p.Roles, name)
	}
	return p
}

func (p Principal) Authenticated() bool {
	return p.ID != "" && len(p.Roles) > 0
}

func (p Principal) HasElevatedRole() bool {
	for _, r := range p.Roles {
		if r.IsElevated() {
			return true
		}
	}
	return false
}
