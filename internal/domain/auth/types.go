package auth

// Package auth contains domain-level types for request identity and directory roles.
// It is pure and free of framework/adapter concerns.

// Claims are the identity claims carried in a bearer credential.
type Claims struct {
	SubjectID     string // oid
	ApplicationID string // appid
	TenantID      string // tid
}

// Principal is the resolved identity attached to a single request.
// It is never persisted.
type Principal struct {
	SubjectID     string
	IsAdmin       bool
	RawCredential string
	Claims        *Claims
	// Anonymous is true when SubjectID is a service-issued pseudonymous id.
	Anonymous bool
	// Verified is set by authenticate; identify alone never sets it.
	Verified bool
}

// Role is an application role defined in the directory.
type Role struct {
	ID   string
	Name string
}

// RoleAssignment binds a directory principal to an application role.
type RoleAssignment struct {
	PrincipalID string
	RoleID      string
}

// FindRole returns the role with the given name.
func FindRole(roles []Role, name string) (Role, bool) {
	for _, r := range roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// HasAssignment reports whether principalID is assigned roleID.
func HasAssignment(assignments []RoleAssignment, principalID, roleID string) bool {
	for _, a := range assignments {
		if a.PrincipalID == principalID && a.RoleID == roleID {
			return true
		}
	}
	return false
}
