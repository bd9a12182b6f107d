package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindRole(t *testing.T) {
	roles := []Role{
		{ID: "R0", Name: "Reader"},
		{ID: "R1", Name: "AdminRole"},
	}

	tests := []struct {
		name   string
		lookup string
		want   Role
		found  bool
	}{
		{name: "hit", lookup: "AdminRole", want: Role{ID: "R1", Name: "AdminRole"}, found: true},
		{name: "miss", lookup: "Writer", found: false},
		{name: "case sensitive", lookup: "adminrole", found: false},
		{name: "empty name", lookup: "", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindRole(roles, tt.lookup)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := FindRole(nil, "AdminRole")
	assert.False(t, ok)
}

func TestHasAssignment(t *testing.T) {
	assignments := []RoleAssignment{
		{PrincipalID: "U1", RoleID: "R0"},
		{PrincipalID: "U2", RoleID: "R1"},
	}

	tests := []struct {
		name      string
		principal string
		role      string
		want      bool
	}{
		{name: "subject holds another role", principal: "U1", role: "R1", want: false},
		{name: "role held by another subject", principal: "U3", role: "R1", want: false},
		{name: "subject and role match", principal: "U2", role: "R1", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAssignment(assignments, tt.principal, tt.role))
		})
	}

	assert.False(t, HasAssignment(nil, "U2", "R1"))
}
