package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles carried in session tokens.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleAdmin, RoleFaculty}

// ParseRole converts a raw tag into a Role.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleFaculty:
		return RoleFaculty, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// String implements fmt.Stringer
func (r Role) String() string {
	return string(r)
}

// Sequence names used by the ID generator
const (
	SequenceAccount     = "account_number"
	SequenceStudent     = "academic_id"
	SequenceIssue       = "issue_id"
	SequenceMessage     = "message_id"
	SequenceInstruction = "instruction_id"
)
