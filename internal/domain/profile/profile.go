package profile

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHead     Role = "head"
	RoleAdmin    Role = "admin"

	errInvalidRoleFmt = "invalid role: %q"

	// lastPriority sorts after every listable role.
	lastPriority = 99
)

// Roles lists every role in display order for forms and the CLI.
var Roles = []Role{RoleHead, RoleManager, RoleEmployee, RoleAdmin}

var listingPriority = map[Role]int{
	RoleHead:     1,
	RoleManager:  2,
	RoleEmployee: 3,
}

// ParseRole rejects anything outside the closed role set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate validates the role
func (r Role) Validate() error {
	switch r {
	case RoleEmployee, RoleManager, RoleHead, RoleAdmin:
		return nil
	default:
		return fmt.Errorf(errInvalidRoleFmt, string(r))
	}
}

// Priority is the listing rank: head before manager before employee.
// Admin and unknown values sort last.
func (r Role) Priority() int {
	if p, ok := listingPriority[r]; ok {
		return p
	}
	return lastPriority
}

// Listable is false for roles hidden from employee-facing pages.
func (r Role) Listable() bool {
	return r != RoleAdmin
}

func (r Role) Label() string {
	switch r {
	case RoleEmployee:
		return "Employee"
	case RoleManager:
		return "Manager"
	case RoleHead:
		return "Head"
	case RoleAdmin:
		return "Admin"
	default:
		return string(r)
	}
}

// Profile is the per-user record carrying role and self-reported progress.
type Profile struct {
	ID       int64
	UserID   int64
	Username string
	Role     Role
	Progress int
}

func (p Profile) Listable() bool {
	return p.Role.Listable()
}

// ListingEntry is a profile annotated for the employee listing page.
type ListingEntry struct {
	Profile
	ProgressOffset int
}
