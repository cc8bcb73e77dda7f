package rbac

// Role represents a user's role in the system (hierarchical)
type Role string

// Resource represents a type of resource in the system
type Resource string

// Action represents an operation on a resource
type Action string

// RoleDefinition defines a role and its privilege level
type RoleDefinition struct {
	Name  Role
	Level int
	// Restricted roles can never be the target of a delegated action
	// such as task assignment, whatever the actor's level.
	Restricted bool
}
