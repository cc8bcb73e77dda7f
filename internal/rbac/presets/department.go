package presets

import "department-service/internal/rbac"

const (
	RoleAdmin    rbac.Role = "admin"
	RoleHead     rbac.Role = "head"
	RoleManager  rbac.Role = "manager"
	RoleEmployee rbac.Role = "employee"

	ResourceTask    rbac.Resource = "task"
	ResourceProfile rbac.Resource = "profile"

	ActionAssign          rbac.Action = "assign"
	ActionReport          rbac.Action = "report"
	ActionEdit            rbac.Action = "edit"
	ActionEditSubordinate rbac.Action = "edit_subordinate"
	ActionViewTasks       rbac.Action = "view_tasks"
)

// Department returns the RBAC configuration for the department task board.
// Admin outranks everyone but is restricted: it never receives tasks.
func Department() rbac.Config {
	return rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: RoleAdmin, Level: 4, Restricted: true},
			{Name: RoleHead, Level: 3},
			{Name: RoleManager, Level: 2},
			{Name: RoleEmployee, Level: 1},
		},
		Resources: []rbac.Resource{
			ResourceTask,
			ResourceProfile,
		},
		Actions: []rbac.Action{
			ActionAssign,
			ActionReport,
			ActionEdit,
			ActionEditSubordinate,
			ActionViewTasks,
		},
		Capabilities: map[rbac.Role]map[rbac.Resource][]rbac.Action{
			RoleAdmin: {
				ResourceTask:    {ActionReport},
				ResourceProfile: {ActionEdit, ActionViewTasks},
			},
			RoleHead: {
				ResourceTask:    {ActionAssign, ActionReport},
				ResourceProfile: {ActionEdit, ActionViewTasks},
			},
			RoleManager: {
				ResourceTask:    {ActionAssign, ActionReport},
				ResourceProfile: {ActionEditSubordinate, ActionViewTasks},
			},
			RoleEmployee: {
				ResourceTask: {ActionReport},
			},
		},
	}
}
