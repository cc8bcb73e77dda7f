// Package authz decides who may do what to which profile or task.
// Every decision is a pure function of the actor and the target passed in.
package authz

import (
	"fmt"

	"department-service/internal/domain/profile"
	"department-service/internal/domain/task"
	"department-service/internal/rbac"
	"department-service/internal/rbac/presets"
)

type Policy struct {
	checker *rbac.Checker
}

func New(checker *rbac.Checker) *Policy {
	return &Policy{checker: checker}
}

// NewDepartment builds a Policy over the department role preset.
func NewDepartment() *Policy {
	return New(rbac.MustNew(presets.Department()))
}

func (p *Policy) Checker() *rbac.Checker {
	return p.checker
}

// CanAssign gates the assignment form and submission.
func (p *Policy) CanAssign(actor profile.Profile) error {
	return p.checker.Authorize(rbac.Role(actor.Role), presets.ResourceTask, presets.ActionAssign)
}

// IsEligibleAssignee reports whether actor may create a task for target.
// Restricted roles are never eligible; otherwise the target may not
// outrank the actor.
func (p *Policy) IsEligibleAssignee(actor, target profile.Profile) bool {
	if p.CanAssign(actor) != nil {
		return false
	}
	targetRole := rbac.Role(target.Role)
	if p.checker.IsRestricted(targetRole) {
		return false
	}
	return p.checker.IsRoleElevated(rbac.Role(actor.Role), targetRole)
}

// EligibleAssignees filters candidates down to those actor may assign to,
// keeping their order.
func (p *Policy) EligibleAssignees(actor profile.Profile, candidates []profile.Profile) []profile.Profile {
	if p.CanAssign(actor) != nil {
		return nil
	}
	out := make([]profile.Profile, 0, len(candidates))
	for _, c := range candidates {
		if p.IsEligibleAssignee(actor, c) {
			out = append(out, c)
		}
	}
	return out
}

// CanEditProfile checks the role-gated edit path. The first rule that
// matches wins: a full edit grant, then a grant limited to lower-ranked
// targets. Self-edit gets no special treatment here.
func (p *Policy) CanEditProfile(actor, target profile.Profile) error {
	actorRole := rbac.Role(actor.Role)
	if p.checker.IsAuthorized(actorRole, presets.ResourceProfile, presets.ActionEdit) {
		return nil
	}
	if p.checker.IsAuthorized(actorRole, presets.ResourceProfile, presets.ActionEditSubordinate) {
		if p.checker.Outranks(actorRole, rbac.Role(target.Role)) {
			return nil
		}
		return fmt.Errorf("%w: role '%s' may only act on roles below it, got '%s'", rbac.ErrDenied, actor.Role, target.Role)
	}
	return fmt.Errorf("%w: role '%s' cannot edit profiles", rbac.ErrDenied, actor.Role)
}

// CanReportTask allows only the assignee, whatever their role.
func (p *Policy) CanReportTask(actor profile.Profile, t task.Task) error {
	if err := p.checker.Authorize(rbac.Role(actor.Role), presets.ResourceTask, presets.ActionReport); err != nil {
		return err
	}
	if t.AssignedTo != actor.ID {
		return fmt.Errorf("%w: task %d is not assigned to profile %d", rbac.ErrDenied, t.ID, actor.ID)
	}
	return nil
}

// CanViewTasks allows the profile's owner and any role granted view_tasks.
func (p *Policy) CanViewTasks(actor, target profile.Profile) error {
	if actor.UserID == target.UserID {
		return nil
	}
	return p.checker.Authorize(rbac.Role(actor.Role), presets.ResourceProfile, presets.ActionViewTasks)
}

// CanViewAttachment extends CanViewTasks on the task's assignee to the
// task's assigner.
func (p *Policy) CanViewAttachment(actor, assignee profile.Profile, t task.Task) error {
	if t.AssignedBy != nil && *t.AssignedBy == actor.ID {
		return nil
	}
	return p.CanViewTasks(actor, assignee)
}

// CanViewMetrics limits operational endpoints to the top role.
func (p *Policy) CanViewMetrics(actor profile.Profile) error {
	return p.checker.RequireRole(rbac.Role(actor.Role), presets.RoleAdmin)
}
