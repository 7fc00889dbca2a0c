// Package authz is the authorization matrix: pure predicates that decide,
// for an (actor, resource, action) triple, whether the action may proceed.
// Handlers and services never re-implement role or ownership checks inline;
// each (resource, action) pair has exactly one entry point here.
//
// Predicates return nil to allow, or a forbidden AppError carrying the
// specific rule that was violated. List endpoints do not call into this
// package; they narrow their query scope by role instead of denying.
package authz

import (
	"fmt"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/response"
)

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID   uint
	Role models.Role
}

// ProjectInfo is the relationship snapshot a project-scoped decision needs.
type ProjectInfo struct {
	CreatedBy uint
	MemberIDs []uint
}

// IsMember reports whether userID is in the project's member set.
func (p ProjectInfo) IsMember(userID uint) bool {
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// TaskInfo is the relationship snapshot a task-scoped decision needs.
type TaskInfo struct {
	AssignedTo *uint
}

// IsAssignee reports whether userID is the task's assignee.
func (t TaskInfo) IsAssignee(userID uint) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// CommentInfo is the relationship snapshot a comment-scoped decision needs.
type CommentInfo struct {
	CreatedBy uint
}

func deny(msg string) error {
	return response.NewForbidden(msg)
}

// CanCreateProject gates project creation: Admins and Project Managers only.
func CanCreateProject(actor Actor) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleProjectManager:
		return nil
	case models.RoleTechLead, models.RoleDeveloper, models.RoleClient:
		return deny("Only Admins and Project Managers can create projects.")
	default:
		return deny("Your role is not allowed to create projects.")
	}
}

// CanViewProject gates project retrieval: Admin, creator, or member.
func CanViewProject(actor Actor, project ProjectInfo) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if project.CreatedBy == actor.ID || project.IsMember(actor.ID) {
		return nil
	}
	return deny("You do not have permission to view this project.")
}

// CanUpdateProject gates project mutation. Admins update anything; a Project
// Manager updates projects they created or belong to. One uniform rule for
// every update path.
func CanUpdateProject(actor Actor, project ProjectInfo) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleProjectManager:
		if project.CreatedBy == actor.ID || project.IsMember(actor.ID) {
			return nil
		}
		return deny("Project Managers can only update projects they created or belong to.")
	case models.RoleTechLead, models.RoleDeveloper, models.RoleClient:
		return deny("You do not have permission to perform this action.")
	default:
		return deny("Your role is not allowed to update projects.")
	}
}

// CanDeleteProject gates project deletion: Admin only.
func CanDeleteProject(actor Actor) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	return deny("Only Admins can delete projects.")
}

// CanViewProjectReport gates the progress report: Admin, or a project member.
func CanViewProjectReport(actor Actor, project ProjectInfo) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if project.IsMember(actor.ID) {
		return nil
	}
	return deny("You do not have permission to view this report.")
}

// CanCreateTask gates task creation: Admin, Project Manager or Tech Lead.
func CanCreateTask(actor Actor) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleProjectManager, models.RoleTechLead:
		return nil
	case models.RoleDeveloper, models.RoleClient:
		return deny("Only Admins, Project Managers and Tech Leads can create tasks.")
	default:
		return deny("Your role is not allowed to create tasks.")
	}
}

// CanUpdateTask gates the general task update endpoint. statusOnly reports
// whether the request touches nothing but the status field; patch reports
// whether the request is a partial update.
//
// A Developer may change only the status of a task assigned to them, and only
// via PATCH; any other field change by a Developer is a permission failure,
// not a validation failure.
func CanUpdateTask(actor Actor, project ProjectInfo, task TaskInfo, statusOnly, patch bool) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleProjectManager:
		if project.CreatedBy == actor.ID || project.IsMember(actor.ID) {
			return nil
		}
		return deny("Project Managers can only update tasks in their own projects.")
	case models.RoleTechLead:
		if project.IsMember(actor.ID) {
			return nil
		}
		return deny("Tech Leads can only update tasks in projects they are assigned to.")
	case models.RoleDeveloper:
		if !task.IsAssignee(actor.ID) {
			return deny("You do not have permission to update this task.")
		}
		if !patch || !statusOnly {
			return deny("Developers can only update the status field of tasks assigned to them.")
		}
		return nil
	case models.RoleClient:
		return deny("You do not have permission to update this task.")
	default:
		return deny("Your role is not allowed to update tasks.")
	}
}

// CanUpdateTaskStatus gates the status-only endpoint. It is Developer
// exclusive: other roles are denied even when they hold general update
// rights on the task.
func CanUpdateTaskStatus(actor Actor, task TaskInfo) error {
	if actor.Role == models.RoleDeveloper && task.IsAssignee(actor.ID) {
		return nil
	}
	return deny("You can only update the status of tasks assigned to you.")
}

// CanDeleteTask gates task deletion: Admin only.
func CanDeleteTask(actor Actor) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	return deny("Only Admins can delete tasks.")
}

// CanCreateComment gates comment creation. Any authenticated user may
// comment, but non-admin roles must be members of the target project.
func CanCreateComment(actor Actor, project ProjectInfo) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleProjectManager, models.RoleTechLead, models.RoleDeveloper, models.RoleClient:
		if project.IsMember(actor.ID) {
			return nil
		}
		return deny("You can only comment on projects that you are assigned to.")
	default:
		return deny("Your role is not allowed to create comments.")
	}
}

// CommentVerb names the mutating comment action being gated, for use in
// denial messages.
type CommentVerb string

const (
	CommentUpdate CommentVerb = "update"
	CommentDelete CommentVerb = "delete"
)

// CanModifyComment gates comment update and delete with per-role object
// rules. Developer requires both authorship and membership.
func CanModifyComment(actor Actor, verb CommentVerb, comment CommentInfo, project ProjectInfo) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleProjectManager:
		if project.CreatedBy != actor.ID {
			return deny(fmt.Sprintf("Project Managers can only %s comments on their own projects.", verb))
		}
		return nil
	case models.RoleTechLead:
		if !project.IsMember(actor.ID) {
			return deny(fmt.Sprintf("Tech Leads can only %s comments from their assigned projects.", verb))
		}
		return nil
	case models.RoleDeveloper:
		if comment.CreatedBy != actor.ID {
			return deny(fmt.Sprintf("Developers can only %s their own comments.", verb))
		}
		if !project.IsMember(actor.ID) {
			return deny(fmt.Sprintf("Developers must be assigned to the project to %s a comment.", verb))
		}
		return nil
	case models.RoleClient:
		if !project.IsMember(actor.ID) {
			return deny(fmt.Sprintf("Clients can only %s comments from their assigned projects.", verb))
		}
		return nil
	default:
		return deny(fmt.Sprintf("Your role is not allowed to %s comments.", verb))
	}
}
