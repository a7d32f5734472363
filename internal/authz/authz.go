// Package authz is the authorization engine: pure decision functions over a
// principal, a task and the principal's team. It never touches the database
// and never returns "not permitted" as an error; callers translate a false
// verdict to a Forbidden response.
package authz

import (
	"errors"
	"fmt"

	"github.com/taskforge/taskforge/internal/models"
)

// ErrUnknownRole is returned when a principal carries a role the engine does
// not know. Every switch in this package is exhaustive over the three roles;
// a new role added without updating them denies instead of falling through
// to an unrestricted branch.
var ErrUnknownRole = errors.New("unknown principal role")

// Principal is the authenticated actor as decoded from the token.
type Principal struct {
	ID    uint64
	Role  models.Role
	Model models.PrincipalModel
}

// Ref returns the principal as a tagged reference, for comparison against a
// task's creator reference.
func (p Principal) Ref() models.PrincipalRef {
	return models.PrincipalRef{ID: p.ID, Model: p.Model}
}

// Scope is a visibility predicate over tasks, in a form the task store can
// compile into a query: match everything, or match tasks created by Creator
// OR assigned to any of AssigneeIDs.
type Scope struct {
	All         bool
	Creator     models.PrincipalRef
	AssigneeIDs []uint64
}

// VisibilityScope returns the set of tasks the principal may see.
// team is the principal's team (manager roster); it is ignored for admins
// and users.
func VisibilityScope(p Principal, team []uint64) (Scope, error) {
	switch p.Role {
	case models.RoleAdmin:
		return Scope{All: true}, nil
	case models.RoleManager:
		return Scope{Creator: p.Ref(), AssigneeIDs: team}, nil
	case models.RoleUser:
		return Scope{Creator: p.Ref(), AssigneeIDs: []uint64{p.ID}}, nil
	}
	return Scope{}, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
}

// CanMutateTask is the strict single-task permit check for the general
// update/delete path.
//
// For managers both conjuncts are required: created the task AND its assignee
// is currently on the team. Creating a task does not keep it mutable after
// the assignee leaves the team, and having a team member assigned does not
// grant access to tasks someone else created. Users are held to the same
// shape: creator AND assignee must both be themself.
func CanMutateTask(p Principal, task *models.Task, team []uint64) (bool, error) {
	switch p.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleManager:
		return p.createdTask(task) && assignedToAny(task, team), nil
	case models.RoleUser:
		return p.createdTask(task) && assignedTo(task, p.ID), nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
}

// CanMutateOwnTask is the looser permit check for the my-task path: creator
// OR assignee. This is a distinct product policy from CanMutateTask, not a
// helper to merge with it.
func CanMutateOwnTask(p Principal, task *models.Task) bool {
	return p.createdTask(task) || assignedTo(task, p.ID)
}

// CanRateTask decides rating permission. Managers get OR semantics here
// (creator or team assignee), looser than CanMutateTask; users may rate only
// tasks assigned to them.
func CanRateTask(p Principal, task *models.Task, team []uint64) (bool, error) {
	switch p.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleManager:
		return p.createdTask(task) || assignedToAny(task, team), nil
	case models.RoleUser:
		return assignedTo(task, p.ID), nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownRole, p.Role)
}

// CanAssignToTeam reports whether a manager may create a team task for the
// given assignee: the assignee must already be on the team.
func CanAssignToTeam(p Principal, assigneeID uint64, team []uint64) bool {
	if p.Role != models.RoleManager {
		return false
	}
	for _, id := range team {
		if id == assigneeID {
			return true
		}
	}
	return false
}

// createdTask reports whether the task's tagged creator reference matches the
// principal. Both the ID and the model tag must match; the three principal
// tables are disjoint ID spaces.
func (p Principal) createdTask(task *models.Task) bool {
	return task.CreatorID == p.ID && task.CreatorModel == p.Model
}

func assignedTo(task *models.Task, userID uint64) bool {
	return task.AssignedTo != nil && *task.AssignedTo == userID
}

func assignedToAny(task *models.Task, team []uint64) bool {
	if task.AssignedTo == nil {
		return false
	}
	for _, id := range team {
		if id == *task.AssignedTo {
			return true
		}
	}
	return false
}
