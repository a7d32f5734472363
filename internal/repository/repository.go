package repository

import (
	"github.com/taskforge/taskforge/internal/authz"
	"github.com/taskforge/taskforge/internal/models"
)

// PrincipalRecord is the store-independent view of whichever principal table
// an email resolved against.
type PrincipalRecord struct {
	ID           uint64
	Username     string
	Email        string
	PasswordHash string
	Role         models.Role
	Model        models.PrincipalModel
}

// PrincipalRepository is the directory over the three disjoint principal
// tables.
type PrincipalRepository interface {
	// FindByEmail probes admins, then managers, then users, and returns the
	// first match. Email uniqueness is per-table, so cross-table collisions
	// are possible; the probe order is the documented tie-break.
	FindByEmail(email string) (*PrincipalRecord, error)

	// Keyed lookups within a known table
	FindAdmin(id uint64) (*models.Admin, error)
	FindManager(id uint64) (*models.Manager, error)
	FindUser(id uint64) (*models.User, error)

	CreateManager(manager *models.Manager) error
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error

	ListManagers() ([]models.Manager, error)
	ListUsers() ([]models.User, error)
}

// TeamRepository maintains the bidirectional team relation. Every mutation
// writes the User.ManagerID pointer and the team_members roster row in one
// transaction; no other component writes either side.
type TeamRepository interface {
	// Assign puts the user on the manager's team, removing any previous
	// manager's roster row.
	Assign(userID, managerID uint64) error

	// Unassign clears the user's manager pointer and roster row.
	Unassign(userID uint64) error

	// RosterUserIDs returns the roster side of the relation.
	RosterUserIDs(managerID uint64) ([]uint64, error)

	// PointerUserIDs returns the pointer side, for consistency checks.
	PointerUserIDs(managerID uint64) ([]uint64, error)

	// ListTeamUsers returns the user records on a manager's roster.
	ListTeamUsers(managerID uint64) ([]models.User, error)

	// RemoveManager deletes the manager, orphaning (not deleting) the team:
	// every former member's pointer is cleared.
	RemoveManager(managerID uint64) error

	// RemoveUser deletes the user and its roster row, if any.
	RemoveUser(userID uint64) error
}

// StatusCounts is the dashboard aggregate.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
}

// TaskFilter holds filtering options for listing tasks.
type TaskFilter struct {
	Scope      authz.Scope
	AssignedTo *uint64
	Page       int
	PageSize   int
}

// TaskRepository defines the interface for task data access.
type TaskRepository interface {
	Create(task *models.Task) error

	FindByID(id uint64) (*models.Task, error)

	// List retrieves tasks within a visibility scope, with pagination.
	List(filter TaskFilter) ([]models.Task, int64, error)

	Update(task *models.Task) error

	// Delete removes a task permanently.
	Delete(id uint64) error

	// CountByStatus aggregates task counts by status within a scope.
	CountByStatus(scope authz.Scope) (StatusCounts, error)
}
