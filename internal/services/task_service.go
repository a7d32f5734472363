package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskforge/taskforge/internal/authz"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskForbidden       = errors.New("not permitted to act on this task")
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrDueDateRequired     = errors.New("due date is required")
	ErrInvalidStatus       = errors.New("invalid task status")
	ErrInvalidPriority     = errors.New("invalid task priority")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrAssigneeNotFound    = errors.New("assigned user not found")
	ErrAssigneeRequired    = errors.New("assigned user is required")
)

// TaskService orchestrates the task lifecycle: validate input shape, consult
// the authorization engine, then apply to the store. Creator fields are
// always stamped from the authenticated principal, never from the request.
type TaskService struct {
	taskRepo      repository.TaskRepository
	principalRepo repository.PrincipalRepository
	teamService   *TeamService
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, principalRepo repository.PrincipalRepository, teamService *TeamService) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		principalRepo: principalRepo,
		teamService:   teamService,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Status      models.TaskStatus
	Priority    models.TaskPriority
	AssignedTo  *uint64
}

// UpdateTaskInput is a field patch: nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssignedTo  *uint64
}

// List returns the tasks visible to the principal.
func (s *TaskService) List(p authz.Principal, page, pageSize int) ([]models.Task, int64, error) {
	scope, err := s.scopeFor(p)
	if err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{Scope: scope, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListTeam returns a manager's team view: tasks they created or that are
// assigned to their team. Managers only.
func (s *TaskService) ListTeam(p authz.Principal, page, pageSize int) ([]models.Task, int64, error) {
	if p.Role != models.RoleManager {
		return nil, 0, ErrTaskForbidden
	}
	return s.List(p, page, pageSize)
}

// ListAll returns every task. Admins only.
func (s *TaskService) ListAll(p authz.Principal, page, pageSize int) ([]models.Task, int64, error) {
	if p.Role != models.RoleAdmin {
		return nil, 0, ErrTaskForbidden
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		Scope:    authz.Scope{All: true},
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListUserTasks returns the tasks assigned to a specific user. Admins only.
func (s *TaskService) ListUserTasks(p authz.Principal, userID uint64, page, pageSize int) ([]models.Task, int64, error) {
	if p.Role != models.RoleAdmin {
		return nil, 0, ErrTaskForbidden
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		Scope:      authz.Scope{All: true},
		AssignedTo: &userID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Dashboard returns task counts by status over the principal's visibility
// scope.
func (s *TaskService) Dashboard(p authz.Principal) (repository.StatusCounts, error) {
	scope, err := s.scopeFor(p)
	if err != nil {
		return repository.StatusCounts{}, err
	}

	counts, err := s.taskRepo.CountByStatus(scope)
	if err != nil {
		return repository.StatusCounts{}, fmt.Errorf("failed to aggregate tasks: %w", err)
	}
	return counts, nil
}

// Create creates a task with an unrestricted assignee. Admins and managers
// only.
func (s *TaskService) Create(p authz.Principal, input CreateTaskInput) (*models.Task, error) {
	if p.Role != models.RoleAdmin && p.Role != models.RoleManager {
		return nil, ErrTaskForbidden
	}

	if input.AssignedTo != nil {
		if _, err := s.principalRepo.FindUser(*input.AssignedTo); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeNotFound
			}
			return nil, fmt.Errorf("failed to resolve assignee: %w", err)
		}
	}

	return s.create(p, input)
}

// CreateMy creates a personal task for the caller; any principal may call
// this. Only user principals are written as the assignee: assigned_to points
// into the user store alone, and the three principal tables are disjoint ID
// spaces, so an admin or manager ID written there would alias an unrelated
// user. Admins and managers keep my-task access through the creator match.
func (s *TaskService) CreateMy(p authz.Principal, input CreateTaskInput) (*models.Task, error) {
	if p.Model == models.ModelUser {
		self := p.ID
		input.AssignedTo = &self
	} else {
		input.AssignedTo = nil
	}
	return s.create(p, input)
}

// CreateTeam creates a task for a member of the caller's team. Managers
// only; the assignee must already be on the team.
func (s *TaskService) CreateTeam(p authz.Principal, input CreateTaskInput) (*models.Task, error) {
	if p.Role != models.RoleManager {
		return nil, ErrTaskForbidden
	}
	if input.AssignedTo == nil {
		return nil, ErrAssigneeRequired
	}

	team, err := s.teamService.TeamOf(p.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAssignToTeam(p, *input.AssignedTo, team) {
		return nil, ErrTaskForbidden
	}

	return s.create(p, input)
}

// Update applies a field patch under the strict permit check (creator AND
// assignee conditions, per role).
func (s *TaskService) Update(p authz.Principal, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.getTask(taskID)
	if err != nil {
		return nil, err
	}

	team, err := s.teamFor(p)
	if err != nil {
		return nil, err
	}

	permitted, err := authz.CanMutateTask(p, task, team)
	if err != nil || !permitted {
		return nil, ErrTaskForbidden
	}

	return s.applyPatch(task, input)
}

// UpdateMy applies a field patch under the looser my-task check (creator OR
// assignee).
func (s *TaskService) UpdateMy(p authz.Principal, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.getTask(taskID)
	if err != nil {
		return nil, err
	}

	if !authz.CanMutateOwnTask(p, task) {
		return nil, ErrTaskForbidden
	}

	return s.applyPatch(task, input)
}

// Delete removes a task under the strict permit check.
func (s *TaskService) Delete(p authz.Principal, taskID uint64) error {
	task, err := s.getTask(taskID)
	if err != nil {
		return err
	}

	team, err := s.teamFor(p)
	if err != nil {
		return err
	}

	permitted, err := authz.CanMutateTask(p, task, team)
	if err != nil || !permitted {
		return ErrTaskForbidden
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// DeleteMy removes a task under the looser my-task check.
func (s *TaskService) DeleteMy(p authz.Principal, taskID uint64) error {
	task, err := s.getTask(taskID)
	if err != nil {
		return err
	}

	if !authz.CanMutateOwnTask(p, task) {
		return ErrTaskForbidden
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Rate sets the task's rating under the rating permit check (OR semantics
// for managers, assignee-only for users).
func (s *TaskService) Rate(p authz.Principal, taskID uint64, rating int) (*models.Task, error) {
	task, err := s.getTask(taskID)
	if err != nil {
		return nil, err
	}

	team, err := s.teamFor(p)
	if err != nil {
		return nil, err
	}

	permitted, err := authz.CanRateTask(p, task, team)
	if err != nil || !permitted {
		return nil, ErrTaskForbidden
	}

	if rating < models.MinRating || rating > models.MaxRating {
		return nil, ErrInvalidRating
	}

	task.Rating = &rating
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to rate task: %w", err)
	}
	return task, nil
}

// create validates the input shape, stamps the creator reference from the
// principal and persists the task.
func (s *TaskService) create(p authz.Principal, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Description == "" {
		return nil, ErrDescriptionRequired
	}
	if input.DueDate.IsZero() {
		return nil, ErrDueDateRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	} else if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	} else if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	task := &models.Task{
		Title:        input.Title,
		Description:  input.Description,
		DueDate:      input.DueDate,
		Status:       input.Status,
		Priority:     input.Priority,
		CreatorID:    p.ID,
		CreatorModel: p.Model,
		AssignedTo:   input.AssignedTo,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// applyPatch validates and applies a field patch, leaving omitted fields
// untouched.
func (s *TaskService) applyPatch(task *models.Task, input UpdateTaskInput) (*models.Task, error) {
	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		if *input.Description == "" {
			return nil, ErrDescriptionRequired
		}
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.AssignedTo != nil {
		if _, err := s.principalRepo.FindUser(*input.AssignedTo); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeNotFound
			}
			return nil, fmt.Errorf("failed to resolve assignee: %w", err)
		}
		task.AssignedTo = input.AssignedTo
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *TaskService) getTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// teamFor resolves the principal's team for permit checks. Only managers
// have one.
func (s *TaskService) teamFor(p authz.Principal) ([]uint64, error) {
	if p.Role != models.RoleManager {
		return nil, nil
	}
	return s.teamService.TeamOf(p.ID)
}

// scopeFor builds the principal's visibility scope.
func (s *TaskService) scopeFor(p authz.Principal) (authz.Scope, error) {
	team, err := s.teamFor(p)
	if err != nil {
		return authz.Scope{}, err
	}
	scope, err := authz.VisibilityScope(p, team)
	if err != nil {
		return authz.Scope{}, ErrTaskForbidden
	}
	return scope, nil
}
