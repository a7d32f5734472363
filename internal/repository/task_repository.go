package repository

import (
	"github.com/taskforge/taskforge/internal/authz"
	"github.com/taskforge/taskforge/internal/database"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// scoped compiles a visibility scope into a query over tasks.
func (r *GormTaskRepository) scoped(scope authz.Scope) *gorm.DB {
	query := r.db.Model(&models.Task{})
	if scope.All {
		return query
	}
	if len(scope.AssigneeIDs) > 0 {
		return query.Where(
			"(creator_id = ? AND creator_model = ?) OR assigned_to IN ?",
			scope.Creator.ID, scope.Creator.Model, scope.AssigneeIDs,
		)
	}
	return query.Where("creator_id = ? AND creator_model = ?", scope.Creator.ID, scope.Creator.Model)
}

// List retrieves tasks within a visibility scope, newest first.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	query := r.scoped(filter.Scope)

	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	var tasks []models.Task
	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task permanently
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// CountByStatus aggregates task counts by status within a scope.
func (r *GormTaskRepository) CountByStatus(scope authz.Scope) (StatusCounts, error) {
	type statusRow struct {
		Status models.TaskStatus
		N      int64
	}

	var rows []statusRow
	err := r.scoped(scope).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}

	var counts StatusCounts
	for _, row := range rows {
		counts.Total += row.N
		switch row.Status {
		case models.TaskStatusPending:
			counts.Pending = row.N
		case models.TaskStatusInProgress:
			counts.InProgress = row.N
		case models.TaskStatusCompleted:
			counts.Completed = row.N
		}
	}
	return counts, nil
}
