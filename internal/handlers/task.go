package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/authz"
	apierrors "github.com/taskforge/taskforge/internal/errors"
	"github.com/taskforge/taskforge/internal/middleware"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/services"
	"github.com/taskforge/taskforge/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTaskRequest is shared by the three create endpoints. Creator fields
// never appear here: they are stamped from the authenticated principal.
type CreateTaskRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	DueDate     time.Time `json:"due_date" binding:"required"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AssignedTo  *uint64   `json:"assigned_to"`
}

func (r CreateTaskRequest) toInput() services.CreateTaskInput {
	return services.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Status:      models.TaskStatus(r.Status),
		Priority:    models.TaskPriority(r.Priority),
		AssignedTo:  r.AssignedTo,
	}
}

// UpdateTaskRequest is a field patch; omitted fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssignedTo  *uint64    `json:"assigned_to"`
}

func (r UpdateTaskRequest) toInput() services.UpdateTaskInput {
	input := services.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		AssignedTo:  r.AssignedTo,
	}
	if r.Status != nil {
		status := models.TaskStatus(*r.Status)
		input.Status = &status
	}
	if r.Priority != nil {
		priority := models.TaskPriority(*r.Priority)
		input.Priority = &priority
	}
	return input
}

// ListTasks returns the tasks visible to the principal.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.taskService.List(principal, params.Page, params.Limit)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respondTaskList(c, tasks, params, total)
}

// ListMyTasks is an alias of ListTasks: the my-tasks view is the same
// visibility predicate.
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	h.ListTasks(c)
}

// ListMyTeamTasks returns the manager's team view.
func (h *TaskHandler) ListMyTeamTasks(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.taskService.ListTeam(principal, params.Page, params.Limit)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respondTaskList(c, tasks, params, total)
}

// ListAllTasks returns every task. Admins only.
func (h *TaskHandler) ListAllTasks(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.taskService.ListAll(principal, params.Page, params.Limit)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respondTaskList(c, tasks, params, total)
}

// ListUserTasks returns the tasks assigned to a specific user. Admins only.
func (h *TaskHandler) ListUserTasks(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.taskService.ListUserTasks(principal, userID, params.Page, params.Limit)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respondTaskList(c, tasks, params, total)
}

// Dashboard returns task counts by status over the principal's visibility
// scope.
func (h *TaskHandler) Dashboard(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	counts, err := h.taskService.Dashboard(principal)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

// CreateTask creates a task with an unrestricted assignee.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(principal, req.toInput())
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Task created successfully", "task": task})
}

// CreateMyTask creates a personal task for the caller. User callers become
// the assignee; admins and managers own it through the creator reference.
func (h *TaskHandler) CreateMyTask(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateMy(principal, req.toInput())
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Task created successfully", "task": task})
}

// CreateTeamTask creates a task for a member of the caller's team.
func (h *TaskHandler) CreateTeamTask(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTeam(principal, req.toInput())
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Team task created successfully", "task": task})
}

// UpdateTask patches a task under the strict permit check.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	h.update(c, h.taskService.Update)
}

// UpdateMyTask patches a task under the my-task permit check.
func (h *TaskHandler) UpdateMyTask(c *gin.Context) {
	h.update(c, h.taskService.UpdateMy)
}

// DeleteTask deletes a task under the strict permit check.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	h.delete(c, h.taskService.Delete)
}

// DeleteMyTask deletes a task under the my-task permit check.
func (h *TaskHandler) DeleteMyTask(c *gin.Context) {
	h.delete(c, h.taskService.DeleteMy)
}

// RateTask sets a task's rating.
func (h *TaskHandler) RateTask(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type RateRequest struct {
		Rating *int `json:"rating" binding:"required"`
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Rate(principal, taskID, *req.Rating)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task rated successfully", "task": task})
}

// update is the shared shape of the two update endpoints; the permit policy
// lives in the service method passed in.
func (h *TaskHandler) update(c *gin.Context, apply func(authz.Principal, uint64, services.UpdateTaskInput) (*models.Task, error)) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := apply(principal, taskID, req.toInput())
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully", "task": task})
}

func (h *TaskHandler) delete(c *gin.Context, apply func(authz.Principal, uint64) error) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := apply(principal, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func respondTaskList(c *gin.Context, tasks []models.Task, params utils.PaginationParams, total int64) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// respondTaskError translates service errors into API responses. Forbidden
// and NotFound carry fixed bodies; validation errors may carry the sentinel
// message.
func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.NotFound(c)
	case errors.Is(err, services.ErrTaskForbidden):
		apierrors.Forbidden(c)
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrDueDateRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrAssigneeRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, err.Error())
	}
}
