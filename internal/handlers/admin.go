package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/dto"
	apierrors "github.com/taskforge/taskforge/internal/errors"
	"github.com/taskforge/taskforge/internal/middleware"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/services"
)

// AdminHandler coordinates the principal-administration HTTP handlers.
type AdminHandler struct {
	principalService *services.PrincipalService
	teamService      *services.TeamService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(principalService *services.PrincipalService, teamService *services.TeamService) *AdminHandler {
	return &AdminHandler{
		principalService: principalService,
		teamService:      teamService,
	}
}

// CreatePrincipal creates a manager or user depending on the role field.
func (h *AdminHandler) CreatePrincipal(c *gin.Context) {
	type CreatePrincipalRequest struct {
		Username  string  `json:"username" binding:"required"`
		Email     string  `json:"email" binding:"required,email"`
		Password  string  `json:"password" binding:"required"`
		Role      string  `json:"role" binding:"required"`
		ManagerID *uint64 `json:"manager_id"`
	}

	var req CreatePrincipalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.principalService.CreatePrincipal(services.CreatePrincipalInput{
		Role:      models.Role(req.Role),
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Principal created successfully", "user": created})
}

// CreateManager creates a manager.
func (h *AdminHandler) CreateManager(c *gin.Context) {
	h.createWithRole(c, models.RoleManager)
}

// CreateUser creates a user, optionally assigned to a manager.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	h.createWithRole(c, models.RoleUser)
}

func (h *AdminHandler) createWithRole(c *gin.Context, role models.Role) {
	type CreateRequest struct {
		Username  string  `json:"username" binding:"required"`
		Email     string  `json:"email" binding:"required,email"`
		Password  string  `json:"password" binding:"required"`
		ManagerID *uint64 `json:"manager_id"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.principalService.CreatePrincipal(services.CreatePrincipalInput{
		Role:      role,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Principal created successfully", "user": created})
}

// AssignManager puts a user on a manager's team.
func (h *AdminHandler) AssignManager(c *gin.Context) {
	type AssignRequest struct {
		UserID    uint64 `json:"user_id" binding:"required"`
		ManagerID uint64 `json:"manager_id" binding:"required"`
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.teamService.Assign(req.UserID, req.ManagerID); err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User assigned to manager successfully"})
}

// Directory returns all users and managers.
func (h *AdminHandler) Directory(c *gin.Context) {
	users, managers, err := h.principalService.Directory()
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    dto.ToUserDTOs(users),
		"managers": dto.ToManagerDTOs(managers),
	})
}

// ListManagers returns all managers with their rosters.
func (h *AdminHandler) ListManagers(c *gin.Context) {
	managers, err := h.principalService.ListManagers()
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"managers": dto.ToManagerDTOs(managers)})
}

// ManagerTeam returns the users on a specific manager's team.
func (h *AdminHandler) ManagerTeam(c *gin.Context) {
	managerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid manager ID")
		return
	}

	users, err := h.principalService.TeamUsers(managerID)
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// MyTeam returns the caller's own team. Managers only.
func (h *AdminHandler) MyTeam(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.principalService.TeamUsers(principal.ID)
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// UpdateUser patches a user record.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type UpdateUserRequest struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.principalService.UpdateUser(userID, services.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": dto.ToUserDTO(*user)})
}

// DeleteUser removes a user and its team membership.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.principalService.DeleteUser(userID); err != nil {
		respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// DeletePrincipal removes a user or manager, trying the user table first.
func (h *AdminHandler) DeletePrincipal(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid ID provided")
		return
	}

	model, err := h.principalService.DeletePrincipal(id)
	if err != nil {
		respondAdminError(c, err)
		return
	}

	message := "User deleted successfully"
	if model == models.ModelManager {
		message = "Manager deleted successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func respondAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPrincipalNotFound):
		apierrors.NotFound(c)
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrUsernameRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, err.Error())
	}
}
