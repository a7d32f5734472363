package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskforge/taskforge/internal/constants"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole      = errors.New("role must be \"manager\" or \"user\"")
	ErrEmailTaken       = errors.New("email already in use")
	ErrPasswordTooShort = errors.New("password too short")
	ErrUsernameRequired = errors.New("username is required")
)

// PrincipalService handles administration of the principal directory:
// creating managers and users, updating users, and the delete dispatch that
// tries the user table before the manager table.
type PrincipalService struct {
	principalRepo repository.PrincipalRepository
	teamService   *TeamService
}

// NewPrincipalService creates a new PrincipalService.
func NewPrincipalService(principalRepo repository.PrincipalRepository, teamService *TeamService) *PrincipalService {
	return &PrincipalService{
		principalRepo: principalRepo,
		teamService:   teamService,
	}
}

// CreatePrincipalInput represents the information to create a manager or user.
type CreatePrincipalInput struct {
	Role      models.Role
	Username  string
	Email     string
	Password  string
	ManagerID *uint64
}

// CreatedPrincipal is the created record plus its model tag.
type CreatedPrincipal struct {
	ID       uint64                `json:"id"`
	Username string                `json:"username"`
	Email    string                `json:"email"`
	Role     models.Role           `json:"role"`
	Model    models.PrincipalModel `json:"model"`
}

// CreatePrincipal creates a manager or user. For a user with a ManagerID the
// team assignment runs through the membership index, keeping both sides of
// the relation in step.
func (s *PrincipalService) CreatePrincipal(input CreatePrincipalInput) (*CreatedPrincipal, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.Role != models.RoleManager && input.Role != models.RoleUser {
		return nil, ErrInvalidRole
	}

	// The email must be free across all three tables, not just the target
	// one: a collision would be shadowed or shadow an existing principal at
	// login, depending on probe order.
	if _, err := s.principalRepo.FindByEmail(input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), constants.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if input.Role == models.RoleManager {
		manager := &models.Manager{
			Username:     username,
			Email:        input.Email,
			PasswordHash: string(hash),
		}
		if err := s.principalRepo.CreateManager(manager); err != nil {
			return nil, fmt.Errorf("failed to create manager: %w", err)
		}
		return &CreatedPrincipal{
			ID:       manager.ID,
			Username: manager.Username,
			Email:    manager.Email,
			Role:     models.RoleManager,
			Model:    models.ModelManager,
		}, nil
	}

	user := &models.User{
		Username:     username,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := s.principalRepo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if input.ManagerID != nil {
		if err := s.teamService.Assign(user.ID, *input.ManagerID); err != nil {
			return nil, err
		}
	}

	return &CreatedPrincipal{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     models.RoleUser,
		Model:    models.ModelUser,
	}, nil
}

// Directory returns all users and managers.
func (s *PrincipalService) Directory() ([]models.User, []models.Manager, error) {
	users, err := s.principalRepo.ListUsers()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list users: %w", err)
	}
	managers, err := s.principalRepo.ListManagers()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list managers: %w", err)
	}
	return users, managers, nil
}

// ListManagers returns all managers with their rosters.
func (s *PrincipalService) ListManagers() ([]models.Manager, error) {
	managers, err := s.principalRepo.ListManagers()
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	return managers, nil
}

// TeamUsers returns the users on a manager's team.
func (s *PrincipalService) TeamUsers(managerID uint64) ([]models.User, error) {
	if _, err := s.principalRepo.FindManager(managerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to find manager: %w", err)
	}
	return s.teamService.ListTeam(managerID)
}

// UpdateUserInput is a field patch for a user record.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

// UpdateUser patches a user record, rehashing the password when it changes.
func (s *PrincipalService) UpdateUser(userID uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.principalRepo.FindUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != user.Email {
		// Same cross-table probe as on create: a patched email must not
		// shadow or be shadowed by another principal at login.
		if _, err := s.principalRepo.FindByEmail(*input.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), constants.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.principalRepo.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user through the membership index.
func (s *PrincipalService) DeleteUser(userID uint64) error {
	return s.teamService.RemoveUser(userID)
}

// DeletePrincipal removes a user or manager by ID, trying the user table
// first, then the manager table. Returns the model that was removed.
func (s *PrincipalService) DeletePrincipal(id uint64) (models.PrincipalModel, error) {
	_, err := s.principalRepo.FindUser(id)
	if err == nil {
		return models.ModelUser, s.teamService.RemoveUser(id)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	_, err = s.principalRepo.FindManager(id)
	if err == nil {
		return models.ModelManager, s.teamService.RemoveManager(id)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to find manager: %w", err)
	}

	return "", ErrPrincipalNotFound
}
