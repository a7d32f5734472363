package repository

import (
	"errors"

	"github.com/taskforge/taskforge/internal/models"
	"gorm.io/gorm"
)

// GormPrincipalRepository is a GORM implementation of PrincipalRepository
type GormPrincipalRepository struct {
	db *gorm.DB
}

// NewPrincipalRepository creates a new PrincipalRepository
func NewPrincipalRepository(db *gorm.DB) PrincipalRepository {
	return &GormPrincipalRepository{db: db}
}

// FindByEmail probes the three principal tables in priority order
// Admin -> Manager -> User and returns the first match.
func (r *GormPrincipalRepository) FindByEmail(email string) (*PrincipalRecord, error) {
	var admin models.Admin
	err := r.db.Where("email = ?", email).First(&admin).Error
	if err == nil {
		return &PrincipalRecord{
			ID:           admin.ID,
			Username:     admin.Username,
			Email:        admin.Email,
			PasswordHash: admin.PasswordHash,
			Role:         models.RoleAdmin,
			Model:        models.ModelAdmin,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var manager models.Manager
	err = r.db.Where("email = ?", email).First(&manager).Error
	if err == nil {
		return &PrincipalRecord{
			ID:           manager.ID,
			Username:     manager.Username,
			Email:        manager.Email,
			PasswordHash: manager.PasswordHash,
			Role:         models.RoleManager,
			Model:        models.ModelManager,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &PrincipalRecord{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         models.RoleUser,
		Model:        models.ModelUser,
	}, nil
}

// FindAdmin finds an admin by ID
func (r *GormPrincipalRepository) FindAdmin(id uint64) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindManager finds a manager by ID
func (r *GormPrincipalRepository) FindManager(id uint64) (*models.Manager, error) {
	var manager models.Manager
	if err := r.db.First(&manager, id).Error; err != nil {
		return nil, err
	}
	return &manager, nil
}

// FindUser finds a user by ID
func (r *GormPrincipalRepository) FindUser(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateManager creates a new manager
func (r *GormPrincipalRepository) CreateManager(manager *models.Manager) error {
	return r.db.Create(manager).Error
}

// CreateUser creates a new user
func (r *GormPrincipalRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// UpdateUser updates a user record
func (r *GormPrincipalRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// ListManagers lists all managers with their rosters
func (r *GormPrincipalRepository) ListManagers() ([]models.Manager, error) {
	var managers []models.Manager
	if err := r.db.Preload("Team").Preload("Team.User").Find(&managers).Error; err != nil {
		return nil, err
	}
	return managers, nil
}

// ListUsers lists all users
func (r *GormPrincipalRepository) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
