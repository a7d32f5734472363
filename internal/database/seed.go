package database

import (
	"fmt"
	"time"

	"github.com/taskforge/taskforge/internal/constants"
	"github.com/taskforge/taskforge/internal/logging"
	"github.com/taskforge/taskforge/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Seed creates one admin, one manager and one user (assigned to the manager)
// when all three principal tables are empty.
func Seed() error {
	var adminCount, managerCount, userCount int64
	if err := DB.Model(&models.Admin{}).Count(&adminCount).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if err := DB.Model(&models.Manager{}).Count(&managerCount).Error; err != nil {
		return fmt.Errorf("failed to count managers: %w", err)
	}
	if err := DB.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if adminCount > 0 || managerCount > 0 || userCount > 0 {
		logging.Logger.Info("principals already seeded, skipping")
		return nil
	}

	hash := func(password string) (string, error) {
		h, err := bcrypt.GenerateFromPassword([]byte(password), constants.BcryptCost)
		return string(h), err
	}

	adminHash, err := hash("admin123")
	if err != nil {
		return err
	}
	managerHash, err := hash("manager123")
	if err != nil {
		return err
	}
	userHash, err := hash("user123")
	if err != nil {
		return err
	}

	admin := &models.Admin{Username: "admin", Email: "admin@example.com", PasswordHash: adminHash}
	if err := DB.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	manager := &models.Manager{Username: "manager", Email: "manager@example.com", PasswordHash: managerHash}
	if err := DB.Create(manager).Error; err != nil {
		return fmt.Errorf("failed to seed manager: %w", err)
	}

	user := &models.User{
		Username:     "user",
		Email:        "user@example.com",
		PasswordHash: userHash,
		ManagerID:    &manager.ID,
	}
	if err := DB.Create(user).Error; err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}
	// Roster side of the team relation
	member := &models.TeamMember{ManagerID: manager.ID, UserID: user.ID, AssignedAt: time.Now()}
	if err := DB.Create(member).Error; err != nil {
		return fmt.Errorf("failed to seed team membership: %w", err)
	}

	logging.Logger.Info("seeded admin, manager and user principals")
	return nil
}
