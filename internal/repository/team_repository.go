package repository

import (
	"time"

	"github.com/taskforge/taskforge/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTeamRepository is a GORM implementation of TeamRepository. Each
// mutation runs inside a single transaction so the pointer and roster sides
// of the relation cannot drift under partial failure.
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Assign puts the user on the manager's team. A user has at most one manager,
// so any previous manager's roster row is removed in the same transaction.
func (r *GormTeamRepository) Assign(userID, managerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		var manager models.Manager
		if err := tx.First(&manager, managerID).Error; err != nil {
			return err
		}

		if user.ManagerID != nil && *user.ManagerID != managerID {
			if err := tx.Where("manager_id = ? AND user_id = ?", *user.ManagerID, userID).
				Delete(&models.TeamMember{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&user).Update("manager_id", managerID).Error; err != nil {
			return err
		}

		member := models.TeamMember{
			ManagerID:  managerID,
			UserID:     userID,
			AssignedAt: time.Now(),
		}
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "manager_id"}, {Name: "user_id"}},
				DoNothing: true,
			}).
			Create(&member).Error
	})
}

// Unassign clears the user's manager pointer and removes the roster row.
func (r *GormTeamRepository) Unassign(userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		return tx.Model(&user).Update("manager_id", nil).Error
	})
}

// RosterUserIDs returns the user IDs on the manager's roster.
func (r *GormTeamRepository) RosterUserIDs(managerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.TeamMember{}).
		Where("manager_id = ?", managerID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// PointerUserIDs returns the IDs of users whose manager pointer targets the
// manager. Used to cross-check the roster on read.
func (r *GormTeamRepository) PointerUserIDs(managerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.User{}).
		Where("manager_id = ?", managerID).
		Pluck("id", &ids).Error
	return ids, err
}

// ListTeamUsers returns the user records on a manager's roster.
func (r *GormTeamRepository) ListTeamUsers(managerID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("JOIN team_members ON team_members.user_id = users.id").
		Where("team_members.manager_id = ?", managerID).
		Find(&users).Error
	return users, err
}

// RemoveManager deletes the manager and orphans its team: every former
// member's pointer is cleared, the members themselves are kept.
func (r *GormTeamRepository) RemoveManager(managerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var manager models.Manager
		if err := tx.First(&manager, managerID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("manager_id = ?", managerID).
			Update("manager_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("manager_id = ?", managerID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Manager{}, managerID).Error
	})
}

// RemoveUser deletes the user and, if it had a manager, the roster row.
func (r *GormTeamRepository) RemoveUser(userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, userID).Error
	})
}
