package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	apierrors "github.com/taskforge/taskforge/internal/errors"
	"github.com/taskforge/taskforge/internal/logging"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrPrincipalNotFound = errors.New("principal not found")
)

// TeamService is the single mutation authority for the team relation. All
// paired pointer/roster writes go through the repository's transactions; on
// read it cross-checks the two sides and reports drift instead of failing.
type TeamService struct {
	teamRepo repository.TeamRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository) *TeamService {
	return &TeamService{teamRepo: teamRepo}
}

// Assign puts the user on the manager's team, replacing any previous manager.
func (s *TeamService) Assign(userID, managerID uint64) error {
	if err := s.teamRepo.Assign(userID, managerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPrincipalNotFound
		}
		return fmt.Errorf("failed to assign user to manager: %w", err)
	}
	return nil
}

// Unassign removes the user from its manager's team.
func (s *TeamService) Unassign(userID uint64) error {
	if err := s.teamRepo.Unassign(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPrincipalNotFound
		}
		return fmt.Errorf("failed to unassign user: %w", err)
	}
	return nil
}

// TeamOf returns the user IDs on a manager's team. The roster rows are
// authoritative; if the pointer side disagrees the union is returned and the
// drift is logged for reconciliation, so a torn write degrades visibility
// instead of breaking the request.
func (s *TeamService) TeamOf(managerID uint64) ([]uint64, error) {
	roster, err := s.teamRepo.RosterUserIDs(managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read team roster: %w", err)
	}

	pointers, err := s.teamRepo.PointerUserIDs(managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read manager pointers: %w", err)
	}

	team := roster
	seen := make(map[uint64]struct{}, len(roster))
	for _, id := range roster {
		seen[id] = struct{}{}
	}

	drifted := len(pointers) != len(roster)
	for _, id := range pointers {
		if _, ok := seen[id]; !ok {
			drifted = true
			team = append(team, id)
		}
	}

	if drifted {
		logging.Logger.WithFields(logrus.Fields{
			"code":       apierrors.ErrCodeConsistencyFailure,
			"manager_id": managerID,
			"roster":     roster,
			"pointers":   pointers,
		}).Warn("team roster and manager pointers disagree")
	}

	return team, nil
}

// ListTeam returns the user records on a manager's roster.
func (s *TeamService) ListTeam(managerID uint64) ([]models.User, error) {
	users, err := s.teamRepo.ListTeamUsers(managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	return users, nil
}

// RemoveManager deletes the manager and orphans its team members.
func (s *TeamService) RemoveManager(managerID uint64) error {
	if err := s.teamRepo.RemoveManager(managerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPrincipalNotFound
		}
		return fmt.Errorf("failed to remove manager: %w", err)
	}
	return nil
}

// RemoveUser deletes the user and its roster row.
func (s *TeamService) RemoveUser(userID uint64) error {
	if err := s.teamRepo.RemoveUser(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPrincipalNotFound
		}
		return fmt.Errorf("failed to remove user: %w", err)
	}
	return nil
}
