package dto

import "github.com/taskforge/taskforge/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	ManagerID *uint64     `json:"manager_id,omitempty"`
}

// ManagerDTO represents a manager with its roster in API responses
type ManagerDTO struct {
	ID       uint64      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Team     []UserDTO   `json:"team"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		ManagerID: user.ManagerID,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}

// ToManagerDTO converts a Manager model to ManagerDTO. The roster is
// included when the Team relation was preloaded.
func ToManagerDTO(manager models.Manager) ManagerDTO {
	dto := ManagerDTO{
		ID:       manager.ID,
		Username: manager.Username,
		Email:    manager.Email,
		Role:     manager.Role,
		Team:     []UserDTO{},
	}
	for _, member := range manager.Team {
		if member.User.ID != 0 {
			dto.Team = append(dto.Team, ToUserDTO(member.User))
		}
	}
	return dto
}

// ToManagerDTOs converts a slice of managers
func ToManagerDTOs(managers []models.Manager) []ManagerDTO {
	dtos := make([]ManagerDTO, len(managers))
	for i, manager := range managers {
		dtos[i] = ToManagerDTO(manager)
	}
	return dtos
}
