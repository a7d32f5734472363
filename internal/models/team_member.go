package models

import "time"

// TeamMember is the roster side of the team relation: one row per user on a
// manager's team. It mirrors User.ManagerID and the two are kept consistent
// by writing them in the same transaction.
type TeamMember struct {
	ManagerID  uint64    `gorm:"primarykey" json:"manager_id"`
	UserID     uint64    `gorm:"primarykey" json:"user_id"`
	AssignedAt time.Time `json:"assigned_at"`

	// Relations
	Manager Manager `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
