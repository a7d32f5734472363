package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

const (
	MinRating = 1
	MaxRating = 5
)

// Task deletion is immediate and terminal, so there is no DeletedAt column.
type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	DueDate     time.Time    `gorm:"not null" json:"due_date"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Rating      *int         `json:"rating"`

	// CreatorID and CreatorModel together form a tagged reference: the model
	// tag selects which principal table the ID resolves against.
	CreatorID    uint64         `gorm:"not null;index" json:"creator_id"`
	CreatorModel PrincipalModel `gorm:"type:varchar(20);not null" json:"creator_model"`

	// AssignedTo always points into the users table, never admins or managers.
	AssignedTo *uint64 `gorm:"index" json:"assigned_to"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatorRef returns the task's creator as a tagged reference.
func (t *Task) CreatorRef() PrincipalRef {
	return PrincipalRef{ID: t.CreatorID, Model: t.CreatorModel}
}
