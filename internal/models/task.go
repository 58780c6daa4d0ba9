package models

import (
	"time"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// ValidPriority reports whether p is one of the three known priorities.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// NormalizePriority maps unknown or empty values to the default priority.
func NormalizePriority(p TaskPriority) TaskPriority {
	if ValidPriority(p) {
		return p
	}
	return PriorityMedium
}

type Task struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	OwnerID      uint64       `gorm:"not null;index" json:"owner_id"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	DueDate      *time.Time   `json:"due_date"`
	Priority     TaskPriority `gorm:"type:varchar(10);not null;default:'Medium'" json:"priority"`
	Completed    bool         `gorm:"not null;default:false" json:"completed"`
	Reminder     *time.Time   `json:"reminder"`
	ReminderSent bool         `gorm:"not null;default:false" json:"reminder_sent"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

// ReminderDue reports whether the task's reminder should fire at the given
// instant: a reminder is set, at or before now, and the task is not done.
func (t *Task) ReminderDue(now time.Time) bool {
	return t.Reminder != nil && !t.Reminder.After(now) && !t.Completed
}
