package repository

import (
	"time"

	"github.com/taskminder/taskminder/internal/models"
)

// TaskRepository defines the interface for task data access.
// Every operation that takes an ownerID is scoped to that owner: a task
// belonging to someone else behaves exactly like a missing task.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByOwner finds a task by ID, restricted to the given owner
	FindByOwner(id, ownerID uint64) (*models.Task, error)

	// ListByOwner retrieves all tasks belonging to the owner, newest first
	ListByOwner(ownerID uint64) ([]models.Task, error)

	// Update persists all fields of a task
	Update(task *models.Task) error

	// Delete removes a task owned by ownerID; gorm.ErrRecordNotFound if absent
	Delete(id, ownerID uint64) error

	// ListDueReminders returns tasks whose reminder is at or before now,
	// that are not completed and have not been mailed yet
	ListDueReminders(now time.Time) ([]models.Task, error)

	// MarkReminderSent flags a task's reminder as delivered
	MarkReminderSent(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
