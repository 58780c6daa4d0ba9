package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskminder/taskminder/internal/models"
	"github.com/taskminder/taskminder/internal/repository"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound covers both missing tasks and tasks owned by someone
	// else, so the API never leaks task existence across owners.
	ErrTaskNotFound  = errors.New("task not found")
	ErrTitleRequired = errors.New("title is required")
	ErrTitleEmpty    = errors.New("title cannot be empty")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	OwnerID     uint64
	Title       string
	Description string
	DueDate     *time.Time
	Priority    models.TaskPriority
	Reminder    *time.Time
}

// UpdateTaskInput represents input for partially updating a task.
// Nil pointer fields are left untouched; the Clear flags reset optional
// timestamps to unset.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	DueDate       *time.Time
	ClearDueDate  bool
	Priority      *models.TaskPriority
	Reminder      *time.Time
	ClearReminder bool
}

// ListTasks returns all tasks belonging to the owner, newest first
func (s *TaskService) ListTasks(ownerID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a single task if it belongs to the owner
func (s *TaskService) GetTask(taskID, ownerID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByOwner(taskID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTask creates a new task with validation
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	task := &models.Task{
		OwnerID:     input.OwnerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		DueDate:     input.DueDate,
		Priority:    models.NormalizePriority(input.Priority),
		Reminder:    input.Reminder,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask applies a partial update to a task owned by ownerID
func (s *TaskService) UpdateTask(taskID, ownerID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByOwner(taskID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		task.Priority = models.NormalizePriority(*input.Priority)
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearReminder {
		task.Reminder = nil
		task.ReminderSent = false
	} else if input.Reminder != nil {
		// A rescheduled reminder is eligible for delivery again.
		if task.Reminder == nil || !task.Reminder.Equal(*input.Reminder) {
			task.ReminderSent = false
		}
		task.Reminder = input.Reminder
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// ToggleCompleted flips the completed flag of a task owned by ownerID
func (s *TaskService) ToggleCompleted(taskID, ownerID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByOwner(taskID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.Completed = !task.Completed

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to toggle completion: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task owned by ownerID
func (s *TaskService) DeleteTask(taskID, ownerID uint64) error {
	if err := s.taskRepo.Delete(taskID, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
