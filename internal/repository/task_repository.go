package repository

import (
	"time"

	"github.com/taskminder/taskminder/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByOwner finds a task by ID, restricted to the given owner
func (r *GormTaskRepository) FindByOwner(id, ownerID uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.Where("owner_id = ?", ownerID).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByOwner retrieves all tasks belonging to the owner, newest first
func (r *GormTaskRepository) ListByOwner(ownerID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update persists all fields of a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task owned by ownerID
func (r *GormTaskRepository) Delete(id, ownerID uint64) error {
	result := r.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListDueReminders returns tasks ready for reminder delivery
func (r *GormTaskRepository) ListDueReminders(now time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Preload("Owner").
		Where("reminder IS NOT NULL AND reminder <= ?", now).
		Where("completed = ? AND reminder_sent = ?", false, false).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkReminderSent flags a task's reminder as delivered
func (r *GormTaskRepository) MarkReminderSent(id uint64) error {
	return r.db.Model(&models.Task{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
}
