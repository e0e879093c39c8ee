package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/task-rest-api/internal/database"
	"github.com/yukikurage/task-rest-api/internal/models"
	"github.com/yukikurage/task-rest-api/internal/utils"
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
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	task.Completed = false
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// ListByOwner retrieves one page of the owner's tasks, oldest first
func (r *GormTaskRepository) ListByOwner(ctx context.Context, ownerID uint64, skip, limit int) ([]models.Task, error) {
	tasks := []models.Task{}

	err := r.db.WithContext(ctx).
		Scopes(
			database.OwnedBy(ownerID),
			database.Paginate(utils.NormalizePagination(skip, limit)),
		).
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// Update writes only title, description and completed; id and owner_id are
// never part of the statement. A task removed in the meantime is ErrNotFound.
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task, patch TaskPatch) error {
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		description := *patch.Description
		task.Description = &description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}

	db := r.db.WithContext(ctx)
	result := db.
		Model(task).
		Select("title", "description", "completed").
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"completed":   task.Completed,
		})
	if result.Error != nil {
		return fmt.Errorf("update task: %w", result.Error)
	}

	// MySQL reports zero affected rows when the values did not change, so
	// zero only means "gone" once the row is confirmed missing.
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
	}

	return nil
}

// Delete permanently removes a task and returns the removed record
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, id).Error; err != nil {
			return notFound(err)
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}
