package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-rest-api/internal/models"
	"github.com/yukikurage/task-rest-api/internal/policy"
	"github.com/yukikurage/task-rest-api/internal/repository"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrTitleEmpty    = errors.New("title cannot be empty")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	OwnerID     uint64
	Title       string
	Description *string
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// CreateTask creates a new task owned by the caller
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		OwnerID:     input.OwnerID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ListTasks returns a page of the owner's tasks in creation order
func (s *TaskService) ListTasks(ctx context.Context, ownerID uint64, skip, limit int) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// AuthorizeTask loads a task and checks that principal may perform action on
// it. It returns policy.ErrTaskNotFound or policy.ErrForbidden on denial.
func (s *TaskService) AuthorizeTask(ctx context.Context, principal *models.User, taskID uint64, action policy.Action) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to find task: %w", err)
		}
		task = nil
	}

	if err := policy.AuthorizeTask(principal, task, action); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask returns a task the principal owns
func (s *TaskService) GetTask(ctx context.Context, principal *models.User, taskID uint64) (*models.Task, error) {
	return s.AuthorizeTask(ctx, principal, taskID, policy.ActionRead)
}

// UpdateTask applies a partial update to an already authorized task
func (s *TaskService) UpdateTask(ctx context.Context, task *models.Task, input UpdateTaskInput) (*models.Task, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleEmpty
	}

	patch := repository.TaskPatch{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
	}
	if err := s.taskRepo.Update(ctx, task, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, policy.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask permanently removes an already authorized task and returns the
// record as it was before removal
func (s *TaskService) DeleteTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	removed, err := s.taskRepo.Delete(ctx, task.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, policy.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return removed, nil
}
