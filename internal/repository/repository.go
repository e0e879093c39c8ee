package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/task-rest-api/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmailExists is returned when the unique email constraint rejects an insert.
	ErrEmailExists = errors.New("email already exists")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a new user. Uniqueness of the email is enforced by the
	// database; a violation is reported as ErrEmailExists.
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by exact email match
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// ListByOwner returns the owner's tasks in creation order
	ListByOwner(ctx context.Context, ownerID uint64, skip, limit int) ([]models.Task, error)

	// Update applies the patch to the task and persists the mutable columns
	Update(ctx context.Context, task *models.Task, patch TaskPatch) error

	// Delete permanently removes a task and returns it as it was before removal
	Delete(ctx context.Context, id uint64) (*models.Task, error)
}

// TaskPatch holds the fields of a partial task update. Nil fields are left
// untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}
