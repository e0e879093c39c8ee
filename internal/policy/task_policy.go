// Package policy holds authorization decisions that do not depend on storage.
package policy

import (
	"errors"

	"github.com/yukikurage/task-rest-api/internal/models"
)

// Action is an operation a principal attempts on an existing task.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrForbidden    = errors.New("not authorized")
)

// AuthorizeTask decides whether principal may perform action on task. A nil
// task means the lookup found nothing; existence is judged before ownership
// so ErrForbidden always implies the task exists.
func AuthorizeTask(principal *models.User, task *models.Task, action Action) error {
	if task == nil {
		return ErrTaskNotFound
	}
	if principal == nil || !task.OwnedBy(principal.ID) {
		return ErrForbidden
	}
	return nil
}

// ForbiddenMessage is the client-facing detail for a denied action.
func ForbiddenMessage(action Action) string {
	switch action {
	case ActionUpdate:
		return "Not authorized to update this task"
	case ActionDelete:
		return "Not authorized to delete this task"
	default:
		return "Not authorized to access this task"
	}
}
