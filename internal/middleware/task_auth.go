package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/task-rest-api/internal/constants"
	apierrors "github.com/yukikurage/task-rest-api/internal/errors"
	"github.com/yukikurage/task-rest-api/internal/models"
	"github.com/yukikurage/task-rest-api/internal/policy"
	"github.com/yukikurage/task-rest-api/internal/services"
)

// RequireTaskAccess loads the task named by the :id parameter and lets the
// request through only if the current user owns it. Must run after
// RequireAuth.
func RequireTaskAccess(taskService *services.TaskService, action policy.Action, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.ValidationField(c, "task_id", "value is not a valid integer")
			return
		}

		user, exists := CurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c)
			return
		}

		task, err := taskService.AuthorizeTask(c.Request.Context(), user, taskID, action)
		if err != nil {
			switch {
			case errors.Is(err, policy.ErrTaskNotFound):
				apierrors.NotFound(c, apierrors.MsgTaskNotFound)
			case errors.Is(err, policy.ErrForbidden):
				apierrors.Forbidden(c, policy.ForbiddenMessage(action))
			default:
				log.Error().Err(err).Uint64("task_id", taskID).Msg("task lookup failed")
				apierrors.InternalError(c)
			}
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// CurrentTask retrieves the task set by RequireTaskAccess
func CurrentTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}

	task, ok := value.(*models.Task)
	if !ok || task == nil {
		return nil, false
	}
	return task, true
}
