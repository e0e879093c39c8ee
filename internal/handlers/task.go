package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/task-rest-api/internal/dto"
	apierrors "github.com/yukikurage/task-rest-api/internal/errors"
	"github.com/yukikurage/task-rest-api/internal/middleware"
	"github.com/yukikurage/task-rest-api/internal/models"
	"github.com/yukikurage/task-rest-api/internal/policy"
	"github.com/yukikurage/task-rest-api/internal/services"
	"github.com/yukikurage/task-rest-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	log         zerolog.Logger
}

func NewTaskHandler(taskService *services.TaskService, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// ListTasks returns a page of the current user's tasks in creation order
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c)
		return
	}

	params, err := utils.GetPaginationParams(c)
	if err != nil {
		apierrors.Validation(c, err)
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), user.ID, params.Skip, params.Limit)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns the task loaded by RequireTaskAccess
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := h.currentTask(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c)
		return
	}

	type CreateTaskRequest struct {
		Title       string  `json:"title" binding:"required,max=255"`
		Description *string `json:"description"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Validation(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		OwnerID:     user.ID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update; fields left out of the body keep
// their current value
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := h.currentTask(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title" binding:"omitempty,max=255"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Validation(c, err)
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask permanently removes a task and echoes the removed record
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := h.currentTask(c)
	if !ok {
		return
	}

	removed, err := h.taskService.DeleteTask(c.Request.Context(), task)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	h.log.Info().Uint64("task_id", removed.ID).Uint64("owner_id", removed.OwnerID).Msg("task deleted")
	c.JSON(http.StatusOK, dto.ToTaskDTO(*removed))
}

func (h *TaskHandler) currentTask(c *gin.Context) (*models.Task, bool) {
	task, exists := middleware.CurrentTask(c)
	if !exists {
		h.log.Error().Str("path", c.FullPath()).Msg("task missing from context")
		apierrors.InternalError(c)
		return nil, false
	}
	return task, true
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.ValidationField(c, "title", "field required")
	case errors.Is(err, services.ErrTitleEmpty):
		apierrors.ValidationField(c, "title", "title cannot be empty")
	case errors.Is(err, policy.ErrTaskNotFound):
		apierrors.NotFound(c, apierrors.MsgTaskNotFound)
	default:
		h.internalError(c, err)
	}
}

func (h *TaskHandler) internalError(c *gin.Context, err error) {
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg("task request failed")
	apierrors.InternalError(c)
}
