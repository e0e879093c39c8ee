package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-rest-api/internal/constants"
	apierrors "github.com/yukikurage/task-rest-api/internal/errors"
	"github.com/yukikurage/task-rest-api/internal/models"
	"github.com/yukikurage/task-rest-api/internal/policy"
	"github.com/yukikurage/task-rest-api/internal/repository"
	"github.com/yukikurage/task-rest-api/internal/services"
	"github.com/yukikurage/task-rest-api/internal/testutil"
)

func taskRouter(taskService *services.TaskService, principal *models.User, action policy.Action) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/tasks/:id",
		func(c *gin.Context) {
			c.Set(constants.ContextKeyCurrentUser, principal)
			c.Next()
		},
		RequireTaskAccess(taskService, action, zerolog.Nop()),
		func(c *gin.Context) {
			task, ok := CurrentTask(c)
			if !ok {
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": task.ID})
		},
	)
	return r
}

func TestRequireTaskAccess(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com")
	other := testutil.CreateUser(t, db, "other@x.com")
	task := testutil.CreateTask(t, db, "T1", owner.ID)
	taskService := services.NewTaskService(repository.NewTaskRepository(db))

	tests := []struct {
		name      string
		principal *models.User
		action    policy.Action
		id        string
		status    int
		detail    string
	}{
		{"owner reads", owner, policy.ActionRead, strconv.FormatUint(task.ID, 10), http.StatusOK, ""},
		{"other reads", other, policy.ActionRead, strconv.FormatUint(task.ID, 10), http.StatusForbidden, "Not authorized to access this task"},
		{"other updates", other, policy.ActionUpdate, strconv.FormatUint(task.ID, 10), http.StatusForbidden, "Not authorized to update this task"},
		{"other deletes", other, policy.ActionDelete, strconv.FormatUint(task.ID, 10), http.StatusForbidden, "Not authorized to delete this task"},
		{"missing before forbidden", other, policy.ActionDelete, "9999", http.StatusNotFound, "Task not found"},
		{"bad id", owner, policy.ActionRead, "abc", http.StatusUnprocessableEntity, "Validation error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := taskRouter(taskService, tt.principal, tt.action)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/"+tt.id, nil))

			require.Equal(t, tt.status, w.Code)
			if tt.detail == "" {
				return
			}
			var body apierrors.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.detail, body.Detail)
		})
	}
}

func TestRequireTaskAccess_NoPrincipal(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com")
	task := testutil.CreateTask(t, db, "T1", owner.ID)
	taskService := services.NewTaskService(repository.NewTaskRepository(db))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/tasks/:id", RequireTaskAccess(taskService, policy.ActionRead, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/"+strconv.FormatUint(task.ID, 10), nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
