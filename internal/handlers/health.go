package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	apierrors "github.com/yukikurage/task-rest-api/internal/errors"
	"gorm.io/gorm"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:  db,
		log: log,
	}
}

// Root greets clients hitting the bare host.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Task Management API!"})
}

// Health reports ok only when the database answers a ping
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		apierrors.ServiceUnavailable(c, "database unavailable")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
