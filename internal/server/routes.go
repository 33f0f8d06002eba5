package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/stage"
)

// registerRoutes sets up all API routes on the gin router. Gin's route
// tree rejects a literal segment next to a parameter in the same method,
// so bulk reorder is a POST and the per-project task listing lives under
// /projects.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	api := router.Group("/api")

	api.GET("/projects", handleProjectList(db))
	api.POST("/projects", handleProjectCreate(db))
	api.GET("/projects/:id", handleProjectGet(db))
	api.PUT("/projects/:id", handleProjectUpdate(db))
	api.DELETE("/projects/:id", handleProjectDelete(db))

	api.GET("/projects/:id/stages", handleStageList(db))
	api.POST("/projects/:id/stages", handleStageCreate(db))
	api.PUT("/projects/:id/stages/reorder", handleStageReorder(db))
	api.GET("/projects/:id/tasks", handleTaskListByProject(db))

	api.PUT("/stages/:id", handleStageUpdate(db))
	api.DELETE("/stages/:id", handleStageDelete(db))
	api.GET("/stages/:id/limit", handleStageLimit(db))

	api.POST("/tasks", handleTaskCreate(db))
	api.POST("/tasks/reorder", handleTaskReorder(db))
	api.PUT("/tasks/:id/status", handleTaskStatus(db))
	api.PUT("/tasks/:id", handleTaskUpdate(db))
	api.DELETE("/tasks/:id", handleTaskDelete(db))
	api.GET("/tasks/:id/subtasks", handleTaskSubtasks(db))
}

// requestID tags each request with an id for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// fail maps domain errors onto HTTP status codes. A completed-stage
// conflict is a structured 409 naming the holder so the client can ask the
// user to replace or keep.
func fail(c *gin.Context, err error) {
	var conflict *stage.CompletedConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "completed stage conflict",
			"holder": gin.H{
				"id":   conflict.HolderID,
				"name": conflict.HolderName,
			},
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
