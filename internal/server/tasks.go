package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/reorder"
	"github.com/corkboard/corkboard/internal/task"
)

type taskCreateReq struct {
	ProjectID    string `json:"project_id"`
	StageID      string `json:"status_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	IsPriority   bool   `json:"is_priority"`
	ParentTaskID string `json:"parent_task_id"`
}

type taskUpdateReq struct {
	Title       models.Opt[string] `json:"title"`
	Description models.Opt[string] `json:"description"`
	IsPriority  models.Opt[bool]   `json:"is_priority"`
}

type taskStatusReq struct {
	StageID string `json:"status_id"`
	Next    bool   `json:"next"`
}

func handleTaskCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req taskCreateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		t, err := task.Create(db, task.CreateOpts{
			ProjectID:    req.ProjectID,
			StageID:      req.StageID,
			Title:        req.Title,
			Description:  req.Description,
			IsPriority:   req.IsPriority,
			ParentTaskID: req.ParentTaskID,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

func handleTaskListByProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tasks, err := task.ListByProject(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func handleTaskReorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Tasks []reorder.TaskPlacement `json:"tasks"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := reorder.Tasks(db, req.Tasks); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "tasks reordered"})
	}
}

func handleTaskStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req taskStatusReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var err error
		if req.Next {
			err = task.MoveNext(db, c.Param("id"))
		} else {
			err = task.MoveStatus(db, c.Param("id"), req.StageID)
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "status updated"})
	}
}

func handleTaskUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req taskUpdateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err := task.Apply(db, c.Param("id"), task.Update{
			Title:       req.Title,
			Description: req.Description,
			IsPriority:  req.IsPriority,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "task updated"})
	}
}

func handleTaskDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := task.Delete(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
	}
}

func handleTaskSubtasks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		subtasks, err := task.ListSubtasks(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, subtasks)
	}
}
