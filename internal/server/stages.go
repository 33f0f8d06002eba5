package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/project"
	"github.com/corkboard/corkboard/internal/stage"
)

type stageCreateReq struct {
	Name        string `json:"name"`
	Position    *int   `json:"position"`
	IsCompleted bool   `json:"is_completed"`
	IsPending   bool   `json:"is_pending"`
	TaskLimit   *int   `json:"task_limit"`
	Resolution  string `json:"resolution"`
}

type stageUpdateReq struct {
	Name        models.Opt[string] `json:"name"`
	IsCompleted models.Opt[bool]   `json:"is_completed"`
	IsPending   models.Opt[bool]   `json:"is_pending"`
	TaskLimit   models.Opt[*int]   `json:"task_limit"`
	Resolution  string             `json:"resolution"`
}

func handleStageList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := project.Get(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		stages, err := stage.List(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, stages)
	}
}

func handleStageCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stageCreateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st, err := stage.Create(db, stage.CreateOpts{
			ProjectID:   c.Param("id"),
			Name:        req.Name,
			Position:    req.Position,
			IsCompleted: req.IsCompleted,
			IsPending:   req.IsPending,
			TaskLimit:   req.TaskLimit,
			Resolution:  stage.Resolution(req.Resolution),
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": st.ID, "position": st.Position})
	}
}

func handleStageUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stageUpdateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err := stage.Apply(db, c.Param("id"), stage.Update{
			Name:        req.Name,
			IsCompleted: req.IsCompleted,
			IsPending:   req.IsPending,
			TaskLimit:   req.TaskLimit,
			Resolution:  stage.Resolution(req.Resolution),
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "stage updated"})
	}
}

func handleStageDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := stage.Delete(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "stage deleted"})
	}
}

func handleStageLimit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := stage.CheckLimit(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
