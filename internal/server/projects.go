package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/project"
	"github.com/corkboard/corkboard/internal/reorder"
	"github.com/corkboard/corkboard/internal/stage"
)

type projectCreateReq struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	StartDate   *time.Time        `json:"start_date"`
	EndDate     *time.Time        `json:"end_date"`
	Stages      []stage.SeedStage `json:"stages"`
}

type projectUpdateReq struct {
	Name        models.Opt[string]     `json:"name"`
	Description models.Opt[string]     `json:"description"`
	StartDate   models.Opt[*time.Time] `json:"start_date"`
	EndDate     models.Opt[*time.Time] `json:"end_date"`
}

func handleProjectList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := project.List(db)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

func handleProjectCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req projectCreateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := project.Create(db, project.CreateOpts{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Stages:      req.Stages,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func handleProjectGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := project.Get(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func handleProjectUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req projectUpdateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err := project.Apply(db, c.Param("id"), project.Update{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "project updated"})
	}
}

func handleProjectDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := project.Delete(db, c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}

func handleStageReorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Stages []reorder.StagePlacement `json:"stages"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := reorder.Stages(db, c.Param("id"), req.Stages); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "stages reordered"})
	}
}
