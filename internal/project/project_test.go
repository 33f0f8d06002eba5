package project

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/stage"
)

// testDB creates an in-memory SQLite database with all tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Project{}, &models.Stage{}, &models.Task{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestCreate_SeedsDefaultStages(t *testing.T) {
	db := testDB(t)
	p, err := Create(db, CreateOpts{Name: "Website"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stages, err := stage.List(db, p.ID)
	if err != nil {
		t.Fatalf("list stages: %v", err)
	}
	want := []struct {
		name      string
		pending   bool
		completed bool
	}{
		{"Pending", true, false},
		{"In Progress", false, false},
		{"Completed", false, true},
	}
	if len(stages) != len(want) {
		t.Fatalf("got %d stages, want %d", len(stages), len(want))
	}
	for i, w := range want {
		st := stages[i]
		if st.Name != w.name || st.Position != i+1 || st.IsPending != w.pending || st.IsCompleted != w.completed {
			t.Errorf("stages[%d] = %s@%d pending=%v completed=%v, want %+v",
				i, st.Name, st.Position, st.IsPending, st.IsCompleted, w)
		}
	}
}

func TestCreate_CustomStageList(t *testing.T) {
	db := testDB(t)
	p, err := Create(db, CreateOpts{
		Name: "Custom",
		Stages: []stage.SeedStage{
			{Name: "Inbox", IsPending: true},
			{Name: "Archive", IsCompleted: true},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stages, _ := stage.List(db, p.ID)
	if len(stages) != 2 || stages[0].Name != "Inbox" || stages[1].Name != "Archive" {
		t.Errorf("stages = %v", stages)
	}
}

func TestCreate_InvalidSeedRollsBackProject(t *testing.T) {
	db := testDB(t)
	_, err := Create(db, CreateOpts{
		Name: "Broken",
		Stages: []stage.SeedStage{
			{Name: "Done", IsCompleted: true},
			{Name: "Also Done", IsCompleted: true},
		},
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	// Seeding failed, so the project row must not survive.
	var count int64
	db.Model(&models.Project{}).Count(&count)
	if count != 0 {
		t.Errorf("projects = %d, want 0", count)
	}
}

func TestCreate_BlankNameFails(t *testing.T) {
	db := testDB(t)
	_, err := Create(db, CreateOpts{})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestApply_PartialUpdate(t *testing.T) {
	db := testDB(t)
	p, _ := Create(db, CreateOpts{Name: "Website", Description: "v1"})

	if err := Apply(db, p.ID, Update{Name: models.Some("Website v2")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	after, _ := Get(db, p.ID)
	if after.Name != "Website v2" || after.Description != "v1" {
		t.Errorf("after = %+v", after)
	}

	if err := Apply(db, p.ID, Update{}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("empty update err = %v, want ErrValidation", err)
	}
}

func TestDelete_Cascades(t *testing.T) {
	db := testDB(t)
	p, _ := Create(db, CreateOpts{Name: "Doomed"})
	stages, _ := stage.List(db, p.ID)

	pos := 0
	tk := models.Task{ID: "tsk-1", ProjectID: p.ID, StageID: stages[0].ID, Title: "t", Position: &pos}
	if err := db.Create(&tk).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	if err := Delete(db, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var stageCount, taskCount int64
	db.Model(&models.Stage{}).Count(&stageCount)
	db.Model(&models.Task{}).Count(&taskCount)
	if stageCount != 0 || taskCount != 0 {
		t.Errorf("stages=%d tasks=%d after delete, want 0/0", stageCount, taskCount)
	}

	if err := Delete(db, p.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete err = %v, want record-not-found", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	db := testDB(t)
	if _, err := Create(db, CreateOpts{Name: "first"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := Create(db, CreateOpts{Name: "second"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	projects, err := List(db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("got %d projects, want 2", len(projects))
	}
}
