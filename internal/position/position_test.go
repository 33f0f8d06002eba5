package position

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/corkboard/corkboard/internal/models"
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

func seedProject(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	if err := db.Create(&models.Project{ID: id, Name: id}).Error; err != nil {
		t.Fatalf("seed project %s: %v", id, err)
	}
}

// seedStages creates n stages under projectID at positions 1..n and
// returns their IDs in order.
func seedStages(t *testing.T, db *gorm.DB, projectID string, n int) []string {
	t.Helper()
	seedProject(t, db, projectID)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("stg-%s-%d", projectID, i)
		st := models.Stage{ID: id, ProjectID: projectID, Name: id, Position: i + 1}
		if err := db.Create(&st).Error; err != nil {
			t.Fatalf("seed stage %s: %v", id, err)
		}
		ids[i] = id
	}
	return ids
}

// stageOrder reads back stage IDs under projectID in position order and
// fails the test if positions are not exactly 1..n.
func stageOrder(t *testing.T, db *gorm.DB, projectID string) []string {
	t.Helper()
	var stages []models.Stage
	if err := db.Where("project_id = ?", projectID).
		Order("position ASC").Find(&stages).Error; err != nil {
		t.Fatalf("read stages: %v", err)
	}
	ids := make([]string, len(stages))
	for i, st := range stages {
		if st.Position != i+1 {
			t.Fatalf("positions not dense: index %d has position %d (want %d)", i, st.Position, i+1)
		}
		ids[i] = st.ID
	}
	return ids
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order length = %d, want %d; got %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d] = %s, want %s; full order %v", i, got[i], want[i], got)
		}
	}
}

func TestInsertAt_ShiftsAndClamps(t *testing.T) {
	tests := []struct {
		name    string
		desired int
		want    int
	}{
		{"middle", 2, 2},
		{"front", 1, 1},
		{"end", 4, 4},
		{"below range clamps to base", -3, 1},
		{"beyond range clamps to append", 99, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			seedStages(t, db, "p1", 3)

			var got int
			err := db.Transaction(func(tx *gorm.DB) error {
				pos, err := Stages.InsertAt(tx, "p1", tt.desired)
				if err != nil {
					return err
				}
				got = pos
				st := models.Stage{ID: "stg-new", ProjectID: "p1", Name: "new", Position: pos}
				return tx.Create(&st).Error
			})
			if err != nil {
				t.Fatalf("insert at %d: %v", tt.desired, err)
			}
			if got != tt.want {
				t.Errorf("assigned position = %d, want %d", got, tt.want)
			}
			order := stageOrder(t, db, "p1")
			if order[tt.want-1] != "stg-new" {
				t.Errorf("new stage at index %d, want %d; order %v", indexOf(order, "stg-new"), tt.want-1, order)
			}
		})
	}
}

func TestMove_ForwardAndBackward(t *testing.T) {
	tests := []struct {
		name string
		id   string
		to   int
		want []string
	}{
		{"forward", "stg-p1-0", 3, []string{"stg-p1-1", "stg-p1-2", "stg-p1-0", "stg-p1-3"}},
		{"backward", "stg-p1-3", 1, []string{"stg-p1-3", "stg-p1-0", "stg-p1-1", "stg-p1-2"}},
		{"noop", "stg-p1-1", 2, []string{"stg-p1-0", "stg-p1-1", "stg-p1-2", "stg-p1-3"}},
		{"clamp high", "stg-p1-0", 99, []string{"stg-p1-1", "stg-p1-2", "stg-p1-3", "stg-p1-0"}},
		{"clamp low", "stg-p1-2", -5, []string{"stg-p1-2", "stg-p1-0", "stg-p1-1", "stg-p1-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			seedStages(t, db, "p1", 4)

			err := db.Transaction(func(tx *gorm.DB) error {
				return Stages.Move(tx, "p1", tt.id, tt.to)
			})
			if err != nil {
				t.Fatalf("move %s to %d: %v", tt.id, tt.to, err)
			}
			assertOrder(t, stageOrder(t, db, "p1"), tt.want)
		})
	}
}

func TestMove_ThenMoveBackRestoresOrder(t *testing.T) {
	db := testDB(t)
	seedStages(t, db, "p1", 5)
	before := stageOrder(t, db, "p1")

	for _, step := range []int{4, 2} {
		err := db.Transaction(func(tx *gorm.DB) error {
			return Stages.Move(tx, "p1", "stg-p1-1", step)
		})
		if err != nil {
			t.Fatalf("move to %d: %v", step, err)
		}
	}
	assertOrder(t, stageOrder(t, db, "p1"), before)
}

func TestMove_NotFound(t *testing.T) {
	db := testDB(t)
	seedStages(t, db, "p1", 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Stages.Move(tx, "p1", "stg-missing", 1)
	})
	if err == nil {
		t.Fatal("expected error for missing record")
	}
}

func TestCloseGap_CompactsAfterDelete(t *testing.T) {
	db := testDB(t)
	seedStages(t, db, "p1", 4)

	// Delete position 3, then close the gap.
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Stage{}, "id = ?", "stg-p1-2").Error; err != nil {
			return err
		}
		return Stages.CloseGap(tx, "p1", 3)
	})
	if err != nil {
		t.Fatalf("delete and close gap: %v", err)
	}
	assertOrder(t, stageOrder(t, db, "p1"), []string{"stg-p1-0", "stg-p1-1", "stg-p1-3"})
}

func TestInsertThenDeleteRestoresOriginal(t *testing.T) {
	db := testDB(t)
	seedStages(t, db, "p1", 3)
	before := stageOrder(t, db, "p1")

	err := db.Transaction(func(tx *gorm.DB) error {
		pos, err := Stages.InsertAt(tx, "p1", 2)
		if err != nil {
			return err
		}
		return tx.Create(&models.Stage{ID: "stg-tmp", ProjectID: "p1", Name: "tmp", Position: pos}).Error
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Stage{}, "id = ?", "stg-tmp").Error; err != nil {
			return err
		}
		return Stages.CloseGap(tx, "p1", 2)
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertOrder(t, stageOrder(t, db, "p1"), before)
}

func TestReassign_FullOverwrite(t *testing.T) {
	db := testDB(t)
	seedStages(t, db, "p1", 3)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Stages.Reassign(tx, "p1", []string{"stg-p1-2", "stg-p1-0", "stg-p1-1"})
	})
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	assertOrder(t, stageOrder(t, db, "p1"), []string{"stg-p1-2", "stg-p1-0", "stg-p1-1"})
}

func TestReassign_PartialListAppendsUncovered(t *testing.T) {
	db := testDB(t)
	seedStages(t, db, "p1", 4)

	// Cover only two of four; the others must keep relative order after
	// the covered ones, with no duplicate positions.
	err := db.Transaction(func(tx *gorm.DB) error {
		return Stages.Reassign(tx, "p1", []string{"stg-p1-3", "stg-p1-1"})
	})
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	assertOrder(t, stageOrder(t, db, "p1"), []string{"stg-p1-3", "stg-p1-1", "stg-p1-0", "stg-p1-2"})
}

func TestReassign_UnknownIDFails(t *testing.T) {
	db := testDB(t)
	seedStages(t, db, "p1", 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		return Stages.Reassign(tx, "p1", []string{"stg-p1-0", "stg-nope"})
	})
	if err == nil {
		t.Fatal("expected error for unknown id")
	}
	// Rollback keeps the original ordering intact.
	assertOrder(t, stageOrder(t, db, "p1"), []string{"stg-p1-0", "stg-p1-1"})
}

func TestDensityUnderMixedSequence(t *testing.T) {
	db := testDB(t)
	seedStages(t, db, "p1", 1)

	ops := []func(tx *gorm.DB) error{
		func(tx *gorm.DB) error {
			pos, err := Stages.InsertAt(tx, "p1", 1)
			if err != nil {
				return err
			}
			return tx.Create(&models.Stage{ID: "stg-a", ProjectID: "p1", Name: "a", Position: pos}).Error
		},
		func(tx *gorm.DB) error {
			pos, err := Stages.InsertAt(tx, "p1", 99)
			if err != nil {
				return err
			}
			return tx.Create(&models.Stage{ID: "stg-b", ProjectID: "p1", Name: "b", Position: pos}).Error
		},
		func(tx *gorm.DB) error { return Stages.Move(tx, "p1", "stg-b", 1) },
		func(tx *gorm.DB) error {
			if err := tx.Delete(&models.Stage{}, "id = ?", "stg-a").Error; err != nil {
				return err
			}
			return Stages.CloseGap(tx, "p1", 2)
		},
		func(tx *gorm.DB) error { return Stages.Move(tx, "p1", "stg-p1-0", 1) },
		func(tx *gorm.DB) error {
			return Stages.Reassign(tx, "p1", []string{"stg-b", "stg-p1-0"})
		},
	}
	for i, op := range ops {
		if err := db.Transaction(op); err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		// stageOrder fails the test on any gap or duplicate.
		stageOrder(t, db, "p1")
	}
}

func TestTasksCollection_ZeroBasedAndScoped(t *testing.T) {
	db := testDB(t)
	seedStages(t, db, "p1", 1)
	stageID := "stg-p1-0"

	// Two top-level tasks and one subtask of the first.
	for i, id := range []string{"tsk-a", "tsk-b"} {
		pos := i
		tk := models.Task{ID: id, ProjectID: "p1", StageID: stageID, Title: id, Position: &pos}
		if err := db.Create(&tk).Error; err != nil {
			t.Fatalf("seed task %s: %v", id, err)
		}
	}
	parent := "tsk-a"
	sub := models.Task{ID: "tsk-sub", ProjectID: "p1", StageID: stageID, Title: "sub", ParentTaskID: &parent}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("seed subtask: %v", err)
	}

	count, err := Tasks.Count(db, stageID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (subtask excluded)", count)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		pos, err := Tasks.InsertAt(tx, stageID, 0)
		if err != nil {
			return err
		}
		if pos != 0 {
			t.Errorf("assigned position = %d, want 0", pos)
		}
		return tx.Create(&models.Task{ID: "tsk-c", ProjectID: "p1", StageID: stageID, Title: "c", Position: &pos}).Error
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	var tasks []models.Task
	if err := db.Where("stage_id = ? AND parent_task_id IS NULL", stageID).
		Order("position ASC").Find(&tasks).Error; err != nil {
		t.Fatalf("read tasks: %v", err)
	}
	want := []string{"tsk-c", "tsk-a", "tsk-b"}
	for i, tk := range tasks {
		if *tk.Position != i {
			t.Errorf("task %s position = %d, want %d", tk.ID, *tk.Position, i)
		}
		if tk.ID != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, tk.ID, want[i])
		}
	}

	// The subtask's NULL position survived untouched.
	var subAfter models.Task
	if err := db.Where("id = ?", "tsk-sub").First(&subAfter).Error; err != nil {
		t.Fatalf("read subtask: %v", err)
	}
	if subAfter.Position != nil {
		t.Errorf("subtask position = %v, want nil", *subAfter.Position)
	}
}

func TestLockParent_NotFound(t *testing.T) {
	db := testDB(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		return LockParent(tx, "projects", "prj-missing")
	})
	if err == nil {
		t.Fatal("expected error for missing parent")
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
