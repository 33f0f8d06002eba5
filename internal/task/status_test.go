package task

import (
	"errors"
	"testing"

	"github.com/corkboard/corkboard/internal/models"
)

func TestMoveStatus_RepacksBothStages(t *testing.T) {
	db, stages := boardDB(t)
	pending, progress := stages[0], stages[1]

	mustAdd(t, db, CreateOpts{ProjectID: "p1", StageID: pending.ID, Title: "a"})
	b := mustAdd(t, db, CreateOpts{ProjectID: "p1", StageID: pending.ID, Title: "b"})
	mustAdd(t, db, CreateOpts{ProjectID: "p1", StageID: pending.ID, Title: "c"})
	mustAdd(t, db, CreateOpts{ProjectID: "p1", StageID: progress.ID, Title: "x"})

	if err := MoveStatus(db, b.ID, progress.ID); err != nil {
		t.Fatalf("move status: %v", err)
	}

	// Source compacts, destination appends; both dense.
	src := stageTitles(t, db, pending.ID)
	if len(src) != 2 || src[0] != "a" || src[1] != "c" {
		t.Errorf("source = %v, want [a c]", src)
	}
	dst := stageTitles(t, db, progress.ID)
	if len(dst) != 2 || dst[0] != "x" || dst[1] != "b" {
		t.Errorf("destination = %v, want [x b]", dst)
	}

	after, _ := Get(db, b.ID)
	if after.StageID != progress.ID {
		t.Errorf("stage = %s, want %s", after.StageID, progress.ID)
	}
}

func TestMoveStatus_SameStageIsNoop(t *testing.T) {
	db, stages := boardDB(t)
	pending := stages[0]
	a := mustAdd(t, db, CreateOpts{ProjectID: "p1", StageID: pending.ID, Title: "a"})
	mustAdd(t, db, CreateOpts{ProjectID: "p1", StageID: pending.ID, Title: "b"})

	if err := MoveStatus(db, a.ID, pending.ID); err != nil {
		t.Fatalf("same-stage move: %v", err)
	}
	titles := stageTitles(t, db, pending.ID)
	if titles[0] != "a" || titles[1] != "b" {
		t.Errorf("order changed: %v", titles)
	}
}

func TestMoveStatus_SubtaskOnlyChangesStage(t *testing.T) {
	db, stages := boardDB(t)
	pending, completed := stages[0], stages[2]
	parent := mustAdd(t, db, CreateOpts{ProjectID: "p1", StageID: pending.ID, Title: "parent"})
	sub := mustAdd(t, db, CreateOpts{Title: "sub", ParentTaskID: parent.ID})

	// Pointing a subtask at the completed stage marks it done without
	// touching any ordering.
	if err := MoveStatus(db, sub.ID, completed.ID); err != nil {
		t.Fatalf("move subtask: %v", err)
	}
	after, _ := Get(db, sub.ID)
	if after.StageID != completed.ID {
		t.Errorf("subtask stage = %s, want %s", after.StageID, completed.ID)
	}
	if after.Position != nil {
		t.Errorf("subtask gained position %d", *after.Position)
	}
	if got := stageTitles(t, db, completed.ID); len(got) != 0 {
		t.Errorf("completed stage lists %v, want no top-level tasks", got)
	}
}

func TestMoveStatus_CrossProjectFails(t *testing.T) {
	db, _ := boardDB(t)
	if err := db.Create(&models.Project{ID: "p2", Name: "p2"}).Error; err != nil {
		t.Fatalf("seed p2: %v", err)
	}
	other := models.Stage{ID: "stg-other", ProjectID: "p2", Name: "Other", Position: 1}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed stage: %v", err)
	}
	tk := mustAdd(t, db, CreateOpts{ProjectID: "p1", Title: "a"})

	err := MoveStatus(db, tk.ID, other.ID)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestMoveNext_AdvancesByStageOrder(t *testing.T) {
	db, stages := boardDB(t)
	tk := mustAdd(t, db, CreateOpts{ProjectID: "p1", Title: "a"})

	if err := MoveNext(db, tk.ID); err != nil {
		t.Fatalf("first advance: %v", err)
	}
	after, _ := Get(db, tk.ID)
	if after.StageID != stages[1].ID {
		t.Errorf("stage = %s, want In Progress %s", after.StageID, stages[1].ID)
	}

	if err := MoveNext(db, tk.ID); err != nil {
		t.Fatalf("second advance: %v", err)
	}
	after, _ = Get(db, tk.ID)
	if after.StageID != stages[2].ID {
		t.Errorf("stage = %s, want Completed %s", after.StageID, stages[2].ID)
	}

	// Already in the last stage.
	err := MoveNext(db, tk.ID)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
