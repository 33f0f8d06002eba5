// Package position maintains dense integer orderings for records that share
// a parent key. Stages are ordered within a project, top-level tasks within
// a stage; both go through the same shift and reassign primitives.
//
// Every operation here expects to run inside a transaction opened by the
// caller, with the parent row already locked. After commit the positions of
// a parent always read back as the dense set base..base+count-1.
package position

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Collection describes one positioned table: the table name, the column
// grouping records under a parent, and the base index of the sequence.
type Collection struct {
	Table     string
	ParentCol string
	Base      int
	// Scope narrows which rows participate in ordering. Rows outside the
	// scope are invisible to counts, shifts, and reassigns.
	Scope func(tx *gorm.DB) *gorm.DB
}

// Stages orders workflow stages within a project, 1-based.
var Stages = Collection{
	Table:     "stages",
	ParentCol: "project_id",
	Base:      1,
}

// Tasks orders top-level tasks within a stage, 0-based. Subtasks carry a
// NULL position and stay outside the sequence.
var Tasks = Collection{
	Table:     "tasks",
	ParentCol: "stage_id",
	Base:      0,
	Scope: func(tx *gorm.DB) *gorm.DB {
		return tx.Where("parent_task_id IS NULL")
	},
}

// scoped returns a query over the collection's rows under one parent.
func (c Collection) scoped(tx *gorm.DB, parentID string) *gorm.DB {
	q := tx.Table(c.Table).Where(c.ParentCol+" = ?", parentID)
	if c.Scope != nil {
		q = c.Scope(q)
	}
	return q
}

// Count returns the number of positioned rows under parentID.
func (c Collection) Count(tx *gorm.DB, parentID string) (int, error) {
	var n int64
	if err := c.scoped(tx, parentID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("position: count %s under %s: %w", c.Table, parentID, err)
	}
	return int(n), nil
}

// InsertAt makes room for a new row at desired, clamped to
// [base, base+count], by shifting every row at or after the target up by
// one. It returns the position the caller must insert the new row at; the
// insert belongs to the same transaction.
func (c Collection) InsertAt(tx *gorm.DB, parentID string, desired int) (int, error) {
	count, err := c.Count(tx, parentID)
	if err != nil {
		return 0, err
	}
	target := clamp(desired, c.Base, c.Base+count)

	if err := c.scoped(tx, parentID).
		Where("position >= ?", target).
		Update("position", gorm.Expr("position + 1")).Error; err != nil {
		return 0, fmt.Errorf("position: shift %s under %s for insert: %w", c.Table, parentID, err)
	}
	return target, nil
}

// Move repositions one row, shifting only the rows between its old and new
// positions. new is clamped to [base, max]; moving a row onto itself is a
// no-op.
func (c Collection) Move(tx *gorm.DB, parentID, id string, newPos int) error {
	var row struct{ Position int }
	result := c.scoped(tx, parentID).Select("position").Where("id = ?", id).Take(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("position: %s %s under %s: %w", c.Table, id, parentID, gorm.ErrRecordNotFound)
		}
		return fmt.Errorf("position: read %s %s: %w", c.Table, id, result.Error)
	}
	old := row.Position

	count, err := c.Count(tx, parentID)
	if err != nil {
		return err
	}
	max := c.Base + count - 1
	target := clamp(newPos, c.Base, max)
	if target == old {
		return nil
	}

	var shift *gorm.DB
	if target > old {
		shift = c.scoped(tx, parentID).
			Where("position > ? AND position <= ?", old, target).
			Update("position", gorm.Expr("position - 1"))
	} else {
		shift = c.scoped(tx, parentID).
			Where("position >= ? AND position < ?", target, old).
			Update("position", gorm.Expr("position + 1"))
	}
	if shift.Error != nil {
		return fmt.Errorf("position: shift %s under %s for move: %w", c.Table, parentID, shift.Error)
	}

	if err := tx.Table(c.Table).Where("id = ?", id).
		Update("position", target).Error; err != nil {
		return fmt.Errorf("position: place %s %s at %d: %w", c.Table, id, target, err)
	}
	return nil
}

// CloseGap decrements every position after removed by one. It must run
// after the row at removed is gone, in the same transaction as the delete.
func (c Collection) CloseGap(tx *gorm.DB, parentID string, removed int) error {
	if err := c.scoped(tx, parentID).
		Where("position > ?", removed).
		Update("position", gorm.Expr("position - 1")).Error; err != nil {
		return fmt.Errorf("position: close gap in %s under %s: %w", c.Table, parentID, err)
	}
	return nil
}

// Reassign overwrites the ordering of one parent from a caller-supplied
// final id list: each listed row is adopted into parentID and given
// position base+index. Rows of the parent the list does not cover keep
// their relative order and are appended after the listed ones, so a
// partial list never produces duplicate positions.
func (c Collection) Reassign(tx *gorm.DB, parentID string, orderedIDs []string) error {
	for i, id := range orderedIDs {
		result := tx.Table(c.Table).Where("id = ?", id).
			Updates(map[string]interface{}{
				c.ParentCol: parentID,
				"position":  c.Base + i,
			})
		if result.Error != nil {
			return fmt.Errorf("position: reassign %s %s: %w", c.Table, id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("position: %s %s: %w", c.Table, id, gorm.ErrRecordNotFound)
		}
	}

	var leftover []struct{ ID string }
	q := c.scoped(tx, parentID).Select("id").Order("position ASC, id ASC")
	if len(orderedIDs) > 0 {
		q = q.Where("id NOT IN ?", orderedIDs)
	}
	if err := q.Find(&leftover).Error; err != nil {
		return fmt.Errorf("position: find uncovered %s under %s: %w", c.Table, parentID, err)
	}

	next := c.Base + len(orderedIDs)
	for _, row := range leftover {
		if err := tx.Table(c.Table).Where("id = ?", row.ID).
			Update("position", next).Error; err != nil {
			return fmt.Errorf("position: repack %s %s: %w", c.Table, row.ID, err)
		}
		next++
	}
	return nil
}

// LockParent takes a row lock on the parent record so concurrent mutations
// of one collection serialize. SQLite ignores FOR UPDATE but serializes
// writers anyway; MySQL honors it.
func LockParent(tx *gorm.DB, table, id string) error {
	var row struct{ ID string }
	result := tx.Table(table).Select("id").Where("id = ?", id).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Limit(1).Find(&row)
	if result.Error != nil {
		return fmt.Errorf("position: lock %s %s: %w", table, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("position: %s %s: %w", table, id, gorm.ErrRecordNotFound)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
