package services

import (
	"context"
	"fmt"

	"structura-api/config"
	"structura-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentService links field workers to subtasks.
type AssignmentService struct {
	db *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	if db == nil {
		db = config.DB
	}
	return &AssignmentService{db: db}
}

type assignmentKey struct {
	subtaskID     uint
	fieldWorkerID uint
}

// duplicateAssignment returns the first pair that appears twice in the batch.
func duplicateAssignment(items []models.SubtaskFieldWorker) (assignmentKey, bool) {
	seen := make(map[assignmentKey]struct{}, len(items))
	for _, it := range items {
		k := assignmentKey{it.SubtaskID, it.FieldWorkerID}
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	return assignmentKey{}, false
}

// Create inserts every assignment or none. Unknown subtasks or workers are validation errors;
// a pair that already exists, or repeats within the batch, is a conflict.
func (s *AssignmentService) Create(ctx context.Context, items []models.SubtaskFieldWorker) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no assignments given", ErrValidation)
	}
	for _, it := range items {
		if it.SubtaskID == 0 || it.FieldWorkerID == 0 {
			return fmt.Errorf("%w: subtask and field_worker are required", ErrValidation)
		}
	}
	if k, dup := duplicateAssignment(items); dup {
		return fmt.Errorf("%w: field worker %d listed twice for subtask %d", ErrConflict, k.fieldWorkerID, k.subtaskID)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			if err := requireRow(tx, &models.Subtask{}, "subtask_id", it.SubtaskID, "subtask"); err != nil {
				return err
			}
			if err := requireRow(tx, &models.FieldWorker{}, "fieldworker_id", it.FieldWorkerID, "field worker"); err != nil {
				return err
			}
			var n int64
			if err := tx.Model(&models.SubtaskFieldWorker{}).
				Where("subtask_id = ? AND field_worker_id = ?", it.SubtaskID, it.FieldWorkerID).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: field worker %d is already assigned to subtask %d", ErrConflict, it.FieldWorkerID, it.SubtaskID)
			}
		}
		return tx.Omit(clause.Associations).Create(&items).Error
	})
}

// Delete removes one assignment.
func (s *AssignmentService) Delete(ctx context.Context, assignmentID uint) error {
	res := s.db.WithContext(ctx).Delete(&models.SubtaskFieldWorker{}, "assignment_id = ?", assignmentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBySubtask removes all assignments of a subtask and returns how many were deleted.
func (s *AssignmentService) DeleteBySubtask(ctx context.Context, subtaskID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("subtask_id = ?", subtaskID).Delete(&models.SubtaskFieldWorker{})
	return res.RowsAffected, res.Error
}
