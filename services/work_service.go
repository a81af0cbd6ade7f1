package services

import (
	"context"
	"fmt"
	"strings"

	"structura-api/config"
	"structura-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkService manages the phase/subtask breakdown of projects.
type WorkService struct {
	db *gorm.DB
}

func NewWorkService(db *gorm.DB) *WorkService {
	if db == nil {
		db = config.DB
	}
	return &WorkService{db: db}
}

func normalizeSubtasks(subtasks []models.Subtask) error {
	for i := range subtasks {
		subtasks[i].Title = strings.TrimSpace(subtasks[i].Title)
		if subtasks[i].Title == "" {
			return fmt.Errorf("%w: subtask title is required", ErrValidation)
		}
		if subtasks[i].Status == "" {
			subtasks[i].Status = models.SubtaskPending
		}
		if !models.ValidSubtaskStatus(subtasks[i].Status) {
			return fmt.Errorf("%w: invalid subtask status %q", ErrValidation, subtasks[i].Status)
		}
	}
	return nil
}

func requireRow(tx *gorm.DB, model interface{}, column string, id uint, label string) error {
	var n int64
	if err := tx.Model(model).Where(column+" = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d does not exist", ErrValidation, label, id)
	}
	return nil
}

// CreatePhase inserts a phase together with its nested subtasks.
func (s *WorkService) CreatePhase(ctx context.Context, phase *models.Phase) error {
	phase.PhaseName = strings.TrimSpace(phase.PhaseName)
	if phase.PhaseName == "" {
		return fmt.Errorf("%w: phase_name is required", ErrValidation)
	}
	if err := normalizeSubtasks(phase.Subtasks); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Project{}, "project_id", phase.ProjectID, "project"); err != nil {
			return err
		}
		return tx.Create(phase).Error
	})
}

// UpdatePhase saves the phase. When replaceSubtasks is set, the existing subtasks and their
// assignments are removed and phase.Subtasks are inserted in their place.
func (s *WorkService) UpdatePhase(ctx context.Context, phase *models.Phase, replaceSubtasks bool) error {
	phase.PhaseName = strings.TrimSpace(phase.PhaseName)
	if phase.PhaseName == "" {
		return fmt.Errorf("%w: phase_name is required", ErrValidation)
	}
	if replaceSubtasks {
		if err := normalizeSubtasks(phase.Subtasks); err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Phase
		if err := tx.First(&current, "phase_id = ?", phase.PhaseID).Error; err != nil {
			return notFound(err)
		}
		if err := requireRow(tx, &models.Project{}, "project_id", phase.ProjectID, "project"); err != nil {
			return err
		}
		phase.CreatedAt = current.CreatedAt
		if err := tx.Omit(clause.Associations).Save(phase).Error; err != nil {
			return err
		}
		if !replaceSubtasks {
			return nil
		}
		if err := deleteSubtasksOf(tx, "phase_id = ?", phase.PhaseID); err != nil {
			return err
		}
		if len(phase.Subtasks) == 0 {
			return nil
		}
		for i := range phase.Subtasks {
			phase.Subtasks[i].SubtaskID = 0
			phase.Subtasks[i].PhaseID = phase.PhaseID
		}
		return tx.Create(&phase.Subtasks).Error
	})
}

// DeletePhase removes a phase with its subtasks and their assignments.
func (s *WorkService) DeletePhase(ctx context.Context, phaseID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Phase{}, "phase_id = ?", phaseID).Error; err != nil {
			return notFound(err)
		}
		if err := deleteSubtasksOf(tx, "phase_id = ?", phaseID); err != nil {
			return err
		}
		return tx.Delete(&models.Phase{}, "phase_id = ?", phaseID).Error
	})
}

func deleteSubtasksOf(tx *gorm.DB, where string, args ...interface{}) error {
	ids := tx.Model(&models.Subtask{}).Select("subtask_id").Where(where, args...)
	if err := tx.Where("subtask_id IN (?)", ids).Delete(&models.SubtaskFieldWorker{}).Error; err != nil {
		return err
	}
	return tx.Where(where, args...).Delete(&models.Subtask{}).Error
}

// CreateSubtask adds one subtask to an existing phase.
func (s *WorkService) CreateSubtask(ctx context.Context, subtask *models.Subtask) error {
	batch := []models.Subtask{*subtask}
	if err := normalizeSubtasks(batch); err != nil {
		return err
	}
	*subtask = batch[0]
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Phase{}, "phase_id", subtask.PhaseID, "phase"); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(subtask).Error
	})
}

// UpdateSubtask saves the subtask; updated_at is refreshed by gorm.
func (s *WorkService) UpdateSubtask(ctx context.Context, subtask *models.Subtask) error {
	batch := []models.Subtask{*subtask}
	if err := normalizeSubtasks(batch); err != nil {
		return err
	}
	*subtask = batch[0]
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Subtask
		if err := tx.First(&current, "subtask_id = ?", subtask.SubtaskID).Error; err != nil {
			return notFound(err)
		}
		if err := requireRow(tx, &models.Phase{}, "phase_id", subtask.PhaseID, "phase"); err != nil {
			return err
		}
		subtask.CreatedAt = current.CreatedAt
		return tx.Omit(clause.Associations).Save(subtask).Error
	})
}

// DeleteSubtask removes a subtask and its assignments.
func (s *WorkService) DeleteSubtask(ctx context.Context, subtaskID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Subtask{}, "subtask_id = ?", subtaskID).Error; err != nil {
			return notFound(err)
		}
		return deleteSubtasksOf(tx, "subtask_id = ?", subtaskID)
	})
}

// AssignedWorkers groups the workers assigned to each subtask id.
func (s *WorkService) AssignedWorkers(ctx context.Context, subtaskIDs []uint) (map[uint][]DashboardAssignedWorker, error) {
	rows, err := NewGormDashboardRepository(s.db).AssignedWorkers(ctx, subtaskIDs)
	if err != nil {
		return nil, err
	}
	return groupAssignedWorkers(rows), nil
}

func groupAssignedWorkers(rows []AssignedWorkerRow) map[uint][]DashboardAssignedWorker {
	out := make(map[uint][]DashboardAssignedWorker, len(rows))
	for _, r := range rows {
		out[r.SubtaskID] = append(out[r.SubtaskID], DashboardAssignedWorker{
			AssignmentID:  r.AssignmentID,
			FieldWorkerID: r.FieldWorkerID,
			FirstName:     r.FirstName,
			LastName:      r.LastName,
			Role:          r.Role,
		})
	}
	return out
}
