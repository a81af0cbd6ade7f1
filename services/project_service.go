package services

import (
	"context"
	"errors"
	"fmt"

	"structura-api/config"
	"structura-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Holder kinds for project back-references.
const (
	HolderSupervisor = "supervisor"
	HolderClient     = "client"
)

// BackReferenceChange is one staged write to a supervisor or client project reference.
// ProjectID nil clears the reference.
type BackReferenceChange struct {
	Kind      string
	HolderID  uint
	ProjectID *uint
}

// PlanBackReferences stages the writes needed to keep supervisor and client references symmetric
// with a project. The two kinds are independent: only a changed reference produces writes.
func PlanBackReferences(projectID uint, oldSupervisor, newSupervisor, oldClient, newClient *uint) []BackReferenceChange {
	var changes []BackReferenceChange
	changes = append(changes, planHolder(HolderSupervisor, projectID, oldSupervisor, newSupervisor)...)
	changes = append(changes, planHolder(HolderClient, projectID, oldClient, newClient)...)
	return changes
}

func planHolder(kind string, projectID uint, oldID, newID *uint) []BackReferenceChange {
	if sameRef(oldID, newID) {
		return nil
	}
	var changes []BackReferenceChange
	if oldID != nil {
		changes = append(changes, BackReferenceChange{Kind: kind, HolderID: *oldID})
	}
	if newID != nil {
		pid := projectID
		changes = append(changes, BackReferenceChange{Kind: kind, HolderID: *newID, ProjectID: &pid})
	}
	return changes
}

func sameRef(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// backReferenceWriter applies staged changes. The gorm implementation is bound to a transaction.
type backReferenceWriter interface {
	SetProject(kind string, holderID uint, projectID *uint) error
	// DetachFromOtherProjects clears the holder from any project other than projectID.
	DetachFromOtherProjects(kind string, holderID, projectID uint) error
}

// applyBackReferences writes every staged change, stopping at the first error.
func applyBackReferences(w backReferenceWriter, changes []BackReferenceChange) error {
	for _, ch := range changes {
		if ch.ProjectID != nil {
			if err := w.DetachFromOtherProjects(ch.Kind, ch.HolderID, *ch.ProjectID); err != nil {
				return fmt.Errorf("detach %s %d: %w", ch.Kind, ch.HolderID, err)
			}
		}
		if err := w.SetProject(ch.Kind, ch.HolderID, ch.ProjectID); err != nil {
			return fmt.Errorf("update %s %d: %w", ch.Kind, ch.HolderID, err)
		}
	}
	return nil
}

type gormBackReferenceWriter struct {
	tx *gorm.DB
}

func holderTable(kind string) (model interface{}, column, projectColumn string) {
	if kind == HolderClient {
		return &models.Client{}, "client_id", "client_id"
	}
	return &models.Supervisor{}, "supervisor_id", "supervisor_id"
}

func (w gormBackReferenceWriter) SetProject(kind string, holderID uint, projectID *uint) error {
	model, column, _ := holderTable(kind)
	return w.tx.Model(model).
		Where(column+" = ?", holderID).
		Update("project_id", projectID).Error
}

func (w gormBackReferenceWriter) DetachFromOtherProjects(kind string, holderID, projectID uint) error {
	_, _, projectColumn := holderTable(kind)
	return w.tx.Model(&models.Project{}).
		Where(projectColumn+" = ? AND project_id <> ?", holderID, projectID).
		Update(projectColumn, nil).Error
}

// ProjectService owns project writes that must keep supervisor and client references in sync.
type ProjectService struct {
	db *gorm.DB
}

// NewProjectService instantiates the service.
func NewProjectService(db *gorm.DB) *ProjectService {
	if db == nil {
		db = config.DB
	}
	return &ProjectService{db: db}
}

// Create inserts the project and links its supervisor and client in one transaction.
func (s *ProjectService) Create(ctx context.Context, project *models.Project) error {
	if project.UserID == nil || *project.UserID == 0 {
		return fmt.Errorf("%w: user_id is required to create a project", ErrValidation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureHoldersExist(tx, project.SupervisorID, project.ClientID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return err
		}
		changes := PlanBackReferences(project.ProjectID, nil, project.SupervisorID, nil, project.ClientID)
		return applyBackReferences(gormBackReferenceWriter{tx: tx}, changes)
	})
}

// Update saves the project and moves supervisor/client references atomically.
// The previous holders are read inside the transaction.
func (s *ProjectService) Update(ctx context.Context, project *models.Project) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, "project_id = ?", project.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := ensureHoldersExist(tx, project.SupervisorID, project.ClientID); err != nil {
			return err
		}

		project.CreatedAt = current.CreatedAt
		if project.UserID == nil {
			project.UserID = current.UserID
		}
		if err := tx.Omit(clause.Associations).Save(project).Error; err != nil {
			return err
		}

		changes := PlanBackReferences(project.ProjectID,
			current.SupervisorID, project.SupervisorID,
			current.ClientID, project.ClientID)
		return applyBackReferences(gormBackReferenceWriter{tx: tx}, changes)
	})
}

// AssignHolder points a project at a supervisor or client (or clears it with nil holderID)
// and keeps the back-references symmetric.
func (s *ProjectService) AssignHolder(ctx context.Context, tx *gorm.DB, kind string, projectID uint, holderID *uint) error {
	if tx == nil {
		tx = s.db.WithContext(ctx)
	}
	var project models.Project
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&project, "project_id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: project %d does not exist", ErrValidation, projectID)
		}
		return err
	}

	var changes []BackReferenceChange
	_, _, projectColumn := holderTable(kind)
	if kind == HolderClient {
		changes = PlanBackReferences(projectID, nil, nil, project.ClientID, holderID)
	} else {
		changes = PlanBackReferences(projectID, project.SupervisorID, holderID, nil, nil)
	}
	if len(changes) == 0 {
		return nil
	}

	if err := tx.Model(&models.Project{}).
		Where("project_id = ?", projectID).
		Update(projectColumn, holderID).Error; err != nil {
		return err
	}
	return applyBackReferences(gormBackReferenceWriter{tx: tx}, changes)
}

// Delete removes a project with its phases, subtasks, assignments and attendance,
// and clears every reference to it.
func (s *ProjectService) Delete(ctx context.Context, projectID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, "project_id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		phaseIDs := tx.Model(&models.Phase{}).Select("phase_id").Where("project_id = ?", projectID)
		subtaskIDs := tx.Model(&models.Subtask{}).Select("subtask_id").Where("phase_id IN (?)", phaseIDs)

		steps := []func() error{
			func() error {
				return tx.Model(&models.Supervisor{}).Where("project_id = ?", projectID).Update("project_id", nil).Error
			},
			func() error {
				return tx.Model(&models.Client{}).Where("project_id = ?", projectID).Update("project_id", nil).Error
			},
			func() error {
				return tx.Model(&models.FieldWorker{}).Where("project_id = ?", projectID).Update("project_id", nil).Error
			},
			func() error {
				return tx.Where("project_id = ?", projectID).Delete(&models.Attendance{}).Error
			},
			func() error {
				return tx.Where("subtask_id IN (?)", subtaskIDs).Delete(&models.SubtaskFieldWorker{}).Error
			},
			func() error {
				return tx.Where("phase_id IN (?)", phaseIDs).Delete(&models.Subtask{}).Error
			},
			func() error {
				return tx.Where("project_id = ?", projectID).Delete(&models.Phase{}).Error
			},
			func() error {
				return tx.Delete(&models.Project{}, "project_id = ?", projectID).Error
			},
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureHoldersExist(tx *gorm.DB, supervisorID, clientID *uint) error {
	if supervisorID != nil {
		var n int64
		if err := tx.Model(&models.Supervisor{}).Where("supervisor_id = ?", *supervisorID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: supervisor %d does not exist", ErrValidation, *supervisorID)
		}
	}
	if clientID != nil {
		var n int64
		if err := tx.Model(&models.Client{}).Where("client_id = ?", *clientID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: client %d does not exist", ErrValidation, *clientID)
		}
	}
	return nil
}
