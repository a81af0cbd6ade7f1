package services

import (
	"context"
	"fmt"

	"structura-api/config"
	"structura-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendanceService records daily punches. One row per worker, project and day.
type AttendanceService struct {
	db *gorm.DB
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	if db == nil {
		db = config.DB
	}
	return &AttendanceService{db: db}
}

func validatePunches(a *models.Attendance) error {
	if a.AttendanceDate.IsZero() {
		return fmt.Errorf("%w: attendance_date is required", ErrValidation)
	}
	if a.CheckInTime != nil && a.CheckOutTime != nil && a.CheckOutTime.Before(*a.CheckInTime) {
		return fmt.Errorf("%w: check_out_time is before check_in_time", ErrValidation)
	}
	if a.BreakOutTime != nil && a.BreakInTime != nil && a.BreakInTime.Before(*a.BreakOutTime) {
		return fmt.Errorf("%w: break_in_time is before break_out_time", ErrValidation)
	}
	return nil
}

func (s *AttendanceService) checkDay(tx *gorm.DB, a *models.Attendance) error {
	if err := requireRow(tx, &models.FieldWorker{}, "fieldworker_id", a.FieldWorkerID, "field worker"); err != nil {
		return err
	}
	if err := requireRow(tx, &models.Project{}, "project_id", a.ProjectID, "project"); err != nil {
		return err
	}
	var n int64
	if err := tx.Model(&models.Attendance{}).
		Where("field_worker_id = ? AND project_id = ? AND attendance_date = ? AND attendance_id <> ?",
			a.FieldWorkerID, a.ProjectID, a.AttendanceDate, a.AttendanceID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: attendance for field worker %d on %s already exists", ErrConflict, a.FieldWorkerID, a.AttendanceDate)
	}
	return nil
}

// Create inserts the day with its derived status.
func (s *AttendanceService) Create(ctx context.Context, a *models.Attendance) error {
	if err := validatePunches(a); err != nil {
		return err
	}
	a.Status = a.DeriveStatus()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkDay(tx, a); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(a).Error
	})
}

// Update saves the day and re-derives its status.
func (s *AttendanceService) Update(ctx context.Context, a *models.Attendance) error {
	if err := validatePunches(a); err != nil {
		return err
	}
	a.Status = a.DeriveStatus()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Attendance
		if err := tx.First(&current, "attendance_id = ?", a.AttendanceID).Error; err != nil {
			return notFound(err)
		}
		if err := s.checkDay(tx, a); err != nil {
			return err
		}
		a.CreatedAt = current.CreatedAt
		return tx.Omit(clause.Associations).Save(a).Error
	})
}

// Delete removes one attendance row.
func (s *AttendanceService) Delete(ctx context.Context, attendanceID uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Attendance{}, "attendance_id = ?", attendanceID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
