package models

import "time"

// Attendance statuses derived from the recorded punches.
const (
	AttendanceAbsent    = "absent"
	AttendanceCheckedIn = "checked_in"
	AttendanceOnBreak   = "on_break"
	AttendancePresent   = "present"
)

// Attendance is one field worker's day on one project.
type Attendance struct {
	AttendanceID   uint       `gorm:"primaryKey;column:attendance_id" json:"attendance_id"`
	FieldWorkerID  uint       `gorm:"column:field_worker_id;uniqueIndex:idx_attendance_day" json:"field_worker"`
	ProjectID      uint       `gorm:"column:project_id;uniqueIndex:idx_attendance_day" json:"project"`
	AttendanceDate Date       `gorm:"column:attendance_date;uniqueIndex:idx_attendance_day" json:"attendance_date"`
	CheckInTime    *time.Time `gorm:"column:check_in_time" json:"check_in_time"`
	CheckOutTime   *time.Time `gorm:"column:check_out_time" json:"check_out_time"`
	BreakOutTime   *time.Time `gorm:"column:break_out_time" json:"break_out_time"`
	BreakInTime    *time.Time `gorm:"column:break_in_time" json:"break_in_time"`
	Status         string     `gorm:"column:status;size:20" json:"status"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`

	FieldWorker FieldWorker `gorm:"foreignKey:FieldWorkerID;references:FieldWorkerID" json:"-"`
}

func (Attendance) TableName() string {
	return "attendance"
}

// DeriveStatus computes the day status from the punches. Break out starts a break, break in ends it.
func (a *Attendance) DeriveStatus() string {
	switch {
	case a.CheckInTime == nil:
		return AttendanceAbsent
	case a.CheckOutTime != nil:
		return AttendancePresent
	case a.BreakOutTime != nil && a.BreakInTime == nil:
		return AttendanceOnBreak
	default:
		return AttendanceCheckedIn
	}
}
