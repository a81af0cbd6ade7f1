package models

import "time"

// Project represents the projects table
type Project struct {
	ProjectID    uint      `gorm:"primaryKey;column:project_id" json:"project_id"`
	UserID       *uint     `gorm:"column:user_id;index" json:"user"`
	ProjectImage *string   `gorm:"column:project_image" json:"project_image"`
	ProjectName  string    `gorm:"column:project_name" json:"project_name"`
	Description  *string   `gorm:"column:description;type:text" json:"description"`
	RegionID     *uint     `gorm:"column:region_id" json:"region"`
	ProvinceID   *uint     `gorm:"column:province_id" json:"province"`
	CityID       *uint     `gorm:"column:city_id" json:"city"`
	BarangayID   *uint     `gorm:"column:barangay_id" json:"barangay"`
	Street       *string   `gorm:"column:street" json:"street"`
	ProjectType  *string   `gorm:"column:project_type" json:"project_type"`
	StartDate    *Date     `gorm:"column:start_date" json:"start_date"`
	EndDate      *Date     `gorm:"column:end_date" json:"end_date"`
	DurationDays *int      `gorm:"column:duration_days" json:"duration_days"`
	ClientID     *uint     `gorm:"column:client_id;index" json:"client"`
	SupervisorID *uint     `gorm:"column:supervisor_id;index" json:"supervisor"`
	Budget       *float64  `gorm:"column:budget;type:decimal(14,2)" json:"budget"`
	Status       string    `gorm:"column:status;default:Planning" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at;index" json:"created_at"`

	Region   *Region   `gorm:"foreignKey:RegionID;references:ID" json:"-"`
	Province *Province `gorm:"foreignKey:ProvinceID;references:ID" json:"-"`
	City     *City     `gorm:"foreignKey:CityID;references:ID" json:"-"`
	Barangay *Barangay `gorm:"foreignKey:BarangayID;references:ID" json:"-"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// Phase represents the phases table
type Phase struct {
	PhaseID      uint      `gorm:"primaryKey;column:phase_id" json:"phase_id"`
	ProjectID    uint      `gorm:"column:project_id;index" json:"project"`
	PhaseName    string    `gorm:"column:phase_name" json:"phase_name"`
	Description  *string   `gorm:"column:description;type:text" json:"description"`
	DaysDuration *int      `gorm:"column:days_duration" json:"days_duration"`
	Status       string    `gorm:"column:status;default:not_started" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`

	Subtasks []Subtask `gorm:"foreignKey:PhaseID;references:PhaseID" json:"subtasks"`
}

// TableName overrides the table name for Phase
func (Phase) TableName() string {
	return "phases"
}

// Subtask statuses
const (
	SubtaskPending    = "pending"
	SubtaskInProgress = "in_progress"
	SubtaskCompleted  = "completed"
)

// ValidSubtaskStatus reports whether s is one of the known subtask statuses.
func ValidSubtaskStatus(s string) bool {
	switch s {
	case SubtaskPending, SubtaskInProgress, SubtaskCompleted:
		return true
	}
	return false
}

// Subtask represents the subtasks table
type Subtask struct {
	SubtaskID     uint      `gorm:"primaryKey;column:subtask_id" json:"subtask_id"`
	PhaseID       uint      `gorm:"column:phase_id;index" json:"phase"`
	Title         string    `gorm:"column:title" json:"title"`
	Status        string    `gorm:"column:status;size:20;default:pending;index" json:"status"`
	ProgressNotes *string   `gorm:"column:progress_notes;type:text" json:"progress_notes"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;index" json:"updated_at"`

	Assignments []SubtaskFieldWorker `gorm:"foreignKey:SubtaskID;references:SubtaskID" json:"-"`
}

// TableName overrides the table name for Subtask
func (Subtask) TableName() string {
	return "subtasks"
}

// SubtaskFieldWorker assigns a field worker to a subtask.
type SubtaskFieldWorker struct {
	AssignmentID  uint      `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	SubtaskID     uint      `gorm:"column:subtask_id;uniqueIndex:idx_subtask_field_worker" json:"subtask"`
	FieldWorkerID uint      `gorm:"column:field_worker_id;uniqueIndex:idx_subtask_field_worker" json:"field_worker"`
	AssignedAt    time.Time `gorm:"column:assigned_at;autoCreateTime" json:"assigned_at"`

	FieldWorker FieldWorker `gorm:"foreignKey:FieldWorkerID;references:FieldWorkerID" json:"-"`
}

// TableName overrides the table name for SubtaskFieldWorker
func (SubtaskFieldWorker) TableName() string {
	return "subtask_field_workers"
}
