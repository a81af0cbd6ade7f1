package models

import "time"

// FieldWorker is a laborer attached to a project. Role is a free-form trade tag (Mason, Helper, ...).
type FieldWorker struct {
	FieldWorkerID uint      `gorm:"primaryKey;column:fieldworker_id" json:"fieldworker_id"`
	UserID        *uint     `gorm:"column:user_id;index" json:"user_id"`
	ProjectID     *uint     `gorm:"column:project_id;index" json:"project_id"`
	FirstName     string    `gorm:"column:first_name" json:"first_name"`
	MiddleName    *string   `gorm:"column:middle_name" json:"middle_name"`
	LastName      string    `gorm:"column:last_name" json:"last_name"`
	PhoneNumber   *string   `gorm:"column:phone_number" json:"phone_number"`
	Birthdate     *Date     `gorm:"column:birthdate" json:"birthdate"`
	Role          string    `gorm:"column:role;index" json:"role"`
	SSSID         *string   `gorm:"column:sss_id" json:"sss_id"`
	PhilhealthID  *string   `gorm:"column:philhealth_id" json:"philhealth_id"`
	PagibigID     *string   `gorm:"column:pagibig_id" json:"pagibig_id"`
	Payrate       *float64  `gorm:"column:payrate;type:decimal(10,2)" json:"payrate"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (FieldWorker) TableName() string {
	return "field_workers"
}

// FullName joins first and last name.
func (w FieldWorker) FullName() string {
	switch {
	case w.FirstName == "":
		return w.LastName
	case w.LastName == "":
		return w.FirstName
	}
	return w.FirstName + " " + w.LastName
}
