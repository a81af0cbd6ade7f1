package models

import (
	"time"
)

// Account kinds returned by login and embedded in access tokens.
const (
	AccountTypeUser       = "user"
	AccountTypeSupervisor = "Supervisor"
	AccountTypeClient     = "Client"
)

const (
	RoleProjectManager = "ProjectManager"
	RoleSupervisor     = "Supervisor"
	RoleClient         = "Client"

	StatusActive = "Active"
)

// User is a project manager account.
type User struct {
	UserID       uint      `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email        string    `gorm:"column:email;size:191;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	FirstName    string    `gorm:"column:first_name" json:"first_name"`
	MiddleName   *string   `gorm:"column:middle_name" json:"middle_name"`
	LastName     string    `gorm:"column:last_name" json:"last_name"`
	Birthdate    *Date     `gorm:"column:birthdate" json:"birthdate"`
	Phone        *string   `gorm:"column:phone" json:"phone"`
	RegionID     *uint     `gorm:"column:region_id" json:"region"`
	ProvinceID   *uint     `gorm:"column:province_id" json:"province"`
	CityID       *uint     `gorm:"column:city_id" json:"city"`
	BarangayID   *uint     `gorm:"column:barangay_id" json:"barangay"`
	Street       *string   `gorm:"column:street" json:"street"`
	Role         string    `gorm:"column:role;default:ProjectManager" json:"role"`
	Status       string    `gorm:"column:status;default:Active" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// Supervisor is a site supervisor account, linked to at most one project.
type Supervisor struct {
	SupervisorID uint      `gorm:"primaryKey;column:supervisor_id" json:"supervisor_id"`
	ProjectID    *uint     `gorm:"column:project_id;index" json:"project_id"`
	FirstName    string    `gorm:"column:first_name" json:"first_name"`
	MiddleName   *string   `gorm:"column:middle_name" json:"middle_name"`
	LastName     string    `gorm:"column:last_name" json:"last_name"`
	Email        string    `gorm:"column:email;size:191;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	PhoneNumber  *string   `gorm:"column:phone_number" json:"phone_number"`
	Birthdate    *Date     `gorm:"column:birthdate" json:"birthdate"`
	Role         string    `gorm:"column:role;default:Supervisor" json:"role"`
	SSSID        *string   `gorm:"column:sss_id" json:"sss_id"`
	PhilhealthID *string   `gorm:"column:philhealth_id" json:"philhealth_id"`
	PagibigID    *string   `gorm:"column:pagibig_id" json:"pagibig_id"`
	Payrate      *float64  `gorm:"column:payrate;type:decimal(10,2)" json:"payrate"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// Client is a project owner-side account, linked to at most one project.
type Client struct {
	ClientID     uint      `gorm:"primaryKey;column:client_id" json:"client_id"`
	UserID       *uint     `gorm:"column:user_id;index" json:"user_id"`
	ProjectID    *uint     `gorm:"column:project_id;index" json:"project_id"`
	FirstName    string    `gorm:"column:first_name" json:"first_name"`
	MiddleName   *string   `gorm:"column:middle_name" json:"middle_name"`
	LastName     string    `gorm:"column:last_name" json:"last_name"`
	Email        string    `gorm:"column:email;size:191;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	PhoneNumber  *string   `gorm:"column:phone_number" json:"phone_number"`
	Birthdate    *Date     `gorm:"column:birthdate" json:"birthdate"`
	Status       string    `gorm:"column:status;default:Active" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Supervisor) TableName() string {
	return "supervisors"
}

func (Client) TableName() string {
	return "clients"
}
