package models

import "time"

// Invitation delivery states.
const (
	DeliveryQueued  = "queued"
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliveryDropped = "dropped"
)

// InvitationDelivery records the outcome of one invitation email. The temporary
// password is never stored.
type InvitationDelivery struct {
	ID          string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	Recipient   string    `gorm:"column:recipient;index" json:"recipient"`
	Role        string    `gorm:"column:role" json:"role"`
	AccountID   uint      `gorm:"column:account_id" json:"account_id"`
	Status      string    `gorm:"column:status;size:20;index" json:"status"`
	Attempts    int       `gorm:"column:attempts" json:"attempts"`
	FromAddress string    `gorm:"column:from_address" json:"from_address"`
	Transport   string    `gorm:"column:transport;size:20" json:"transport"`
	LastError   *string   `gorm:"column:last_error;type:text" json:"last_error,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (InvitationDelivery) TableName() string {
	return "invitation_deliveries"
}
