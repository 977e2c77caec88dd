package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	// The partial unique index is what actually serializes racing payment
	// attempts: at most one non-failed payment can exist per booking, so the
	// loser of a race fails its insert instead of settling twice.
	BookingID     uuid.UUID `gorm:"type:uuid;not null;index;index:idx_payments_live_booking,unique,where:status <> 'failed'" json:"booking_id"`
	Amount        float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency      string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Method        string    `gorm:"size:50;not null" json:"method"`
	ProviderTxnID *string   `gorm:"size:255" json:"provider_txn_id,omitempty"`
	Status        string    `gorm:"size:20;not null;default:'pending'" json:"status"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"booking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ValidPaymentStatus reports whether s is one of the known payment statuses.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}
