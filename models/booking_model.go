package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	ProviderID uuid.UUID `gorm:"type:uuid;not null;index" json:"provider_id"`
	ServiceID  uuid.UUID `gorm:"type:uuid;not null" json:"service_id"`
	StartTime  time.Time `gorm:"not null" json:"start_time"`
	EndTime    time.Time `gorm:"not null" json:"end_time"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	Notes      *string   `gorm:"type:text" json:"notes,omitempty"`
	Status     string    `gorm:"size:20;not null;default:'pending'" json:"status"`

	Client   User    `gorm:"foreignkey:ClientID" json:"client,omitempty"`
	Provider User    `gorm:"foreignkey:ProviderID" json:"provider,omitempty"`
	Service  Service `gorm:"foreignkey:ServiceID" json:"service,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ValidBookingStatus reports whether s is one of the known booking statuses.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}
