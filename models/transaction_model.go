package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TransactionTypePayment    = "payment"
	TransactionTypeCommission = "commission"
)

// Transaction is an append-only ledger entry. Rows are never updated or
// deleted once written.
type Transaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	WalletID    uuid.UUID `gorm:"type:uuid;not null;index" json:"wallet_id"`
	PaymentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"payment_id"`
	Amount      float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Type        string    `gorm:"size:20;not null" json:"type"`
	Description string    `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
