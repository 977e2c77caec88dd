package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mkarani/servicehub/database"
	"github.com/mkarani/servicehub/models"
	"github.com/mkarani/servicehub/utils"
)

type CreatePaymentInput struct {
	BookingID     uuid.UUID
	Amount        float64
	Method        string
	ProviderTxnID *string
}

type UpdatePaymentInput struct {
	Status        *string
	Method        *string
	ProviderTxnID *string
}

// CreatePayment validates a payment attempt against its booking, persists it
// in pending status and settles it synchronously. The settlement stands in
// for an asynchronous gateway callback; callers get back the fully settled
// payment or the first validation error.
func CreatePayment(clientID uuid.UUID, in CreatePaymentInput) (*models.Payment, error) {
	var booking models.Booking
	err := database.DB.Preload("Service").First(&booking, "id = ?", in.BookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("booking not found")
		}
		return nil, err
	}

	if d := CanCreatePayment(&booking, clientID); !d.Allowed {
		return nil, Forbidden(d.Reason)
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
		return nil, BadRequest("booking cannot accept payment in its current status")
	}
	if in.Amount != booking.Service.Price {
		return nil, BadRequest("payment amount does not match the service price")
	}

	// One live payment per booking; only a failed attempt may be retried.
	var existing int64
	err = database.DB.Model(&models.Payment{}).
		Where("booking_id = ? AND status <> ?", booking.ID, models.PaymentStatusFailed).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, Conflict("a payment already exists for this booking")
	}

	payment := models.Payment{
		BookingID:     booking.ID,
		Amount:        in.Amount,
		Currency:      booking.Service.Currency,
		Method:        in.Method,
		ProviderTxnID: in.ProviderTxnID,
		Status:        models.PaymentStatusPending,
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		// The count above is only a fast path; the unique live-payment index
		// is what stops two racing attempts, and the loser lands here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("a payment already exists for this booking")
		}
		return nil, err
	}

	if err := settlePayment(payment.ID); err != nil {
		// The settlement rolled back, so the payment is still pending. Mark it
		// failed so it stops occupying the booking's live-payment slot and a
		// retry can go through.
		dbErr := database.DB.Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Update("status", models.PaymentStatusFailed).Error
		if dbErr != nil {
			utils.GetLogger().Error("could not mark payment as failed",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(dbErr),
			)
		}
		return nil, err
	}

	return loadPaymentDetail(payment.ID)
}

// settlePayment drives a pending payment to completed and applies every
// downstream effect in one transaction: the booking is confirmed, and one
// payment plus one commission ledger entry are appended against the client
// and provider wallets. A missing wallet rolls the whole settlement back.
func settlePayment(paymentID uuid.UUID) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("payment not found")
			}
			return err
		}

		// Conditional update: a booking that was cancelled or completed in
		// the meantime yields zero rows and the settlement rolls back.
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status IN ?", payment.BookingID,
				[]string{models.BookingStatusPending, models.BookingStatusConfirmed}).
			Update("status", models.BookingStatusConfirmed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return Conflict("booking is no longer payable")
		}

		// Only a pending payment may settle; settling the same payment twice
		// must not credit the provider twice.
		res = tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return Conflict("payment has already been settled")
		}

		var booking models.Booking
		if err := tx.First(&booking, "id = ?", payment.BookingID).Error; err != nil {
			return err
		}

		clientWallet, err := getWalletByUser(tx, booking.ClientID)
		if err != nil {
			return err
		}
		providerWallet, err := getWalletByUser(tx, booking.ProviderID)
		if err != nil {
			return err
		}

		description := fmt.Sprintf("payment for booking %s", booking.ID)
		if err := appendTransaction(tx, clientWallet.ID, payment.ID, payment.Amount,
			models.TransactionTypePayment, description); err != nil {
			return err
		}
		description = fmt.Sprintf("commission for booking %s", booking.ID)
		if err := appendTransaction(tx, providerWallet.ID, payment.ID, payment.Amount,
			models.TransactionTypeCommission, description); err != nil {
			return err
		}

		utils.GetLogger().Info("payment settled",
			zap.String("payment_id", payment.ID.String()),
			zap.String("booking_id", booking.ID.String()),
			zap.Float64("amount", payment.Amount),
		)
		return nil
	})
}

// ListPayments returns the payments visible to the caller, newest first:
// those on bookings they made (clients), on bookings against them
// (providers), or all of them (admins).
func ListPayments(userID uuid.UUID, role string) ([]models.Payment, error) {
	q := database.DB.
		Preload("Booking.Client").
		Preload("Booking.Provider").
		Preload("Booking.Service").
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Order("payments.created_at desc")

	switch role {
	case models.RoleClient:
		q = q.Where("bookings.client_id = ?", userID)
	case models.RoleProvider:
		q = q.Where("bookings.provider_id = ?", userID)
	case models.RoleAdmin:
		// no filter
	default:
		return nil, Forbidden("role is not allowed to list payments")
	}

	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// GetPayment returns one payment with full booking detail.
func GetPayment(id, userID uuid.UUID) (*models.Payment, error) {
	payment, err := loadPaymentDetail(id)
	if err != nil {
		return nil, err
	}
	if d := CanViewPayment(payment, userID); !d.Allowed {
		return nil, Forbidden(d.Reason)
	}
	return payment, nil
}

// UpdatePayment applies an administrative patch. Driving the status to
// completed confirms the booking the same way settlement does, but appends no
// ledger entries.
func UpdatePayment(id, userID uuid.UUID, role string, in UpdatePaymentInput) (*models.Payment, error) {
	payment, err := loadPaymentDetail(id)
	if err != nil {
		return nil, err
	}
	if d := CanUpdatePayment(payment, userID, role); !d.Allowed {
		return nil, Forbidden(d.Reason)
	}
	if in.Status != nil && !models.ValidPaymentStatus(*in.Status) {
		return nil, BadRequest("unknown payment status")
	}

	updates := map[string]interface{}{}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.Method != nil {
		updates["method"] = *in.Method
	}
	if in.ProviderTxnID != nil {
		updates["provider_txn_id"] = *in.ProviderTxnID
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// Re-read inside the transaction so the completion decision is made
		// on the current status, not the one loaded before the permission
		// checks.
		var current models.Payment
		if err := tx.First(&current, "id = ?", payment.ID).Error; err != nil {
			return err
		}
		completing := in.Status != nil &&
			*in.Status == models.PaymentStatusCompleted &&
			current.Status != models.PaymentStatusCompleted

		if len(updates) > 0 {
			err := tx.Model(&models.Payment{}).
				Where("id = ?", payment.ID).
				Updates(updates).Error
			if err != nil {
				return err
			}
		}
		if completing {
			err := tx.Model(&models.Booking{}).
				Where("id = ?", payment.BookingID).
				Update("status", models.BookingStatusConfirmed).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return loadPaymentDetail(payment.ID)
}

// DeletePayment removes a payment record. Admin only; the booking is left
// untouched.
func DeletePayment(id uuid.UUID, role string) error {
	var payment models.Payment
	if err := database.DB.First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("payment not found")
		}
		return err
	}

	if d := CanDeletePayment(role); !d.Allowed {
		return Forbidden(d.Reason)
	}

	return database.DB.Delete(&payment).Error
}

func loadPaymentDetail(id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := database.DB.
		Preload("Booking.Client").
		Preload("Booking.Provider").
		Preload("Booking.Service").
		First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("payment not found")
		}
		return nil, err
	}
	return &payment, nil
}
