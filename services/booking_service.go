package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mkarani/servicehub/database"
	"github.com/mkarani/servicehub/models"
	"github.com/mkarani/servicehub/utils"
)

type CreateBookingInput struct {
	ServiceID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Quantity  int
	Notes     *string
}

type UpdateBookingInput struct {
	Status *string
	Notes  *string
}

// CreateBooking opens a new booking in pending status for the given client.
// The provider is always the service's owner; a client can never book their
// own service.
func CreateBooking(clientID uuid.UUID, in CreateBookingInput) (*models.Booking, error) {
	var client models.User
	if err := database.DB.First(&client, "id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, err
	}
	if client.Role != models.RoleClient {
		return nil, Forbidden("only clients may create bookings")
	}

	var service models.Service
	if err := database.DB.First(&service, "id = ?", in.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("service not found")
		}
		return nil, err
	}
	if service.ProviderID == clientID {
		return nil, BadRequest("you cannot book your own service")
	}
	if in.Quantity < 1 {
		return nil, BadRequest("quantity must be at least 1")
	}

	booking := models.Booking{
		ClientID:   clientID,
		ProviderID: service.ProviderID,
		ServiceID:  service.ID,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Quantity:   in.Quantity,
		Notes:      in.Notes,
		Status:     models.BookingStatusPending,
	}
	if err := database.DB.Create(&booking).Error; err != nil {
		return nil, err
	}

	utils.GetLogger().Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("client_id", clientID.String()),
		zap.Float64("total_amount", service.Price*float64(in.Quantity)),
	)

	return loadBookingDetail(booking.ID)
}

// ListBookings returns the caller's bookings, newest first. Clients see the
// bookings they made, providers the ones made against them, admins everything.
func ListBookings(userID uuid.UUID, role string) ([]models.Booking, error) {
	q := database.DB.
		Preload("Client").
		Preload("Provider").
		Preload("Service").
		Order("created_at desc")

	switch role {
	case models.RoleClient:
		q = q.Where("client_id = ?", userID)
	case models.RoleProvider:
		q = q.Where("provider_id = ?", userID)
	case models.RoleAdmin:
		// no filter
	default:
		return nil, Forbidden("role is not allowed to list bookings")
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetBooking returns one booking with client, provider and service detail.
func GetBooking(id, userID uuid.UUID) (*models.Booking, error) {
	booking, err := loadBookingDetail(id)
	if err != nil {
		return nil, err
	}
	if d := CanViewBooking(booking, userID); !d.Allowed {
		return nil, Forbidden(d.Reason)
	}
	return booking, nil
}

// UpdateBooking applies the patch fields that are present, subject to the
// role rules enforced by CanUpdateBooking.
func UpdateBooking(id, userID uuid.UUID, role string, in UpdateBookingInput) (*models.Booking, error) {
	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("booking not found")
		}
		return nil, err
	}

	if in.Status != nil && !models.ValidBookingStatus(*in.Status) {
		return nil, BadRequest("unknown booking status")
	}
	if d := CanUpdateBooking(&booking, userID, role, in.Status); !d.Allowed {
		return nil, Forbidden(d.Reason)
	}

	updates := map[string]interface{}{}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&booking).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return loadBookingDetail(booking.ID)
}

// DeleteBooking removes a booking. Only pending bookings can be deleted, and
// only by their own client or provider.
func DeleteBooking(id, userID uuid.UUID, role string) error {
	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("booking not found")
		}
		return err
	}

	if booking.Status != models.BookingStatusPending {
		return BadRequest("only pending bookings can be deleted")
	}
	if d := CanDeleteBooking(&booking, userID, role); !d.Allowed {
		return Forbidden(d.Reason)
	}

	return database.DB.Delete(&booking).Error
}

func loadBookingDetail(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := database.DB.
		Preload("Client").
		Preload("Provider").
		Preload("Service").
		First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("booking not found")
		}
		return nil, err
	}
	return &booking, nil
}
