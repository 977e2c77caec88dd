package services

import (
	"github.com/google/uuid"

	"github.com/mkarani/servicehub/models"
)

// Decision is the result of a permission check: an explicit allow or deny
// with the reason surfaced to the caller on denial.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanViewBooking permits only the booking's client or provider.
func CanViewBooking(b *models.Booking, userID uuid.UUID) Decision {
	if b.ClientID == userID || b.ProviderID == userID {
		return allow()
	}
	return deny("you are not a party to this booking")
}

// CanUpdateBooking enforces the role rules for booking patches: a client may
// only cancel or touch non-status fields of their own booking, a provider may
// set any status except cancelled on theirs.
func CanUpdateBooking(b *models.Booking, userID uuid.UUID, role string, newStatus *string) Decision {
	switch role {
	case models.RoleClient:
		if b.ClientID != userID {
			return deny("this is not your booking")
		}
		if newStatus != nil && *newStatus != models.BookingStatusCancelled {
			return deny("clients may only cancel a booking")
		}
		return allow()
	case models.RoleProvider:
		if b.ProviderID != userID {
			return deny("you are not the provider for this booking")
		}
		if newStatus != nil && *newStatus == models.BookingStatusCancelled {
			return deny("only the client may cancel a booking")
		}
		return allow()
	}
	return deny("role is not allowed to update bookings")
}

// CanDeleteBooking permits the owning client or provider, by role.
func CanDeleteBooking(b *models.Booking, userID uuid.UUID, role string) Decision {
	switch role {
	case models.RoleClient:
		if b.ClientID == userID {
			return allow()
		}
		return deny("this is not your booking")
	case models.RoleProvider:
		if b.ProviderID == userID {
			return allow()
		}
		return deny("you are not the provider for this booking")
	}
	return deny("role is not allowed to delete bookings")
}

// CanCreatePayment permits only the booking's client.
func CanCreatePayment(b *models.Booking, userID uuid.UUID) Decision {
	if b.ClientID == userID {
		return allow()
	}
	return deny("only the booking's client may pay for it")
}

// CanViewPayment permits the associated booking's client or provider.
func CanViewPayment(p *models.Payment, userID uuid.UUID) Decision {
	if p.Booking.ClientID == userID || p.Booking.ProviderID == userID {
		return allow()
	}
	return deny("you are not a party to this payment")
}

// CanUpdatePayment permits admins and the associated booking's provider.
func CanUpdatePayment(p *models.Payment, userID uuid.UUID, role string) Decision {
	switch role {
	case models.RoleAdmin:
		return allow()
	case models.RoleProvider:
		if p.Booking.ProviderID == userID {
			return allow()
		}
		return deny("you are not the provider for this payment's booking")
	}
	return deny("role is not allowed to update payments")
}

// CanDeletePayment permits admins only.
func CanDeletePayment(role string) Decision {
	if role == models.RoleAdmin {
		return allow()
	}
	return deny("only admins may delete payments")
}
