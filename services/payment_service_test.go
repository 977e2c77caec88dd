package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkarani/servicehub/database"
	"github.com/mkarani/servicehub/models"
)

func paymentFor(bookingID uuid.UUID, amount float64) CreatePaymentInput {
	return CreatePaymentInput{
		BookingID: bookingID,
		Amount:    amount,
		Method:    "credit_card",
	}
}

func TestCreatePaymentSettles(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	payment, err := CreatePayment(client.ID, paymentFor(booking.ID, 50))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, models.BookingStatusConfirmed, payment.Booking.Status)
	assert.Equal(t, 50.0, payment.Amount)

	var entries []models.Transaction
	require.NoError(t, database.DB.Where("payment_id = ?", payment.ID).Find(&entries).Error)
	require.Len(t, entries, 2)

	byType := map[string]models.Transaction{}
	for _, e := range entries {
		byType[e.Type] = e
	}

	clientWallet, err := GetWalletByUser(client.ID)
	require.NoError(t, err)
	providerWallet, err := GetWalletByUser(provider.ID)
	require.NoError(t, err)

	require.Contains(t, byType, models.TransactionTypePayment)
	require.Contains(t, byType, models.TransactionTypeCommission)
	assert.Equal(t, clientWallet.ID, byType[models.TransactionTypePayment].WalletID)
	assert.Equal(t, providerWallet.ID, byType[models.TransactionTypeCommission].WalletID)
	assert.Equal(t, 50.0, byType[models.TransactionTypePayment].Amount)
	assert.Equal(t, 50.0, byType[models.TransactionTypeCommission].Amount)

	assert.InDelta(t, -50.0, clientWallet.Balance, 0.001)
	assert.InDelta(t, 50.0, providerWallet.Balance, 0.001)
}

func TestCreatePaymentAmountMustMatchPrice(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	_, err := CreatePayment(client.ID, paymentFor(booking.ID, 40))
	require.Error(t, err)
	assert.Equal(t, KindBadRequest, KindOf(err))

	var count int64
	database.DB.Model(&models.Payment{}).Where("booking_id = ?", booking.ID).Count(&count)
	assert.Zero(t, count)

	var reloaded models.Booking
	require.NoError(t, database.DB.First(&reloaded, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingStatusPending, reloaded.Status)
}

func TestCreatePaymentOnlyByBookingClient(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	stranger := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	_, err := CreatePayment(stranger.ID, paymentFor(booking.ID, 50))
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = CreatePayment(provider.ID, paymentFor(booking.ID, 50))
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCreatePaymentNonPayableBooking(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	service := createTestService(t, provider.ID, 50)

	for _, status := range []string{models.BookingStatusCancelled, models.BookingStatusCompleted} {
		booking := createTestBooking(t, client, service, status)
		_, err := CreatePayment(client.ID, paymentFor(booking.ID, 50))
		require.Error(t, err)
		assert.Equal(t, KindBadRequest, KindOf(err))
	}

	_, err := CreatePayment(client.ID, paymentFor(uuid.New(), 50))
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreatePaymentDuplicateGuard(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	_, err := CreatePayment(client.ID, paymentFor(booking.ID, 50))
	require.NoError(t, err)

	_, err = CreatePayment(client.ID, paymentFor(booking.ID, 50))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	// A failed attempt does not block a retry.
	other := createTestBooking(t, client, service, models.BookingStatusPending)
	failed := models.Payment{
		BookingID: other.ID,
		Amount:    50,
		Currency:  "USD",
		Method:    "credit_card",
		Status:    models.PaymentStatusFailed,
	}
	require.NoError(t, database.DB.Create(&failed).Error)

	_, err = CreatePayment(client.ID, paymentFor(other.ID, 50))
	require.NoError(t, err)
}

func TestOneLivePaymentPerBooking(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	first := models.Payment{
		BookingID: booking.ID,
		Amount:    50,
		Currency:  "USD",
		Method:    "credit_card",
		Status:    models.PaymentStatusPending,
	}
	require.NoError(t, database.DB.Create(&first).Error)

	// A second live payment cannot even be inserted; the store rejects it,
	// so two attempts racing past the duplicate check still end with one.
	second := models.Payment{
		BookingID: booking.ID,
		Amount:    50,
		Currency:  "USD",
		Method:    "credit_card",
		Status:    models.PaymentStatusPending,
	}
	err := database.DB.Create(&second).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, settlePayment(first.ID))

	// Settling the same payment again loses and changes nothing.
	err = settlePayment(first.ID)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	var entries int64
	database.DB.Model(&models.Transaction{}).Count(&entries)
	assert.EqualValues(t, 2, entries)
	assert.InDelta(t, 50.0, walletBalance(t, provider.ID), 0.001)
	assert.InDelta(t, -50.0, walletBalance(t, client.ID), 0.001)
}

func TestCreatePaymentMissingWalletIsFatal(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	require.NoError(t, database.DB.Where("user_id = ?", provider.ID).Delete(&models.Wallet{}).Error)

	_, err := CreatePayment(client.ID, paymentFor(booking.ID, 50))
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	// The settlement transaction rolled back: no confirmation, no ledger rows.
	var reloaded models.Booking
	require.NoError(t, database.DB.First(&reloaded, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingStatusPending, reloaded.Status)

	var entries int64
	database.DB.Model(&models.Transaction{}).Count(&entries)
	assert.Zero(t, entries)

	// The attempt itself is marked failed so it does not block a retry.
	var attempt models.Payment
	require.NoError(t, database.DB.Where("booking_id = ?", booking.ID).First(&attempt).Error)
	assert.Equal(t, models.PaymentStatusFailed, attempt.Status)

	wallet := models.Wallet{UserID: provider.ID, Balance: 0}
	require.NoError(t, database.DB.Create(&wallet).Error)

	retried, err := CreatePayment(client.ID, paymentFor(booking.ID, 50))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, retried.Status)
	assert.Equal(t, models.BookingStatusConfirmed, retried.Booking.Status)
}

func TestUpdatePaymentCompletionConfirmsBooking(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	admin := createTestUser(t, models.RoleAdmin)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	payment := models.Payment{
		BookingID: booking.ID,
		Amount:    50,
		Currency:  "USD",
		Method:    "mpesa",
		Status:    models.PaymentStatusPending,
	}
	require.NoError(t, database.DB.Create(&payment).Error)

	updated, err := UpdatePayment(payment.ID, admin.ID, models.RoleAdmin,
		UpdatePaymentInput{Status: strptr(models.PaymentStatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, updated.Status)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Booking.Status)

	// Direct updates mirror the confirmation but never touch the ledger.
	var entries int64
	database.DB.Model(&models.Transaction{}).Count(&entries)
	assert.Zero(t, entries)
}

func TestUpdatePaymentRecompleteLeavesBookingAlone(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	admin := createTestUser(t, models.RoleAdmin)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	payment := models.Payment{
		BookingID: booking.ID,
		Amount:    50,
		Currency:  "USD",
		Method:    "mpesa",
		Status:    models.PaymentStatusCompleted,
	}
	require.NoError(t, database.DB.Create(&payment).Error)
	require.NoError(t, database.DB.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("status", models.BookingStatusCompleted).Error)

	// Re-sending completed on an already-completed payment must not drag
	// the booking back to confirmed.
	updated, err := UpdatePayment(payment.ID, admin.ID, models.RoleAdmin,
		UpdatePaymentInput{Status: strptr(models.PaymentStatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, updated.Status)
	assert.Equal(t, models.BookingStatusCompleted, updated.Booking.Status)
}

func TestUpdatePaymentPermissions(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	otherProvider := createTestUser(t, models.RoleProvider)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	payment := models.Payment{
		BookingID: booking.ID,
		Amount:    50,
		Currency:  "USD",
		Method:    "mpesa",
		Status:    models.PaymentStatusPending,
	}
	require.NoError(t, database.DB.Create(&payment).Error)

	_, err := UpdatePayment(payment.ID, client.ID, models.RoleClient,
		UpdatePaymentInput{Method: strptr("paypal")})
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = UpdatePayment(payment.ID, otherProvider.ID, models.RoleProvider,
		UpdatePaymentInput{Method: strptr("paypal")})
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	updated, err := UpdatePayment(payment.ID, provider.ID, models.RoleProvider,
		UpdatePaymentInput{Method: strptr("paypal")})
	require.NoError(t, err)
	assert.Equal(t, "paypal", updated.Method)

	_, err = UpdatePayment(uuid.New(), provider.ID, models.RoleProvider,
		UpdatePaymentInput{Method: strptr("paypal")})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeletePaymentAdminOnly(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	payment, err := CreatePayment(client.ID, paymentFor(booking.ID, 50))
	require.NoError(t, err)

	err = DeletePayment(payment.ID, models.RoleProvider)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	require.NoError(t, DeletePayment(payment.ID, models.RoleAdmin))

	var count int64
	database.DB.Model(&models.Payment{}).Where("id = ?", payment.ID).Count(&count)
	assert.Zero(t, count)

	// The booking is left untouched.
	var reloaded models.Booking
	require.NoError(t, database.DB.First(&reloaded, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingStatusConfirmed, reloaded.Status)

	err = DeletePayment(uuid.New(), models.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGetPaymentPermissions(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	stranger := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	service := createTestService(t, provider.ID, 50)
	booking := createTestBooking(t, client, service, models.BookingStatusPending)

	payment, err := CreatePayment(client.ID, paymentFor(booking.ID, 50))
	require.NoError(t, err)

	got, err := GetPayment(payment.ID, client.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)
	assert.Equal(t, service.ID, got.Booking.Service.ID)

	_, err = GetPayment(payment.ID, provider.ID)
	require.NoError(t, err)

	_, err = GetPayment(payment.ID, stranger.ID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestListPaymentsByRole(t *testing.T) {
	setupTestDB(t)
	client := createTestUser(t, models.RoleClient)
	otherClient := createTestUser(t, models.RoleClient)
	provider := createTestUser(t, models.RoleProvider)
	admin := createTestUser(t, models.RoleAdmin)
	service := createTestService(t, provider.ID, 50)

	bookingA := createTestBooking(t, client, service, models.BookingStatusPending)
	bookingB := createTestBooking(t, otherClient, service, models.BookingStatusPending)

	_, err := CreatePayment(client.ID, paymentFor(bookingA.ID, 50))
	require.NoError(t, err)
	_, err = CreatePayment(otherClient.ID, paymentFor(bookingB.ID, 50))
	require.NoError(t, err)

	fromClient, err := ListPayments(client.ID, models.RoleClient)
	require.NoError(t, err)
	require.Len(t, fromClient, 1)
	assert.Equal(t, bookingA.ID, fromClient[0].BookingID)

	fromProvider, err := ListPayments(provider.ID, models.RoleProvider)
	require.NoError(t, err)
	assert.Len(t, fromProvider, 2)

	fromAdmin, err := ListPayments(admin.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, fromAdmin, 2)
}
