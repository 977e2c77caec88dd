package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkarani/servicehub/database"
	"github.com/mkarani/servicehub/models"
)

var testDBCounter int64

// setupTestDB points the package database global at a fresh in-memory
// database for the duration of one test.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:servicehub_test_%d?mode=memory&cache=shared",
		atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Booking{},
		&models.Payment{},
		&models.Wallet{},
		&models.Transaction{},
	))

	database.DB = db
}

func createTestUser(t *testing.T, role string) *models.User {
	t.Helper()

	user := models.User{
		FullName: fmt.Sprintf("Test %s %s", role, uuid.NewString()[:8]),
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()),
		Password: "hashed-password",
		Role:     role,
	}
	require.NoError(t, database.DB.Create(&user).Error)

	wallet := models.Wallet{UserID: user.ID, Balance: 0}
	require.NoError(t, database.DB.Create(&wallet).Error)

	return &user
}

func createTestService(t *testing.T, providerID uuid.UUID, price float64) *models.Service {
	t.Helper()

	service := models.Service{
		ProviderID: providerID,
		Name:       "Deep Cleaning",
		Price:      price,
		Currency:   "USD",
	}
	require.NoError(t, database.DB.Create(&service).Error)
	return &service
}

func createTestBooking(t *testing.T, client *models.User, service *models.Service, status string) *models.Booking {
	t.Helper()

	booking := models.Booking{
		ClientID:   client.ID,
		ProviderID: service.ProviderID,
		ServiceID:  service.ID,
		StartTime:  time.Now().Add(24 * time.Hour),
		EndTime:    time.Now().Add(25 * time.Hour),
		Quantity:   1,
		Status:     status,
	}
	require.NoError(t, database.DB.Create(&booking).Error)
	return &booking
}

func walletBalance(t *testing.T, userID uuid.UUID) float64 {
	t.Helper()

	var wallet models.Wallet
	require.NoError(t, database.DB.Where("user_id = ?", userID).First(&wallet).Error)
	return wallet.Balance
}

func strptr(s string) *string {
	return &s
}
