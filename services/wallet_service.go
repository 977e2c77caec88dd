package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkarani/servicehub/database"
	"github.com/mkarani/servicehub/models"
)

// CreateWallet provisions an empty wallet for a user inside tx. It is called
// once at registration time; every user is expected to own exactly one wallet
// from then on.
func CreateWallet(tx *gorm.DB, userID uuid.UUID) (*models.Wallet, error) {
	wallet := models.Wallet{UserID: userID, Balance: 0}
	if err := tx.Create(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetWalletByUser returns the wallet owned by userID. A missing wallet is a
// NotFound the settlement path treats as fatal.
func GetWalletByUser(userID uuid.UUID) (*models.Wallet, error) {
	return getWalletByUser(database.DB, userID)
}

func getWalletByUser(tx *gorm.DB, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("wallet not found for user")
		}
		return nil, err
	}
	return &wallet, nil
}

// ListWalletTransactions returns the ledger history for a user's wallet,
// newest first.
func ListWalletTransactions(userID uuid.UUID) ([]models.Transaction, error) {
	wallet, err := GetWalletByUser(userID)
	if err != nil {
		return nil, err
	}

	var entries []models.Transaction
	err = database.DB.
		Where("wallet_id = ?", wallet.ID).
		Order("created_at desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// appendTransaction writes one immutable ledger entry and adjusts the wallet
// balance in the same tx. Payment entries debit the wallet, commission
// entries credit it; the ledger row itself always carries the full positive
// amount.
func appendTransaction(tx *gorm.DB, walletID, paymentID uuid.UUID, amount float64, txType, description string) error {
	entry := models.Transaction{
		WalletID:    walletID,
		PaymentID:   paymentID,
		Amount:      amount,
		Type:        txType,
		Description: description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	delta := amount
	if txType == models.TransactionTypePayment {
		delta = -amount
	}
	err := tx.Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to adjust wallet balance: %w", err)
	}
	return nil
}
