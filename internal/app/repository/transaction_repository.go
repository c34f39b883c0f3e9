package repository

import (
	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/pkg/logger"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(transaction *model.Transaction) error
	FindByID(id uint) (*model.Transaction, error)
	FindByUserID(userID uint) ([]model.Transaction, error)
	FindAll() ([]model.Transaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(transaction *model.Transaction) error {
	logger.Debug("Creating transaction in database", map[string]interface{}{
		"user_id":     transaction.UserID,
		"cart_id":     transaction.CartID,
		"total_price": transaction.TotalPrice,
	})

	if err := r.db.Create(transaction).Error; err != nil {
		logger.Error("Failed to create transaction in database", err, map[string]interface{}{
			"user_id": transaction.UserID,
			"cart_id": transaction.CartID,
		})
		return err
	}

	logger.Debug("Transaction created in database", map[string]interface{}{
		"transaction_id": transaction.ID,
		"user_id":        transaction.UserID,
	})
	return nil
}

func (r *transactionRepository) FindByID(id uint) (*model.Transaction, error) {
	logger.Debug("Finding transaction by ID in database", map[string]interface{}{
		"transaction_id": id,
	})

	var transaction model.Transaction
	if err := r.db.First(&transaction, id).Error; err != nil {
		logger.Error("Failed to find transaction by ID in database", err, map[string]interface{}{
			"transaction_id": id,
		})
		return nil, err
	}

	logger.Debug("Transaction found by ID in database", map[string]interface{}{
		"transaction_id": transaction.ID,
		"user_id":        transaction.UserID,
	})
	return &transaction, nil
}

func (r *transactionRepository) FindByUserID(userID uint) ([]model.Transaction, error) {
	logger.Debug("Finding transactions by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var transactions []model.Transaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&transactions).Error
	if err != nil {
		logger.Error("Failed to find transactions by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Transactions found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(transactions),
	})
	return transactions, nil
}

func (r *transactionRepository) FindAll() ([]model.Transaction, error) {
	logger.Debug("Finding all transactions in database", nil)

	var transactions []model.Transaction
	if err := r.db.Order("created_at DESC").Find(&transactions).Error; err != nil {
		logger.Error("Failed to find all transactions in database", err, nil)
		return nil, err
	}

	logger.Debug("Transactions found in database", map[string]interface{}{
		"count": len(transactions),
	})
	return transactions, nil
}
