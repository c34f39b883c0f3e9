package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// LoyaltyPointDivisor converts a checkout total into earned loyalty points:
// one point per full thousand spent.
const LoyaltyPointDivisor = 1000

type CheckoutService interface {
	Checkout(userID uint) (*model.Transaction, error)
	GetUserTransactions(userID uint) ([]model.Transaction, error)
	GetTransactionByID(userID, transactionID uint) (*model.Transaction, error)
}

type checkoutService struct {
	transactionRepo repository.TransactionRepository
	cartRepo        repository.CartRepository
	db              *gorm.DB
}

func NewCheckoutService(
	transactionRepo repository.TransactionRepository,
	cartRepo repository.CartRepository,
	db *gorm.DB,
) CheckoutService {
	return &checkoutService{
		transactionRepo: transactionRepo,
		cartRepo:        cartRepo,
		db:              db,
	}
}

// Checkout turns the user's cart into a transaction. Stock decrements, the
// transaction row, the loyalty credit and the cart wipe all commit together
// or not at all.
func (s *checkoutService) Checkout(userID uint) (*model.Transaction, error) {
	logger.Info("Starting checkout", map[string]interface{}{
		"user_id": userID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var cart model.Cart
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Checkout failed: user has no cart", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrEmptyCart
		}
		logger.Error("Failed to fetch cart during checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var items []model.CartItem
	if err := tx.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to fetch cart items during checkout", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if len(items) == 0 {
		tx.Rollback()
		logger.Warn("Checkout failed: cart is empty", map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, ErrEmptyCart
	}

	var totalPrice float64
	for _, item := range items {
		// Conditional decrement: the guard in the WHERE clause makes the
		// stock check and the write one atomic statement, so concurrent
		// checkouts cannot oversell.
		res := tx.Model(&model.Product{}).
			Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
			Update("stock", gorm.Expr("stock - ?", item.Quantity))
		if res.Error != nil {
			tx.Rollback()
			logger.Error("Failed to decrement product stock", res.Error, map[string]interface{}{
				"user_id":    userID,
				"product_id": item.ProductID,
			})
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			var product model.Product
			findErr := tx.First(&product, item.ProductID).Error
			tx.Rollback()
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				logger.Warn("Checkout failed: product no longer exists", map[string]interface{}{
					"user_id":    userID,
					"product_id": item.ProductID,
				})
				return nil, ErrProductNotFound
			}
			logger.Warn("Checkout failed: insufficient stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": item.ProductID,
				"requested":  item.Quantity,
			})
			return nil, ErrInsufficientStock
		}

		totalPrice += item.Subtotal
	}

	loyaltyEarned := int(math.Floor(totalPrice / LoyaltyPointDivisor))

	transaction := &model.Transaction{
		UserID:             userID,
		CartID:             cart.ID,
		TotalPrice:         totalPrice,
		LoyaltyPointEarned: loyaltyEarned,
	}

	if err := tx.Create(transaction).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create transaction", err, map[string]interface{}{
			"user_id":     userID,
			"total_price": totalPrice,
		})
		return nil, err
	}

	if loyaltyEarned > 0 {
		if err := tx.Model(&model.User{}).Where("id = ?", userID).
			Update("loyalty_point", gorm.Expr("loyalty_point + ?", loyaltyEarned)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to credit loyalty points", err, map[string]interface{}{
				"user_id": userID,
				"points":  loyaltyEarned,
			})
			return nil, err
		}
	}

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart after checkout", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if err := tx.Model(&model.Cart{}).Where("id = ?", cart.ID).
		Update("total_price", 0).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to reset cart total after checkout", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, err
	}

	logger.Info("Checkout completed successfully", map[string]interface{}{
		"user_id":        userID,
		"transaction_id": transaction.ID,
		"total_price":    totalPrice,
		"loyalty_earned": loyaltyEarned,
		"item_count":     len(items),
	})

	return s.transactionRepo.FindByID(transaction.ID)
}

func (s *checkoutService) GetUserTransactions(userID uint) ([]model.Transaction, error) {
	logger.Debug("Fetching user transactions", map[string]interface{}{
		"user_id": userID,
	})

	transactions, err := s.transactionRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user transactions", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("User transactions fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(transactions),
	})
	return transactions, nil
}

func (s *checkoutService) GetTransactionByID(userID, transactionID uint) (*model.Transaction, error) {
	logger.Debug("Fetching transaction by ID", map[string]interface{}{
		"user_id":        userID,
		"transaction_id": transactionID,
	})

	transaction, err := s.transactionRepo.FindByID(transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Transaction not found", map[string]interface{}{
				"user_id":        userID,
				"transaction_id": transactionID,
			})
			return nil, ErrTransactionNotFound
		}
		logger.Error("Failed to fetch transaction", err, map[string]interface{}{
			"transaction_id": transactionID,
		})
		return nil, err
	}

	if transaction.UserID != userID {
		logger.Warn("Transaction access denied: ownership mismatch", map[string]interface{}{
			"user_id":        userID,
			"transaction_id": transactionID,
			"owner_id":       transaction.UserID,
		})
		return nil, ErrTransactionNotFound
	}

	return transaction, nil
}
