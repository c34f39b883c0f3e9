package controller

import (
	"errors"
	"net/http"

	"github.com/dimaspr/belimart-backend/internal/app/service"
	"github.com/dimaspr/belimart-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type TransactionController struct {
	checkoutService service.CheckoutService
}

func NewTransactionController(checkoutService service.CheckoutService) *TransactionController {
	return &TransactionController{
		checkoutService: checkoutService,
	}
}

// Checkout turns the user's cart into a transaction
// POST /api/v1/transactions
func (ctrl *TransactionController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized checkout attempt", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	transaction, err := ctrl.checkoutService.Checkout(userID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			log.Warn("Checkout failed: cart is empty", map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cart is empty",
			})
			return
		}
		if errors.Is(err, service.ErrInsufficientStock) {
			log.Warn("Checkout failed: insufficient stock", map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Insufficient stock for one or more items",
			})
			return
		}
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "One or more products are no longer available",
			})
			return
		}
		log.Error("Failed to complete checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to complete checkout",
		})
		return
	}

	log.Info("Checkout completed successfully", map[string]interface{}{
		"user_id":        userID,
		"transaction_id": transaction.ID,
		"total_price":    transaction.TotalPrice,
		"loyalty_earned": transaction.LoyaltyPointEarned,
	})

	c.JSON(http.StatusCreated, gin.H{
		"transaction": transaction,
	})
}

// GetTransactions lists the user's transactions, newest first
// GET /api/v1/transactions
func (ctrl *TransactionController) GetTransactions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized access to transactions", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	transactions, err := ctrl.checkoutService.GetUserTransactions(userID)
	if err != nil {
		log.Error("Failed to fetch transactions", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch transactions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// GetTransaction returns a single transaction owned by the user
// GET /api/v1/transactions/:id
func (ctrl *TransactionController) GetTransaction(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized access to transaction", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	transaction, err := ctrl.checkoutService.GetTransactionByID(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Transaction not found",
			})
			return
		}
		log.Error("Failed to fetch transaction", err, map[string]interface{}{
			"user_id":        userID,
			"transaction_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch transaction",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction": transaction,
	})
}
