package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dimaspr/belimart-backend/internal/app/service"
	"github.com/dimaspr/belimart-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// Quantity carries no binding rule so zero and negative values reach the
// service and come back as its specific validation error.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the user's cart, creating it on first use
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized access to cart", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	cart, err := ctrl.cartService.GetOrCreateCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch cart",
		})
		return
	}

	log.Info("Cart fetched successfully", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.ID,
		"count":   len(cart.Items),
		"total":   cart.TotalPrice,
	})

	c.JSON(http.StatusOK, gin.H{
		"cart": cart,
	})
}

// AddToCart adds one unit of a product to the cart
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized attempt to add to cart", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cart, err := ctrl.cartService.AddItem(userID, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found for cart", map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		if errors.Is(err, service.ErrInsufficientStock) {
			log.Warn("Insufficient stock for cart item", map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Insufficient stock",
			})
			return
		}
		log.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to add item to cart",
		})
		return
	}

	log.Info("Item added to cart successfully", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item added to cart successfully",
		"cart":    cart,
	})
}

// SetItemQuantity sets the quantity of a product line
// PUT /api/v1/cart/items/:productId
func (ctrl *CartController) SetItemQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized attempt to update cart item", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid set quantity request", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cart, err := ctrl.cartService.SetItemQuantity(userID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Quantity must be positive",
			})
			return
		}
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		if errors.Is(err, service.ErrInsufficientStock) {
			log.Warn("Insufficient stock for cart update", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
				"quantity":   req.Quantity,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Insufficient stock",
			})
			return
		}
		log.Error("Failed to update cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update cart item",
		})
		return
	}

	log.Info("Cart item updated successfully", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"cart":    cart,
	})
}

// RemoveFromCart removes a product line from the cart
// DELETE /api/v1/cart/items/:productId
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized attempt to remove cart item", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemoveItem(userID, productID)
	if err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			log.Warn("Cart item not found for removal", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cart item not found",
			})
			return
		}
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove cart item",
		})
		return
	}

	log.Info("Cart item removed successfully", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item removed successfully",
		"cart":    cart,
	})
}

// ClearCart clears all items from cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized attempt to clear cart", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	cart, err := ctrl.cartService.ClearCart(userID)
	if err != nil {
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	log.Info("Cart cleared successfully", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"cart":    cart,
	})
}

// parseIDParam reads a uint path parameter, responding with 400 on bad input
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}
