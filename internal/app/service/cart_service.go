package service

import (
	"errors"

	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// CartService keeps the denormalized cart state consistent: every mutation
// updates the item rows and the cart total inside a single transaction.
type CartService interface {
	GetOrCreateCart(userID uint) (*model.Cart, error)
	AddItem(userID, productID uint) (*model.Cart, error)
	SetItemQuantity(userID, productID uint, quantity int) (*model.Cart, error)
	RemoveItem(userID, productID uint) (*model.Cart, error)
	ClearCart(userID uint) (*model.Cart, error)
	ReconcileCartTotals() (int, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	db *gorm.DB,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		db:          db,
	}
}

// GetOrCreateCart returns the user's cart, creating an empty one on first use
func (s *cartService) GetOrCreateCart(userID uint) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Creating cart for user", map[string]interface{}{
		"user_id": userID,
	})

	cart = &model.Cart{UserID: userID, TotalPrice: 0}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}
	return s.cartRepo.FindByUserID(userID)
}

// AddItem puts one unit of the product into the cart. If the product is
// already in the cart its quantity goes up by one; the stored price stays the
// snapshot taken when the line was first added.
func (s *cartService) AddItem(userID, productID uint) (*model.Cart, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var product model.Product
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found when adding to cart", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product when adding to cart", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	var item model.CartItem
	err = tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if product.Stock < 1 {
			tx.Rollback()
			logger.Warn("Add to cart failed: product out of stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			return nil, ErrInsufficientStock
		}
		item = model.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  1,
			ImageURL:  product.ImageURL,
			Subtotal:  product.Price,
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to create cart item", err, map[string]interface{}{
				"cart_id":    cart.ID,
				"product_id": productID,
			})
			return nil, err
		}
	case err != nil:
		tx.Rollback()
		logger.Error("Failed to fetch cart item", err, map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
		})
		return nil, err
	default:
		newQuantity := item.Quantity + 1
		if product.Stock < newQuantity {
			tx.Rollback()
			logger.Warn("Add to cart failed: insufficient stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
				"requested":  newQuantity,
				"available":  product.Stock,
			})
			return nil, ErrInsufficientStock
		}
		item.Quantity = newQuantity
		item.Subtotal = item.Price * float64(newQuantity)
		if err := tx.Save(&item).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to update cart item", err, map[string]interface{}{
				"cart_item_id": item.ID,
			})
			return nil, err
		}
	}

	if err := s.recalcTotal(tx, cart.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit cart update", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"cart_id":    cart.ID,
		"product_id": productID,
		"quantity":   item.Quantity,
	})

	return s.cartRepo.FindByUserID(userID)
}

// SetItemQuantity sets the quantity of a product line, adding the line if the
// product is not in the cart yet
func (s *cartService) SetItemQuantity(userID, productID uint, quantity int) (*model.Cart, error) {
	logger.Info("Setting cart item quantity", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		logger.Warn("Set quantity rejected: non-positive quantity", map[string]interface{}{
			"user_id":  userID,
			"quantity": quantity,
		})
		return nil, ErrInvalidQuantity
	}

	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var product model.Product
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product when setting quantity", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	if product.Stock < quantity {
		tx.Rollback()
		logger.Warn("Set quantity failed: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  quantity,
			"available":  product.Stock,
		})
		return nil, ErrInsufficientStock
	}

	var item model.CartItem
	err = tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = model.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			ImageURL:  product.ImageURL,
			Subtotal:  product.Price * float64(quantity),
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to create cart item", err, map[string]interface{}{
				"cart_id":    cart.ID,
				"product_id": productID,
			})
			return nil, err
		}
	case err != nil:
		tx.Rollback()
		logger.Error("Failed to fetch cart item", err, map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
		})
		return nil, err
	default:
		item.Quantity = quantity
		item.Subtotal = item.Price * float64(quantity)
		if err := tx.Save(&item).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to update cart item", err, map[string]interface{}{
				"cart_item_id": item.ID,
			})
			return nil, err
		}
	}

	if err := s.recalcTotal(tx, cart.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit cart update", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	return s.cartRepo.FindByUserID(userID)
}

// RemoveItem drops a product line from the cart entirely
func (s *cartService) RemoveItem(userID, productID uint) (*model.Cart, error) {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.FindItem(cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Remove failed: item not in cart", map[string]interface{}{
				"user_id":    userID,
				"cart_id":    cart.ID,
				"product_id": productID,
			})
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Delete(&model.CartItem{}, item.ID).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return nil, err
	}

	if err := s.recalcTotal(tx, cart.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit cart update", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	logger.Info("Item removed from cart", map[string]interface{}{
		"user_id":    userID,
		"cart_id":    cart.ID,
		"product_id": productID,
	})

	return s.cartRepo.FindByUserID(userID)
}

// ClearCart removes all lines and zeroes the total
func (s *cartService) ClearCart(userID uint) (*model.Cart, error) {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": userID,
	})

	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart items", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if err := tx.Model(&model.Cart{}).Where("id = ?", cart.ID).
		Update("total_price", 0).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to reset cart total", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit cart clear", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
		"cart_id": cart.ID,
	})

	return s.cartRepo.FindByUserID(userID)
}

// ReconcileCartTotals repairs carts whose denormalized total drifted from the
// sum of their item subtotals. Returns the number of repaired carts.
func (s *cartService) ReconcileCartTotals() (int, error) {
	logger.Info("Reconciling cart totals", nil)

	carts, err := s.cartRepo.FindAllWithItems()
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, cart := range carts {
		var sum float64
		for _, item := range cart.Items {
			expected := item.Price * float64(item.Quantity)
			if item.Subtotal != expected {
				logger.Warn("Repairing drifted item subtotal", map[string]interface{}{
					"cart_item_id": item.ID,
					"stored":       item.Subtotal,
					"expected":     expected,
				})
				if err := s.db.Model(&model.CartItem{}).Where("id = ?", item.ID).
					Update("subtotal", expected).Error; err != nil {
					return repaired, err
				}
			}
			sum += expected
		}

		if cart.TotalPrice != sum {
			logger.Warn("Repairing drifted cart total", map[string]interface{}{
				"cart_id":  cart.ID,
				"stored":   cart.TotalPrice,
				"expected": sum,
			})
			if err := s.db.Model(&model.Cart{}).Where("id = ?", cart.ID).
				Update("total_price", sum).Error; err != nil {
				return repaired, err
			}
			repaired++
		}
	}

	logger.Info("Cart totals reconciled", map[string]interface{}{
		"carts_checked":  len(carts),
		"carts_repaired": repaired,
	})
	return repaired, nil
}

// recalcTotal recomputes the cart total from its live item rows
func (s *cartService) recalcTotal(tx *gorm.DB, cartID uint) error {
	err := tx.Model(&model.Cart{}).Where("id = ?", cartID).
		Update("total_price", gorm.Expr(
			"(SELECT COALESCE(SUM(subtotal), 0) FROM cart_items WHERE cart_id = ? AND deleted_at IS NULL)",
			cartID,
		)).Error
	if err != nil {
		logger.Error("Failed to recalculate cart total", err, map[string]interface{}{
			"cart_id": cartID,
		})
	}
	return err
}
