package repository

import (
	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/pkg/logger"
	"gorm.io/gorm"
)

// CartRepository reads cart state. Mutations that must keep the cart total in
// sync with its items run inside service-level transactions instead.
type CartRepository interface {
	Create(cart *model.Cart) error
	FindByUserID(userID uint) (*model.Cart, error)
	FindByID(id uint) (*model.Cart, error)
	FindItem(cartID, productID uint) (*model.CartItem, error)
	FindAllWithItems() ([]model.Cart, error)
	Update(cart *model.Cart) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(cart *model.Cart) error {
	logger.Debug("Creating cart in database", map[string]interface{}{
		"user_id": cart.UserID,
	})

	if err := r.db.Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id": cart.UserID,
		})
		return err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
		"user_id": cart.UserID,
	})
	return nil
}

func (r *cartRepository) FindByUserID(userID uint) (*model.Cart, error) {
	logger.Debug("Finding cart by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var cart model.Cart
	err := r.db.Where("user_id = ?", userID).
		Preload("Items").
		First(&cart).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find cart by user ID in database", err, map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, err
	}

	logger.Debug("Cart found by user ID in database", map[string]interface{}{
		"cart_id":    cart.ID,
		"user_id":    userID,
		"item_count": len(cart.Items),
	})
	return &cart, nil
}

func (r *cartRepository) FindByID(id uint) (*model.Cart, error) {
	logger.Debug("Finding cart by ID in database", map[string]interface{}{
		"cart_id": id,
	})

	var cart model.Cart
	if err := r.db.Preload("Items").First(&cart, id).Error; err != nil {
		logger.Error("Failed to find cart by ID in database", err, map[string]interface{}{
			"cart_id": id,
		})
		return nil, err
	}

	logger.Debug("Cart found by ID in database", map[string]interface{}{
		"cart_id":    cart.ID,
		"user_id":    cart.UserID,
		"item_count": len(cart.Items),
	})
	return &cart, nil
}

func (r *cartRepository) FindItem(cartID, productID uint) (*model.CartItem, error) {
	logger.Debug("Finding cart item in database", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
	})

	var item model.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find cart item in database", err, map[string]interface{}{
				"cart_id":    cartID,
				"product_id": productID,
			})
		}
		return nil, err
	}

	logger.Debug("Cart item found in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"cart_id":      cartID,
		"product_id":   productID,
	})
	return &item, nil
}

func (r *cartRepository) FindAllWithItems() ([]model.Cart, error) {
	logger.Debug("Finding all carts with items in database", nil)

	var carts []model.Cart
	if err := r.db.Preload("Items").Find(&carts).Error; err != nil {
		logger.Error("Failed to find all carts in database", err, nil)
		return nil, err
	}

	logger.Debug("Carts found in database", map[string]interface{}{
		"count": len(carts),
	})
	return carts, nil
}

func (r *cartRepository) Update(cart *model.Cart) error {
	logger.Debug("Updating cart in database", map[string]interface{}{
		"cart_id": cart.ID,
	})

	if err := r.db.Save(cart).Error; err != nil {
		logger.Error("Failed to update cart in database", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return err
	}

	logger.Debug("Cart updated in database", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return nil
}
