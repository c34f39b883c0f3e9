package repository

import (
	"fmt"

	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortName      ProductSort = "name"
)

type ProductFilter struct {
	Search        string
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindByName(name string) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
	AddStock(id uint, quantity int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":  product.Name,
		"price": product.Price,
		"stock": product.Stock,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{})
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"search":    filter.Search,
		"sort_by":   filter.SortBy,
		"ascending": filter.SortAscending,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})

	query := r.db.Model(&model.Product{})

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case ProductSortPrice:
		query = query.Order("price " + direction)
	case ProductSortName:
		query = query.Order("name " + direction)
	case ProductSortCreatedAt:
		fallthrough
	default:
		query = query.Order("created_at " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Debug("Product found by ID in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return &product, nil
}

func (r *productRepository) FindByName(name string) (*model.Product, error) {
	logger.Debug("Finding product by name in database", map[string]interface{}{
		"name": name,
	})

	var product model.Product
	if err := r.db.Where("name = ?", name).First(&product).Error; err != nil {
		logger.Error("Failed to find product by name in database", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}

	logger.Debug("Product found by name in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return &product, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	logger.Debug("Product updated in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (r *productRepository) AddStock(id uint, quantity int) error {
	logger.Debug("Adding product stock in database", map[string]interface{}{
		"product_id": id,
		"quantity":   quantity,
	})

	if err := r.db.Model(&model.Product{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error; err != nil {
		logger.Error("Failed to add product stock in database", err, map[string]interface{}{
			"product_id": id,
			"quantity":   quantity,
		})
		return err
	}

	logger.Debug("Product stock added in database", map[string]interface{}{
		"product_id": id,
		"quantity":   quantity,
	})
	return nil
}
