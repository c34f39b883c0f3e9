package service

import (
	"errors"

	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNameTaken     = errors.New("product name already exists")
	ErrInvalidStockQuantity = errors.New("stock quantity must be positive")
	ErrInvalidPrice         = errors.New("price must be positive")
)

// ProductInput carries product fields for create and update. UpdateProduct
// treats zero values as "leave unchanged": a price or stock of 0 cannot be
// set through an update (stock reaches 0 only via checkout decrements).
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	ImageURL    string
}

type ProductService interface {
	CreateProduct(input ProductInput) (*model.Product, error)
	GetProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	UpdateProduct(id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(id uint) error
	RestockProduct(id uint, quantity int) (*model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name":  input.Name,
		"price": input.Price,
		"stock": input.Stock,
	})

	if input.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if input.Stock < 0 {
		return nil, ErrInvalidStockQuantity
	}

	// Product names are unique across the catalog
	existing, err := s.productRepo.FindByName(input.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing product name", err, map[string]interface{}{
			"name": input.Name,
		})
		return nil, err
	}
	if existing != nil {
		logger.Warn("Product creation failed: name already exists", map[string]interface{}{
			"name":       input.Name,
			"product_id": existing.ID,
		})
		return nil, ErrProductNameTaken
	}

	product := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": input.Name,
		})
		return nil, err
	}

	logger.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return product, nil
}

func (s *productService) GetProducts(filter repository.ProductFilter) ([]model.Product, error) {
	logger.Debug("Fetching products", map[string]interface{}{
		"search":  filter.Search,
		"sort_by": filter.SortBy,
	})

	products, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to fetch products", err, nil)
		return nil, err
	}

	logger.Debug("Products fetched successfully", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	logger.Debug("Fetching product by ID", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	return product, nil
}

func (s *productService) UpdateProduct(id uint, input ProductInput) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	if input.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if input.Stock < 0 {
		return nil, ErrInvalidStockQuantity
	}

	if input.Name != "" && input.Name != product.Name {
		existing, err := s.productRepo.FindByName(input.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to check product name", err, map[string]interface{}{
				"name": input.Name,
			})
			return nil, err
		}
		if existing != nil && existing.ID != id {
			logger.Warn("Product update failed: name already exists", map[string]interface{}{
				"name":       input.Name,
				"product_id": existing.ID,
			})
			return nil, ErrProductNameTaken
		}
		product.Name = input.Name
	}

	if input.Description != "" {
		product.Description = input.Description
	}
	if input.Price > 0 {
		product.Price = input.Price
	}
	if input.Stock > 0 {
		product.Stock = input.Stock
	}
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}

	if err := s.productRepo.Update(product); err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Info("Product updated successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return product, nil
}

func (s *productService) DeleteProduct(id uint) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	if _, err := s.GetProductByID(id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(id); err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (s *productService) RestockProduct(id uint, quantity int) (*model.Product, error) {
	logger.Info("Restocking product", map[string]interface{}{
		"product_id": id,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		logger.Warn("Restock rejected: non-positive quantity", map[string]interface{}{
			"product_id": id,
			"quantity":   quantity,
		})
		return nil, ErrInvalidStockQuantity
	}

	if _, err := s.GetProductByID(id); err != nil {
		return nil, err
	}

	if err := s.productRepo.AddStock(id, quantity); err != nil {
		logger.Error("Failed to restock product", err, map[string]interface{}{
			"product_id": id,
			"quantity":   quantity,
		})
		return nil, err
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	logger.Info("Product restocked successfully", map[string]interface{}{
		"product_id": product.ID,
		"stock":      product.Stock,
	})
	return product, nil
}
