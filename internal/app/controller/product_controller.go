package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/internal/app/service"
	"github.com/dimaspr/belimart-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	ImageURL    string  `json:"image_url"`
}

type UpdateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetProducts lists the catalog
// GET /api/v1/products
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.ProductFilter{
		Search: c.Query("search"),
		SortBy: repository.ProductSort(c.Query("sort_by")),
	}
	if c.Query("order") == "asc" {
		filter.SortAscending = true
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = offset
	}

	products, err := ctrl.productService.GetProducts(filter)
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns a single product
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch product",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct adds a product to the catalog (admin)
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create product request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := ctrl.productService.CreateProduct(service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrProductNameTaken) {
			log.Warn("Product creation failed: name already exists", map[string]interface{}{
				"name": req.Name,
			})
			c.JSON(http.StatusConflict, gin.H{
				"error": "A product with this name already exists",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidPrice) || errors.Is(err, service.ErrInvalidStockQuantity) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create product",
		})
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// UpdateProduct edits a product (admin)
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update product request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := ctrl.productService.UpdateProduct(id, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		if errors.Is(err, service.ErrProductNameTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A product with this name already exists",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidPrice) || errors.Is(err, service.ErrInvalidStockQuantity) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		log.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update product",
		})
		return
	}

	log.Info("Product updated successfully", map[string]interface{}{
		"product_id": product.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// DeleteProduct removes a product from the catalog (admin)
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		log.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete product",
		})
		return
	}

	log.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// RestockProduct increases the stock of a product (admin)
// PATCH /api/v1/admin/products/:id/restock
func (ctrl *ProductController) RestockProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid restock request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := ctrl.productService.RestockProduct(id, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidStockQuantity) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Quantity must be positive",
			})
			return
		}
		log.Error("Failed to restock product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to restock product",
		})
		return
	}

	log.Info("Product restocked successfully", map[string]interface{}{
		"product_id": product.ID,
		"stock":      product.Stock,
	})

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}
