package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/internal/app/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dimaspr/belimart-backend/internal/db"
)

func setupProductControllerTest(t *testing.T) (*ProductController, *gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	productService := service.NewProductService(productRepo)
	productController := NewProductController(productService)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return productController, router, testDB
}

func TestProductController_GetProducts(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)

	testDB.Create(&model.Product{Name: "Coffee", Price: 95000, Stock: 10})
	testDB.Create(&model.Product{Name: "Tea", Price: 45000, Stock: 20})

	router.GET("/products", controller.GetProducts)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, float64(2), response["count"])
	assert.Len(t, response["products"], 2)
}

func TestProductController_GetProduct_Success(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)

	product := &model.Product{Name: "Coffee", Price: 95000, Stock: 10}
	testDB.Create(product)

	router.GET("/products/:id", controller.GetProduct)

	req := httptest.NewRequest(http.MethodGet, "/products/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	got := response["product"].(map[string]interface{})
	assert.Equal(t, "Coffee", got["name"])
}

func TestProductController_GetProduct_NotFound(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)

	router.GET("/products/:id", controller.GetProduct)

	req := httptest.NewRequest(http.MethodGet, "/products/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Product not found", response["error"])
}

func TestProductController_GetProduct_InvalidID(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)

	router.GET("/products/:id", controller.GetProduct)

	req := httptest.NewRequest(http.MethodGet, "/products/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Invalid id", response["error"])
}

func TestProductController_CreateProduct_Success(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)

	router.POST("/admin/products", controller.CreateProduct)

	reqBody := CreateProductRequest{
		Name:  "Arabica Beans",
		Price: 95000,
		Stock: 40,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/admin/products", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	product := response["product"].(map[string]interface{})
	assert.Equal(t, "Arabica Beans", product["name"])
	assert.NotZero(t, product["id"])
}

func TestProductController_CreateProduct_DuplicateName(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)

	testDB.Create(&model.Product{Name: "Coffee", Price: 95000, Stock: 10})

	router.POST("/admin/products", controller.CreateProduct)

	reqBody := CreateProductRequest{
		Name:  "Coffee",
		Price: 50000,
		Stock: 5,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/admin/products", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "A product with this name already exists", response["error"])
}

func TestProductController_CreateProduct_InvalidRequest(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)

	router.POST("/admin/products", controller.CreateProduct)

	tests := []struct {
		name    string
		reqBody map[string]interface{}
	}{
		{
			name: "Missing name",
			reqBody: map[string]interface{}{
				"price": 1000,
				"stock": 5,
			},
		},
		{
			name: "Missing price",
			reqBody: map[string]interface{}{
				"name":  "Coffee",
				"stock": 5,
			},
		},
		{
			name: "Negative price",
			reqBody: map[string]interface{}{
				"name":  "Coffee",
				"price": -100,
			},
		},
		{
			name: "Negative stock",
			reqBody: map[string]interface{}{
				"name":  "Coffee",
				"price": 1000,
				"stock": -5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonBody, _ := json.Marshal(tt.reqBody)
			req := httptest.NewRequest(http.MethodPost, "/admin/products", bytes.NewBuffer(jsonBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)

			assert.Equal(t, "Invalid request data", response["error"])
		})
	}
}

func TestProductController_UpdateProduct_Success(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)

	testDB.Create(&model.Product{Name: "Coffee", Price: 95000, Stock: 10})

	router.PUT("/admin/products/:id", controller.UpdateProduct)

	reqBody := UpdateProductRequest{
		Description: "Single origin",
		Price:       99000,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPut, "/admin/products/1", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	product := response["product"].(map[string]interface{})
	assert.Equal(t, "Coffee", product["name"])
	assert.Equal(t, "Single origin", product["description"])
	assert.Equal(t, float64(99000), product["price"])
}

func TestProductController_UpdateProduct_NotFound(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)

	router.PUT("/admin/products/:id", controller.UpdateProduct)

	reqBody := UpdateProductRequest{
		Price: 1000,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPut, "/admin/products/9999", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Product not found", response["error"])
}

func TestProductController_UpdateProduct_NameConflict(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)

	testDB.Create(&model.Product{Name: "Coffee", Price: 95000, Stock: 10})
	testDB.Create(&model.Product{Name: "Tea", Price: 45000, Stock: 20})

	router.PUT("/admin/products/:id", controller.UpdateProduct)

	reqBody := UpdateProductRequest{
		Name: "Coffee",
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPut, "/admin/products/2", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "A product with this name already exists", response["error"])
}

func TestProductController_DeleteProduct_Success(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)

	testDB.Create(&model.Product{Name: "Coffee", Price: 95000, Stock: 10})

	router.DELETE("/admin/products/:id", controller.DeleteProduct)

	req := httptest.NewRequest(http.MethodDelete, "/admin/products/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Product deleted successfully", response["message"])
}

func TestProductController_DeleteProduct_NotFound(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)

	router.DELETE("/admin/products/:id", controller.DeleteProduct)

	req := httptest.NewRequest(http.MethodDelete, "/admin/products/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Product not found", response["error"])
}

func TestProductController_RestockProduct_Success(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)

	testDB.Create(&model.Product{Name: "Coffee", Price: 95000, Stock: 3})

	router.PATCH("/admin/products/:id/restock", controller.RestockProduct)

	reqBody := RestockRequest{
		Quantity: 7,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPatch, "/admin/products/1/restock", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	product := response["product"].(map[string]interface{})
	assert.Equal(t, float64(10), product["stock"])
}

func TestProductController_RestockProduct_NotFound(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)

	router.PATCH("/admin/products/:id/restock", controller.RestockProduct)

	reqBody := RestockRequest{
		Quantity: 5,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPatch, "/admin/products/9999/restock", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Product not found", response["error"])
}

func TestProductController_RestockProduct_NegativeQuantity(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)

	testDB.Create(&model.Product{Name: "Coffee", Price: 95000, Stock: 3})

	router.PATCH("/admin/products/:id/restock", controller.RestockProduct)

	reqBody := RestockRequest{
		Quantity: -5,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPatch, "/admin/products/1/restock", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Quantity must be positive", response["error"])
}
