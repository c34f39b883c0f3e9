package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimaspr/belimart-backend/internal/app/model"
	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/internal/app/service"
	"github.com/dimaspr/belimart-backend/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTransactionControllerTest(t *testing.T) (*TransactionController, service.CartService, *gin.Engine, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	transactionRepo := repository.NewTransactionRepository(testDB)
	cartService := service.NewCartService(cartRepo, productRepo, testDB)
	checkoutService := service.NewCheckoutService(transactionRepo, cartRepo, testDB)
	transactionController := NewTransactionController(checkoutService)

	user := &model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        "test@example.com",
		Username:     "testuser",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:  "Test Product",
		Price: 15000,
		Stock: 10,
	}
	testDB.Create(product)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return transactionController, cartService, router, testDB, user, product
}

func TestTransactionController_Checkout_Success(t *testing.T) {
	controller, cartService, router, testDB, user, product := setupTransactionControllerTest(t)

	_, err := cartService.SetItemQuantity(user.ID, product.ID, 2)
	require.NoError(t, err)

	router.POST("/transactions", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	transaction := response["transaction"].(map[string]interface{})
	assert.Equal(t, float64(30000), transaction["total_price"]) // 15000 * 2
	assert.Equal(t, float64(30), transaction["loyalty_point_earned"])

	// Stock decremented and cart emptied
	var updatedProduct model.Product
	require.NoError(t, testDB.First(&updatedProduct, product.ID).Error)
	assert.Equal(t, 8, updatedProduct.Stock)

	var updatedCart model.Cart
	require.NoError(t, testDB.Where("user_id = ?", user.ID).First(&updatedCart).Error)
	assert.Equal(t, float64(0), updatedCart.TotalPrice)
}

func TestTransactionController_Checkout_EmptyCart(t *testing.T) {
	controller, _, router, _, user, _ := setupTransactionControllerTest(t)

	router.POST("/transactions", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Cart is empty", response["error"])
}

func TestTransactionController_Checkout_InsufficientStock(t *testing.T) {
	controller, cartService, router, testDB, user, product := setupTransactionControllerTest(t)

	_, err := cartService.SetItemQuantity(user.ID, product.ID, 3)
	require.NoError(t, err)

	// Stock drains behind the cart before checkout
	require.NoError(t, testDB.Model(&model.Product{}).Where("id = ?", product.ID).
		Update("stock", 1).Error)

	router.POST("/transactions", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Insufficient stock for one or more items", response["error"])

	// Nothing committed: stock untouched, cart intact
	var updatedProduct model.Product
	require.NoError(t, testDB.First(&updatedProduct, product.ID).Error)
	assert.Equal(t, 1, updatedProduct.Stock)
}

func TestTransactionController_Checkout_ProductRemoved(t *testing.T) {
	controller, cartService, router, testDB, user, product := setupTransactionControllerTest(t)

	_, err := cartService.AddItem(user.ID, product.ID)
	require.NoError(t, err)

	require.NoError(t, testDB.Delete(&model.Product{}, product.ID).Error)

	router.POST("/transactions", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "One or more products are no longer available", response["error"])
}

func TestTransactionController_Checkout_Unauthorized(t *testing.T) {
	controller, _, router, _, _, _ := setupTransactionControllerTest(t)

	router.POST("/transactions", controller.Checkout)

	req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "User not authenticated", response["error"])
}

func TestTransactionController_GetTransactions(t *testing.T) {
	controller, cartService, router, _, user, product := setupTransactionControllerTest(t)

	_, err := cartService.SetItemQuantity(user.ID, product.ID, 2)
	require.NoError(t, err)

	router.POST("/transactions", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})
	router.GET("/transactions", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.GetTransactions(c)
	})

	checkoutReq := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	checkoutW := httptest.NewRecorder()
	router.ServeHTTP(checkoutW, checkoutReq)
	require.Equal(t, http.StatusCreated, checkoutW.Code)

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, float64(1), response["count"])
	assert.Len(t, response["transactions"], 1)
}

func TestTransactionController_GetTransactions_Empty(t *testing.T) {
	controller, _, router, _, user, _ := setupTransactionControllerTest(t)

	router.GET("/transactions", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.GetTransactions(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, float64(0), response["count"])
}

func TestTransactionController_GetTransaction_NotFound(t *testing.T) {
	controller, _, router, _, user, _ := setupTransactionControllerTest(t)

	router.GET("/transactions/:id", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.GetTransaction(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Transaction not found", response["error"])
}

func TestTransactionController_GetTransaction_OtherUsersTransaction(t *testing.T) {
	controller, cartService, router, testDB, user, product := setupTransactionControllerTest(t)

	_, err := cartService.AddItem(user.ID, product.ID)
	require.NoError(t, err)

	router.POST("/transactions", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	checkoutReq := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	checkoutW := httptest.NewRecorder()
	router.ServeHTTP(checkoutW, checkoutReq)
	require.Equal(t, http.StatusCreated, checkoutW.Code)

	other := &model.User{
		FirstName:    "Other",
		LastName:     "User",
		Email:        "other@example.com",
		Username:     "otheruser",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	testDB.Create(other)

	router.GET("/transactions/:id", func(c *gin.Context) {
		setUserIDInContext(c, other.ID)
		controller.GetTransaction(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Transaction not found", response["error"])
}

func TestTransactionController_GetTransaction_InvalidID(t *testing.T) {
	controller, _, router, _, user, _ := setupTransactionControllerTest(t)

	router.GET("/transactions/:id", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.GetTransaction(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Invalid id", response["error"])
}
