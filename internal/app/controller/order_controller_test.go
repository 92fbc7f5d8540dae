package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/internal/app/service"
	"github.com/minhvo/tiemao-backend/internal/db"
	"github.com/minhvo/tiemao-backend/internal/middleware"
	"github.com/minhvo/tiemao-backend/internal/session"
	"github.com/minhvo/tiemao-backend/pkg/images"
)

func setupOrderControllerTest(t *testing.T) (*OrderController, *gin.Engine, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)

	orderService := service.NewOrderService(orderRepo, productRepo, cartRepo, addressRepo, userRepo, nil, nil)
	cartService := service.NewCartService(productRepo, cartRepo, images.NewResolver(t.TempDir(), images.DefaultPlaceholders))
	addressService := service.NewAddressService(addressRepo)
	controller := NewOrderController(orderService, cartService, addressService)

	user := &model.User{
		Name:         "Minh",
		Email:        "minh@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
		Title:    "Áo khoác dù",
		Price:    350000,
		Category: "Áo khoác",
	}
	require.NoError(t, testDB.Create(product).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(session.Middleware(session.NewStore(testDB)))
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user.ID)
		c.Set(middleware.UserEmailKey, user.Email)
		c.Set(middleware.UserRoleKey, user.Role)
	})

	return controller, router, testDB, user, product
}

// seedSessionCart primes a browser session holding the given cart and
// returns its cookie.
func seedSessionCart(t *testing.T, testDB *gorm.DB, cart model.Cart) *http.Cookie {
	t.Helper()
	store := session.NewStore(testDB)
	token := session.NewToken()
	require.NoError(t, store.Save(token, model.SessionData{Cart: cart}))
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func TestOrderControllerCheckoutInfo(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)

	router.GET("/checkout", controller.CheckoutInfo)

	address := &model.Address{
		UserID:    user.ID,
		Recipient: "Nguyễn Văn A",
		Phone:     "0912345678",
		Street:    "12 Lý Thường Kiệt",
		City:      "Hà Nội",
		IsDefault: true,
	}
	require.NoError(t, testDB.Create(address).Error)

	cookie := seedSessionCart(t, testDB, model.Cart{"1": 2})
	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	cart := response["cart"].(map[string]interface{})
	assert.Equal(t, float64(2*product.Price), cart["total"])

	// The default address prefills the shipping form.
	prefill := response["default_address"].(map[string]interface{})
	assert.Equal(t, "Nguyễn Văn A", prefill["recipient"])
}

func TestOrderControllerCheckoutInfoEmptyCart(t *testing.T) {
	controller, router, _, _, _ := setupOrderControllerTest(t)

	router.GET("/checkout", controller.CheckoutInfo)

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderControllerCheckout(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)

	router.POST("/checkout", controller.Checkout)

	cookie := seedSessionCart(t, testDB, model.Cart{"1::M": 2})

	body, _ := json.Marshal(map[string]interface{}{
		"recipient": "Nguyễn Văn A",
		"phone":     "0912345678",
		"street":    "12 Lý Thường Kiệt",
		"city":      "Hà Nội",
	})
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	order := response["order"].(map[string]interface{})
	assert.Equal(t, float64(2*product.Price), order["total"])
	assert.Equal(t, "paid", order["status"])

	var saved model.Order
	require.NoError(t, testDB.Preload("OrderItems").First(&saved).Error)
	assert.Equal(t, user.ID, saved.UserID)
	require.Len(t, saved.OrderItems, 1)
	assert.Equal(t, "M", saved.OrderItems[0].Option)

	// The session cart was emptied by the checkout.
	store := session.NewStore(testDB)
	data, err := store.Load(cookie.Value)
	require.NoError(t, err)
	assert.Empty(t, data.Cart)
}

func TestOrderControllerCheckoutEmptyCart(t *testing.T) {
	controller, router, _, _, _ := setupOrderControllerTest(t)

	router.POST("/checkout", controller.Checkout)

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderControllerBuyNow(t *testing.T) {
	controller, router, testDB, _, product := setupOrderControllerTest(t)

	router.POST("/buy-now", controller.BuyNow)

	// The pending cart is abandoned when a buy-now order is placed.
	cookie := seedSessionCart(t, testDB, model.Cart{"1::M": 3})

	body, _ := json.Marshal(map[string]interface{}{
		"product_id": product.ID,
	})
	req := httptest.NewRequest(http.MethodPost, "/buy-now", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	order := response["order"].(map[string]interface{})
	// Quantity defaults to one.
	assert.Equal(t, float64(product.Price), order["total"])

	store := session.NewStore(testDB)
	data, err := store.Load(cookie.Value)
	require.NoError(t, err)
	assert.Empty(t, data.Cart)
}

func TestOrderControllerBuyNowUnknownProduct(t *testing.T) {
	controller, router, _, _, _ := setupOrderControllerTest(t)

	router.POST("/buy-now", controller.BuyNow)

	body, _ := json.Marshal(map[string]interface{}{
		"product_id": 9999,
	})
	req := httptest.NewRequest(http.MethodPost, "/buy-now", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderControllerListAndGet(t *testing.T) {
	controller, router, testDB, _, _ := setupOrderControllerTest(t)

	router.POST("/checkout", controller.Checkout)
	router.GET("/orders", controller.ListOrders)
	router.GET("/orders/:id", controller.GetOrder)

	cookie := seedSessionCart(t, testDB, model.Cart{"1": 1})
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])

	req = httptest.NewRequest(http.MethodGet, "/orders/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderControllerCancel(t *testing.T) {
	controller, router, testDB, _, _ := setupOrderControllerTest(t)

	router.POST("/checkout", controller.Checkout)
	router.POST("/orders/:id/cancel", controller.CancelOrder)

	cookie := seedSessionCart(t, testDB, model.Cart{"1": 1})
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/orders/1/cancel", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var order model.Order
	require.NoError(t, testDB.First(&order, 1).Error)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)

	// A cancelled order cannot be cancelled again.
	req = httptest.NewRequest(http.MethodPost, "/orders/1/cancel", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderControllerUpdateShipping(t *testing.T) {
	controller, router, testDB, _, _ := setupOrderControllerTest(t)

	router.POST("/checkout", controller.Checkout)
	router.PUT("/orders/:id/shipping", controller.UpdateShipping)

	cookie := seedSessionCart(t, testDB, model.Cart{"1": 1})
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	body, _ := json.Marshal(map[string]interface{}{
		"recipient": "Trần Thị B",
		"phone":     "0987654321",
		"street":    "45 Nguyễn Trãi",
		"city":      "Đà Nẵng",
	})
	req = httptest.NewRequest(http.MethodPut, "/orders/1/shipping", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var order model.Order
	require.NoError(t, testDB.Preload("Address").First(&order, 1).Error)
	require.NotNil(t, order.Address)
	assert.Equal(t, "Trần Thị B", order.Address.Recipient)
	assert.Equal(t, "Đà Nẵng", order.Address.City)

	// A half-filled form is rejected.
	body, _ = json.Marshal(map[string]interface{}{
		"recipient": "Trần Thị B",
	})
	req = httptest.NewRequest(http.MethodPut, "/orders/1/shipping", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderControllerUpdateShippingCancelled(t *testing.T) {
	controller, router, testDB, _, _ := setupOrderControllerTest(t)

	router.POST("/checkout", controller.Checkout)
	router.POST("/orders/:id/cancel", controller.CancelOrder)
	router.PUT("/orders/:id/shipping", controller.UpdateShipping)

	cookie := seedSessionCart(t, testDB, model.Cart{"1": 1})
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/orders/1/cancel", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body, _ := json.Marshal(map[string]interface{}{
		"recipient": "Trần Thị B",
		"phone":     "0987654321",
		"street":    "45 Nguyễn Trãi",
		"city":      "Đà Nẵng",
	})
	req = httptest.NewRequest(http.MethodPut, "/orders/1/shipping", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderControllerGetOtherUsersOrder(t *testing.T) {
	controller, router, testDB, _, product := setupOrderControllerTest(t)

	other := &model.User{Name: "Khác", Email: "khac@example.com", PasswordHash: "hash"}
	require.NoError(t, testDB.Create(other).Error)
	order := &model.Order{
		UserID: other.ID,
		Total:  product.Price,
		Status: model.OrderStatusPaid,
	}
	require.NoError(t, testDB.Create(order).Error)

	router.GET("/orders/:id", controller.GetOrder)

	req := httptest.NewRequest(http.MethodGet, "/orders/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Ownership failures read as not found.
	assert.Equal(t, http.StatusNotFound, w.Code)
}
