package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/config"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/internal/app/service"
	"github.com/minhvo/tiemao-backend/internal/db"
	"github.com/minhvo/tiemao-backend/internal/session"
	"github.com/minhvo/tiemao-backend/pkg/images"
)

func setupAuthControllerTest(t *testing.T) (*AuthController, *gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	})

	resolver := images.NewResolver(t.TempDir(), images.DefaultPlaceholders)
	cartService := service.NewCartService(
		repository.NewProductRepository(testDB),
		repository.NewCartRepository(testDB),
		resolver,
	)

	authController := NewAuthController(authService, cartService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(session.Middleware(session.NewStore(testDB)))

	return authController, router, testDB
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthControllerRegisterAndLogin(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/register", controller.Register)
	router.POST("/login", controller.Login)

	w := postJSON(t, router, "/register", map[string]interface{}{
		"name":     "Minh",
		"email":    "Minh@Example.com",
		"password": "Matkhau@1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/login", map[string]interface{}{
		"email":    "minh@example.com",
		"password": "Matkhau@1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.NotEmpty(t, response["access_token"])
	assert.NotEmpty(t, response["refresh_token"])

	user, ok := response["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "minh@example.com", user["email"])
}

func TestAuthControllerRegisterWeakPassword(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/register", controller.Register)

	w := postJSON(t, router, "/register", map[string]interface{}{
		"name":     "Minh",
		"email":    "minh@example.com",
		"password": "matkhau1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthControllerRegisterDuplicateEmail(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/register", controller.Register)

	payload := map[string]interface{}{
		"name":     "Minh",
		"email":    "minh@example.com",
		"password": "Matkhau@1",
	}
	w := postJSON(t, router, "/register", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/register", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthControllerLoginWrongPassword(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/register", controller.Register)
	router.POST("/login", controller.Login)

	w := postJSON(t, router, "/register", map[string]interface{}{
		"name":     "Minh",
		"email":    "minh@example.com",
		"password": "Matkhau@1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/login", map[string]interface{}{
		"email":    "minh@example.com",
		"password": "Saimatkhau@1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthControllerLogoutResetsSessionCart(t *testing.T) {
	controller, router, _ := setupAuthControllerTest(t)

	router.POST("/logout", controller.Logout)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
