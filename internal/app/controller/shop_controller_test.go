package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/internal/app/service"
	"github.com/minhvo/tiemao-backend/internal/db"
	"github.com/minhvo/tiemao-backend/pkg/images"
)

func setupShopControllerTest(t *testing.T) (*ShopController, *gin.Engine) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	resolver := images.NewResolver(t.TempDir(), images.DefaultPlaceholders)
	productRepo := repository.NewProductRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	productService := service.NewProductService(productRepo, resolver)

	products := []model.Product{
		{Title: "Áo thun basic", Description: "Cotton thoáng mát", Price: 150000, Category: "Áo"},
		{Title: "Mũ lưỡi trai", Description: "Phong cách trẻ trung", Price: 90000, Category: "Phụ kiện"},
		{Title: "Quần jeans slim", Description: "Form ôm vừa vặn", Price: 320000, Category: "Quần"},
	}
	require.NoError(t, testDB.Create(&products).Error)

	controller := NewShopController(productService, productRepo, userRepo, "/images/hero.jpg")

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return controller, router
}

func getJSON(t *testing.T, router *gin.Engine, path string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestShopControllerListProducts(t *testing.T) {
	controller, router := setupShopControllerTest(t)
	router.GET("/products", controller.ListProducts)

	code, response := getJSON(t, router, "/products")
	require.Equal(t, http.StatusOK, code)

	assert.Len(t, response["products"], 3)
	assert.Len(t, response["categories"], 3)
	assert.Equal(t, "/images/hero.jpg", response["hero_image"])
}

func TestShopControllerListProductsByCategory(t *testing.T) {
	controller, router := setupShopControllerTest(t)
	router.GET("/products", controller.ListProducts)

	code, response := getJSON(t, router, "/products?category=Quần")
	require.Equal(t, http.StatusOK, code)

	products := response["products"].([]interface{})
	require.Len(t, products, 1)
	first := products[0].(map[string]interface{})
	assert.Equal(t, "Quần jeans slim", first["title"])
}

func TestShopControllerSearchIgnoresDiacritics(t *testing.T) {
	controller, router := setupShopControllerTest(t)
	router.GET("/search", controller.SearchProducts)

	code, response := getJSON(t, router, "/search?q=mu")
	require.Equal(t, http.StatusOK, code)

	products := response["products"].([]interface{})
	require.Len(t, products, 1)
	first := products[0].(map[string]interface{})
	assert.Equal(t, "Mũ lưỡi trai", first["title"])
}

func TestShopControllerGetProductWithRelated(t *testing.T) {
	controller, router := setupShopControllerTest(t)
	router.GET("/products/:id", controller.GetProduct)

	code, response := getJSON(t, router, "/products/1")
	require.Equal(t, http.StatusOK, code)

	product := response["product"].(map[string]interface{})
	assert.Equal(t, "Áo thun basic", product["title"])

	// The product itself leads the related list.
	related := response["related"].([]interface{})
	require.NotEmpty(t, related)
	first := related[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["id"])
}

func TestShopControllerGetProductNotFound(t *testing.T) {
	controller, router := setupShopControllerTest(t)
	router.GET("/products/:id", controller.GetProduct)

	code, _ := getJSON(t, router, "/products/999")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestShopControllerGetProductBadID(t *testing.T) {
	controller, router := setupShopControllerTest(t)
	router.GET("/products/:id", controller.GetProduct)

	code, _ := getJSON(t, router, "/products/abc")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestShopControllerHealth(t *testing.T) {
	controller, router := setupShopControllerTest(t)
	router.GET("/health", controller.Health)

	code, response := getJSON(t, router, "/health")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, true, response["ok"])
	assert.Equal(t, float64(3), response["product_count"])
	assert.NotNil(t, response["pid"])
}
