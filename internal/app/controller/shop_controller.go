package controller

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/internal/app/service"
	apperrors "github.com/minhvo/tiemao-backend/internal/errors"
	"github.com/minhvo/tiemao-backend/internal/middleware"
)

// ShopController serves the public storefront: catalog, search and product
// detail.
type ShopController struct {
	productService service.ProductService
	productRepo    repository.ProductRepository
	userRepo       repository.UserRepository
	heroImage      string
}

func NewShopController(
	productService service.ProductService,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	heroImage string,
) *ShopController {
	return &ShopController{
		productService: productService,
		productRepo:    productRepo,
		userRepo:       userRepo,
		heroImage:      heroImage,
	}
}

// ListProducts returns the catalog, optionally filtered by category.
// GET /api/v1/products?category=
func (ctrl *ShopController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	category := c.Query("category")

	products, err := ctrl.productService.List(category)
	if err != nil {
		log.Error("Failed to list products", err, map[string]interface{}{
			"category": category,
		})
		apperrors.InternalError(c, "")
		return
	}

	categories, err := ctrl.productService.Categories()
	if err != nil {
		log.Error("Failed to list categories", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Products listed", map[string]interface{}{
		"category": category,
		"count":    len(products),
	})

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"categories": categories,
		"category":   category,
		"hero_image": ctrl.heroImage,
	})
}

// SearchProducts searches titles and descriptions, ignoring diacritics.
// GET /api/v1/products/search?q=
func (ctrl *ShopController) SearchProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := c.Query("q")

	products, err := ctrl.productService.Search(query)
	if err != nil {
		log.Error("Failed to search products", err, map[string]interface{}{
			"query": query,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Products searched", map[string]interface{}{
		"query": query,
		"count": len(products),
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"query":    query,
	})
}

// GetProduct returns one product with its related products.
// GET /api/v1/products/:id
func (ctrl *ShopController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": idStr,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã sản phẩm không hợp lệ")
		return
	}

	product, related, err := ctrl.productService.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			apperrors.NotFound(c, apperrors.ProductNotFound, "Không tìm thấy sản phẩm")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"related": related,
	})
}

// Health reports liveness plus a couple of row counts for quick smoke checks.
// GET /health
func (ctrl *ShopController) Health(c *gin.Context) {
	productCount, err := ctrl.productRepo.Count()
	if err != nil {
		productCount = -1
	}
	userCount, err := ctrl.userRepo.Count()
	if err != nil {
		userCount = -1
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"product_count": productCount,
		"user_count":    userCount,
		"pid":           os.Getpid(),
	})
}
