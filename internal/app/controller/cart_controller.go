package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/service"
	apperrors "github.com/minhvo/tiemao-backend/internal/errors"
	"github.com/minhvo/tiemao-backend/internal/middleware"
	"github.com/minhvo/tiemao-backend/internal/session"
)

// recentOrderLimit bounds the order history shown on the cart page.
const recentOrderLimit = 5

// CartController manages the browser-session cart. Signed-in users get the
// same cart mirrored into the carts table so it survives the session.
type CartController struct {
	cartService  service.CartService
	orderService service.OrderService
}

func NewCartController(cartService service.CartService, orderService service.OrderService) *CartController {
	return &CartController{
		cartService:  cartService,
		orderService: orderService,
	}
}

type AddToCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Option    string `json:"option"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartLineRequest struct {
	Key      string `json:"key" binding:"required"`
	Quantity int    `json:"quantity"`
}

type BulkUpdateCartRequest struct {
	Lines []CartLineInput `json:"lines" binding:"required"`
}

type CartLineInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Option    string `json:"option"`
}

// GetCart returns the resolved cart, plus recent orders for signed-in users.
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess := session.Get(c)

	detail, err := ctrl.cartService.Detail(sess.Data.Cart)
	if err != nil {
		log.Error("Failed to resolve cart", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	resp := gin.H{
		"cart":  detail,
		"count": detail.Count,
		"total": detail.Total,
	}

	if userID, ok := middleware.GetUserID(c); ok {
		recent, err := ctrl.orderService.RecentOrders(userID, recentOrderLimit)
		if err != nil {
			log.Error("Failed to fetch recent orders", err, map[string]interface{}{
				"user_id": userID,
			})
		} else {
			resp["recent_orders"] = recent
		}
	}

	c.JSON(http.StatusOK, resp)
}

// AddToCart adds a product line to the session cart.
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess := session.Get(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dữ liệu nhập không hợp lệ")
		return
	}

	cart, err := ctrl.cartService.Add(sess.Data.Cart, req.ProductID, req.Option, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found for cart", map[string]interface{}{
				"product_id": req.ProductID,
			})
			apperrors.NotFound(c, apperrors.ProductNotFound, "Không tìm thấy sản phẩm")
			return
		}
		log.Error("Failed to add item to cart", err, map[string]interface{}{
			"product_id": req.ProductID,
		})
		apperrors.InternalError(c, "")
		return
	}

	ctrl.saveCart(c, sess, cart)

	log.Info("Item added to cart", map[string]interface{}{
		"product_id": req.ProductID,
		"option":     req.Option,
		"quantity":   req.Quantity,
		"cart_count": cart.Count(),
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã thêm vào giỏ hàng",
		"count":   cart.Count(),
	})
}

// UpdateCartLine sets the quantity for one line key; zero removes it.
// PUT /api/v1/cart
func (ctrl *CartController) UpdateCartLine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess := session.Get(c)

	var req UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dữ liệu nhập không hợp lệ")
		return
	}

	cart := ctrl.cartService.UpdateQuantity(sess.Data.Cart, req.Key, req.Quantity)
	ctrl.saveCart(c, sess, cart)

	log.Info("Cart line updated", map[string]interface{}{
		"key":      req.Key,
		"quantity": req.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã cập nhật giỏ hàng",
		"count":   cart.Count(),
	})
}

// BulkUpdateCart rebuilds the cart from a full form submission.
// PUT /api/v1/cart/bulk
func (ctrl *CartController) BulkUpdateCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess := session.Get(c)

	var req BulkUpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dữ liệu nhập không hợp lệ")
		return
	}

	rows := make([]model.CartRow, 0, len(req.Lines))
	for _, line := range req.Lines {
		rows = append(rows, model.CartRow{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Option:    line.Option,
		})
	}

	cart := ctrl.cartService.BulkUpdate(rows)
	ctrl.saveCart(c, sess, cart)

	log.Info("Cart replaced", map[string]interface{}{
		"lines": len(rows),
		"count": cart.Count(),
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã cập nhật giỏ hàng",
		"count":   cart.Count(),
	})
}

// RemoveFromCart drops a product from the cart, covering all of its variant
// lines when no exact key matches.
// DELETE /api/v1/cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess := session.Get(c)

	productID := c.Param("id")
	if productID == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã sản phẩm không hợp lệ")
		return
	}

	cart := ctrl.cartService.Remove(sess.Data.Cart, productID)
	ctrl.saveCart(c, sess, cart)

	log.Info("Item removed from cart", map[string]interface{}{
		"product_id": productID,
		"cart_count": cart.Count(),
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã xóa khỏi giỏ hàng",
		"count":   cart.Count(),
	})
}

// saveCart writes the cart to the session and mirrors it to the carts table
// for signed-in users. Persistence failures are logged, not surfaced.
func (ctrl *CartController) saveCart(c *gin.Context, sess *session.State, cart model.Cart) {
	log := middleware.GetLoggerFromContext(c)

	sess.Data.Cart = cart
	if err := sess.Save(); err != nil {
		log.Error("Failed to save session cart", err, nil)
	}

	if userID, ok := middleware.GetUserID(c); ok {
		if err := ctrl.cartService.PersistForUser(userID, cart); err != nil {
			log.Error("Failed to persist cart", err, map[string]interface{}{
				"user_id": userID,
			})
		}
	}
}
