package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/service"
	apperrors "github.com/minhvo/tiemao-backend/internal/errors"
	"github.com/minhvo/tiemao-backend/internal/middleware"
	"github.com/minhvo/tiemao-backend/internal/session"
)

// OrderController handles checkout and the signed-in user's order history.
type OrderController struct {
	orderService   service.OrderService
	cartService    service.CartService
	addressService service.AddressService
}

func NewOrderController(orderService service.OrderService, cartService service.CartService, addressService service.AddressService) *OrderController {
	return &OrderController{
		orderService:   orderService,
		cartService:    cartService,
		addressService: addressService,
	}
}

type CheckoutRequest struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
}

type BuyNowRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Option    string `json:"option"`
}

func (r *CheckoutRequest) toAddress() *model.CheckoutAddress {
	return &model.CheckoutAddress{
		Recipient: r.Recipient,
		Phone:     r.Phone,
		Street:    r.Street,
		City:      r.City,
		Postcode:  r.Postcode,
	}
}

// CheckoutInfo returns everything the checkout form needs: the priced cart
// and the user's default address for prefilling.
// GET /api/v1/orders/checkout
func (ctrl *OrderController) CheckoutInfo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess := session.Get(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập để đặt hàng")
		return
	}

	detail, err := ctrl.cartService.Detail(sess.Data.Cart)
	if err != nil {
		log.Error("Failed to price cart for checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}
	if len(detail.Lines) == 0 {
		apperrors.BadRequest(c, apperrors.CartEmpty, "Giỏ hàng đang trống")
		return
	}

	address, err := ctrl.addressService.Default(userID)
	if err != nil {
		log.Error("Failed to load default address", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":            detail,
		"default_address": address,
	})
}

// Checkout turns the session cart into a paid order. The shipping form is
// optional; when complete it is saved to the address book and attached.
// POST /api/v1/orders/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess := session.Get(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập để đặt hàng")
		return
	}

	// The shipping form is optional, so an empty body is fine.
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dữ liệu nhập không hợp lệ")
		return
	}

	order, err := ctrl.orderService.Checkout(userID, sess.Data.Cart, req.toAddress())
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			log.Warn("Checkout with empty cart", map[string]interface{}{
				"user_id": userID,
			})
			apperrors.BadRequest(c, apperrors.CartEmpty, "Giỏ hàng đang trống")
			return
		}
		log.Error("Failed to check out", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	sess.Data.Cart = model.Cart{}
	if err := sess.Save(); err != nil {
		log.Error("Failed to clear session cart after checkout", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
	}

	log.Info("Order placed", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
		"total":    order.Total,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đặt hàng thành công",
		"order":   order,
	})
}

// BuyNow places an order for a single product, bypassing the cart.
// POST /api/v1/orders/buy-now
func (ctrl *OrderController) BuyNow(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess := session.Get(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập để đặt hàng")
		return
	}

	var req BuyNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dữ liệu nhập không hợp lệ")
		return
	}

	order, err := ctrl.orderService.BuyNow(userID, req.ProductID, req.Quantity, req.Option)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) || errors.Is(err, service.ErrEmptyCart) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Không tìm thấy sản phẩm")
			return
		}
		log.Error("Failed to buy now", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": req.ProductID,
		})
		apperrors.InternalError(c, "")
		return
	}

	// Buy-now abandons the pending cart, session copy included.
	sess.Data.Cart = model.Cart{}
	if err := sess.Save(); err != nil {
		log.Error("Failed to clear session cart after buy-now", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
	}

	log.Info("Buy-now order placed", map[string]interface{}{
		"user_id":    userID,
		"order_id":   order.ID,
		"product_id": req.ProductID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đặt hàng thành công",
		"order":   order,
	})
}

// ListOrders returns the signed-in user's orders, newest first.
// GET /api/v1/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		log.Error("Failed to list orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one of the signed-in user's orders.
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã đơn hàng không hợp lệ")
		return
	}

	order, err := ctrl.orderService.GetUserOrder(userID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Không tìm thấy đơn hàng")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// UpdateShipping replaces the shipping address on one of the signed-in
// user's orders while it is still pending or paid.
// PUT /api/v1/orders/:id/shipping
func (ctrl *OrderController) UpdateShipping(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã đơn hàng không hợp lệ")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Vui lòng điền đầy đủ thông tin địa chỉ")
		return
	}

	if err := ctrl.orderService.UpdateShipping(userID, orderID, req.toAddress()); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Không tìm thấy đơn hàng")
		case errors.Is(err, service.ErrOrderTerminal):
			apperrors.BadRequest(c, apperrors.OrderTerminal, "Đơn hàng đã hoàn tất, không thể sửa")
		case errors.Is(err, service.ErrIncompleteAddress):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Vui lòng điền đầy đủ thông tin địa chỉ")
		default:
			log.Error("Failed to update order shipping", err, map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Order shipping updated", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã cập nhật địa chỉ giao hàng",
	})
}

// CancelOrder cancels one of the signed-in user's orders if it has not
// shipped yet.
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã đơn hàng không hợp lệ")
		return
	}

	if err := ctrl.orderService.CancelOrder(userID, orderID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Không tìm thấy đơn hàng")
		case errors.Is(err, service.ErrOrderTerminal):
			apperrors.BadRequest(c, apperrors.OrderTerminal, "Đơn hàng đã hoàn tất, không thể hủy")
		default:
			log.Error("Failed to cancel order", err, map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Order cancelled", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã hủy đơn hàng",
	})
}
