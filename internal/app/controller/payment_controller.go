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
	"github.com/minhvo/tiemao-backend/pkg/payment/stripe"
)

// PaymentController drives the hosted Stripe checkout: it opens a session for
// the current cart and turns the success callback into an order.
type PaymentController struct {
	stripeClient *stripe.Client
	cartService  service.CartService
	orderService service.OrderService
}

func NewPaymentController(
	stripeClient *stripe.Client,
	cartService service.CartService,
	orderService service.OrderService,
) *PaymentController {
	return &PaymentController{
		stripeClient: stripeClient,
		cartService:  cartService,
		orderService: orderService,
	}
}

type CreateStripeSessionRequest struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
}

// CreateStripeSession opens a hosted checkout for the session cart. The
// shipping form is parked in the session until the success callback.
// POST /api/v1/payment/stripe/session
func (ctrl *PaymentController) CreateStripeSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess := session.Get(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập để thanh toán")
		return
	}

	if ctrl.stripeClient == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable,
			apperrors.PaymentNotConfigured, "Thanh toán thẻ chưa được kích hoạt")
		return
	}

	var req CreateStripeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dữ liệu nhập không hợp lệ")
		return
	}

	detail, err := ctrl.cartService.Detail(sess.Data.Cart)
	if err != nil {
		log.Error("Failed to resolve cart for payment", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}
	if len(detail.Lines) == 0 {
		apperrors.BadRequest(c, apperrors.CartEmpty, "Giỏ hàng đang trống")
		return
	}

	lineItems := make([]stripe.LineItem, 0, len(detail.Lines))
	for _, line := range detail.Lines {
		lineItems = append(lineItems, stripe.LineItem{
			Name:      line.Product.Title,
			AmountVND: line.Product.Price,
			Quantity:  line.Quantity,
		})
	}

	email, _ := middleware.GetUserEmail(c)

	checkout, err := ctrl.stripeClient.CreateCheckoutSession(c.Request.Context(), stripe.CheckoutSessionRequest{
		LineItems:         lineItems,
		ClientReferenceID: sess.Token,
		CustomerEmail:     email,
	})
	if err != nil {
		log.Error("Failed to create Stripe checkout session", err, map[string]interface{}{
			"user_id": userID,
			"lines":   len(lineItems),
		})
		apperrors.RespondWithError(c, http.StatusBadGateway,
			apperrors.PaymentFailed, "Không thể kết nối cổng thanh toán. Vui lòng thử lại sau")
		return
	}

	sess.Data.StripeSessionID = checkout.ID
	sess.Data.CheckoutAddress = &model.CheckoutAddress{
		Recipient: req.Recipient,
		Phone:     req.Phone,
		Street:    req.Street,
		City:      req.City,
		Postcode:  req.Postcode,
	}
	if err := sess.Save(); err != nil {
		log.Error("Failed to save session before Stripe redirect", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Stripe checkout session created", map[string]interface{}{
		"user_id":           userID,
		"stripe_session_id": checkout.ID,
		"lines":             len(lineItems),
	})

	c.JSON(http.StatusOK, gin.H{
		"checkout_url":      checkout.URL,
		"stripe_session_id": checkout.ID,
	})
}

// StripeSuccess is the redirect target after a paid checkout. It verifies the
// session with Stripe and places the order from the cart still held in the
// browser session.
// GET /api/v1/payment/stripe/success?session_id=
func (ctrl *PaymentController) StripeSuccess(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess := session.Get(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập để thanh toán")
		return
	}

	if ctrl.stripeClient == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable,
			apperrors.PaymentNotConfigured, "Thanh toán thẻ chưa được kích hoạt")
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" || sessionID != sess.Data.StripeSessionID {
		log.Warn("Stripe success with unknown session id", map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
		})
		apperrors.BadRequest(c, apperrors.PaymentSessionInvalid, "Phiên thanh toán không hợp lệ")
		return
	}

	checkout, err := ctrl.stripeClient.RetrieveCheckoutSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, stripe.ErrSessionNotFound) {
			apperrors.NotFound(c, apperrors.PaymentSessionInvalid, "Không tìm thấy phiên thanh toán")
			return
		}
		log.Error("Failed to retrieve Stripe checkout session", err, map[string]interface{}{
			"user_id":           userID,
			"stripe_session_id": sessionID,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway,
			apperrors.PaymentFailed, "Không thể xác minh thanh toán. Vui lòng thử lại sau")
		return
	}

	if !checkout.Paid() {
		log.Warn("Stripe session not paid", map[string]interface{}{
			"user_id":           userID,
			"stripe_session_id": sessionID,
			"payment_status":    checkout.PaymentStatus,
		})
		apperrors.BadRequest(c, apperrors.PaymentFailed, "Thanh toán chưa hoàn tất")
		return
	}

	order, err := ctrl.orderService.Checkout(userID, sess.Data.Cart, sess.Data.CheckoutAddress)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			// The cart was already consumed, most likely a refreshed
			// success page. Nothing to place again.
			apperrors.BadRequest(c, apperrors.CartEmpty, "Giỏ hàng đang trống")
			return
		}
		log.Error("Failed to place order after payment", err, map[string]interface{}{
			"user_id":           userID,
			"stripe_session_id": sessionID,
		})
		apperrors.InternalError(c, "")
		return
	}

	sess.Data = model.SessionData{Cart: model.Cart{}}
	if err := sess.Save(); err != nil {
		log.Error("Failed to clear session after payment", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
	}

	log.Info("Stripe payment completed", map[string]interface{}{
		"user_id":           userID,
		"order_id":          order.ID,
		"stripe_session_id": sessionID,
		"total":             order.Total,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Thanh toán thành công",
		"order":   order,
	})
}
