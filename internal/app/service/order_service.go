package service

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/pkg/logger"
	"github.com/minhvo/tiemao-backend/pkg/mailer"
	"github.com/minhvo/tiemao-backend/pkg/rabbitmq"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderTerminal     = errors.New("order is in a terminal status")
	ErrBadTransition     = errors.New("invalid order status transition")
	ErrCancelledLocked   = errors.New("cancelled orders cannot be modified")
	ErrInvalidOrderState = errors.New("invalid order status value")
	ErrIncompleteAddress = errors.New("shipping address is incomplete")
)

type OrderService interface {
	Checkout(userID uint, cart model.Cart, address *model.CheckoutAddress) (*model.Order, error)
	BuyNow(userID uint, productID uint, qty int, option string) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetUserOrder(userID, orderID uint) (*model.Order, error)
	RecentOrders(userID uint, limit int) ([]model.Order, error)
	CancelOrder(userID, orderID uint) error
	UpdateShipping(userID, orderID uint, address *model.CheckoutAddress) error
	AllOrders() ([]model.Order, error)
	GetOrder(orderID uint) (*model.Order, error)
	UpdateStatus(orderID uint, status model.OrderStatus) error
	UpdateShippingAsAdmin(orderID uint, address *model.CheckoutAddress) error
	DeleteOrder(orderID uint) error
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	addressRepo repository.AddressRepository
	userRepo    repository.UserRepository
	mail        *mailer.Mailer
	broker      *rabbitmq.Client
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	userRepo repository.UserRepository,
	mail *mailer.Mailer,
	broker *rabbitmq.Client,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		userRepo:    userRepo,
		mail:        mail,
		broker:      broker,
	}
}

// Checkout turns the cart into a paid order. Prices are re-fetched from the
// catalog and snapshotted onto the items; cart lines whose product no longer
// exists are dropped. A complete shipping form becomes a saved address
// attached to the order. The persisted cart is cleared and the confirmation
// mail goes out best-effort.
func (s *orderService) Checkout(userID uint, cart model.Cart, address *model.CheckoutAddress) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id": userID,
		"lines":   len(cart),
	})

	items, total := s.buildItems(cart)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var addressID *uint
	if address.Complete() {
		addr := model.Address{
			UserID:    userID,
			Recipient: address.Recipient,
			Phone:     address.Phone,
			Street:    address.Street,
			City:      address.City,
			Postcode:  address.Postcode,
		}
		if err := s.addressRepo.Create(&addr); err != nil {
			// the order still goes through without a saved address
			logger.Error("Failed to save checkout address", err, map[string]interface{}{
				"user_id": userID,
			})
		} else {
			addressID = &addr.ID
		}
	}

	order := &model.Order{
		UserID:     userID,
		Total:      total,
		Status:     model.OrderStatusPaid,
		AddressID:  addressID,
		OrderItems: items,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.finishOrder(userID, order)
	return order, nil
}

// BuyNow places an immediate single-product order and clears the cart.
func (s *orderService) BuyNow(userID uint, productID uint, qty int, option string) (*model.Order, error) {
	product, err := s.productRepo.FindByID(productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if qty <= 0 {
		qty = 1
	}

	order := &model.Order{
		UserID: userID,
		Total:  product.Price * int64(qty),
		Status: model.OrderStatusPaid,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Quantity: qty, Price: product.Price, Option: option},
		},
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.finishOrder(userID, order)
	return order, nil
}

// buildItems resolves cart lines into order items with the current catalog
// price snapshotted on each row.
func (s *orderService) buildItems(cart model.Cart) ([]model.OrderItem, int64) {
	items := []model.OrderItem{}
	var total int64

	for _, key := range cart.SortedKeys() {
		qty := cart[key]
		productID, option := model.DecodeLineKey(key)
		id, err := strconv.ParseUint(productID, 10, 64)
		if err != nil {
			continue
		}

		product, err := s.productRepo.FindByID(uint(id))
		if err != nil {
			continue
		}

		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Quantity:  qty,
			Price:     product.Price,
			Option:    option,
		})
		total += product.Price * int64(qty)
	}
	return items, total
}

// finishOrder clears the persisted cart, sends the confirmation mail and
// publishes the order event. None of these can fail the order.
func (s *orderService) finishOrder(userID uint, order *model.Order) {
	if err := s.cartRepo.Save(userID, model.Cart{}); err != nil {
		logger.Error("Failed to clear persisted cart after order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
	}

	if user, err := s.userRepo.FindByID(userID); err == nil && user.Email != "" {
		lines := make([]mailer.OrderLine, 0, len(order.OrderItems))
		for _, item := range order.OrderItems {
			title := ""
			if product, err := s.productRepo.FindByID(item.ProductID); err == nil {
				title = product.Title
			}
			lines = append(lines, mailer.OrderLine{
				Title:    title,
				Option:   item.Option,
				Quantity: item.Quantity,
				Price:    item.Price,
			})
		}
		if err := s.mail.SendOrderConfirmation(mailer.OrderConfirmation{
			OrderID:   order.ID,
			Recipient: user.Name,
			Email:     user.Email,
			Lines:     lines,
			Total:     order.Total,
		}); err != nil {
			logger.Error("Order confirmation mail failed", err, map[string]interface{}{
				"order_id": order.ID,
			})
		}
	}

	itemsQty := 0
	for _, item := range order.OrderItems {
		itemsQty += item.Quantity
	}
	if err := s.broker.PublishOrderCreated(rabbitmq.OrderEvent{
		OrderID:  order.ID,
		UserID:   userID,
		Total:    order.Total,
		Status:   string(order.Status),
		PaidAt:   time.Now().UTC().Format(time.RFC3339),
		ItemsQty: itemsQty,
	}); err != nil {
		logger.Error("Order event publish failed", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.Total,
	})
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) GetUserOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) RecentOrders(userID uint, limit int) ([]model.Order, error) {
	return s.orderRepo.RecentByUserID(userID, limit)
}

// CancelOrder lets the owner cancel an order that is not yet shipped.
func (s *orderService) CancelOrder(userID, orderID uint) error {
	order, err := s.GetUserOrder(userID, orderID)
	if err != nil {
		return err
	}
	if order.Status.Terminal() {
		return ErrOrderTerminal
	}
	return s.orderRepo.UpdateStatus(orderID, model.OrderStatusCancelled)
}

// UpdateShipping lets the owner change the shipping address on an order that
// has not reached a terminal status.
func (s *orderService) UpdateShipping(userID, orderID uint, address *model.CheckoutAddress) error {
	order, err := s.GetUserOrder(userID, orderID)
	if err != nil {
		return err
	}
	if order.Status.Terminal() {
		return ErrOrderTerminal
	}
	return s.replaceShipping(order, address)
}

// UpdateShippingAsAdmin changes the shipping address from the back office.
// Cancelled orders are locked; shipped orders no longer accept edits.
func (s *orderService) UpdateShippingAsAdmin(orderID uint, address *model.CheckoutAddress) error {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return err
	}
	if order.Status == model.OrderStatusCancelled {
		return ErrCancelledLocked
	}
	if order.Status.Terminal() {
		return ErrOrderTerminal
	}
	return s.replaceShipping(order, address)
}

// replaceShipping stores the form as a new address row and points the order
// at it, preserving earlier address rows referenced by order history.
func (s *orderService) replaceShipping(order *model.Order, address *model.CheckoutAddress) error {
	if !address.Complete() {
		return ErrIncompleteAddress
	}

	row := model.Address{
		UserID:    order.UserID,
		Recipient: address.Recipient,
		Phone:     address.Phone,
		Street:    address.Street,
		City:      address.City,
		Postcode:  address.Postcode,
	}
	if err := s.addressRepo.Create(&row); err != nil {
		return err
	}

	if err := s.orderRepo.UpdateAddress(order.ID, row.ID); err != nil {
		return err
	}

	logger.Info("Order shipping address updated", map[string]interface{}{
		"order_id":   order.ID,
		"address_id": row.ID,
	})
	return nil
}

func (s *orderService) AllOrders() ([]model.Order, error) {
	return s.orderRepo.FindAll()
}

func (s *orderService) GetOrder(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// UpdateStatus applies an admin status change, enforcing the transition
// rules. Cancelled orders are locked against any edit.
func (s *orderService) UpdateStatus(orderID uint, status model.OrderStatus) error {
	if !model.ValidOrderStatus(status) {
		return ErrInvalidOrderState
	}

	order, err := s.GetOrder(orderID)
	if err != nil {
		return err
	}
	if order.Status == model.OrderStatusCancelled {
		return ErrCancelledLocked
	}
	if !model.CanTransition(order.Status, status) {
		return ErrBadTransition
	}
	return s.orderRepo.UpdateStatus(orderID, status)
}

// DeleteOrder removes an order and its items. Cancelled orders stay on
// record.
func (s *orderService) DeleteOrder(orderID uint) error {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return err
	}
	if order.Status == model.OrderStatusCancelled {
		return ErrCancelledLocked
	}
	return s.orderRepo.Delete(orderID)
}
