package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/pkg/logger"
)

// SalesRow is one product's aggregate within a sales report window.
type SalesRow struct {
	ProductID uint   `json:"product_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	TotalQty  int64  `json:"total_qty"`
	Revenue   int64  `json:"revenue"`
}

type OrderRepository interface {
	Create(order *model.Order) error
	Update(order *model.Order) error
	Delete(id uint) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	RecentByUserID(userID uint, limit int) ([]model.Order, error)
	FindAll() ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	UpdateAddress(id uint, addressID uint) error
	SalesSince(since time.Time, limit int) ([]SalesRow, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its items in one transaction.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id": order.UserID,
		"total":   order.Total,
		"items":   len(order.OrderItems),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
	})

	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) Delete(id uint) error {
	logger.Debug("Deleting order from database", map[string]interface{}{
		"order_id": id,
	})

	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Delete(&model.OrderItem{}, "order_id = ?", id).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete order items", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	if err := tx.Delete(&model.Order{}, id).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete order", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}

	return tx.Commit().Error
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Preload("Address").
		Preload("User").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// RecentByUserID returns the user's latest orders for the cart sidebar.
func (r *orderRepository) RecentByUserID(userID uint, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	var orders []model.Order
	err := r.db.
		Preload("OrderItems").
		Preload("User").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	err := r.db.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
	if err != nil {
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	return nil
}

func (r *orderRepository) UpdateAddress(id uint, addressID uint) error {
	err := r.db.Model(&model.Order{}).Where("id = ?", id).Update("address_id", addressID).Error
	if err != nil {
		logger.Error("Failed to update order address", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	return nil
}

// SalesSince aggregates units sold and revenue per product within the window,
// excluding cancelled orders. Revenue uses the snapshot price on the items.
func (r *orderRepository) SalesSince(since time.Time, limit int) ([]SalesRow, error) {
	var rows []SalesRow
	err := r.db.Model(&model.OrderItem{}).
		Select("order_items.product_id AS product_id, products.title AS title, products.image AS image, "+
			"SUM(order_items.quantity) AS total_qty, SUM(order_items.quantity * order_items.price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Where("orders.status <> ? AND orders.created_at >= ?", model.OrderStatusCancelled, since).
		Group("order_items.product_id, products.title, products.image").
		Order("total_qty DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
