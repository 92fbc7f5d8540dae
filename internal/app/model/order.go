package model

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known status values.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
// pending → paid → shipped; cancelled is reachable from pending or paid.
// cancelled and shipped are terminal for every surface, user and admin alike.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case OrderStatusPending:
		return to == OrderStatusPaid || to == OrderStatusShipped || to == OrderStatusCancelled
	case OrderStatusPaid:
		return to == OrderStatusShipped || to == OrderStatusCancelled
	}
	return false
}

// Terminal reports whether an order in this status accepts no further edits.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusShipped
}

type Order struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	Total     int64       `gorm:"not null" json:"total"` // VND
	Status    OrderStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	AddressID *uint       `json:"address_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	User       User        `gorm:"foreignKey:UserID" json:"-"`
	Address    *Address    `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"order_id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Quantity  int    `gorm:"not null" json:"quantity"`
	Price     int64  `gorm:"not null" json:"price"` // unit price snapshotted at checkout
	Option    string `json:"option,omitempty"`      // variant option, e.g. size

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
