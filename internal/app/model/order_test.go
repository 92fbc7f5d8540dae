package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"Pending to paid", OrderStatusPending, OrderStatusPaid, true},
		{"Pending to shipped", OrderStatusPending, OrderStatusShipped, true},
		{"Pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"Paid to shipped", OrderStatusPaid, OrderStatusShipped, true},
		{"Paid to cancelled", OrderStatusPaid, OrderStatusCancelled, true},
		{"Shipped is terminal", OrderStatusShipped, OrderStatusCancelled, false},
		{"Cancelled is terminal", OrderStatusCancelled, OrderStatusPending, false},
		{"Cancelled to paid", OrderStatusCancelled, OrderStatusPaid, false},
		{"Cancelled to shipped", OrderStatusCancelled, OrderStatusShipped, false},
		{"No self transition", OrderStatusPending, OrderStatusPending, false},
		{"Paid back to pending", OrderStatusPaid, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.True(t, OrderStatusShipped.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusPaid.Terminal())
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderStatusPaid))
	assert.False(t, ValidOrderStatus("refunded"))
}
