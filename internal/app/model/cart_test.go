package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineKey_EncodeDecode(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		option    string
	}{
		{"No option", "5", ""},
		{"With option", "5", "M"},
		{"Multi char option", "128", "XL"},
		{"Option with spaces", "7", "Xanh nhạt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := EncodeLineKey(tt.productID, tt.option)
			id, opt := DecodeLineKey(key)
			assert.Equal(t, tt.productID, id)
			assert.Equal(t, tt.option, opt)
		})
	}
}

func TestCart_Add(t *testing.T) {
	cart := Cart{}

	cart.Add("5", "M", 2)
	assert.Equal(t, 2, cart["5::M"])

	// Adding again sums quantities on the same key
	cart.Add("5", "M", 1)
	assert.Equal(t, 3, cart["5::M"])

	// Zero or negative quantity still registers one unit
	cart.Add("9", "", 0)
	assert.Equal(t, 1, cart["9"])
	cart.Add("9", "", -4)
	assert.Equal(t, 2, cart["9"])
}

func TestCart_Remove(t *testing.T) {
	cart := Cart{"5": 1, "5::M": 2, "5::L": 3, "7": 4}

	// Exact key wins when present
	cart.Remove("5")
	assert.NotContains(t, cart, "5")
	assert.Contains(t, cart, "5::M")

	// Without an exact key, every variant of the product goes
	cart.Remove("5")
	assert.NotContains(t, cart, "5::M")
	assert.NotContains(t, cart, "5::L")
	assert.Equal(t, 4, cart["7"])
}

func TestCart_SetQuantity(t *testing.T) {
	cart := Cart{"5::M": 2}

	cart.SetQuantity("5::M", 7)
	assert.Equal(t, 7, cart["5::M"])

	cart.SetQuantity("5::M", 0)
	assert.NotContains(t, cart, "5::M")

	cart.SetQuantity("9", -1)
	assert.NotContains(t, cart, "9")
}

func TestCart_BulkReplace(t *testing.T) {
	cart := Cart{"1": 5, "2::M": 3}

	cart.BulkReplace([]CartRow{
		{ProductID: "2", Quantity: 1, Option: "M"},
		{ProductID: "3", Quantity: 0}, // skipped
		{ProductID: "4", Quantity: 2, Option: ""},
		{ProductID: "2", Quantity: 2, Option: "M"}, // summed with the first row
	})

	assert.NotContains(t, cart, "1") // absent from the submission, dropped
	assert.Equal(t, 3, cart["2::M"])
	assert.NotContains(t, cart, "3")
	assert.Equal(t, 2, cart["4"])
	assert.Len(t, cart, 2)
}

func TestMergeCarts(t *testing.T) {
	a := Cart{"1": 2, "2::M": 1}
	b := Cart{"2::M": 3, "4": 5}

	merged := MergeCarts(a, b)
	assert.Equal(t, Cart{"1": 2, "2::M": 4, "4": 5}, merged)

	// Commutative
	assert.Equal(t, merged, MergeCarts(b, a))

	// Disjoint key sets merge to the union
	disjoint := MergeCarts(Cart{"1": 1}, Cart{"2": 2})
	assert.Equal(t, Cart{"1": 1, "2": 2}, disjoint)

	// Inputs untouched
	assert.Equal(t, 1, a["2::M"])
	assert.Equal(t, 3, b["2::M"])
}

func TestCart_ItemsRoundTrip(t *testing.T) {
	cart := Cart{"5::M": 2, "9": 1}

	items, err := cart.MarshalItems()
	require.NoError(t, err)

	parsed, err := UnmarshalItems(items)
	require.NoError(t, err)
	assert.Equal(t, cart, parsed)

	// Empty column value decodes to an empty cart
	empty, err := UnmarshalItems("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCart_Count(t *testing.T) {
	cart := Cart{"1": 2, "2::M": 3}
	assert.Equal(t, 5, cart.Count())
	assert.Equal(t, 0, Cart{}.Count())
}
