package model

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// LineKeySeparator joins a product id with its variant option inside a cart
// line key. It is reserved: raw product ids and option strings never contain it.
const LineKeySeparator = "::"

// Cart maps a line key ("12" or "12::M") to a positive quantity.
type Cart map[string]int

// EncodeLineKey builds the cart key for a product and optional variant option.
func EncodeLineKey(productID string, option string) string {
	if option == "" {
		return productID
	}
	return productID + LineKeySeparator + option
}

// DecodeLineKey splits a line key on the first separator occurrence,
// returning the product id and the option ("" when absent).
func DecodeLineKey(key string) (productID, option string) {
	if i := strings.Index(key, LineKeySeparator); i >= 0 {
		return key[:i], key[i+len(LineKeySeparator):]
	}
	return key, ""
}

// Add increments the line for (productID, option) by qty. A qty of zero or
// less still registers one unit, matching the storefront's add-to-cart form.
func (c Cart) Add(productID, option string, qty int) {
	if qty <= 0 {
		qty = 1
	}
	key := EncodeLineKey(productID, option)
	c[key] += qty
}

// Remove deletes the exact key when present, otherwise every line whose
// product id component matches (covers option variants of the same product).
func (c Cart) Remove(productID string) {
	if _, ok := c[productID]; ok {
		delete(c, productID)
		return
	}
	for key := range c {
		if id, _ := DecodeLineKey(key); id == productID {
			delete(c, key)
		}
	}
}

// SetQuantity sets the quantity for an existing line key; qty <= 0 deletes it.
func (c Cart) SetQuantity(key string, qty int) {
	if qty <= 0 {
		delete(c, key)
		return
	}
	c[key] = qty
}

// CartRow is one line of a multi-row cart form submission.
type CartRow struct {
	ProductID string
	Quantity  int
	Option    string
}

// BulkReplace rebuilds the cart from a full form submission: lines absent from
// rows are dropped, rows with qty <= 0 are skipped, duplicate keys are summed.
func (c Cart) BulkReplace(rows []CartRow) {
	for key := range c {
		delete(c, key)
	}
	for _, row := range rows {
		if row.Quantity <= 0 || row.ProductID == "" {
			continue
		}
		key := EncodeLineKey(row.ProductID, row.Option)
		c[key] += row.Quantity
	}
}

// MergeCarts returns a new cart summing quantities for keys shared between a
// and b. Used at login to combine a persisted cart with the session cart.
func MergeCarts(a, b Cart) Cart {
	merged := make(Cart, len(a)+len(b))
	for key, qty := range a {
		if qty > 0 {
			merged[key] += qty
		}
	}
	for key, qty := range b {
		if qty > 0 {
			merged[key] += qty
		}
	}
	return merged
}

// Count returns the total number of units across all lines.
func (c Cart) Count() int {
	total := 0
	for _, qty := range c {
		total += qty
	}
	return total
}

// SortedKeys returns the line keys in stable order for display.
func (c Cart) SortedKeys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of the cart.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for key, qty := range c {
		out[key] = qty
	}
	return out
}

// MarshalItems serializes the cart the way the carts.items column stores it.
func (c Cart) MarshalItems() (string, error) {
	if c == nil {
		c = Cart{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalItems parses a carts.items column value; empty input yields an
// empty cart rather than an error.
func UnmarshalItems(items string) (Cart, error) {
	cart := Cart{}
	if strings.TrimSpace(items) == "" {
		return cart, nil
	}
	if err := json.Unmarshal([]byte(items), &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// CartRecord is the persisted per-user cart: one row per user, the mapping
// stored as a JSON object in the items column.
type CartRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Items     string    `gorm:"type:text" json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartRecord) TableName() string {
	return "carts"
}
