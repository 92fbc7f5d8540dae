package model

import (
	"encoding/json"
	"time"
)

// SessionData is what a browser session carries between requests: the guest
// cart and the last payment reference, pending while a Stripe redirect is in
// flight. Identity itself lives in the JWT, not here.
type SessionData struct {
	Cart            Cart             `json:"cart,omitempty"`
	StripeSessionID string           `json:"stripe_session_id,omitempty"`
	CheckoutAddress *CheckoutAddress `json:"checkout_address,omitempty"`
}

// CheckoutAddress is the shipping form captured before a Stripe redirect so
// the success callback can attach it to the order.
type CheckoutAddress struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
}

// Complete reports whether the form has every required field.
func (a *CheckoutAddress) Complete() bool {
	return a != nil && a.Recipient != "" && a.Phone != "" && a.Street != "" && a.City != ""
}

// Session is a server-side browser session row keyed by an opaque cookie
// token.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64" json:"token"`
	Data      string    `gorm:"type:text" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// Decode unmarshals the session payload; a blank row yields empty data with
// a ready-to-use cart.
func (s *Session) Decode() (SessionData, error) {
	data := SessionData{}
	if s.Data != "" {
		if err := json.Unmarshal([]byte(s.Data), &data); err != nil {
			return SessionData{Cart: Cart{}}, err
		}
	}
	if data.Cart == nil {
		data.Cart = Cart{}
	}
	return data, nil
}

// Encode marshals the payload back onto the row.
func (s *Session) Encode(data SessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.Data = string(raw)
	return nil
}
