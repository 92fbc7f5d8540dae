package stripe

// LineItem describes a single product row in a checkout session.
// Amounts are VND; they are converted to USD cents on the wire.
type LineItem struct {
	// Name is the product title shown on the Stripe checkout page
	Name string

	// AmountVND is the unit price in Vietnamese dong
	AmountVND int64

	// Quantity is the number of units
	Quantity int
}

// CheckoutSessionRequest represents the parameters for creating a
// Stripe Checkout session
type CheckoutSessionRequest struct {
	// LineItems are the products being purchased
	LineItems []LineItem

	// SuccessURL overrides the configured success redirect when set
	SuccessURL string

	// CancelURL overrides the configured cancel redirect when set
	CancelURL string

	// ClientReferenceID ties the session back to a local cart or user
	ClientReferenceID string

	// CustomerEmail prefills the email field on the checkout page
	CustomerEmail string
}

// CheckoutSession represents a Stripe Checkout session
type CheckoutSession struct {
	// ID is the session identifier (cs_...)
	ID string `json:"id"`

	// URL is the hosted checkout page URL to redirect the customer to
	URL string `json:"url"`

	// PaymentStatus is "paid", "unpaid" or "no_payment_required"
	PaymentStatus string `json:"payment_status"`

	// Status is "open", "complete" or "expired"
	Status string `json:"status"`

	// AmountTotal is the total in the smallest currency unit (USD cents)
	AmountTotal int64 `json:"amount_total"`

	// Currency is the three-letter ISO currency code
	Currency string `json:"currency"`

	// ClientReferenceID echoes the reference passed at creation
	ClientReferenceID string `json:"client_reference_id"`

	// CustomerEmail is the email collected or prefilled on the session
	CustomerEmail string `json:"customer_email"`
}

// Paid reports whether the session has been successfully paid.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid"
}

// ErrorResponse represents a Stripe API error payload
type ErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// UnitAmountUSDCents converts a VND price to the USD cent amount charged via
// Stripe: roughly 1000 VND to the dollar, rounded, with a 100-cent floor so
// every line item clears Stripe's minimum charge.
func UnitAmountUSDCents(amountVND int64) int64 {
	cents := (amountVND + 500) / 1000 * 100
	if cents < 100 {
		return 100
	}
	return cents
}
