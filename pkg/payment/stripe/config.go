package stripe

// Config represents the configuration for the Stripe client
type Config struct {
	// SecretKey is the Stripe secret API key used for authentication
	SecretKey string

	// PublishableKey is exposed to the storefront for Stripe.js
	PublishableKey string

	// BaseURL is the Stripe API base URL
	BaseURL string

	// SuccessURL is the redirect URL after a completed checkout session
	SuccessURL string

	// CancelURL is the redirect URL after an abandoned checkout session
	CancelURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrInvalidRequest
	}
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	if c.SuccessURL == "" {
		return ErrInvalidRequest
	}
	if c.CancelURL == "" {
		return ErrInvalidRequest
	}
	return nil
}
