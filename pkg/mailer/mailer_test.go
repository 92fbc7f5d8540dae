package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minhvo/tiemao-backend/config"
)

func TestFormatVND(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0đ"},
		{999, "999đ"},
		{1000, "1.000đ"},
		{250000, "250.000đ"},
		{1250000, "1.250.000đ"},
		{-50000, "-50.000đ"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatVND(tt.amount))
	}
}

func TestSendSkipsWithoutSMTPConfig(t *testing.T) {
	m := New(config.SMTPConfig{})
	assert.False(t, m.Configured())

	err := m.SendOrderConfirmation(OrderConfirmation{
		OrderID:   1,
		Recipient: "Nguyễn Văn A",
		Email:     "a@example.com",
		Lines:     []OrderLine{{Title: "Áo thun", Quantity: 2, Price: 150000}},
		Total:     300000,
	})
	assert.NoError(t, err)
}

func TestNilMailerSkipsSend(t *testing.T) {
	var m *Mailer
	assert.False(t, m.Configured())

	err := m.SendOrderConfirmation(OrderConfirmation{
		OrderID: 1,
		Email:   "a@example.com",
	})
	assert.NoError(t, err)
}

func TestRenderBodyIncludesOrderDetails(t *testing.T) {
	m := New(config.SMTPConfig{})
	body := m.renderBody(OrderConfirmation{
		OrderID:   42,
		Recipient: "Trần Thị B",
		Email:     "b@example.com",
		Lines: []OrderLine{
			{Title: "Mũ len", Option: "Xám", Quantity: 1, Price: 90000},
		},
		Total: 90000,
	})

	assert.Contains(t, body, "#42")
	assert.Contains(t, body, "Trần Thị B")
	assert.Contains(t, body, "Mũ len (Xám)")
	assert.Contains(t, body, "90.000đ")
}
