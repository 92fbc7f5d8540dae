package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/minhvo/tiemao-backend/config"
	"github.com/minhvo/tiemao-backend/pkg/logger"
)

// OrderLine is a single row in the order confirmation email.
type OrderLine struct {
	Title    string
	Option   string
	Quantity int
	Price    int64
}

// OrderConfirmation holds everything needed to render the confirmation mail.
type OrderConfirmation struct {
	OrderID   uint
	Recipient string
	Email     string
	Lines     []OrderLine
	Total     int64
}

// Mailer sends transactional mail over SMTP. Delivery is best-effort: order
// placement must never fail because the mail server is down.
type Mailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Configured reports whether SMTP credentials are present. Without them the
// mailer logs the message instead of sending it.
func (m *Mailer) Configured() bool {
	return m != nil && m.cfg.Host != "" && m.cfg.User != "" && m.cfg.Password != ""
}

// SendOrderConfirmation sends the post-checkout confirmation email. Safe on a
// nil receiver, like the order event publisher.
func (m *Mailer) SendOrderConfirmation(oc OrderConfirmation) error {
	if !m.Configured() {
		logger.Info("SMTP not configured, skipping order confirmation email", map[string]interface{}{
			"order_id": oc.OrderID,
			"email":    oc.Email,
		})
		return nil
	}

	subject := fmt.Sprintf("[Tiệm Áo] Xác nhận đơn hàng #%d", oc.OrderID)
	body := m.renderBody(oc)

	message := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		m.fromAddress(), oc.Email, subject, body,
	))

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	err := smtp.SendMail(
		m.cfg.Host+":"+m.cfg.Port,
		auth,
		m.fromAddress(),
		[]string{oc.Email},
		message,
	)
	if err != nil {
		logger.Error("Failed to send order confirmation email", err, map[string]interface{}{
			"order_id": oc.OrderID,
			"email":    oc.Email,
		})
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}

	logger.Info("Order confirmation email sent", map[string]interface{}{
		"order_id": oc.OrderID,
		"email":    oc.Email,
	})
	return nil
}

func (m *Mailer) fromAddress() string {
	if m.cfg.From != "" {
		return m.cfg.From
	}
	return m.cfg.User
}

func (m *Mailer) renderBody(oc OrderConfirmation) string {
	var rows strings.Builder
	for _, line := range oc.Lines {
		title := line.Title
		if line.Option != "" {
			title = fmt.Sprintf("%s (%s)", title, line.Option)
		}
		rows.WriteString(fmt.Sprintf(
			`<tr><td style="padding: 8px; border-bottom: 1px solid #eee;">%s</td>`+
				`<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: center;">%d</td>`+
				`<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td></tr>`,
			title, line.Quantity, FormatVND(line.Price*int64(line.Quantity)),
		))
	}

	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 10px;">
		<h1 style="color: #333; margin-bottom: 20px;">Cảm ơn bạn đã đặt hàng!</h1>
		<p style="color: #666; line-height: 1.6;">
			Xin chào %s,<br>
			Đơn hàng <strong>#%d</strong> của bạn đã được thanh toán thành công.
		</p>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tr>
				<th style="padding: 8px; text-align: left; border-bottom: 2px solid #333;">Sản phẩm</th>
				<th style="padding: 8px; text-align: center; border-bottom: 2px solid #333;">SL</th>
				<th style="padding: 8px; text-align: right; border-bottom: 2px solid #333;">Thành tiền</th>
			</tr>
			%s
		</table>
		<p style="color: #333; font-size: 18px; text-align: right;">
			Tổng cộng: <strong>%s</strong>
		</p>
	</div>
</body>
</html>
`, oc.Recipient, oc.OrderID, rows.String(), FormatVND(oc.Total))
}

// FormatVND renders an amount with dot thousand separators and the đ sign.
func FormatVND(amount int64) string {
	digits := fmt.Sprintf("%d", amount)
	neg := false
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	out := b.String() + "đ"
	if neg {
		out = "-" + out
	}
	return out
}
