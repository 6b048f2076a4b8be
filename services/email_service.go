// File: /services/email_service.go
package services

import (
	"fmt"
	"log"

	"eventhub-api/config"
	"eventhub-api/models"

	"gopkg.in/gomail.v2"
)

// Notifier delivers enrollment lifecycle messages to participants.
type Notifier interface {
	SendEnrollmentEmail(to, name string, event EventMailInfo) error
	SendPaymentReceiptEmail(to, name string, event EventMailInfo, transactionID string, amount float64) error
	SendRefundEmail(to, name string, event EventMailInfo, amount float64) error
}

// EventMailInfo is the event detail rendered into participant mails.
type EventMailInfo struct {
	Name     string
	Date     string
	Location string
	Currency string
}

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

func (es *EmailService) newMessage(to, subject string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	return m
}

func (es *EmailService) send(m *gomail.Message, to, kind string) error {
	if es.config.SMTPHost == "" {
		log.Printf("SMTP not configured, skipping %s email to %s", kind, to)
		return nil
	}
	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	log.Printf("%s email sent to %s", kind, to)
	return nil
}

const mailStyle = `
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #6f42c1; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .box { background: white; padding: 20px; margin: 15px 0; border-radius: 8px; border-left: 4px solid #6f42c1; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }`

// SendEnrollmentEmail confirms a seat in a free event.
func (es *EmailService) SendEnrollmentEmail(to, name string, event EventMailInfo) error {
	m := es.newMessage(to, "You're in: "+event.Name)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>%s</style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>EventHub</h1>
            <p>Registration confirmed</p>
        </div>
        <div class="content">
            <h2>Hello %s!</h2>
            <p>Your seat is reserved.</p>
            <div class="box">
                <h3>%s</h3>
                <p><strong>When:</strong> %s</p>
                <p><strong>Where:</strong> %s</p>
            </div>
            <p>Your check-in ticket is available in the app.</p>
        </div>
        <div class="footer">
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, mailStyle, name, event.Name, event.Date, event.Location)

	textBody := fmt.Sprintf(`
Hello %s!

Your seat is reserved.

%s
When: %s
Where: %s

Your check-in ticket is available in the app.
`, name, event.Name, event.Date, event.Location)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)
	return es.send(m, to, "enrollment")
}

// SendPaymentReceiptEmail is sent once a joining fee is settled.
func (es *EmailService) SendPaymentReceiptEmail(to, name string, event EventMailInfo, transactionID string, amount float64) error {
	m := es.newMessage(to, "Payment receipt: "+event.Name)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>%s</style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>EventHub</h1>
            <p>Payment received</p>
        </div>
        <div class="content">
            <h2>Hello %s!</h2>
            <p>We received your payment and your seat is confirmed.</p>
            <div class="box">
                <h3>%s</h3>
                <p><strong>When:</strong> %s</p>
                <p><strong>Where:</strong> %s</p>
                <p><strong>Amount:</strong> %.2f %s</p>
                <p><strong>Transaction:</strong> %s</p>
            </div>
        </div>
        <div class="footer">
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, mailStyle, name, event.Name, event.Date, event.Location, amount, event.Currency, transactionID)

	textBody := fmt.Sprintf(`
Hello %s!

We received your payment and your seat is confirmed.

%s
When: %s
Where: %s
Amount: %.2f %s
Transaction: %s
`, name, event.Name, event.Date, event.Location, amount, event.Currency, transactionID)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)
	return es.send(m, to, "payment receipt")
}

// SendRefundEmail is sent after a paid participant leaves an event.
func (es *EmailService) SendRefundEmail(to, name string, event EventMailInfo, amount float64) error {
	m := es.newMessage(to, "Refund issued: "+event.Name)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>%s</style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>EventHub</h1>
            <p>Refund issued</p>
        </div>
        <div class="content">
            <h2>Hello %s,</h2>
            <p>You left <strong>%s</strong> and we refunded %.2f %s to your original payment method.</p>
            <p>Refunds usually appear within 5 to 10 business days.</p>
        </div>
        <div class="footer">
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, mailStyle, name, event.Name, amount, event.Currency)

	textBody := fmt.Sprintf(`
Hello %s,

You left %s and we refunded %.2f %s to your original payment method.
Refunds usually appear within 5 to 10 business days.
`, name, event.Name, amount, event.Currency)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)
	return es.send(m, to, "refund")
}

func mailInfo(e *models.Event) EventMailInfo {
	return EventMailInfo{
		Name:     e.Name,
		Date:     e.EventDate.Format("Mon, 02 Jan 2006 15:04 MST"),
		Location: e.Location,
		Currency: e.Currency,
	}
}
