package utils

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"lumos/config"
	"lumos/logger"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type EmailMessage struct {
	To      []string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(msg EmailMessage) error
}

type sendgridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func NewSendgridMailer(key, fromName, fromEmail string) Mailer {
	return &sendgridMailer{
		key:        key,
		from:       sgmail.NewEmail(fromName, fromEmail),
		subjPrefix: "[" + fromName + "] ",
	}
}

func (m *sendgridMailer) Send(msg EmailMessage) error {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/html", msg.HTML))

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(v3)

	res, err := sendgrid.API(req)
	if err != nil {
		return errors.Wrap(err, "sendgrid")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// Outbox keeps every message in memory. It is the mailer when no SendGrid key is set.
type Outbox struct {
	mu   sync.Mutex
	sent []EmailMessage
}

func (o *Outbox) Send(msg EmailMessage) error {
	o.mu.Lock()
	o.sent = append(o.sent, msg)
	o.mu.Unlock()
	logger.Info("email to %s: %s", strings.Join(msg.To, ","), msg.Subject)
	return nil
}

func (o *Outbox) Messages() []EmailMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]EmailMessage, len(o.sent))
	copy(out, o.sent)
	return out
}

var (
	mailerMu sync.RWMutex
	mailer   Mailer = &Outbox{}
)

// SetupMailer selects SendGrid when an API key is configured.
func SetupMailer(cfg *config.Config) {
	if cfg.SendgridApiKey == "" {
		logger.Info("SENDGRID_API_KEY not set, emails are logged only")
		SetMailer(&Outbox{})
		return
	}
	SetMailer(NewSendgridMailer(cfg.SendgridApiKey, cfg.EmailSenderName, cfg.EmailSender))
}

func SetMailer(m Mailer) {
	mailerMu.Lock()
	mailer = m
	mailerMu.Unlock()
}

func currentMailer() Mailer {
	mailerMu.RLock()
	defer mailerMu.RUnlock()
	return mailer
}

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	err := currentMailer().Send(EmailMessage{To: to, Subject: subject, HTML: htmlBody})
	if err != nil {
		logger.Error(err, "sending email failed", map[string]interface{}{"subject": subject})
	}
	return err
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F4F6FB; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1B2A6B; padding: 28px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; letter-spacing: 1px; }
			.content { padding: 36px 30px; color: #1B2A6B; line-height: 1.6; }
			.footer { background-color: #F4F6FB; padding: 18px; text-align: center; font-size: 12px; color: #666666; }
			.info-box { background: #EEF2FF; padding: 15px; border-radius: 4px; border-left: 4px solid #F5B841; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>LUMOS LEARNING</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; Lumos Learning. Keep learning.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>Lumos Learning</strong>! Your account is ready.</p>
		<p>Browse the catalog and enroll in your first course.</p>
	`, html.EscapeString(name))

	go SendEmail([]string{email}, "Welcome to Lumos Learning", getEmailTemplate("Welcome!", body))
}

func SendEnrollmentEmail(email, name, courseTitle string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<div class="info-box">Open your dashboard to start the first lesson.</div>
	`, html.EscapeString(name), html.EscapeString(courseTitle))

	go SendEmail([]string{email}, "Enrolled: "+courseTitle, getEmailTemplate("Enrollment Confirmed", body))
}

func SendPaymentReceiptEmail(email, name, itemName, amount, currency, paymentID string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received your payment of <strong>%s %s</strong> for <strong>%s</strong>.</p>
		<div class="info-box">Payment reference: %s</div>
	`, html.EscapeString(name), amount, currency, html.EscapeString(itemName), paymentID)

	go SendEmail([]string{email}, "Payment received", getEmailTemplate("Payment Successful", body))
}

func SendRefundEmail(email, name, itemName, status string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your refund request for <strong>%s</strong> is now <strong>%s</strong>.</p>
	`, html.EscapeString(name), html.EscapeString(itemName), status)

	go SendEmail([]string{email}, "Refund "+status, getEmailTemplate("Refund Update", body))
}

func SendCertificateEmail(email, name, courseTitle, certificateID string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>!</p>
		<div class="info-box">Certificate ID: <strong>%s</strong></div>
		<p>Anyone can verify it with this ID.</p>
	`, html.EscapeString(name), html.EscapeString(courseTitle), certificateID)

	go SendEmail([]string{email}, "Your certificate for "+courseTitle, getEmailTemplate("Course Completed", body))
}
