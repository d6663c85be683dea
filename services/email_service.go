package services

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stansam/Tuned/config"
)

// EmailMessage is one outbound transactional email
type EmailMessage struct {
	ToName      string
	ToAddress   string
	Subject     string
	TextContent string
	HTMLContent string
}

// EmailService sends transactional emails. Sends are fire-and-forget:
// failures are logged and swallowed, never surfaced to the triggering
// request, and never block the primary transaction commit.
type EmailService interface {
	SendMessages(messages ...*EmailMessage)
}

var emailServiceInstance EmailService

// InitEmailService initializes the email service from configuration
func InitEmailService(cfg *config.Config) EmailService {
	if cfg.EmailBackend == "sendgrid" {
		emailServiceInstance = &SendgridEmailService{
			key:        cfg.SendgridAPIKey,
			from:       sgmail.NewEmail(cfg.AppName, cfg.FromEmail),
			subjPrefix: "[" + cfg.AppName + "] ",
		}
	} else {
		emailServiceInstance = &ConsoleEmailService{
			fromAddress: cfg.FromEmail,
			subjPrefix:  "[" + cfg.AppName + "] ",
		}
	}
	return emailServiceInstance
}

// GetEmailService returns the initialized email service instance
func GetEmailService() EmailService {
	return emailServiceInstance
}

// SetEmailService sets the email service instance (primarily for testing)
func SetEmailService(service EmailService) {
	emailServiceInstance = service
}

// SendgridEmailService delivers email through the Sendgrid v3 API
type SendgridEmailService struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

// SendMessages sends messages concurrently
func (s *SendgridEmailService) SendMessages(messages ...*EmailMessage) {
	for _, msg := range messages {
		go s.send(msg)
	}
}

func (s *SendgridEmailService) send(msg *EmailMessage) {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}

	req := sendgrid.GetRequest(s.key, "/v3/mail/send", "https://api.sendgrid.com")
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		log.Printf("Failed to send email to %s: %v", msg.ToAddress, err)
	} else if res.StatusCode >= http.StatusBadRequest {
		log.Printf("Failed to send email to %s - status: %d - body: %s", msg.ToAddress, res.StatusCode, res.Body)
	}
}

// ConsoleEmailService logs messages instead of sending them. Used in
// development and as the in-memory sink for tests.
type ConsoleEmailService struct {
	fromAddress string
	subjPrefix  string

	mu   sync.Mutex
	Sent []EmailMessage
}

// SendMessages records and logs messages synchronously
func (s *ConsoleEmailService) SendMessages(messages ...*EmailMessage) {
	for _, msg := range messages {
		s.mu.Lock()
		s.Sent = append(s.Sent, *msg)
		s.mu.Unlock()

		log.Printf("From: %s\nTo: %s <%s>\nSubject: %s\n\n%s\n",
			s.fromAddress, msg.ToName, msg.ToAddress,
			s.subjPrefix+msg.Subject, msg.TextContent)
	}
}

// SentMessages returns a copy of the messages recorded so far
func (s *ConsoleEmailService) SentMessages() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EmailMessage, len(s.Sent))
	copy(out, s.Sent)
	return out
}

// Templated message builders for the lifecycle events. Kept as plain text;
// the notification hub carries the in-app copy.

func orderCreatedEmail(name, address, orderNumber string, total float64) *EmailMessage {
	return &EmailMessage{
		ToName:    name,
		ToAddress: address,
		Subject:   fmt.Sprintf("Order %s received", orderNumber),
		TextContent: fmt.Sprintf(
			"Hi %s,\n\nWe have received your order %s (total $%.2f). "+
				"Complete payment to start processing.\n", name, orderNumber, total),
	}
}

func paymentCompletedEmail(name, address, orderNumber string, amount float64) *EmailMessage {
	return &EmailMessage{
		ToName:    name,
		ToAddress: address,
		Subject:   fmt.Sprintf("Payment confirmed for order %s", orderNumber),
		TextContent: fmt.Sprintf(
			"Hi %s,\n\nYour payment of $%.2f for order %s has been confirmed. "+
				"Work will begin shortly.\n", name, amount, orderNumber),
	}
}

func orderDeliveredEmail(name, address, orderNumber string) *EmailMessage {
	return &EmailMessage{
		ToName:    name,
		ToAddress: address,
		Subject:   fmt.Sprintf("Order %s delivered", orderNumber),
		TextContent: fmt.Sprintf(
			"Hi %s,\n\nYour order %s has been delivered and is awaiting your review. "+
				"It will be finalized automatically after 3 days.\n", name, orderNumber),
	}
}

func revisionRequestedEmail(name, address, orderNumber, reason string) *EmailMessage {
	return &EmailMessage{
		ToName:    name,
		ToAddress: address,
		Subject:   fmt.Sprintf("Revision requested on order %s", orderNumber),
		TextContent: fmt.Sprintf(
			"A revision has been requested on order %s.\n\nReason: %s\n", orderNumber, reason),
	}
}

func extensionRequestedEmail(name, address, orderNumber, reason string) *EmailMessage {
	return &EmailMessage{
		ToName:    name,
		ToAddress: address,
		Subject:   fmt.Sprintf("Deadline extension requested for order %s", orderNumber),
		TextContent: fmt.Sprintf(
			"Hi %s,\n\nOur team has requested a deadline extension for order %s.\n\nReason: %s\n",
			name, orderNumber, reason),
	}
}

func welcomeEmail(name, address string) *EmailMessage {
	return &EmailMessage{
		ToName:      name,
		ToAddress:   address,
		Subject:     "Welcome to Tuned Essays",
		TextContent: fmt.Sprintf("Hi %s,\n\nWelcome aboard! Your account is ready.\n", name),
	}
}
