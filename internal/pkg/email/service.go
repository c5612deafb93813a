// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service renders order emails and delivers them from a background queue
type Service struct {
	config    config.EmailConfig
	store     config.AppConfig
	templates *template.Template
	client    *http.Client
	logger    *logrus.Entry
	queue     chan *Email
	timeout   time.Duration

	// API endpoints, overridable in tests
	resendURL   string
	sendgridURL string
}

// NewService creates a new email service
func NewService(cfg config.EmailConfig, store config.AppConfig, logger *logrus.Entry) *Service {
	templates := template.Must(template.New("layout").Parse(layoutTemplate))
	template.Must(templates.New(string(EmailTypeOrderConfirmation)).Parse(orderConfirmationTemplate))
	template.Must(templates.New(string(EmailTypeOrderStatusUpdate)).Parse(orderStatusUpdateTemplate))

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		config:    cfg,
		store:     store,
		templates: templates,
		client: &http.Client{
			Timeout: timeout,
		},
		logger:      logger,
		queue:       make(chan *Email, queueSize),
		timeout:     timeout,
		resendURL:   "https://api.resend.com/emails",
		sendgridURL: "https://api.sendgrid.com/v3/mail/send",
	}
}

// Run delivers queued emails until ctx is cancelled, then drains what is still queued.
// Callers cancel ctx only after nothing can enqueue any more.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case email := <-s.queue:
			// ctx only stops the loop; a send in progress runs to its own timeout
			s.deliver(context.Background(), email)
		}
	}
}

// drain sends the remaining emails within one send timeout and logs the ones it gives up on
func (s *Service) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	for {
		select {
		case email := <-s.queue:
			if ctx.Err() != nil {
				s.emailLog(email).Warn("shutdown deadline passed, dropping queued email")
				continue
			}
			s.deliver(ctx, email)
		default:
			return
		}
	}
}

func (s *Service) deliver(ctx context.Context, email *Email) {
	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.SendEmail(sendCtx, email)
	cancel()

	entry := s.emailLog(email).WithField("provider", s.config.Provider)
	if err != nil {
		entry.WithError(err).Error("failed to send email")
		return
	}
	entry.Info("email sent")
}

func (s *Service) emailLog(email *Email) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"type":         email.Type,
		"order_number": email.OrderNumber,
	})
}

// OrderPlaced queues the order confirmation email
func (s *Service) OrderPlaced(o *order.Order) {
	data := OrderConfirmationData{
		EmailTemplateData: s.baseData(o.ShippingAddress.Name),
		Snapshot:          order.NewSnapshot(o),
		TrackingURL:       s.trackingURL(o.OrderNumber),
	}
	s.render(EmailTypeOrderConfirmation, o, fmt.Sprintf("Order Confirmation - %s", o.OrderNumber), data)
}

// StatusChanged queues the order status update email
func (s *Service) StatusChanged(o *order.Order) {
	tracking := order.NewTracking(o)
	data := OrderStatusUpdateData{
		EmailTemplateData: s.baseData(o.ShippingAddress.Name),
		Tracking:          tracking,
		TrackingURL:       s.trackingURL(o.OrderNumber),
	}
	s.render(EmailTypeOrderStatusUpdate, o, fmt.Sprintf("Order Update - %s: %s", o.OrderNumber, tracking.StatusLabel), data)
}

// render builds the email now so the order is not read after the caller returns
func (s *Service) render(emailType EmailType, o *order.Order, subject string, data any) {
	log := s.logger.WithFields(logrus.Fields{"type": emailType, "order_number": o.OrderNumber})
	if o.ShippingAddress.Email == "" {
		log.Debug("order has no contact email, skipping")
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, string(emailType), data); err != nil {
		log.WithError(err).Error("failed to render email template")
		return
	}

	s.enqueue(&Email{
		To:          []string{o.ShippingAddress.Email},
		Subject:     subject,
		HTMLContent: buf.String(),
		Type:        emailType,
		OrderNumber: o.OrderNumber,
	})
}

// enqueue never blocks the caller; a full queue drops the email
func (s *Service) enqueue(email *Email) {
	select {
	case s.queue <- email:
	default:
		s.emailLog(email).Warn("email queue full, dropping email")
	}
}

// SendEmail sends an email using the configured provider
func (s *Service) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.Provider {
	case "log":
		s.logger.WithFields(logrus.Fields{
			"to":      email.To,
			"subject": email.Subject,
			"type":    email.Type,
		}).Info("email delivery disabled, logging instead")
		return nil
	case "smtp":
		return s.sendSMTPEmail(email)
	case "resend":
		return s.sendResendEmail(ctx, email)
	case "sendgrid":
		return s.sendSendGridEmail(ctx, email)
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}
}

func (s *Service) from() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}

func (s *Service) trackingURL(orderNumber string) string {
	return s.config.BaseURL + "/orders/track/" + url.PathEscape(orderNumber)
}
