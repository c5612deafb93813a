// internal/pkg/email/types.go
package email

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/order"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
	OrderNumber string    `json:"order_number,omitempty"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName     string
	SiteURL      string
	SupportEmail string
	UserName     string
	Year         int
}

// OrderConfirmationData contains data for order confirmation email
type OrderConfirmationData struct {
	EmailTemplateData
	Snapshot    *order.Snapshot
	TrackingURL string
}

// OrderStatusUpdateData contains data for order status updates
type OrderStatusUpdateData struct {
	EmailTemplateData
	Tracking    *order.Tracking
	TrackingURL string
}

func (s *Service) baseData(userName string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:     s.store.Name,
		SiteURL:      s.config.BaseURL,
		SupportEmail: s.store.SupportMail,
		UserName:     userName,
		Year:         time.Now().Year(),
	}
}
