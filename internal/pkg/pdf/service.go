// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service renders order receipts as PDF
type Service struct {
	store     StoreInfo
	templates *template.Template
}

// StoreInfo is the header block of a receipt
type StoreInfo struct {
	Name  string
	Email string
}

// NewService creates a new PDF service
func NewService(cfg config.AppConfig) *Service {
	return &Service{
		store: StoreInfo{
			Name:  cfg.StoreName,
			Email: cfg.SupportMail,
		},
		templates: template.Must(template.New("receipt").Funcs(template.FuncMap{
			"money": order.FormatMoney,
			"upper": strings.ToUpper,
		}).Parse(receiptTemplate)),
	}
}

// ReceiptData is passed to the receipt template
type ReceiptData struct {
	Store             StoreInfo
	Order             *order.Order
	OrderDate         string
	EstimatedDelivery string
}

// GenerateReceipt renders the receipt of an order into a PDF document
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	html, err := s.RenderHTML(o)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Title.Set("Receipt " + o.OrderNumber)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.FooterCenter.Set(s.store.Name)
	page.FooterFontSize.Set(8)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML produces the receipt markup fed to the PDF generator
func (s *Service) RenderHTML(o *order.Order) ([]byte, error) {
	data := ReceiptData{
		Store:             s.store,
		Order:             o,
		OrderDate:         o.PlacedAt.Format(order.DisplayDate),
		EstimatedDelivery: o.EstimatedDelivery.Format(order.DisplayDate),
	}

	var buf bytes.Buffer
	if err := s.templates.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute receipt template: %w", err)
	}
	return buf.Bytes(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Receipt {{.Order.OrderNumber}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #111827; margin: 24px; }
  h1 { font-size: 22px; margin: 0 0 4px; }
  .muted { color: #6b7280; font-size: 12px; }
  .meta { margin: 24px 0; width: 100%; }
  .meta td { padding: 2px 0; font-size: 13px; }
  .items { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
  .items th, .items td { border-bottom: 1px solid #e5e7eb; padding: 8px 4px; font-size: 13px; text-align: left; }
  .items .num { text-align: right; }
  .totals { margin-left: auto; width: 260px; font-size: 13px; }
  .totals td { padding: 3px 0; }
  .totals .grand td { font-weight: bold; border-top: 1px solid #111827; padding-top: 6px; }
</style>
</head>
<body>
  <h1>{{.Store.Name}}</h1>
  <div class="muted">{{.Store.Email}}</div>

  <table class="meta">
    <tr><td><strong>Order</strong></td><td>{{.Order.OrderNumber}}</td></tr>
    <tr><td><strong>Date</strong></td><td>{{.OrderDate}}</td></tr>
    <tr><td><strong>Status</strong></td><td>{{upper (print .Order.Status)}}</td></tr>
    <tr><td><strong>Payment</strong></td><td>{{.Order.PaymentMethod}}</td></tr>
    <tr><td><strong>Ship to</strong></td><td>{{.Order.ShippingAddress.Name}}, {{.Order.ShippingAddress.Line}}</td></tr>
    <tr><td><strong>Estimated delivery</strong></td><td>{{.EstimatedDelivery}}</td></tr>
    {{- if .Order.TrackingNumber}}
    <tr><td><strong>Tracking</strong></td><td>{{.Order.TrackingNumber}}</td></tr>
    {{- end}}
  </table>

  <table class="items">
    <thead>
      <tr><th>Item</th><th>Size</th><th>Color</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
    </thead>
    <tbody>
    {{- range .Order.Items}}
      <tr>
        <td>{{.Title}}</td>
        <td>{{.Size}}</td>
        <td>{{.Color}}</td>
        <td class="num">{{.Quantity}}</td>
        <td class="num">{{money .UnitPrice $.Order.Currency}}</td>
        <td class="num">{{money .TotalPrice $.Order.Currency}}</td>
      </tr>
    {{- end}}
    </tbody>
  </table>

  <table class="totals">
    <tr><td>Subtotal</td><td class="num">{{money .Order.SubtotalAmount .Order.Currency}}</td></tr>
    <tr><td>Discount</td><td class="num">-{{money .Order.DiscountAmount .Order.Currency}}</td></tr>
    <tr><td>Shipping</td><td class="num">{{money .Order.ShippingAmount .Order.Currency}}</td></tr>
    <tr class="grand"><td>Total</td><td class="num">{{money .Order.TotalAmount .Order.Currency}}</td></tr>
  </table>
</body>
</html>
`
