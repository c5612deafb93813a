// internal/pkg/email/templates.go
package email

const layoutTemplate = `{{define "header"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
        <p>Hello {{.UserName}},</p>
{{end}}
{{define "footer"}}
        <p>If you have any questions, contact us at {{.SupportEmail}}.</p>
        <hr>
        <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}. All rights reserved.</p>
    </div>
</body>
</html>{{end}}`

const orderConfirmationTemplate = `{{template "header" .EmailTemplateData}}
        <p>Thank you for your order! We've received it and it is being processed.</p>
        <p><strong>Order number:</strong> {{.Snapshot.OrderNumber}}<br>
           <strong>Order date:</strong> {{.Snapshot.OrderDate}}<br>
           <strong>Estimated delivery:</strong> {{.Snapshot.EstimatedDelivery}}</p>
        <table style="width: 100%; border-collapse: collapse;">
            {{range .Snapshot.Items}}
            <tr>
                <td style="padding: 6px 0;">{{.Title}} &times; {{.Quantity}}</td>
                <td style="padding: 6px 0; text-align: right;">{{.Price}}</td>
            </tr>
            {{end}}
            <tr>
                <td style="padding: 6px 0; border-top: 1px solid #ddd;"><strong>Total</strong></td>
                <td style="padding: 6px 0; border-top: 1px solid #ddd; text-align: right;"><strong>{{.Snapshot.Total}}</strong></td>
            </tr>
        </table>
        <p><strong>Shipping to:</strong> {{.Snapshot.ShippingAddress.Name}}, {{.Snapshot.ShippingAddress.Address}}<br>
           <strong>Payment:</strong> {{.Snapshot.PaymentMethod}}</p>
        <p><a href="{{.TrackingURL}}">Track your order</a></p>
{{template "footer" .EmailTemplateData}}`

const orderStatusUpdateTemplate = `{{template "header" .EmailTemplateData}}
        <p>Your order <strong>{{.Tracking.OrderNumber}}</strong> is now: <strong>{{.Tracking.StatusLabel}}</strong>.</p>
        {{with .Tracking.CurrentLocation}}<p>Current location: {{.}}</p>{{end}}
        {{with .Tracking.TrackingNumber}}<p>Tracking number: {{.}}</p>{{end}}
        <p>Estimated delivery: {{.Tracking.EstimatedDelivery}}</p>
        <p><a href="{{.TrackingURL}}">See the full timeline</a></p>
{{template "footer" .EmailTemplateData}}`
