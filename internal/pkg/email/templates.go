// internal/pkg/email/templates.go
package email

const emailTemplates = `
{{define "header"}}<!DOCTYPE html>
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
        <p>Best regards,<br>{{.SiteName}} Team</p>
        <hr>
        <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}. All rights reserved.</p>
    </div>
</body>
</html>{{end}}

{{define "items"}}
        <table style="width: 100%; border-collapse: collapse;">
            <tr style="background-color: #f8f8f8;">
                <th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th><th align="right">Total</th>
            </tr>
            {{range .Items}}
            <tr>
                <td>{{.Name}}{{if .Variant}} ({{.Variant}}){{end}}</td>
                <td align="right">{{.Quantity}}</td>
                <td align="right">{{.Price}}</td>
                <td align="right">{{.Total}}</td>
            </tr>
            {{end}}
        </table>
        <p><strong>Total: {{.OrderTotal}}</strong></p>
{{end}}

{{define "password_reset"}}{{template "header" .}}
        <p>We received a request to reset your password.</p>
        <p><a href="{{.ResetURL}}">Reset your password</a></p>
        <p>This link expires in {{.ExpiryTime}}. If you did not ask for a reset, ignore this email.</p>
{{template "footer" .}}{{end}}

{{define "order_confirmation"}}{{template "header" .}}
        <p>Thank you for your order <strong>{{.OrderNumber}}</strong> placed on {{.OrderDate}}.</p>
{{template "items" .}}
        <p>Payment method: {{.PaymentMethod}}</p>
        <p>Shipping to: {{.ShippingAddress}}</p>
        <p><a href="{{.OrderURL}}">View your order</a></p>
{{template "footer" .}}{{end}}

{{define "order_cancelled"}}{{template "header" .}}
        <p>Your order <strong>{{.OrderNumber}}</strong> has been cancelled.</p>
{{template "items" .}}
        <p><a href="{{.OrderURL}}">View your order</a></p>
{{template "footer" .}}{{end}}

{{define "order_status_update"}}{{template "header" .}}
        <p>The status of order <strong>{{.OrderNumber}}</strong> changed{{if .PreviousStatus}} from {{.PreviousStatus}}{{end}} to <strong>{{.Status}}</strong>.</p>
        <p>{{.StatusMessage}}</p>
        <p><a href="{{.OrderURL}}">View your order</a></p>
{{template "footer" .}}{{end}}
`
