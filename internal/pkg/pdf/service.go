// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/domain/order"
)

var invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceTemplate))

// Service renders order invoices through wkhtmltopdf.
type Service struct {
	config *config.Config
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	if cfg.Invoice.BinaryPath != "" {
		wkhtmltopdf.SetPath(cfg.Invoice.BinaryPath)
	}
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// InvoiceData is the view model of one invoice.
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	DueDate       string
	Currency      string
	Company       CompanyInfo
	Customer      CustomerInfo
	Order         *order.Order
	Lines         []InvoiceLine
	ItemCount     int
	Total         string
}

type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

type CustomerInfo struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type InvoiceLine struct {
	Name      string
	Variant   string
	SKU       string
	Quantity  int
	UnitPrice string
	Total     string
}

// GenerateInvoice renders the invoice of o as a PDF
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Title.Set(fmt.Sprintf("Invoice %s", o.OrderNumber))

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]/[topage]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML renders the invoice markup that GenerateInvoice converts
func (s *Service) RenderHTML(o *order.Order) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, s.invoiceData(o)); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (s *Service) invoiceData(o *order.Order) InvoiceData {
	issued := s.now()
	data := InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.OrderNumber),
		InvoiceDate:   issued.Format("January 2, 2006"),
		DueDate:       issued.AddDate(0, 0, s.config.Invoice.DueDays).Format("January 2, 2006"),
		Currency:      s.config.Invoice.Currency,
		Company: CompanyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Phone:   s.config.App.CompanyPhone,
			Email:   s.config.App.CompanyEmail,
			Website: s.config.App.CompanyWebsite,
		},
		Customer: CustomerInfo{
			Name:    o.CustomerName(),
			Email:   o.CustomerEmail(),
			Phone:   o.Phone,
			Address: o.ShippingAddress,
		},
		Order:     o,
		ItemCount: o.ItemCount(),
		Total:     o.TotalAmount.StringFixed(2),
	}

	for _, item := range o.Items {
		variant := item.ColorName
		if item.SizeName != "" {
			if variant != "" {
				variant += " / "
			}
			variant += item.SizeName
		}
		data.Lines = append(data.Lines, InvoiceLine{
			Name:      item.ProductName,
			Variant:   variant,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Total:     item.TotalPrice.StringFixed(2),
		})
	}
	return data
}

// wkhtmltopdf ships an old WebKit, so layout sticks to tables and floats.
const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.InvoiceNumber}}</title>
<style>
  * { box-sizing: border-box; }
  body { font-family: "Helvetica Neue", Helvetica, sans-serif; font-size: 12px; color: #1f1f1f; margin: 28px; }
  h1 { font-size: 22px; letter-spacing: 4px; text-transform: uppercase; margin: 0 0 6px; }
  .muted { color: #7a7a7a; }
  table.grid { width: 100%; border-collapse: collapse; }
  .masthead td { vertical-align: top; padding-bottom: 18px; border-bottom: 1px solid #1f1f1f; }
  .masthead .doc { text-align: right; }
  .doc .kind { font-size: 11px; letter-spacing: 3px; text-transform: uppercase; }
  .meta td { padding: 14px 0 4px; vertical-align: top; width: 50%; }
  .caption { font-size: 10px; letter-spacing: 2px; text-transform: uppercase; color: #7a7a7a; margin-bottom: 4px; }
  .lines { margin-top: 22px; }
  .lines th { font-size: 10px; letter-spacing: 2px; text-transform: uppercase; text-align: left; padding: 8px 4px; border-bottom: 1px solid #1f1f1f; }
  .lines td { padding: 9px 4px; border-bottom: 1px solid #e4e4e4; }
  .num { text-align: right; white-space: nowrap; }
  .summary { float: right; width: 260px; margin-top: 16px; }
  .summary td { padding: 5px 4px; }
  .summary .grand td { border-top: 1px solid #1f1f1f; font-size: 15px; font-weight: bold; padding-top: 8px; }
  .state { text-transform: uppercase; letter-spacing: 1px; font-weight: bold; }
  .state-cancelled { color: #a3261f; }
  .state-completed, .state-shipped { color: #2f6b3a; }
  .closing { clear: both; padding-top: 40px; text-align: center; font-size: 11px; color: #7a7a7a; }
</style>
</head>
<body>
<table class="grid masthead">
  <tr>
    <td>
      <h1>{{.Company.Name}}</h1>
      {{with .Company.Address}}<div class="muted">{{.}}</div>{{end}}
      <div class="muted">{{.Company.Email}}{{with .Company.Phone}} &middot; {{.}}{{end}}</div>
      {{with .Company.Website}}<div class="muted">{{.}}</div>{{end}}
    </td>
    <td class="doc">
      <div class="kind">Invoice</div>
      <div><b>{{.InvoiceNumber}}</b></div>
      <div class="muted">Issued {{.InvoiceDate}}</div>
      <div class="muted">Payable by {{.DueDate}}</div>
    </td>
  </tr>
</table>

<table class="grid meta">
  <tr>
    <td>
      <div class="caption">Deliver to</div>
      <div><b>{{.Customer.Name}}</b></div>
      <div>{{.Customer.Address}}</div>
      {{with .Customer.Phone}}<div>{{.}}</div>{{end}}
      <div class="muted">{{.Customer.Email}}</div>
    </td>
    <td>
      <div class="caption">Order</div>
      <div>{{.Order.OrderNumber}}, placed {{.Order.CreatedAt.Format "2 Jan 2006"}}</div>
      <div>Paid by {{.Order.PaymentMethod}} in {{.Currency}}</div>
      <div class="state state-{{.Order.Status}}">{{.Order.Status}}</div>
    </td>
  </tr>
</table>

<table class="grid lines">
  <tr>
    <th>Piece</th>
    <th>Colour / size</th>
    <th>SKU</th>
    <th class="num">Qty</th>
    <th class="num">Each</th>
    <th class="num">Amount</th>
  </tr>
  {{range .Lines}}
  <tr>
    <td><b>{{.Name}}</b></td>
    <td>{{.Variant}}</td>
    <td class="muted">{{.SKU}}</td>
    <td class="num">{{.Quantity}}</td>
    <td class="num">{{.UnitPrice}}</td>
    <td class="num">{{.Total}}</td>
  </tr>
  {{end}}
</table>

<table class="summary">
  <tr><td>Pieces</td><td class="num">{{.ItemCount}}</td></tr>
  <tr class="grand"><td>Total due</td><td class="num">{{.Total}} {{.Currency}}</td></tr>
</table>

<div class="closing">
  Questions about this invoice? Write to {{.Company.Email}} and quote {{.Order.OrderNumber}}.
</div>
</body>
</html>
`
