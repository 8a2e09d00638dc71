package taskboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/shopspring/decimal"

	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/models"
)

//go:embed templates/*.html.tmpl
var templatesFS embed.FS

const (
	preparationTemplate = "preparation.html.tmpl"
	orderTemplate       = "order.html.tmpl"
)

// Describer renders task descriptions as HTML
type Describer struct {
	tmpl *template.Template
	tr   i18n.Printer
}

// NewDescriber parses the embedded description templates
func NewDescriber(tr i18n.Printer) (*Describer, error) {
	if tr == nil {
		tr = i18n.English()
	}

	funcs := sprig.HtmlFuncMap()
	funcs["t"] = func(key string, args ...any) string {
		return tr.Sprintf(key, args...)
	}

	tmpl, err := template.New("description").Funcs(funcs).ParseFS(templatesFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse description templates: %w", err)
	}
	return &Describer{tmpl: tmpl, tr: tr}, nil
}

type preparationView struct {
	Customer  *models.Customer
	Table     string
	Server    string
	Note      string
	Lines     []preparationLine
	Created   string
	OrderType string
}

type preparationLine struct {
	Name       string
	Price      string
	Attributes []string
	Quantity   string
	Note       string
	Sides      []string
	Combo      []string
	ChangeType string
}

// Preparation describes a preparation task created at now
func (d *Describer) Preparation(data *models.OrderData, now time.Time) (string, error) {
	view := preparationView{
		Customer:  data.Customer,
		Table:     deref(data.Table),
		Server:    deref(data.Server),
		Note:      data.Note,
		Created:   now.Format("02/01/2006 15:04:05"),
		OrderType: d.orderType(data),
	}

	for _, l := range data.OrderLines {
		line := preparationLine{
			Name:       l.ProductName,
			Attributes: l.Attributes,
			Quantity:   quantityText(l.Quantity),
			Note:       l.Note,
			Sides:      l.Sides,
			ChangeType: string(l.ChangeType),
		}
		if line.Name == "" {
			line.Name = d.tr.Sprintf("No name")
		}
		if l.Price.IsPositive() {
			line.Price = l.Price.StringFixed(2)
		}
		for _, c := range l.ComboItems {
			line.Combo = append(line.Combo, fmt.Sprintf("%sx %s", c.Quantity.String(), c.Name))
		}
		view.Lines = append(view.Lines, line)
	}

	return d.render(preparationTemplate, view)
}

func (d *Describer) orderType(data *models.OrderData) string {
	switch data.OrderType() {
	case "change":
		return d.tr.Sprintf("Type: Order change")
	case "added":
		return d.tr.Sprintf("Type: Added order")
	default:
		return d.tr.Sprintf("Type: New order")
	}
}

type orderView struct {
	Name        string
	Table       string
	Server      string
	Customer    string
	Note        string
	Lines       []orderLine
	Total       string
	CreatedDate string
	CreatedTime string
}

type orderLine struct {
	Name     string
	Quantity string
	Subtotal string
	Note     string
}

// Order describes a task created for a saved order
func (d *Describer) Order(o *models.PosOrder) (string, error) {
	view := orderView{
		Name:        o.Name,
		Table:       deref(o.TableName),
		Server:      deref(o.ServerName),
		Customer:    deref(o.CustomerName),
		Note:        o.Note,
		Total:       o.AmountTotal.StringFixed(2),
		CreatedDate: o.CreatedAt.Format("02/01/2006"),
		CreatedTime: o.CreatedAt.Format("15:04:05"),
	}
	for _, l := range o.Lines {
		view.Lines = append(view.Lines, orderLine{
			Name:     l.ProductName,
			Quantity: l.Quantity.String(),
			Subtotal: l.Subtotal().StringFixed(2),
			Note:     l.Note,
		})
	}

	return d.render(orderTemplate, view)
}

func (d *Describer) render(name string, view any) (string, error) {
	var buf bytes.Buffer
	if err := d.tmpl.ExecuteTemplate(&buf, name, view); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// quantityText prints whole quantities without decimals and the rest with two
func quantityText(q decimal.Decimal) string {
	if q.IsInteger() {
		return q.StringFixed(0)
	}
	return q.StringFixed(2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
