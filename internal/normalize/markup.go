package normalize

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"pos-taskbridge/internal/i18n"
)

var (
	firstNumber   = regexp.MustCompile(`(\d+(\.\d+)?)`)
	leadingNumber = regexp.MustCompile(`^[-+]?\d+(\.\d+)?`)
)

// MarkupReceipt is what could be read from a rendered receipt
type MarkupReceipt struct {
	Name   string
	Table  string
	Server string
	Note   string
	Lines  []Record
	// Placeholder is set when Lines holds only the diagnostic line
	Placeholder bool
}

// MarkupParser reads rendered receipts by CSS class
type MarkupParser struct {
	diag Diagnostics
	tr   i18n.Printer
}

// NewMarkupParser creates a parser for rendered receipt markup
func NewMarkupParser(diag Diagnostics, tr i18n.Printer) *MarkupParser {
	if diag == nil {
		diag = noDiagnostics{}
	}
	if tr == nil {
		tr = i18n.English()
	}
	return &MarkupParser{diag: diag, tr: tr}
}

// ParseString is Parse over a string
func (p *MarkupParser) ParseString(markup string) MarkupReceipt {
	return p.Parse(strings.NewReader(markup))
}

// Parse extracts header fields and lines. It never fails: an unreadable
// document or one without lines yields a single diagnostic line.
func (p *MarkupParser) Parse(r io.Reader) MarkupReceipt {
	doc, err := html.Parse(r)
	if err != nil {
		p.diag.Debug("markup_parse_failed", "Failed to parse receipt markup", "", map[string]any{"error": err.Error()})
		return MarkupReceipt{Lines: []Record{p.placeholder(err.Error())}, Placeholder: true}
	}

	receipt := MarkupReceipt{
		Name:   textContent(findFirst(doc, "pos-receipt-order-name")),
		Table:  textContent(findFirst(doc, "pos-receipt-table")),
		Server: textContent(findFirst(doc, "pos-receipt-server", "pos-receipt-cashier")),
		Note:   textContent(findFirst(doc, "pos-receipt-note", "pos-receipt-customer-note")),
	}

	receipt.Lines = p.orderlines(doc)
	if len(receipt.Lines) == 0 {
		receipt.Lines = p.alternateLines(doc)
	}
	if len(receipt.Lines) == 0 {
		receipt.Lines = []Record{p.placeholder(p.tr.Sprintf("No order lines found in receipt markup"))}
		receipt.Placeholder = true
	}
	return receipt
}

func (p *MarkupParser) orderlines(doc *html.Node) []Record {
	var lines []Record
	for i, el := range findAll(doc, "orderline") {
		line, err := p.orderline(el, i)
		if err != nil {
			p.diag.Debug("markup_line_failed", "Skipping unreadable receipt line", "", map[string]any{
				"index": i + 1,
				"error": err.Error(),
			})
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func (p *MarkupParser) orderline(el *html.Node, index int) (rec Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic reading line: %v", r)
		}
	}()

	name := textContent(findFirst(el, "product-name"))
	if name == "" {
		name = p.tr.Sprintf("Product %d", index+1)
	}

	qty := decimal.NewFromInt(1)
	if qtyEl := findFirst(el, "price-or-qty"); qtyEl != nil {
		if m := firstNumber.FindString(textContent(qtyEl)); m != "" {
			qty, err = decimal.NewFromString(m)
			if err != nil {
				return nil, fmt.Errorf("failed to parse quantity %q: %w", m, err)
			}
		}
	}

	return markupLine(name, qty, textContent(findFirst(el, "note"))), nil
}

func (p *MarkupParser) alternateLines(doc *html.Node) []Record {
	names := findAll(doc, "pos-receipt-productname")
	qtys := findAll(doc, "pos-receipt-quantity")

	var lines []Record
	for i, nameEl := range names {
		qty := decimal.NewFromInt(1)
		if i < len(qtys) {
			text := textContent(qtys[i])
			m := leadingNumber.FindString(text)
			if m == "" {
				p.diag.Debug("markup_line_failed", "Skipping receipt line with unreadable quantity", "", map[string]any{
					"index":    i + 1,
					"quantity": text,
				})
				continue
			}
			qty = decimal.RequireFromString(m)
		}
		lines = append(lines, markupLine(textContent(nameEl), qty, ""))
	}
	return lines
}

func (p *MarkupParser) placeholder(note string) Record {
	return markupLine(p.tr.Sprintf("Error processing receipt"), decimal.NewFromInt(1), note)
}

func markupLine(name string, qty decimal.Decimal, note string) Record {
	return NewObject(map[string]any{
		"product_id":   int64(0),
		"product_name": name,
		"qty":          qty,
		"note":         note,
		"price":        decimal.Zero,
	})
}

func hasClass(n *html.Node, classes ...string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			for _, want := range classes {
				if c == want {
					return true
				}
			}
		}
	}
	return false
}

// findFirst returns the first descendant in document order carrying any of classes
func findFirst(root *html.Node, classes ...string) *html.Node {
	for n := range root.Descendants() {
		if hasClass(n, classes...) {
			return n
		}
	}
	return nil
}

func findAll(root *html.Node, classes ...string) []*html.Node {
	var out []*html.Node
	for n := range root.Descendants() {
		if hasClass(n, classes...) {
			out = append(out, n)
		}
	}
	return out
}

// textContent joins the text below n with collapsed whitespace
func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
