package normalize

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/models"
)

// LineKind tells where a raw line was read from
type LineKind int

const (
	LiveLine LineKind = iota
	ReceiptLine
	MarkupLine
)

func (k LineKind) String() string {
	switch k {
	case ReceiptLine:
		return "receipt"
	case MarkupLine:
		return "markup"
	default:
		return "live"
	}
}

// RawLine is an unnormalized line tagged with its origin
type RawLine struct {
	Kind       LineKind
	Record     Record
	ChangeType models.ChangeType
}

var (
	quantityChain    = Chain{Property("qty"), Property("quantity"), Accessor("get_quantity")}
	productChain     = Chain{Accessor("get_product")}
	productRefChain  = Chain{Accessor("get_product"), Property("product")}
	productNameChain = Properties("display_name", "name")
	lineNameChain    = Properties("product_name", "name")
	priceAccessor    = Chain{Accessor("get_price_with_tax")}
	pricePropsChain  = Properties("price_with_tax", "price")
)

// LineNormalizer turns raw lines into canonical order lines
type LineNormalizer struct {
	res    *Resolver
	merger *Merger
	diag   Diagnostics
	tr     i18n.Printer
}

// NewLineNormalizer creates a normalizer reporting faults to diag
func NewLineNormalizer(diag Diagnostics, tr i18n.Printer) *LineNormalizer {
	if tr == nil {
		tr = i18n.English()
	}
	res := NewResolver(diag)
	return &LineNormalizer{
		res:    res,
		merger: NewMerger(res, tr),
		diag:   res.diag,
		tr:     tr,
	}
}

// Normalize converts raw into an order line. The second result is false
// when the line carries no positive quantity and must be skipped.
func (n *LineNormalizer) Normalize(raw RawLine) (models.OrderLine, bool) {
	if raw.Record == nil {
		return models.OrderLine{}, false
	}

	qty, ok := n.quantity(raw.Record)
	if !ok || !qty.IsPositive() {
		n.diag.Debug("line_skipped", "Skipping line without positive quantity", "", map[string]any{
			"kind":     raw.Kind.String(),
			"quantity": qty.String(),
		})
		return models.OrderLine{}, false
	}

	id, name, product := n.product(raw.Record)
	ex := n.merger.Merge(raw.Record, product)

	// receipt lines keep the parenthesized part of the name as an attribute
	if raw.Kind == ReceiptLine {
		if inner, ok := parenthesizedText(name); ok && !slices.Contains(ex.Attributes, inner) {
			ex.Attributes = append(ex.Attributes, inner)
		}
	}

	if len(ex.Attributes) > 0 {
		if _, ok := parenthesizedText(name); !ok {
			name += " (" + strings.Join(ex.Attributes, ", ") + ")"
		}
	}

	return models.OrderLine{
		ProductID:   id,
		ProductName: name,
		Quantity:    qty,
		Note:        ex.Note,
		Price:       n.price(raw.Record),
		Sides:       nonNil(ex.Sides),
		ComboItems:  nonNilCombo(ex.ComboItems),
		Attributes:  nonNil(ex.Attributes),
		ChangeType:  raw.ChangeType,
	}, true
}

// quantity is the first positive numeric candidate
func (n *LineNormalizer) quantity(line Record) (decimal.Decimal, bool) {
	res := n.res.ResolveWith(line, quantityChain, isPositiveNumber)
	if !res.Ok() {
		return decimal.Zero, false
	}
	return toDecimal(res.Value)
}

func (n *LineNormalizer) product(line Record) (int64, string, Record) {
	var (
		id   int64
		name string
	)

	product, hasProduct := n.res.Resolve(line, productChain).Record()
	if hasProduct {
		v, _ := product.Field("id")
		id, _ = toInt64(v)
		name, _ = n.res.Resolve(product, productNameChain).Text()
	} else {
		v, _ := line.Field("product_id")
		if pid, pairName, ok := many2one(v); ok {
			id, name = pid, pairName
		} else {
			id, _ = toInt64(v)
		}
		if lineName, ok := n.res.Resolve(line, lineNameChain).Text(); ok {
			name = lineName
		}
		product, _ = n.res.Resolve(line, productRefChain).Record()
	}

	if name == "" {
		name = n.tr.Sprintf("Unnamed product")
	}
	return id, name, product
}

// price takes the price accessor whenever it answers with a number, zero
// included; the properties only count when positive
func (n *LineNormalizer) price(line Record) decimal.Decimal {
	res := n.res.ResolveWith(line, priceAccessor, isNumber)
	if !res.Ok() {
		res = n.res.ResolveWith(line, pricePropsChain, isPositiveNumber)
	}
	if !res.Ok() {
		return decimal.Zero
	}
	d, _ := toDecimal(res.Value)
	return d
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilCombo(c []models.ComboItem) []models.ComboItem {
	if c == nil {
		return []models.ComboItem{}
	}
	return c
}
