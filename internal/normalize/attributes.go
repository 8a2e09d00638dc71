package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/models"
)

var (
	lineNoteChain = Chain{
		Accessor("get_note"),
		Property("note"),
		Property("customer_note"),
		Property("client_note"),
		Property("comment"),
	}
	sidesChain     = Chain{Accessor("get_sides"), Property("sides")}
	comboChain     = Chain{Accessor("get_combo_items"), Property("combo_items")}
	attributeProps = Properties("attributes", "attribute_value_ids", "attribute_values", "variants")
	attributeChain = Chain{Accessor("get_attributes")}.Then(attributeProps...)
	fullNameChain  = Chain{Property("full_product_name")}
)

var parenthesized = regexp.MustCompile(`\((.*?)\)`)

// Extras is what the merger derives from a line besides its product
type Extras struct {
	Note       string
	Sides      []string
	ComboItems []models.ComboItem
	Attributes []string
}

// Merger folds notes, sides, combo components and attributes of a line
type Merger struct {
	res *Resolver
	tr  i18n.Printer
}

// NewMerger creates a merger resolving through res
func NewMerger(res *Resolver, tr i18n.Printer) *Merger {
	return &Merger{res: res, tr: tr}
}

// Merge derives the extras of line. product is the resolved product
// record of the line and may be nil.
func (m *Merger) Merge(line, product Record) Extras {
	var ex Extras

	base, _ := m.res.Resolve(line, lineNoteChain).Text()

	var sidesText string
	sidesText, ex.Sides = m.sides(line)

	var comboText string
	comboText, ex.ComboItems = m.combo(line)

	ex.Note = joinNote(base, sidesText, comboText)
	ex.Attributes = m.Attributes(line, product)
	return ex
}

func joinNote(base, sides, combo string) string {
	note := base
	if sides != "" {
		if note != "" {
			note += "\n"
		}
		note += "Extras: " + sides
	}
	if combo != "" {
		if note != "" {
			note += "\n"
		}
		note += "Combo: " + combo
	}
	return note
}

func (m *Merger) sides(line Record) (string, []string) {
	res := m.res.Resolve(line, sidesChain)
	if !res.Ok() {
		return "", nil
	}

	if s, ok := res.Value.(string); ok {
		s = strings.TrimSpace(s)
		return s, []string{s}
	}

	items, ok := asList(res.Value)
	if !ok {
		return "", nil
	}

	rendered := make([]string, 0, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := textOf(item, "name", "product_name")
		if !ok {
			name = m.tr.Sprintf("Extra")
		}
		names = append(names, name)
		rendered = append(rendered, "+ "+name)
	}
	return strings.Join(rendered, ", "), names
}

func (m *Merger) combo(line Record) (string, []models.ComboItem) {
	res := m.res.Resolve(line, comboChain)
	if !res.Ok() {
		return "", nil
	}
	items, ok := asList(res.Value)
	if !ok {
		return "", nil
	}

	rendered := make([]string, 0, len(items))
	combo := make([]models.ComboItem, 0, len(items))
	for _, item := range items {
		name, ok := textOf(item, "name", "product_name", "display_name")
		if !ok {
			name = m.tr.Sprintf("Extra")
		}

		qty := decimal.NewFromInt(1)
		if rec, ok := AsRecord(item); ok {
			if v, _ := rec.Field("quantity"); isPositiveNumber(v) {
				qty, _ = toDecimal(v)
			}
		}

		combo = append(combo, models.ComboItem{Name: name, Quantity: qty})
		rendered = append(rendered, fmt.Sprintf("%sx %s", qty.String(), name))
	}
	return strings.Join(rendered, ", "), combo
}

// Attributes returns the first non-empty attribute list of a line:
// line accessors and properties, then the product, then the
// parenthesized part of full_product_name.
func (m *Merger) Attributes(line, product Record) []string {
	nonEmptyList := func(v any) bool {
		items, ok := asList(v)
		return ok && len(items) > 0
	}

	if res := m.res.ResolveWith(line, attributeChain, nonEmptyList); res.Ok() {
		return renderAttributes(res.Value)
	}
	if res := m.res.ResolveWith(product, attributeChain, nonEmptyList); res.Ok() {
		return renderAttributes(res.Value)
	}

	full, ok := m.res.Resolve(line, fullNameChain).Text()
	if !ok {
		return nil
	}
	inner, ok := parenthesizedText(full)
	if !ok {
		return nil
	}

	var attrs []string
	for _, part := range strings.Split(inner, ",") {
		if part = strings.TrimSpace(part); part != "" {
			attrs = append(attrs, part)
		}
	}
	return attrs
}

func renderAttributes(v any) []string {
	items, _ := asList(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := textOf(item, "name", "display_name", "value"); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// parenthesizedText returns the trimmed text of the first "(...)" segment
func parenthesizedText(name string) (string, bool) {
	m := parenthesized.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	inner := strings.TrimSpace(m[1])
	return inner, inner != ""
}
