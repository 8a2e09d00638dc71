// Package normalize turns live orders and rendered receipts into the
// canonical OrderData payload submitted to the task backend.
package normalize

import (
	"github.com/shopspring/decimal"

	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/models"
)

// Source is everything known about one task-creation request.
// Any field may be empty; the assembler falls back in order from the
// live order to receipt data to receipt markup.
type Source struct {
	Order   Record
	Receipt Record
	Markup  string
	// Cashier is the session cashier, the last resort for the server field
	Cashier Record
	Reprint bool
}

// Assembler builds one OrderData per request
type Assembler struct {
	header  headerReader
	lines   *LineNormalizer
	markup  *MarkupParser
	names   *NameSynthesizer
	diag    Diagnostics
	tr      i18n.Printer
	nameOps []NameOption
}

type AssemblerOption func(*Assembler)

// WithNameOptions configures the name synthesizer of the assembler
func WithNameOptions(opts ...NameOption) AssemblerOption {
	return func(a *Assembler) {
		a.nameOps = append(a.nameOps, opts...)
	}
}

// NewAssembler creates an assembler. A nil diag discards diagnostics and a nil tr uses English.
func NewAssembler(diag Diagnostics, tr i18n.Printer, opts ...AssemblerOption) *Assembler {
	if tr == nil {
		tr = i18n.English()
	}
	res := NewResolver(diag)
	a := &Assembler{
		header: headerReader{res: res, tr: tr},
		lines:  NewLineNormalizer(diag, tr),
		markup: NewMarkupParser(diag, tr),
		diag:   res.diag,
		tr:     tr,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.names = NewNameSynthesizer(tr, a.nameOps...)
	return a
}

// Names exposes the synthesizer used for order names
func (a *Assembler) Names() *NameSynthesizer {
	return a.names
}

// Assemble builds the canonical payload for projectRef. The only error
// is a *models.ConfigurationError for an unusable project reference.
func (a *Assembler) Assemble(projectRef any, src Source) (*models.OrderData, error) {
	projectID, err := ResolveProjectID(projectRef)
	if err != nil {
		return nil, err
	}

	data := models.NewOrderData(projectID)
	data.Reprint = src.Reprint || flag(src.Receipt, "reprint")
	// only a receipt flagged as a reprint marks the name
	markReprint := flag(src.Receipt, "reprint")

	var names []string

	if src.Order != nil {
		hd := a.header.read(src.Order)
		a.applyHeader(data, hd)
		names = append(names, hd.name)
		data.OrderLines = a.normalizeAll(a.header.rawLines(src.Order, orderLinesChain, LiveLine, ""))
	}

	if src.Receipt != nil {
		hd := a.header.read(src.Receipt)
		names = append(names, hd.name)
		if len(data.OrderLines) == 0 {
			a.applyHeader(data, hd)
			data.OrderLines = a.receiptLines(data, src.Receipt)
		}
		data.IsAddedOrder = data.IsAddedOrder || flag(src.Receipt, "is_added_order")
	}

	if src.Markup != "" {
		mr := a.markup.ParseString(src.Markup)
		names = append(names, mr.Name)
		if len(data.OrderLines) == 0 {
			a.applyMarkup(data, mr)
			raw := make([]RawLine, 0, len(mr.Lines))
			for _, rec := range mr.Lines {
				raw = append(raw, RawLine{Kind: MarkupLine, Record: rec})
			}
			data.OrderLines = a.normalizeAll(raw)
		}
	}

	if data.Server == nil {
		if s, ok := a.header.sessionCashier(src.Cashier); ok {
			data.Server = &s
		}
	}

	if len(data.OrderLines) == 0 {
		a.diag.Debug("placeholder_line", "No order lines could be extracted, adding placeholder", "", map[string]any{
			"project_id": projectID,
		})
		data.OrderLines = []models.OrderLine{a.placeholder()}
	}

	data.Name = a.names.Name(firstOrderName(names), markReprint)
	return data, nil
}

func (a *Assembler) receiptLines(data *models.OrderData, receipt Record) []models.OrderLine {
	if raw, ok := a.header.changeLines(receipt); ok && len(raw) > 0 {
		lines := a.normalizeAll(raw)
		if len(lines) > 0 {
			data.IsChangeOrder = true
			data.IsNewOrder = false
			return lines
		}
	}
	return a.normalizeAll(a.header.rawLines(receipt, orderLinesChain, ReceiptLine, ""))
}

func (a *Assembler) normalizeAll(raw []RawLine) []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(raw))
	for _, r := range raw {
		if line, ok := a.lines.Normalize(r); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// applyHeader fills fields that are still unset
func (a *Assembler) applyHeader(data *models.OrderData, hd header) {
	if data.Customer == nil {
		data.Customer = hd.customer
	}
	if data.Table == nil {
		data.Table = hd.table
	}
	if data.Server == nil {
		data.Server = hd.server
	}
	if data.Note == "" {
		data.Note = hd.note
	}
}

func (a *Assembler) applyMarkup(data *models.OrderData, mr MarkupReceipt) {
	if data.Table == nil && mr.Table != "" {
		t := mr.Table
		data.Table = &t
	}
	if data.Server == nil && mr.Server != "" {
		s := mr.Server
		data.Server = &s
	}
	if data.Note == "" {
		data.Note = mr.Note
	}
}

func (a *Assembler) placeholder() models.OrderLine {
	return models.OrderLine{
		ProductID:   0,
		ProductName: a.tr.Sprintf("Unspecified product"),
		Quantity:    decimal.NewFromInt(1),
		Note:        a.tr.Sprintf("Reprint - products could not be retrieved"),
		Price:       decimal.Zero,
		Sides:       []string{},
		ComboItems:  []models.ComboItem{},
		Attributes:  []string{},
	}
}

// firstOrderName picks the first candidate following the order name convention
func firstOrderName(candidates []string) string {
	for _, c := range candidates {
		if _, ok := MatchOrderName(c); ok {
			return c
		}
	}
	return ""
}

// ResolveProjectID accepts integers, whole floats, numeric strings,
// {id: n} records and [id, name] pairs.
func ResolveProjectID(ref any) (int64, error) {
	var (
		id int64
		ok bool
	)

	if pid, _, isPair := many2one(ref); isPair {
		id, ok = pid, true
	} else if rec, isRec := AsRecord(ref); isRec {
		v, _ := rec.Field("id")
		id, ok = toInt64(v)
	} else {
		id, ok = toInt64(ref)
	}

	if ref == nil {
		return 0, &models.ConfigurationError{Reason: "no project configured"}
	}
	if !ok || id <= 0 {
		return 0, &models.ConfigurationError{Reason: "unrecognized project_id format"}
	}
	return id, nil
}
