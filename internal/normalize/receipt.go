package normalize

import (
	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/models"
)

var orderNoteProps = []string{"note", "order_note", "orderNote", "comments", "comment", "customer_note", "client_note"}

var (
	customerChain = Chain{Accessor("get_client"), Property("client"), Property("partner")}
	tableChain    = Chain{Accessor("get_table"), Property("table"), Property("table_name")}
	serverChain   = Chain{
		Accessor("get_server"),
		Property("server"),
		Property("server_name"),
		Accessor("get_cashier"),
		Property("cashier"),
		Property("cashier_name"),
	}
	orderNoteChain  = orderNoteStrategies()
	orderLinesChain = Chain{Accessor("get_orderlines"), Property("orderlines"), Property("lines")}
	orderNameChain  = Chain{Accessor("get_name"), Property("name")}
	changesChain    = Chain{Property("changes")}
)

func orderNoteStrategies() Chain {
	c := Chain{Accessor("get_note")}.Then(Properties(orderNoteProps...)...)
	for _, p := range orderNoteProps {
		c = append(c, Nested("order", p))
	}
	return c
}

// header holds the top-level fields read from one order source
type header struct {
	name     string
	note     string
	table    *string
	server   *string
	customer *models.Customer
}

// headerReader reads top-level fields of live orders and receipt data
type headerReader struct {
	res *Resolver
	tr  i18n.Printer
}

func (h headerReader) read(rec Record) header {
	var hd header
	if rec == nil {
		return hd
	}

	hd.name, _ = h.res.Resolve(rec, orderNameChain).Text()
	hd.note, _ = h.res.Resolve(rec, orderNoteChain).Text()
	hd.customer = h.customer(rec)

	if res := h.res.ResolveWith(rec, tableChain, h.acceptTable); res.Ok() {
		t, _ := h.tableText(res.Value)
		hd.table = &t
	}
	if res := h.res.ResolveWith(rec, serverChain, acceptPerson); res.Ok() {
		s, _ := personText(res.Value)
		hd.server = &s
	}
	return hd
}

func (h headerReader) customer(rec Record) *models.Customer {
	res := h.res.ResolveWith(rec, customerChain, func(v any) bool {
		return customerOf(v) != nil
	})
	if !res.Ok() {
		return nil
	}
	return customerOf(res.Value)
}

func customerOf(v any) *models.Customer {
	if id, name, ok := many2one(v); ok {
		return &models.Customer{ID: id, Name: name}
	}
	rec, ok := AsRecord(v)
	if !ok {
		return nil
	}
	idVal, _ := rec.Field("id")
	id, hasID := toInt64(idVal)
	name, hasName := textOf(rec, "name", "display_name")
	if !hasID && !hasName {
		return nil
	}
	return &models.Customer{ID: id, Name: name}
}

func (h headerReader) acceptTable(v any) bool {
	_, ok := h.tableText(v)
	return ok
}

// tableText renders a table as its name, or "Table <id>" when unnamed
func (h headerReader) tableText(v any) (string, bool) {
	if s, ok := toText(v); ok {
		return s, true
	}
	if _, name, ok := many2one(v); ok && name != "" {
		return name, true
	}
	rec, ok := AsRecord(v)
	if !ok {
		return "", false
	}
	if name, ok := textOf(rec, "name"); ok {
		return name, true
	}
	if id, ok := rec.Field("id"); ok {
		if idText, ok := toText(id); ok {
			return h.tr.Sprintf("Table %v", idText), true
		}
	}
	return "", false
}

func acceptPerson(v any) bool {
	_, ok := personText(v)
	return ok
}

func personText(v any) (string, bool) {
	if s, ok := toText(v); ok {
		return s, true
	}
	if _, name, ok := many2one(v); ok && name != "" {
		return name, true
	}
	return textOf(v, "name")
}

// sessionCashier renders the cashier of the point of sale session
func (h headerReader) sessionCashier(rec Record) (string, bool) {
	if rec == nil {
		return "", false
	}
	if name, ok := textOf(rec, "name", "user_name"); ok {
		return name, true
	}
	if id, ok := rec.Field("id"); ok {
		if idText, ok := toText(id); ok {
			return h.tr.Sprintf("User %v", idText), true
		}
	}
	return "", false
}

// rawLines lists the line records of rec tagged with kind
func (h headerReader) rawLines(rec Record, chain Chain, kind LineKind, change models.ChangeType) []RawLine {
	res := h.res.Resolve(rec, chain)
	if !res.Ok() {
		return nil
	}
	items, ok := asList(res.Value)
	if !ok {
		return nil
	}

	lines := make([]RawLine, 0, len(items))
	for i, item := range items {
		lineRec, ok := AsRecord(item)
		if !ok {
			h.res.diag.Debug("line_skipped", "Skipping line that is not a record", "", map[string]any{
				"kind":  kind.String(),
				"index": i,
			})
			continue
		}
		lines = append(lines, RawLine{Kind: kind, Record: lineRec, ChangeType: change})
	}
	return lines
}

// changeLines reads the lines of a kitchen change receipt
func (h headerReader) changeLines(rec Record) ([]RawLine, bool) {
	changes, ok := h.res.Resolve(rec, changesChain).Record()
	if !ok {
		return nil, false
	}

	var lines []RawLine
	lines = append(lines, h.rawLines(changes, Chain{Property("new")}, ReceiptLine, models.ChangeNew)...)
	lines = append(lines, h.rawLines(changes, Chain{Property("cancelled")}, ReceiptLine, models.ChangeCancelled)...)
	lines = append(lines, h.rawLines(changes, Properties("noteUpdate", "note_update"), ReceiptLine, models.ChangeNoteOnly)...)
	return lines, true
}

func flag(rec Record, name string) bool {
	if rec == nil {
		return false
	}
	v, _ := rec.Field(name)
	b, ok := v.(bool)
	return ok && b
}

var backendIDChain = Chain{Property("backendId"), Property("server_id"), Property("id")}

// LineCount returns how many line records order lists, before any skipping
func (a *Assembler) LineCount(order Record) int {
	return len(a.header.rawLines(order, orderLinesChain, LiveLine, ""))
}

// BackendID returns the identifier the backend assigned to order, if it
// has been saved
func (a *Assembler) BackendID(order Record) (int64, bool) {
	res := a.header.res.ResolveWith(order, backendIDChain, isPositiveID)
	if !res.Ok() {
		return 0, false
	}
	return toInt64(res.Value)
}

func isPositiveID(v any) bool {
	n, ok := toInt64(v)
	return ok && n > 0
}
