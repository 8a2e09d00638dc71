package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-taskbridge/internal/models"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func strPtr(s string) *string { return &s }

func newTestAssembler() *Assembler {
	return NewAssembler(nil, nil, WithNameOptions(WithClock(fixedClock), WithRandom(func(int) int { return 42 })))
}

func liveOrder(props map[string]any, lines ...map[string]any) *Object {
	items := make([]any, len(lines))
	for i, l := range lines {
		items[i] = NewObject(l)
	}
	return NewObject(props).WithValueAccessor("get_orderlines", items)
}

func TestAssembler_LiveOrder(t *testing.T) {
	order := liveOrder(
		map[string]any{"name": "Order 00012-003-0004", "note": "rush"},
		map[string]any{"qty": 2, "product_id": 7, "product_name": "Burger", "sides": []any{"Cheese"}},
		map[string]any{"qty": 0, "product_id": 8, "product_name": "Refunded"},
	).
		WithValueAccessor("get_client", map[string]any{"id": 11, "name": "Ana"}).
		WithValueAccessor("get_table", map[string]any{"id": 3}).
		WithValueAccessor("get_server", map[string]any{"name": "Luis"})

	got, err := newTestAssembler().Assemble(5, Source{Order: order})
	require.NoError(t, err)

	want := &models.OrderData{
		ProjectID: 5,
		OrderLines: []models.OrderLine{{
			ProductID:   7,
			ProductName: "Burger",
			Quantity:    decimal.NewFromInt(2),
			Note:        "Extras: + Cheese",
			Price:       decimal.Zero,
			Sides:       []string{"Cheese"},
			ComboItems:  []models.ComboItem{},
			Attributes:  []string{},
		}},
		Note:       "rush",
		Name:       "Order 00012-003-0004",
		IsNewOrder: true,
		Table:      strPtr("Table 3"),
		Server:     strPtr("Luis"),
		Customer:   &models.Customer{ID: 11, Name: "Ana"},
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembler_FailingAccessorsLeaveFieldsAbsent(t *testing.T) {
	broken := func() (any, error) { return nil, errors.New("module not installed") }
	order := liveOrder(nil, map[string]any{"qty": 1, "product_name": "Soda"}).
		WithAccessor("get_client", broken).
		WithAccessor("get_table", func() (any, error) { panic("table service down") }).
		WithAccessor("get_server", broken)

	got, err := newTestAssembler().Assemble(5, Source{Order: order})
	require.NoError(t, err)

	assert.Nil(t, got.Customer)
	assert.Nil(t, got.Table)
	assert.Nil(t, got.Server)
	require.Len(t, got.OrderLines, 1)
	assert.Equal(t, "Soda", got.OrderLines[0].ProductName)
}

func TestAssembler_ReceiptDataFallback(t *testing.T) {
	order := liveOrder(nil, map[string]any{"qty": 0, "product_name": "Voided"})
	receipt := NewObject(map[string]any{
		"name":        "Order 00099-001-0002",
		"reprint":     true,
		"client":      map[string]any{"id": 4, "name": "Carla"},
		"table":       map[string]any{"name": "Terrace 2"},
		"server_name": "Pedro",
		"order":       map[string]any{"order_note": "window seat"},
		"orderlines": []any{
			map[string]any{"qty": 1, "product_id": 2, "product_name": "Tea (Iced)", "price": 3},
		},
	})

	got, err := newTestAssembler().Assemble(5, Source{Order: order, Receipt: receipt})
	require.NoError(t, err)

	assert.Equal(t, "Order 00099-001-0002 (Reprint)", got.Name)
	assert.True(t, got.Reprint)
	assert.Equal(t, &models.Customer{ID: 4, Name: "Carla"}, got.Customer)
	assert.Equal(t, strPtr("Terrace 2"), got.Table)
	assert.Equal(t, strPtr("Pedro"), got.Server)
	assert.Equal(t, "window seat", got.Note)
	require.Len(t, got.OrderLines, 1)
	assert.Equal(t, "Tea (Iced)", got.OrderLines[0].ProductName)
	assert.Equal(t, []string{"Iced"}, got.OrderLines[0].Attributes)
	assert.Equal(t, "3", got.OrderLines[0].Price.String())
}

func TestAssembler_ChangeReceipt(t *testing.T) {
	receipt := NewObject(map[string]any{
		"changes": map[string]any{
			"new":       []any{map[string]any{"qty": 2, "product_name": "Fries"}},
			"cancelled": []any{map[string]any{"qty": 1, "product_name": "Soda"}},
		},
	})

	got, err := newTestAssembler().Assemble(5, Source{Receipt: receipt})
	require.NoError(t, err)

	assert.True(t, got.IsChangeOrder)
	assert.False(t, got.IsNewOrder)
	require.Len(t, got.OrderLines, 2)
	assert.Equal(t, models.ChangeNew, got.OrderLines[0].ChangeType)
	assert.Equal(t, models.ChangeCancelled, got.OrderLines[1].ChangeType)
}

func TestAssembler_MarkupFallback(t *testing.T) {
	markup := `<div>
  <div class="pos-receipt-order-name">Order 00001-002-0003</div>
  <div class="pos-receipt-table">Table 9</div>
  <div class="orderline"><span class="product-name">Pasta</span><span class="price-or-qty">3</span></div>
</div>`

	got, err := newTestAssembler().Assemble(5, Source{Markup: markup})
	require.NoError(t, err)

	assert.Equal(t, "Order 00001-002-0003", got.Name)
	assert.Equal(t, strPtr("Table 9"), got.Table)
	require.Len(t, got.OrderLines, 1)
	assert.Equal(t, "Pasta", got.OrderLines[0].ProductName)
	assert.Equal(t, "3", got.OrderLines[0].Quantity.String())
	assert.Equal(t, int64(0), got.OrderLines[0].ProductID)
}

func TestAssembler_MarkupWithoutLines(t *testing.T) {
	got, err := newTestAssembler().Assemble(5, Source{Markup: `<div class="receipt">Thanks!</div>`})
	require.NoError(t, err)

	require.Len(t, got.OrderLines, 1)
	line := got.OrderLines[0]
	assert.Equal(t, int64(0), line.ProductID)
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "Error processing receipt", line.ProductName)
	assert.Equal(t, "No order lines found in receipt markup", line.Note)
}

func TestAssembler_Placeholder(t *testing.T) {
	order := liveOrder(nil, map[string]any{"qty": -2, "product_name": "Returned"})

	got, err := newTestAssembler().Assemble(5, Source{Order: order})
	require.NoError(t, err)

	require.Len(t, got.OrderLines, 1)
	line := got.OrderLines[0]
	assert.Equal(t, int64(0), line.ProductID)
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "Unspecified product", line.ProductName)
	assert.Equal(t, "Reprint - products could not be retrieved", line.Note)
	assert.Equal(t, "Order 250307-0905-1042", got.Name)
}

func TestAssembler_NamePrecedence(t *testing.T) {
	order := liveOrder(map[string]any{"name": "Ticket 12"}, map[string]any{"qty": 1, "product_name": "Soda"})
	receipt := NewObject(map[string]any{"name": "Order 00007-001-0001"})

	got, err := newTestAssembler().Assemble(5, Source{Order: order, Receipt: receipt, Reprint: true})
	require.NoError(t, err)

	assert.Equal(t, "Order 00007-001-0001", got.Name)
	assert.True(t, got.Reprint)
	require.Len(t, got.OrderLines, 1)
	assert.Equal(t, "Soda", got.OrderLines[0].ProductName)
}

func TestAssembler_SessionCashier(t *testing.T) {
	tests := []struct {
		name    string
		cashier Record
		want    *string
	}{
		{"cashier name", NewObject(map[string]any{"name": "Alice"}), strPtr("Alice")},
		{"cashier user name", NewObject(map[string]any{"user_name": "alice"}), strPtr("alice")},
		{"cashier id", NewObject(map[string]any{"id": 4}), strPtr("User 4")},
		{"no cashier", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := liveOrder(nil, map[string]any{"qty": 1, "product_name": "Soda"})
			got, err := newTestAssembler().Assemble(5, Source{Order: order, Cashier: tt.cashier})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Server)
		})
	}
}

func TestAssembler_InvalidProject(t *testing.T) {
	_, err := newTestAssembler().Assemble(nil, Source{})

	var cfgErr *models.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
}

func TestResolveProjectID(t *testing.T) {
	tests := []struct {
		name    string
		ref     any
		want    int64
		wantErr bool
	}{
		{"int", 5, 5, false},
		{"int64", int64(6), 6, false},
		{"whole float", 7.0, 7, false},
		{"json number", json.Number("8"), 8, false},
		{"numeric string", " 9 ", 9, false},
		{"record", map[string]any{"id": 10, "name": "Kitchen"}, 10, false},
		{"many2one pair", []any{11, "Kitchen"}, 11, false},
		{"nil", nil, 0, true},
		{"fraction", 2.5, 0, true},
		{"zero", 0, 0, true},
		{"text", "kitchen", 0, true},
		{"record without id", map[string]any{"name": "Kitchen"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveProjectID(tt.ref)
			if tt.wantErr {
				var cfgErr *models.ConfigurationError
				assert.True(t, errors.As(err, &cfgErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssembler_OrderInspection(t *testing.T) {
	a := newTestAssembler()

	saved := liveOrder(map[string]any{"backendId": "", "server_id": 17, "id": 3},
		map[string]any{"qty": 1}, map[string]any{"qty": 0})
	id, ok := a.BackendID(saved)
	assert.True(t, ok)
	assert.Equal(t, int64(17), id)
	assert.Equal(t, 2, a.LineCount(saved))

	draft := liveOrder(map[string]any{"id": 0})
	_, ok = a.BackendID(draft)
	assert.False(t, ok)
	assert.Equal(t, 0, a.LineCount(draft))
	assert.Equal(t, 0, a.LineCount(nil))
}

func TestAssembler_ReprintMarker(t *testing.T) {
	tests := []struct {
		name     string
		receipt  map[string]any
		reprint  bool
		wantName string
	}{
		{"payload flag alone", map[string]any{"name": "Order 00012-003-0004"}, true, "Order 00012-003-0004"},
		{"receipt flagged", map[string]any{"name": "Order 00012-003-0004", "reprint": true}, false, "Order 00012-003-0004 (Reprint)"},
		{"synthesized name unflagged", map[string]any{}, true, "Order 250307-0905-1042"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.receipt["orderlines"] = []any{map[string]any{"qty": 1, "product_name": "Burger"}}
			got, err := newTestAssembler().Assemble(5, Source{Receipt: NewObject(tt.receipt), Reprint: tt.reprint})
			require.NoError(t, err)

			assert.Equal(t, tt.wantName, got.Name)
			assert.True(t, got.Reprint)
		})
	}
}
