package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// toDecimal accepts numeric values only; numeric strings are rejected
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float32:
		return finiteDecimal(float64(n))
	case float64:
		return finiteDecimal(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

func finiteDecimal(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// toInt64 accepts whole numbers and numeric strings
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}

	d, ok := toDecimal(v)
	if !ok || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return d.IntPart(), true
}

// toText renders scalars as trimmed text; records and collections are rejected
func toText(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = t
	case json.Number:
		s = t.String()
	case decimal.Decimal:
		s = t.String()
	case fmt.Stringer:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	case int, int32, int64, uint, uint32, uint64:
		s = fmt.Sprintf("%d", t)
	case float32, float64:
		d, ok := toDecimal(t)
		if !ok {
			return "", false
		}
		s = d.String()
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// textOf renders v as text, reading the first non-empty key when v is a record
func textOf(v any, keys ...string) (string, bool) {
	if s, ok := toText(v); ok {
		return s, true
	}
	rec, ok := AsRecord(v)
	if !ok {
		return "", false
	}
	for _, k := range keys {
		f, _ := rec.Field(k)
		if s, ok := toText(f); ok {
			return s, true
		}
	}
	return "", false
}

// asList views v as a list of elements
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// many2one unpacks an [id, name] pair
func many2one(v any) (int64, string, bool) {
	list, ok := asList(v)
	if !ok || len(list) == 0 {
		return 0, "", false
	}
	id, ok := toInt64(list[0])
	if !ok {
		return 0, "", false
	}
	var name string
	if len(list) > 1 {
		name, _ = toText(list[1])
	}
	return id, name, true
}

func isPositiveNumber(v any) bool {
	d, ok := toDecimal(v)
	return ok && d.IsPositive()
}

func isNumber(v any) bool {
	_, ok := toDecimal(v)
	return ok
}
