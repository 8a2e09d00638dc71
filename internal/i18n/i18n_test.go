package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPrinter(t *testing.T) {
	tests := []struct {
		name   string
		locale string
		key    string
		args   []interface{}
		want   string
	}{
		{"english passes key through", "en", "Print error", nil, "Print error"},
		{"spanish translation", "es", "Print error", nil, "Error de impresión"},
		{"regional spanish uses base language", "es-CO", " (Reprint)", nil, " (Reimpresión)"},
		{"formatted english", "en", "Table %v", []interface{}{4}, "Table 4"},
		{"formatted spanish", "es", "Table %v", []interface{}{4}, "Mesa 4"},
		{"invalid locale falls back to english", "??", "Unnamed product", nil, "Unnamed product"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrinter(tt.locale)
			assert.Equal(t, tt.want, p.Sprintf(tt.key, tt.args...))
		})
	}
}
