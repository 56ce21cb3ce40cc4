package upsert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Keys built from decoded JSON rows must match keys built from database
// scans even though the value types differ between the two sources.
func TestKeyCanonicalization(t *testing.T) {
	spec := TableSpec{
		Name: "readings",
		Columns: []Column{
			{Name: "type_id", Kind: KindInteger},
			{Name: "date", Kind: KindText},
		},
		PrimaryKey: []string{"type_id", "date"},
		Mode:       ModeIncremental,
	}

	fromRow := keyOf(spec, Row{"type_id": float64(34), "date": "2026-08-31"})
	fromScan := keyOfValues(spec, []any{int64(34), []byte("2026-08-31")})
	assert.Equal(t, fromScan, fromRow)
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		kind ColumnKind
		val  any
		want string
	}{
		{"int64", KindInteger, int64(42), "42"},
		{"json float id", KindInteger, float64(42), "42"},
		{"bytes", KindInteger, []byte("42"), "42"},
		{"bool true", KindBool, true, "1"},
		{"float", KindFloat, 2.5, "2.5"},
		{"text", KindText, "x", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canonical(tt.kind, tt.val))
		})
	}
}
