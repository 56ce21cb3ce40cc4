package upsert

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSanitizeSubstitutesInvalidValues(t *testing.T) {
	spec := itemSpec(ModeIncremental)
	rows := []Row{
		{"id": int64(1), "name": nil, "price": math.NaN(), "last_update": time.Time{}},
		{"id": int64(2), "name": "ok", "price": math.Inf(1), "last_update": time.Now().UTC()},
		{"id": int64(3), "price": 4.2, "last_update": "2026-08-31T00:00:00Z"},
	}

	sanitize(zap.NewNop(), spec, rows)

	assert.Equal(t, "", rows[0]["name"])
	assert.Equal(t, float64(0), rows[0]["price"])
	assert.NotEqual(t, time.Time{}, rows[0]["last_update"])

	assert.Equal(t, "ok", rows[1]["name"])
	assert.Equal(t, float64(0), rows[1]["price"])

	// Missing columns are filled too.
	assert.Equal(t, "", rows[2]["name"])
	assert.Equal(t, 4.2, rows[2]["price"])
}

func TestSanitizeLeavesValidRowsAlone(t *testing.T) {
	spec := itemSpec(ModeIncremental)
	stamp := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	rows := []Row{{"id": int64(1), "name": "tritanium", "price": 5.5, "last_update": stamp}}

	sanitize(zap.NewNop(), spec, rows)

	assert.Equal(t, Row{"id": int64(1), "name": "tritanium", "price": 5.5, "last_update": stamp}, rows[0])
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		kind ColumnKind
		val  any
		want bool
	}{
		{"nil integer", KindInteger, nil, true},
		{"int ok", KindInteger, int64(5), false},
		{"float nan", KindFloat, math.NaN(), true},
		{"float inf", KindFloat, math.Inf(-1), true},
		{"float ok", KindFloat, 1.25, false},
		{"text non-string", KindText, 7, true},
		{"text ok", KindText, "x", false},
		{"bool ok", KindBool, true, false},
		{"time zero", KindTime, time.Time{}, true},
		{"time string empty", KindTime, "", true},
		{"time string ok", KindTime, "2026-08-31", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, invalid(tt.kind, tt.val))
		})
	}
}
