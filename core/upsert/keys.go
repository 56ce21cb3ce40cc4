package upsert

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Primary-key values arrive both from incoming rows (decoded JSON: float64,
// int64, string) and from database scans (int64, float64, string, []byte).
// canonical folds both into one representation so set arithmetic on keys is
// reliable across sources.

const keySeparator = "\x1f"

// keyOf builds the canonical key string for one incoming row.
func keyOf(spec TableSpec, row Row) string {
	parts := make([]string, len(spec.PrimaryKey))
	for i, name := range spec.PrimaryKey {
		col, _ := spec.column(name)
		parts[i] = canonical(col.Kind, row[name])
	}
	return strings.Join(parts, keySeparator)
}

// keyOfValues builds the canonical key string for a scanned key tuple.
func keyOfValues(spec TableSpec, values []any) string {
	parts := make([]string, len(spec.PrimaryKey))
	for i, name := range spec.PrimaryKey {
		col, _ := spec.column(name)
		parts[i] = canonical(col.Kind, values[i])
	}
	return strings.Join(parts, keySeparator)
}

// canonical renders one primary-key value deterministically for its kind.
func canonical(kind ColumnKind, val any) string {
	if b, ok := val.([]byte); ok {
		val = string(b)
	}
	switch kind {
	case KindInteger, KindBool:
		switch v := val.(type) {
		case int64:
			return strconv.FormatInt(v, 10)
		case int:
			return strconv.Itoa(v)
		case float64:
			return strconv.FormatInt(int64(v), 10)
		case bool:
			if v {
				return "1"
			}
			return "0"
		case string:
			return v
		}
	case KindFloat:
		switch v := val.(type) {
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64)
		case int64:
			return strconv.FormatInt(v, 10)
		case string:
			return v
		}
	case KindTime:
		switch v := val.(type) {
		case time.Time:
			return v.UTC().Format(time.RFC3339)
		case string:
			return v
		}
	case KindText:
		if v, ok := val.(string); ok {
			return v
		}
	}
	return fmt.Sprint(val)
}
