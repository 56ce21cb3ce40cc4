package upsert

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// sanitize scans every row for null or invalid values before any write.
// Numeric columns get zero-filled, text columns empty-string-filled, and
// null timestamps filled with the current time. Substitutions signal an
// upstream data quality problem, so each affected column is logged with a
// count for later investigation.
func sanitize(log *zap.Logger, spec TableSpec, rows []Row) {
	substituted := make(map[string]int)
	now := time.Now().UTC()

	for _, row := range rows {
		for _, col := range spec.Columns {
			val, present := row[col.Name]
			if present && !invalid(col.Kind, val) {
				continue
			}
			row[col.Name] = fillValue(col.Kind, now)
			substituted[col.Name]++
		}
	}

	for name, count := range substituted {
		log.Warn("substituted invalid values before upsert",
			zap.String("table", spec.Name),
			zap.String("column", name),
			zap.Int("rows", count))
	}
}

// invalid reports whether val cannot be stored as-is for the given kind.
func invalid(kind ColumnKind, val any) bool {
	if val == nil {
		return true
	}
	switch kind {
	case KindFloat, KindInteger:
		if f, ok := toFloat(val); ok {
			return math.IsNaN(f) || math.IsInf(f, 0)
		}
		return true
	case KindText:
		_, ok := val.(string)
		return !ok
	case KindBool:
		switch val.(type) {
		case bool, int, int64:
			return false
		}
		return true
	case KindTime:
		switch v := val.(type) {
		case time.Time:
			return v.IsZero()
		case string:
			return v == ""
		}
		return true
	}
	return false
}

// fillValue returns the substitution for an invalid value of the given kind.
func fillValue(kind ColumnKind, now time.Time) any {
	switch kind {
	case KindInteger:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindText:
		return ""
	case KindBool:
		return false
	case KindTime:
		return now
	}
	return nil
}

// toFloat converts numeric values of any width to float64.
func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	}
	return 0, false
}
