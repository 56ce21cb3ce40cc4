package upsert

import (
	"fmt"
	"strings"
)

// All statement text for the engine is built here, so chunk sizing, conflict
// clauses, and identifier quoting exist in exactly one place.

// quote wraps an identifier in double quotes for sqlite.
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteList quotes and joins column names.
func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ", ")
}

// columnNames returns the column names in spec order.
func columnNames(spec TableSpec) []string {
	names := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		names[i] = c.Name
	}
	return names
}

// placeholderRows builds "(?, ?, ...), (?, ?, ...)" for n rows of width cols.
func placeholderRows(n, cols int) string {
	row := "(" + strings.Repeat("?, ", cols-1) + "?)"
	rows := make([]string, n)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, ", ")
}

// insertSQL builds a plain multi-row INSERT for n rows.
func insertSQL(spec TableSpec, n int) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quote(spec.Name),
		quoteList(columnNames(spec)),
		placeholderRows(n, len(spec.Columns)))
}

// upsertSQL builds a multi-row INSERT with an ON CONFLICT clause that updates
// existing rows only when at least one change-detection column differs.
// Volatile columns excluded from ChangeColumns therefore never force an
// update on re-ingest of unchanged data.
func upsertSQL(spec TableSpec, n int) string {
	var sb strings.Builder
	sb.WriteString(insertSQL(spec, n))
	sb.WriteString(fmt.Sprintf(" ON CONFLICT(%s) DO UPDATE SET ", quoteList(spec.PrimaryKey)))

	assignments := make([]string, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		if spec.isPrimaryKey(c.Name) {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = excluded.%s", quote(c.Name), quote(c.Name)))
	}
	sb.WriteString(strings.Join(assignments, ", "))

	if len(spec.ChangeColumns) > 0 {
		predicates := make([]string, len(spec.ChangeColumns))
		for i, name := range spec.ChangeColumns {
			// IS NOT is sqlite's null-safe inequality.
			predicates[i] = fmt.Sprintf("excluded.%s IS NOT %s.%s", quote(name), quote(spec.Name), quote(name))
		}
		sb.WriteString(" WHERE " + strings.Join(predicates, " OR "))
	}

	return sb.String()
}

// deleteAllSQL truncates the table.
func deleteAllSQL(spec TableSpec) string {
	return "DELETE FROM " + quote(spec.Name)
}

// deleteKeysSQL builds a chunked stale-key delete for n keys. Composite
// primary keys use row values so one statement still covers the chunk.
func deleteKeysSQL(spec TableSpec, n int) string {
	if len(spec.PrimaryKey) == 1 {
		placeholders := strings.Repeat("?, ", n-1) + "?"
		return fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
			quote(spec.Name), quote(spec.PrimaryKey[0]), placeholders)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE (%s) IN (VALUES %s)",
		quote(spec.Name),
		quoteList(spec.PrimaryKey),
		placeholderRows(n, len(spec.PrimaryKey)))
}

// selectKeysSQL reads the existing primary keys.
func selectKeysSQL(spec TableSpec) string {
	return fmt.Sprintf("SELECT %s FROM %s", quoteList(spec.PrimaryKey), quote(spec.Name))
}

// countSQL counts the table's rows.
func countSQL(spec TableSpec) string {
	return "SELECT COUNT(*) FROM " + quote(spec.Name)
}

// CreateSQL builds the DDL for a spec's table. Used for bootstrap and tests;
// production tables normally arrive via replica sync.
func CreateSQL(spec TableSpec) string {
	defs := make([]string, 0, len(spec.Columns)+1)
	for _, c := range spec.Columns {
		defs = append(defs, quote(c.Name)+" "+sqliteType(c.Kind))
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteList(spec.PrimaryKey)))
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(spec.Name), strings.Join(defs, ", "))
}

// sqliteType maps a column kind to its sqlite affinity.
func sqliteType(kind ColumnKind) string {
	switch kind {
	case KindInteger, KindBool:
		return "INTEGER"
	case KindFloat:
		return "REAL"
	case KindTime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

// rowArgs flattens rows into statement arguments in spec column order.
func rowArgs(spec TableSpec, rows []Row) []any {
	args := make([]any, 0, len(rows)*len(spec.Columns))
	for _, row := range rows {
		for _, c := range spec.Columns {
			args = append(args, row[c.Name])
		}
	}
	return args
}

// keyArgs flattens primary-key tuples into statement arguments.
func keyArgs(keys [][]any) []any {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys)*len(keys[0]))
	for _, key := range keys {
		args = append(args, key...)
	}
	return args
}
