package upsert

import "fmt"

// Mode selects how a table is reconciled against an incoming batch.
type Mode string

const (
	// ModeWipeReplace truncates the table and reloads it from the batch.
	ModeWipeReplace Mode = "wipe_replace"

	// ModeIncremental key-diffs the table against the batch: stale rows are
	// deleted, new rows inserted, changed rows updated.
	ModeIncremental Mode = "incremental"

	// ModeAppend upserts the batch without pruning stale keys. Used for
	// rolling-window tables (e.g. daily history) where a cycle legitimately
	// carries only a subset of the stored keys.
	ModeAppend Mode = "append"
)

// ColumnKind classifies a column for sanitation and key canonicalization.
type ColumnKind string

const (
	KindInteger ColumnKind = "integer"
	KindFloat   ColumnKind = "float"
	KindText    ColumnKind = "text"
	KindBool    ColumnKind = "bool"
	KindTime    ColumnKind = "time"
)

// Column describes one table column.
type Column struct {
	// Name is the column name as stored.
	Name string
	// Kind is the value class used for sanitation and key building.
	Kind ColumnKind
}

// TableSpec is the static description of a reconciliation target: the table
// name, its columns, the primary key, the reconciliation mode, and the subset
// of columns consulted for change detection. Volatile metadata columns
// (timestamps bumped on write) are excluded from ChangeColumns so that
// re-ingesting unchanged data does not register as an update.
type TableSpec struct {
	Name          string
	Columns       []Column
	PrimaryKey    []string
	Mode          Mode
	ChangeColumns []string
}

// Row is one incoming record, keyed by column name.
type Row map[string]any

// Stats summarizes the mutations performed by one Upsert call. The
// inserted/updated split is approximated from driver-reported rows affected;
// only final row membership is a guaranteed property.
type Stats struct {
	Deleted  int64
	Inserted int64
	Updated  int64
	Skipped  int64
}

// Chunk sizing. Inserts batch rows per statement; deletes keep the
// parameter count well under sqlite/libsql variable limits.
const (
	insertChunkSize = 1000
	deleteChunkSize = 500
)

// Validate checks structural consistency of the spec.
func (s TableSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("table spec has no name")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("table %s: spec has no columns", s.Name)
	}
	if len(s.PrimaryKey) == 0 {
		return fmt.Errorf("table %s: spec has no primary key", s.Name)
	}

	byName := make(map[string]Column, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %s: column with empty name", s.Name)
		}
		if _, dup := byName[c.Name]; dup {
			return fmt.Errorf("table %s: duplicate column %s", s.Name, c.Name)
		}
		byName[c.Name] = c
	}

	pk := make(map[string]struct{}, len(s.PrimaryKey))
	for _, name := range s.PrimaryKey {
		if _, ok := byName[name]; !ok {
			return fmt.Errorf("table %s: primary key column %s not in columns", s.Name, name)
		}
		pk[name] = struct{}{}
	}

	for _, name := range s.ChangeColumns {
		if _, ok := byName[name]; !ok {
			return fmt.Errorf("table %s: change column %s not in columns", s.Name, name)
		}
		if _, isPK := pk[name]; isPK {
			return fmt.Errorf("table %s: change column %s is part of the primary key", s.Name, name)
		}
	}

	switch s.Mode {
	case ModeWipeReplace, ModeIncremental, ModeAppend:
	default:
		return fmt.Errorf("table %s: unknown mode %q", s.Name, s.Mode)
	}
	return nil
}

// column returns the column definition by name.
func (s TableSpec) column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// isPrimaryKey reports whether name is part of the primary key.
func (s TableSpec) isPrimaryKey(name string) bool {
	for _, pk := range s.PrimaryKey {
		if pk == name {
			return true
		}
	}
	return false
}
