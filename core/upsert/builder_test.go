package upsert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertSQL(t *testing.T) {
	spec := itemSpec(ModeWipeReplace)
	got := insertSQL(spec, 2)
	assert.Equal(t,
		`INSERT INTO "items" ("id", "name", "price", "last_update") VALUES (?, ?, ?, ?), (?, ?, ?, ?)`,
		got)
}

func TestUpsertSQL(t *testing.T) {
	spec := itemSpec(ModeIncremental)
	got := upsertSQL(spec, 1)

	assert.Contains(t, got, `ON CONFLICT("id") DO UPDATE SET`)
	assert.Contains(t, got, `"name" = excluded."name"`)
	assert.Contains(t, got, `"last_update" = excluded."last_update"`)
	assert.NotContains(t, got, `"id" = excluded."id"`)

	// Only change columns gate the update; the volatile timestamp must
	// not appear in the predicate.
	assert.Contains(t, got,
		`WHERE excluded."name" IS NOT "items"."name" OR excluded."price" IS NOT "items"."price"`)
	assert.NotContains(t, got, `excluded."last_update" IS NOT`)
}

func TestDeleteKeysSQL(t *testing.T) {
	single := itemSpec(ModeIncremental)
	assert.Equal(t,
		`DELETE FROM "items" WHERE "id" IN (?, ?, ?)`,
		deleteKeysSQL(single, 3))

	composite := TableSpec{
		Name: "readings",
		Columns: []Column{
			{Name: "type_id", Kind: KindInteger},
			{Name: "date", Kind: KindText},
		},
		PrimaryKey: []string{"type_id", "date"},
		Mode:       ModeIncremental,
	}
	assert.Equal(t,
		`DELETE FROM "readings" WHERE ("type_id", "date") IN (VALUES (?, ?), (?, ?))`,
		deleteKeysSQL(composite, 2))
}

func TestCreateSQL(t *testing.T) {
	spec := itemSpec(ModeIncremental)
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "items" (`+
			`"id" INTEGER, "name" TEXT, "price" REAL, "last_update" DATETIME, `+
			`PRIMARY KEY ("id"))`,
		CreateSQL(spec))
}

func TestRowArgsOrder(t *testing.T) {
	spec := itemSpec(ModeIncremental)
	rows := []Row{{
		"price":       2.5,
		"id":          int64(7),
		"last_update": "2026-08-31T00:00:00Z",
		"name":        "veldspar",
	}}
	args := rowArgs(spec, rows)
	assert.Equal(t, []any{int64(7), "veldspar", 2.5, "2026-08-31T00:00:00Z"}, args)
}
