package market

import "market-sync/core/upsert"

// Volatile bookkeeping columns. They are stamped on every write, so they are
// excluded from change detection: re-ingesting unchanged data must not bump
// them.
var volatileColumns = map[string]struct{}{
	"timestamp":   {},
	"last_update": {},
	"created_at":  {},
	"updated_at":  {},
}

// changeColumns returns every non-key, non-volatile column name.
func changeColumns(spec upsert.TableSpec) []string {
	pk := make(map[string]struct{}, len(spec.PrimaryKey))
	for _, name := range spec.PrimaryKey {
		pk[name] = struct{}{}
	}

	var names []string
	for _, c := range spec.Columns {
		if _, isPK := pk[c.Name]; isPK {
			continue
		}
		if _, volatile := volatileColumns[c.Name]; volatile {
			continue
		}
		names = append(names, c.Name)
	}
	return names
}

// OrdersSpec describes the marketorders table. Every cycle carries the full
// regional order snapshot, so stale orders are pruned by key-diffing.
func OrdersSpec() upsert.TableSpec {
	spec := upsert.TableSpec{
		Name: "marketorders",
		Columns: []upsert.Column{
			{Name: "order_id", Kind: upsert.KindInteger},
			{Name: "type_id", Kind: upsert.KindInteger},
			{Name: "duration", Kind: upsert.KindInteger},
			{Name: "is_buy_order", Kind: upsert.KindBool},
			{Name: "issued", Kind: upsert.KindTime},
			{Name: "location_id", Kind: upsert.KindInteger},
			{Name: "min_volume", Kind: upsert.KindInteger},
			{Name: "price", Kind: upsert.KindFloat},
			{Name: "range", Kind: upsert.KindText},
			{Name: "system_id", Kind: upsert.KindInteger},
			{Name: "volume_remain", Kind: upsert.KindInteger},
			{Name: "volume_total", Kind: upsert.KindInteger},
		},
		PrimaryKey: []string{"order_id"},
		Mode:       upsert.ModeIncremental,
	}
	spec.ChangeColumns = changeColumns(spec)
	return spec
}

// HistorySpec describes the market_history table. History is a rolling daily
// window and conditional fetching means a cycle only carries types whose
// data actually changed, so the batch is upserted without stale pruning.
func HistorySpec() upsert.TableSpec {
	spec := upsert.TableSpec{
		Name: "market_history",
		Columns: []upsert.Column{
			{Name: "type_id", Kind: upsert.KindInteger},
			{Name: "date", Kind: upsert.KindText},
			{Name: "average", Kind: upsert.KindFloat},
			{Name: "highest", Kind: upsert.KindFloat},
			{Name: "lowest", Kind: upsert.KindFloat},
			{Name: "order_count", Kind: upsert.KindInteger},
			{Name: "volume", Kind: upsert.KindInteger},
			{Name: "timestamp", Kind: upsert.KindTime},
		},
		PrimaryKey: []string{"type_id", "date"},
		Mode:       upsert.ModeAppend,
	}
	spec.ChangeColumns = changeColumns(spec)
	return spec
}

// StatsSpec describes the marketstats table, rebuilt wholesale each cycle by
// the reporting layer. Its last_update column is the sync watermark.
func StatsSpec() upsert.TableSpec {
	return upsert.TableSpec{
		Name: "marketstats",
		Columns: []upsert.Column{
			{Name: "type_id", Kind: upsert.KindInteger},
			{Name: "total_volume_remain", Kind: upsert.KindInteger},
			{Name: "min_price", Kind: upsert.KindFloat},
			{Name: "avg_volume", Kind: upsert.KindFloat},
			{Name: "days_remaining", Kind: upsert.KindFloat},
			{Name: "last_update", Kind: upsert.KindTime},
		},
		PrimaryKey: []string{"type_id"},
		Mode:       upsert.ModeWipeReplace,
	}
}
