package ledger

import "sort"

// Project folds a list of purchase records into the latest record per
// material name. On equal timestamps the record appearing later in the
// input wins, which keeps a single projection call deterministic.
func Project(records []PurchaseRecord) map[string]PurchaseRecord {
	latest := make(map[string]PurchaseRecord, len(records))
	for _, rec := range records {
		cur, ok := latest[rec.Material]
		if !ok || !rec.Timestamp.Before(cur.Timestamp) {
			latest[rec.Material] = rec
		}
	}
	return latest
}

// History returns every purchase of the named material, newest first.
// Material names match exactly and case-sensitively; the sort order is
// a display concern only.
func History(records []PurchaseRecord, material string) []PurchaseRecord {
	var out []PurchaseRecord
	for _, rec := range records {
		if rec.Material == material {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// LowStockMaterials filters a projection down to materials whose stock
// is below their reorder threshold, sorted by name for stable output.
func LowStockMaterials(latest map[string]PurchaseRecord) []PurchaseRecord {
	var out []PurchaseRecord
	for _, rec := range latest {
		if rec.LowStock() {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Material < out[j].Material
	})
	return out
}
