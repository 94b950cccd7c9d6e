package ingestion

// Keyed is any row with a tenant-scoped natural key.
type Keyed interface {
	Key() string
}

// Dedupe collapses a batch to one row per natural key, keeping the
// last-seen occurrence. The output preserves the order in which each key
// first appeared. A persistence batch must never contain duplicate keys
// under an on-conflict upsert, so this runs before every store call.
func Dedupe[T Keyed](rows []T) []T {
	if len(rows) <= 1 {
		return rows
	}

	index := make(map[string]int, len(rows))
	out := make([]T, 0, len(rows))

	for _, row := range rows {
		key := row.Key()
		if i, ok := index[key]; ok {
			out[i] = row
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}

	return out
}

// DuplicatesRemoved reports how many rows a Dedupe pass over the input
// would drop.
func DuplicatesRemoved[T Keyed](rows []T) int {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		seen[row.Key()] = struct{}{}
	}
	return len(rows) - len(seen)
}
