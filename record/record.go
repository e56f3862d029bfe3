// Package record defines the item model shared by the store, the remote
// client, and the sorted views, plus the pure ordering function applied
// whenever a custom sort order is available.
package record

import "sort"

// Record is a single stored item. The core never mutates records; it only
// reorders references to them.
type Record struct {
	// ID is the stable identity key. Upserts and custom ordering are keyed
	// by ID.
	ID string

	// Name is the display field and the tie-break sort key.
	Name string

	// Zone is the filter key used by the zone-scoped views. Empty means
	// the record belongs to no zone.
	Zone string
}

// Order is a custom sort order: identity keys in priority order.
// Position in the slice is the rank; earlier means first.
type Order []string

// Rank returns the 0-based position of id in the order, or (0, false)
// when the id is not part of the order.
func (o Order) Rank(id string) (int, bool) {
	for i, k := range o {
		if k == id {
			return i, true
		}
	}
	return 0, false
}

// SortByOrder returns a new slice with recs sorted by the custom order:
// records whose ID appears in order come first, ranked by position;
// records absent from order come after all ranked ones. Ties (equal rank,
// or both absent) break by Name ascending. The input slice is not modified.
//
// SortByOrder is idempotent: sorting an already-sorted slice with the same
// order yields an equal slice.
func SortByOrder(recs []Record, order Order) []Record {
	out := make([]Record, len(recs))
	copy(out, recs)

	// Rank lookup once up front; scanning the order per comparison would
	// make the sort O(n·m·log n).
	rank := make(map[string]int, len(order))
	for i, id := range order {
		// First occurrence wins if the order contains duplicates.
		if _, seen := rank[id]; !seen {
			rank[id] = i
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, oki := rank[out[i].ID]
		rj, okj := rank[out[j].ID]
		switch {
		case oki && okj && ri != rj:
			return ri < rj
		case oki != okj:
			return oki // ranked before unranked
		default:
			return out[i].Name < out[j].Name
		}
	})
	return out
}
