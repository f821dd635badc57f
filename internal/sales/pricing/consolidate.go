// Package pricing holds the pure quote-line computations: merging raw cart
// selections into one row per product with three quantity/price tiers, and
// deriving tier subtotals and totals. Nothing here touches I/O.
package pricing

import "math"

// Variation is a catalog-defined color/size option snapshot carried on a
// selection so later edits can re-resolve images without a catalog fetch.
type Variation struct {
	Color string  `json:"color"`
	Image string  `json:"image,omitempty"`
	Size  string  `json:"size,omitempty"`
	Price float64 `json:"price,omitempty"`
}

// Selection is one raw entry from the cart, as built by search-and-add.
// Multiple selections sharing a ProductID represent the same product line
// quoted at different volume break points, not separate products.
type Selection struct {
	ProductID int64
	Color     string

	Quantity1 float64
	Price1    float64
	Quantity2 float64
	Price2    float64
	Quantity3 float64
	Price3    float64

	Variations             []Variation
	SelectedVariationImage string

	Personalization string
	Engraving       string
	Customizations  string
	Info            string
	Notes           string
	Factor          float64
}

// Consolidated is one display/persistence row per distinct product id.
// OriginalIndexes records which input positions contributed to the row so
// edits can be written back to every source entry.
type Consolidated struct {
	Selection
	OriginalIndexes []int
}

// Consolidate collapses a flat, possibly-duplicated selection list into one
// row per product id, preserving first-seen order. The first entry for an id
// seeds the row; each later entry's tier-1 pair fills the first empty tier
// slot (2 then 3). Entries beyond three populated tiers are dropped but
// still tracked in OriginalIndexes. Total function: never errors, never
// mutates its input.
func Consolidate(selections []Selection) []Consolidated {
	byID := make(map[int64]int, len(selections))
	out := make([]Consolidated, 0, len(selections))

	for i, sel := range selections {
		pos, seen := byID[sel.ProductID]
		if !seen {
			row := Consolidated{Selection: sanitize(sel)}
			row.OriginalIndexes = []int{i}
			byID[sel.ProductID] = len(out)
			out = append(out, row)
			continue
		}

		row := &out[pos]
		row.OriginalIndexes = append(row.OriginalIndexes, i)

		qty := safe(sel.Quantity1)
		price := safe(sel.Price1)
		switch {
		case qty == 0:
			// Nothing to merge.
		case row.Quantity2 == 0:
			row.Quantity2, row.Price2 = qty, price
		case row.Quantity3 == 0:
			row.Quantity3, row.Price3 = qty, price
		default:
			// No fourth tier exists; the extra break point is dropped.
		}
	}

	return out
}

// Overflowed reports product ids that had entries beyond three tiers, so
// callers can surface the drop instead of losing it silently.
func Overflowed(selections []Selection) []int64 {
	type tally struct{ seeded, filled int }
	counts := make(map[int64]*tally)
	var order []int64
	for _, sel := range selections {
		t, ok := counts[sel.ProductID]
		if !ok {
			t = &tally{}
			counts[sel.ProductID] = t
			order = append(order, sel.ProductID)
			t.seeded = populatedTiers(sel)
			continue
		}
		if safe(sel.Quantity1) != 0 {
			t.filled++
		}
	}
	var ids []int64
	for _, id := range order {
		t := counts[id]
		if t.seeded+t.filled > 3 {
			ids = append(ids, id)
		}
	}
	return ids
}

// TierSubtotals returns quantity×price per tier.
func TierSubtotals(c Consolidated) (s1, s2, s3 float64) {
	s1 = safe(c.Quantity1) * safe(c.Price1)
	s2 = safe(c.Quantity2) * safe(c.Price2)
	s3 = safe(c.Quantity3) * safe(c.Price3)
	return
}

// Total is the sum of the three tier subtotals.
func Total(c Consolidated) float64 {
	s1, s2, s3 := TierSubtotals(c)
	return s1 + s2 + s3
}

func populatedTiers(sel Selection) int {
	n := 0
	if safe(sel.Quantity1) != 0 {
		n++
	}
	if safe(sel.Quantity2) != 0 {
		n++
	}
	if safe(sel.Quantity3) != 0 {
		n++
	}
	return n
}

func sanitize(sel Selection) Selection {
	sel.Quantity1 = safe(sel.Quantity1)
	sel.Price1 = safe(sel.Price1)
	sel.Quantity2 = safe(sel.Quantity2)
	sel.Price2 = safe(sel.Price2)
	sel.Quantity3 = safe(sel.Quantity3)
	sel.Price3 = safe(sel.Price3)
	return sel
}

// safe coerces NaN/Inf to 0 so one malformed field cannot poison a total.
func safe(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
