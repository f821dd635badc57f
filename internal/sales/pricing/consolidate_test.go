package pricing

import (
	"math"
	"reflect"
	"testing"
)

func TestConsolidateOrderAndTiers(t *testing.T) {
	input := []Selection{
		{ProductID: 1, Quantity1: 5, Price1: 10},
		{ProductID: 2, Quantity1: 3, Price1: 7},
		{ProductID: 1, Quantity1: 7, Price1: 9},
	}
	got := Consolidate(input)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows got %d", len(got))
	}
	first := got[0]
	if first.ProductID != 1 || first.Quantity1 != 5 || first.Quantity2 != 7 || first.Quantity3 != 0 {
		t.Fatalf("unexpected first row: %+v", first.Selection)
	}
	if first.Price2 != 9 {
		t.Fatalf("tier 2 price = %v, want 9", first.Price2)
	}
	if !reflect.DeepEqual(first.OriginalIndexes, []int{0, 2}) {
		t.Fatalf("original indexes = %v", first.OriginalIndexes)
	}
	second := got[1]
	if second.ProductID != 2 || second.Quantity1 != 3 || second.Quantity2 != 0 {
		t.Fatalf("unexpected second row: %+v", second.Selection)
	}
}

func TestConsolidateIdempotent(t *testing.T) {
	consolidated := Consolidate([]Selection{
		{ProductID: 4, Quantity1: 100, Price1: 2.5, Quantity2: 500, Price2: 2.1},
		{ProductID: 9, Quantity1: 50, Price1: 8},
	})

	again := Consolidate(toSelections(consolidated))
	if len(again) != len(consolidated) {
		t.Fatalf("row count changed: %d -> %d", len(consolidated), len(again))
	}
	for i := range again {
		if !reflect.DeepEqual(again[i].Selection, consolidated[i].Selection) {
			t.Errorf("row %d changed: %+v -> %+v", i, consolidated[i].Selection, again[i].Selection)
		}
	}
}

func TestConsolidateOverflowDropped(t *testing.T) {
	input := []Selection{
		{ProductID: 1, Quantity1: 100, Price1: 5},
		{ProductID: 1, Quantity1: 500, Price1: 4},
		{ProductID: 1, Quantity1: 1000, Price1: 3},
		{ProductID: 1, Quantity1: 5000, Price1: 2},
	}
	got := Consolidate(input)
	if len(got) != 1 {
		t.Fatalf("expected 1 row got %d", len(got))
	}
	row := got[0]
	if row.Quantity1 != 100 || row.Quantity2 != 500 || row.Quantity3 != 1000 {
		t.Fatalf("tiers = %v/%v/%v", row.Quantity1, row.Quantity2, row.Quantity3)
	}
	// The dropped entry is still traceable.
	if !reflect.DeepEqual(row.OriginalIndexes, []int{0, 1, 2, 3}) {
		t.Fatalf("original indexes = %v", row.OriginalIndexes)
	}

	over := Overflowed(input)
	if len(over) != 1 || over[0] != 1 {
		t.Fatalf("Overflowed = %v", over)
	}
	if over := Overflowed(input[:3]); over != nil {
		t.Fatalf("Overflowed on exactly 3 tiers = %v", over)
	}
}

func TestConsolidateZeroQuantityNotMerged(t *testing.T) {
	got := Consolidate([]Selection{
		{ProductID: 1, Quantity1: 10, Price1: 1},
		{ProductID: 1, Quantity1: 0, Price1: 99},
	})
	if got[0].Quantity2 != 0 || got[0].Price2 != 0 {
		t.Fatalf("zero-quantity entry filled a tier: %+v", got[0].Selection)
	}
}

func TestTotals(t *testing.T) {
	c := Consolidated{Selection: Selection{
		Quantity1: 100, Price1: 2,
		Quantity2: 500, Price2: 1.5,
		Quantity3: 1000, Price3: 1.25,
	}}
	s1, s2, s3 := TierSubtotals(c)
	if s1 != 200 || s2 != 750 || s3 != 1250 {
		t.Fatalf("subtotals = %v/%v/%v", s1, s2, s3)
	}
	if Total(c) != 2200 {
		t.Fatalf("total = %v", Total(c))
	}

	c.Price2 = math.NaN()
	if got := Total(c); got != 1450 {
		t.Fatalf("total with NaN tier = %v, want 1450", got)
	}
}

func toSelections(rows []Consolidated) []Selection {
	out := make([]Selection, len(rows))
	for i, r := range rows {
		out[i] = r.Selection
	}
	return out
}
