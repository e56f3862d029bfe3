package record

import (
	"reflect"
	"testing"
)

func names(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

// The worked example: order ranks id2 before id1, id3 is unranked and
// therefore sorts last regardless of name.
func TestSortByOrder_CustomOrderWins(t *testing.T) {
	t.Parallel()

	recs := []Record{
		{ID: "id1", Name: "Apple"},
		{ID: "id2", Name: "Banana"},
		{ID: "id3", Name: "Cherry"},
	}
	got := SortByOrder(recs, Order{"id2", "id1"})

	want := []string{"Banana", "Apple", "Cherry"}
	if !reflect.DeepEqual(names(got), want) {
		t.Fatalf("want %v, got %v", want, names(got))
	}
}

// Unranked records sort after every ranked one, even when their name
// would place them first alphabetically.
func TestSortByOrder_UnrankedAlwaysLast(t *testing.T) {
	t.Parallel()

	recs := []Record{
		{ID: "x", Name: "AAA"}, // unranked, alphabetically first
		{ID: "b", Name: "Zeta"},
		{ID: "a", Name: "Yps"},
	}
	got := SortByOrder(recs, Order{"a", "b"})

	want := []string{"Yps", "Zeta", "AAA"}
	if !reflect.DeepEqual(names(got), want) {
		t.Fatalf("want %v, got %v", want, names(got))
	}
}

// With an empty order everything is unranked and the result is plain
// name ordering.
func TestSortByOrder_EmptyOrderFallsBackToName(t *testing.T) {
	t.Parallel()

	recs := []Record{
		{ID: "1", Name: "cherry"},
		{ID: "2", Name: "apple"},
		{ID: "3", Name: "banana"},
	}
	got := SortByOrder(recs, nil)

	want := []string{"apple", "banana", "cherry"}
	if !reflect.DeepEqual(names(got), want) {
		t.Fatalf("want %v, got %v", want, names(got))
	}
}

func TestSortByOrder_Idempotent(t *testing.T) {
	t.Parallel()

	recs := []Record{
		{ID: "c", Name: "Gamma"},
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Alpha"}, // name tie with "a"
		{ID: "d", Name: "Delta"},
	}
	order := Order{"b", "c"}

	once := SortByOrder(recs, order)
	twice := SortByOrder(once, order)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("not idempotent: %v vs %v", once, twice)
	}
}

func TestSortByOrder_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	recs := []Record{
		{ID: "b", Name: "B"},
		{ID: "a", Name: "A"},
	}
	snapshot := make([]Record, len(recs))
	copy(snapshot, recs)

	_ = SortByOrder(recs, Order{"a", "b"})
	if !reflect.DeepEqual(recs, snapshot) {
		t.Fatalf("input mutated: %v", recs)
	}
}

func TestOrder_Rank(t *testing.T) {
	t.Parallel()

	o := Order{"x", "y"}
	if r, ok := o.Rank("y"); !ok || r != 1 {
		t.Fatalf("Rank(y) = %d,%v", r, ok)
	}
	if _, ok := o.Rank("z"); ok {
		t.Fatal("Rank(z) must be absent")
	}
}
