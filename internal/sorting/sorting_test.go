package sorting

import (
	"sort"
	"testing"

	"pondo/internal/core"
)

func sampleEntries() []core.Entry {
	return []core.Entry{
		{Kind: core.KindExpense, ID: 1, Name: "Lunch", Category: "Food", Date: core.NewDate(2024, 3, 5), Amount: core.Money{Cents: 20000}},
		{Kind: core.KindExpense, ID: 2, Name: "bus fare", Category: "Transportation", Date: core.NewDate(2024, 3, 6), Amount: core.Money{Cents: 1500}},
		{Kind: core.KindIncome, ID: 3, Name: "Salary", Date: core.NewDate(2024, 3, 1), Amount: core.Money{Cents: 500000}},
		{Kind: core.KindExpense, ID: 4, Name: "lunch", Category: "Food", Date: core.NewDate(2024, 3, 5), Amount: core.Money{Cents: 20000}},
		{Kind: core.KindExpense, ID: 5, Name: "Cinema", Category: "Entertainment", Date: core.NewDate(2024, 3, 2), Amount: core.Money{Cents: 35000}},
	}
}

// ids returns entry IDs in sequence order, for permutation checks.
func ids(entries []core.Entry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func assertPermutation(t *testing.T, in, out []core.Entry) {
	t.Helper()
	if len(in) != len(out) {
		t.Fatalf("length changed: %d -> %d", len(in), len(out))
	}
	a, b := ids(in), ids(out)
	sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("not a permutation: %v vs %v", a, b)
		}
	}
}

func TestAllStrategiesArePermutations(t *testing.T) {
	in := sampleEntries()
	for _, key := range []Key{DateNewest, DateOldest, NameAZ, AmountHighLow, CategoryAZ} {
		s, err := ForKey(key)
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		out := s.Sort(in)
		assertPermutation(t, in, out)
	}
}

func TestDateOrdering(t *testing.T) {
	in := sampleEntries()

	s, _ := ForKey(DateNewest)
	out := s.Sort(in)
	for i := 1; i < len(out); i++ {
		if out[i-1].Date.String() < out[i].Date.String() {
			t.Fatalf("newest-first violated at %d: %s < %s", i, out[i-1].Date, out[i].Date)
		}
	}

	s, _ = ForKey(DateOldest)
	out = s.Sort(in)
	for i := 1; i < len(out); i++ {
		if out[i-1].Date.String() > out[i].Date.String() {
			t.Fatalf("oldest-first violated at %d", i)
		}
	}
}

func TestDateSortStableOnTies(t *testing.T) {
	in := sampleEntries()
	s, _ := ForKey(DateNewest)
	out := s.Sort(in)

	// IDs 1 and 4 share 2024-03-05; input order must survive.
	pos := map[int64]int{}
	for i, e := range out {
		pos[e.ID] = i
	}
	if pos[1] > pos[4] {
		t.Fatalf("stability violated: id 1 after id 4 (%v)", ids(out))
	}
}

func TestNameTreeOrdering(t *testing.T) {
	in := sampleEntries()
	s, _ := ForKey(NameAZ)
	out := s.Sort(in)

	want := []int64{2, 5, 1, 4, 3} // bus fare, Cinema, Lunch, lunch, Salary
	got := ids(out)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNameTreeEmpty(t *testing.T) {
	s, _ := ForKey(NameAZ)
	out := s.Sort(nil)
	if len(out) != 0 {
		t.Fatalf("expected empty, got %d entries", len(out))
	}
}

func TestAmountHeapOrdering(t *testing.T) {
	in := sampleEntries()
	s, _ := ForKey(AmountHighLow)
	out := s.Sort(in)
	for i := 1; i < len(out); i++ {
		if out[i-1].Amount.Cents < out[i].Amount.Cents {
			t.Fatalf("descending order violated at %d: %d < %d", i, out[i-1].Amount.Cents, out[i].Amount.Cents)
		}
	}
}

func TestCategoryOrdering(t *testing.T) {
	in := sampleEntries()
	s, _ := ForKey(CategoryAZ)
	out := s.Sort(in)
	for i := 1; i < len(out); i++ {
		a := out[i-1].Category
		b := out[i].Category
		if a > b && a != "" && b != "" {
			t.Fatalf("category order violated: %q > %q", a, b)
		}
	}
}

func TestParseKey(t *testing.T) {
	if k, err := ParseKey(""); err != nil || k != DateNewest {
		t.Fatalf("empty should default to date_newest, got %v %v", k, err)
	}
	if k, err := ParseKey("name_az"); err != nil || k != NameAZ {
		t.Fatalf("got %v %v", k, err)
	}
	if _, err := ParseKey("bogus"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestInputNotMutated(t *testing.T) {
	in := sampleEntries()
	before := ids(in)
	for _, key := range []Key{DateNewest, NameAZ, AmountHighLow} {
		s, _ := ForKey(key)
		_ = s.Sort(in)
	}
	after := ids(in)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("input slice mutated: %v vs %v", before, after)
		}
	}
}
