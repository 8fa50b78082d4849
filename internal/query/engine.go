// Package query composes the retrieval pipeline over ledger entries:
// type filter, free-text search, sort strategy, and date-adjacency grouping.
// The pipeline is pure — it never touches storage and never mutates its
// input, so identical parameters over an unchanged set yield identical
// results.
package query

import (
	"strings"

	"pondo/internal/core"
	"pondo/internal/sorting"
)

// Show restricts the feed to one entry kind.
type Show string

const (
	ShowAll      Show = "all"
	ShowExpenses Show = "expenses"
	ShowIncomes  Show = "incomes"
)

// Params drive one run of the pipeline.
type Params struct {
	Show   Show
	Search string
	Sort   sorting.Key
}

// GroupInfo is presentation metadata for one index of the sorted sequence.
// Entries that share a date with a neighbor form a group; only groups of two
// or more are marked grouped, with first/middle/last roles.
type GroupInfo struct {
	Grouped bool
	First   bool
	Middle  bool
	Last    bool
	Size    int
}

// Result is the ordered feed plus grouping metadata and totals over it.
type Result struct {
	Entries      []core.Entry
	Groups       []GroupInfo
	TotalExpense core.Money
	TotalIncome  core.Money
}

// Run applies filter, search, sort and grouping in that fixed order.
func Run(entries []core.Entry, p Params) (Result, error) {
	items := filterByKind(entries, p.Show)
	items = searchEntries(items, p.Search)

	key := p.Sort
	if key == "" {
		key = sorting.DateNewest
	}
	strategy, err := sorting.ForKey(key)
	if err != nil {
		return Result{}, err
	}
	items = strategy.Sort(items)

	res := Result{
		Entries: items,
		Groups:  groupByDate(items, key.IsDateKey()),
	}
	for _, e := range items {
		switch e.Kind {
		case core.KindExpense:
			res.TotalExpense = res.TotalExpense.Add(e.Amount)
		case core.KindIncome:
			res.TotalIncome = res.TotalIncome.Add(e.Amount)
		}
	}
	return res, nil
}

func filterByKind(entries []core.Entry, show Show) []core.Entry {
	if show == "" || show == ShowAll {
		out := make([]core.Entry, len(entries))
		copy(out, entries)
		return out
	}
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if (show == ShowExpenses && e.Kind == core.KindExpense) ||
			(show == ShowIncomes && e.Kind == core.KindIncome) {
			out = append(out, e)
		}
	}
	return out
}

// searchEntries keeps entries whose name, category (expenses), decimal
// amount, or date string contains the query. Matching is plain substring on
// lower-cased text.
func searchEntries(entries []core.Entry, query string) []core.Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if matches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e core.Entry, q string) bool {
	if strings.Contains(strings.ToLower(e.Name), q) {
		return true
	}
	if e.Kind == core.KindExpense && strings.Contains(strings.ToLower(e.Category), q) {
		return true
	}
	if strings.Contains(e.Amount.Decimal(), q) {
		return true
	}
	return strings.Contains(e.Date.String(), q)
}

// groupByDate scans the sorted sequence once, marking runs of entries that
// share a date string. For non-date sorts every entry is ungrouped.
func groupByDate(entries []core.Entry, dateSort bool) []GroupInfo {
	groups := make([]GroupInfo, len(entries))
	for i := range groups {
		groups[i] = GroupInfo{Size: 1}
	}
	if !dateSort {
		return groups
	}

	for start := 0; start < len(entries); {
		end := start
		for end+1 < len(entries) && entries[end+1].Date.String() == entries[start].Date.String() {
			end++
		}
		size := end - start + 1
		grouped := size >= 2
		for j := start; j <= end; j++ {
			groups[j] = GroupInfo{
				Grouped: grouped,
				First:   grouped && j == start,
				Last:    grouped && j == end,
				Middle:  grouped && j != start && j != end,
				Size:    size,
			}
		}
		start = end + 1
	}
	return groups
}

// ParseShow maps a request parameter to a Show value, defaulting to all.
func ParseShow(s string) Show {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expenses", "expense":
		return ShowExpenses
	case "incomes", "income":
		return ShowIncomes
	default:
		return ShowAll
	}
}
