// Package sorting provides the interchangeable orderings used by the
// activity feed: comparison sorts for date and category, a binary search
// tree for names, and a binary max-heap for amounts. Every strategy returns
// a new slice that is a permutation of its input.
package sorting

import (
	"fmt"
	"sort"
	"strings"

	"pondo/internal/core"
)

// Key selects a total order over entries.
type Key string

const (
	DateNewest    Key = "date_newest"
	DateOldest    Key = "date_oldest"
	NameAZ        Key = "name_az"
	AmountHighLow Key = "amount_high_low"
	CategoryAZ    Key = "category_az"
)

// Strategy produces a fully ordered copy of the given entries.
type Strategy interface {
	Sort(entries []core.Entry) []core.Entry
}

// IsDateKey reports whether the key orders by date. Date-adjacency grouping
// only applies to these orders.
func (k Key) IsDateKey() bool {
	return k == DateNewest || k == DateOldest
}

type dateStrategy struct {
	newestFirst bool
}

// Sort orders entries by date string, stable on ties.
func (s dateStrategy) Sort(entries []core.Entry) []core.Entry {
	out := make([]core.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if s.newestFirst {
			return out[i].Date.String() > out[j].Date.String()
		}
		return out[i].Date.String() < out[j].Date.String()
	})
	return out
}

type categoryStrategy struct{}

// Sort orders entries by lower-cased category, stable on ties.
func (categoryStrategy) Sort(entries []core.Entry) []core.Entry {
	out := make([]core.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Category) < strings.ToLower(out[j].Category)
	})
	return out
}

// strategies maps each key to its ordering implementation.
var strategies = map[Key]Strategy{
	DateNewest:    dateStrategy{newestFirst: true},
	DateOldest:    dateStrategy{newestFirst: false},
	NameAZ:        nameTreeStrategy{},
	AmountHighLow: amountHeapStrategy{},
	CategoryAZ:    categoryStrategy{},
}

// ForKey returns the strategy for a sort key.
func ForKey(key Key) (Strategy, error) {
	s, ok := strategies[key]
	if !ok {
		return nil, fmt.Errorf("unknown sort key: %s", key)
	}
	return s, nil
}

// ParseKey maps a request parameter to a sort key, defaulting to DateNewest.
func ParseKey(s string) (Key, error) {
	if strings.TrimSpace(s) == "" {
		return DateNewest, nil
	}
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := strategies[k]; !ok {
		return "", fmt.Errorf("unknown sort key: %s", s)
	}
	return k, nil
}
