package http

import (
	"net/http"

	"pondo/internal/core"
	"pondo/internal/query"
	"pondo/internal/sorting"
)

type activityEntry struct {
	Kind     string `json:"kind"`
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Income   string `json:"income,omitempty"`
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	Grouped  bool   `json:"grouped"`
	First    bool   `json:"group_first,omitempty"`
	Middle   bool   `json:"group_middle,omitempty"`
	Last     bool   `json:"group_last,omitempty"`
}

type activityResponse struct {
	Entries      []activityEntry `json:"entries"`
	Count        int             `json:"count"`
	TotalExpense string          `json:"total_expense"`
	TotalIncome  string          `json:"total_income"`
}

// handleActivity serves the combined feed: type filter, free-text search,
// sort strategy, and date grouping, with totals over the filtered set.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	username := usernameFrom(r)

	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sortKey, err := sorting.ParseKey(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.ledger.Entries(r.Context(), username, year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	params := query.Params{
		Show:   query.ParseShow(r.URL.Query().Get("show")),
		Search: r.URL.Query().Get("q"),
		Sort:   sortKey,
	}
	res, err := query.Run(entries, params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := activityResponse{
		Entries:      make([]activityEntry, 0, len(res.Entries)),
		Count:        len(res.Entries),
		TotalExpense: res.TotalExpense.Decimal(),
		TotalIncome:  res.TotalIncome.Decimal(),
	}
	for i, e := range res.Entries {
		item := activityEntry{
			Kind:   string(e.Kind),
			ID:     e.ID,
			Name:   e.Name,
			Date:   e.Date.String(),
			Amount: e.Amount.Decimal(),
		}
		if e.Kind == core.KindExpense {
			item.Category = e.Category
			if name, err := s.ledger.IncomeName(r.Context(), e.IncomeID); err == nil {
				item.Income = name
			} else {
				item.Income = core.GeneralIncomeName
			}
		}
		g := res.Groups[i]
		item.Grouped = g.Grouped
		item.First = g.First
		item.Middle = g.Middle
		item.Last = g.Last
		out.Entries = append(out.Entries, item)
	}

	writeJSON(w, http.StatusOK, out)
}
