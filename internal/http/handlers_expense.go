package http

import (
	"net/http"

	"pondo/internal/core"
)

type expenseRequest struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	IncomeID int64  `json:"income_id,omitempty"`
}

type expenseResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	IncomeID int64  `json:"income_id,omitempty"`
	Income   string `json:"income"`
}

type expenseResult struct {
	Expense             expenseResponse `json:"expense"`
	InsufficientBalance bool            `json:"insufficient_balance,omitempty"`
}

func (s *Server) toExpenseResponse(r *http.Request, e core.Expense) expenseResponse {
	incomeName, err := s.ledger.IncomeName(r.Context(), e.IncomeID)
	if err != nil {
		incomeName = core.GeneralIncomeName
	}
	return expenseResponse{
		ID:       e.ID,
		Name:     e.Name,
		Category: e.Category,
		Amount:   e.Amount.Decimal(),
		Date:     e.Date.String(),
		IncomeID: e.IncomeID,
		Income:   incomeName,
	}
}

func (s *Server) decodeExpense(r *http.Request, username string) (core.Expense, error) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		return core.Expense{}, err
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}

	return core.Expense{
		ID:       req.ID,
		Username: username,
		Name:     sanitizeInput(req.Name),
		Category: sanitizeInput(req.Category),
		Amount:   core.Money{Cents: cents},
		Date:     date,
		IncomeID: req.IncomeID,
	}, nil
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	username := usernameFrom(r)

	switch r.Method {
	case http.MethodGet:
		year, month, err := parseYearMonth(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		var expenses []core.Expense
		if year != 0 {
			expenses, err = s.ledger.ExpensesByPeriod(r.Context(), username, year, month)
		} else {
			expenses, err = s.ledger.Expenses(r.Context(), username)
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out := make([]expenseResponse, 0, len(expenses))
		for _, e := range expenses {
			out = append(out, s.toExpenseResponse(r, e))
		}
		writeJSON(w, http.StatusOK, map[string]any{"expenses": out})

	case http.MethodPost:
		e, err := s.decodeExpense(r, username)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		created, insufficient, err := s.ledger.AddExpense(r.Context(), e)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, expenseResult{
			Expense:             s.toExpenseResponse(r, created),
			InsufficientBalance: insufficient,
		})

	case http.MethodPut:
		e, err := s.decodeExpense(r, username)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if e.ID == 0 {
			writeError(w, r, http.StatusBadRequest, "missing id")
			return
		}
		updated, insufficient, err := s.ledger.UpdateExpense(r.Context(), e)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, expenseResult{
			Expense:             s.toExpenseResponse(r, updated),
			InsufficientBalance: insufficient,
		})

	case http.MethodDelete:
		id, err := parseID(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.ledger.DeleteExpense(r.Context(), username, id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, POST, PUT, DELETE")
	}
}
