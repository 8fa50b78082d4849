package http

import (
	"net/http"

	"pondo/internal/core"
)

type incomeRequest struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

type incomeResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
	Remaining string `json:"remaining"`
}

func toIncomeResponse(in core.Income) incomeResponse {
	return incomeResponse{
		ID:        in.ID,
		Name:      in.Name,
		Amount:    in.Amount.Decimal(),
		Date:      in.Date.String(),
		Remaining: in.Remaining.Decimal(),
	}
}

func (s *Server) decodeIncome(r *http.Request, username string) (core.Income, error) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		return core.Income{}, err
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Income{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Income{}, err
	}

	return core.Income{
		ID:       req.ID,
		Username: username,
		Name:     sanitizeInput(req.Name),
		Amount:   core.Money{Cents: cents},
		Date:     date,
	}, nil
}

func (s *Server) handleIncomes(w http.ResponseWriter, r *http.Request) {
	username := usernameFrom(r)

	switch r.Method {
	case http.MethodGet:
		incomes, err := s.ledger.Incomes(r.Context(), username)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out := make([]incomeResponse, 0, len(incomes))
		for _, in := range incomes {
			out = append(out, toIncomeResponse(in))
		}
		writeJSON(w, http.StatusOK, map[string]any{"incomes": out})

	case http.MethodPost:
		in, err := s.decodeIncome(r, username)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		created, err := s.ledger.AddIncome(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toIncomeResponse(created))

	case http.MethodPut:
		in, err := s.decodeIncome(r, username)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if in.ID == 0 {
			writeError(w, r, http.StatusBadRequest, "missing id")
			return
		}
		updated, err := s.ledger.UpdateIncome(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toIncomeResponse(updated))

	case http.MethodDelete:
		id, err := parseID(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.ledger.DeleteIncome(r.Context(), username, id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, POST, PUT, DELETE")
	}
}
