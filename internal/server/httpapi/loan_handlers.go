package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"minventory/internal/server/services"
)

type loanRequest struct {
	ItemID   string     `json:"itemId"`
	Borrower *string    `json:"borrower"`
	Note     *string    `json:"note"`
	Quantity *float64   `json:"quantity"`
	LentAt   *time.Time `json:"lentAt"`
}

func (r loanRequest) input() services.LoanInput {
	return services.LoanInput{
		Borrower: r.Borrower,
		Note:     r.Note,
		Quantity: r.Quantity,
		LentAt:   r.LentAt,
	}
}

func (a *API) handleListLoans(w http.ResponseWriter, r *http.Request) {
	views, err := a.loans.List(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *API) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "itemId is required"})
		return
	}

	id, err := a.loans.Create(r.Context(), sessionFrom(r), req.ItemID, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (a *API) handleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if !decode(w, r, &req) {
		return
	}

	if err := a.loans.Update(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), req.input()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	if err := a.loans.Return(r.Context(), sessionFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	if err := a.loans.Delete(r.Context(), sessionFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
