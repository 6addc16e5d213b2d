package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"minventory/internal/server/services"
)

type questionRequest struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

func (r questionRequest) input() services.QuestionInput {
	return services.QuestionInput{Question: r.Question, Answer: r.Answer}
}

func (a *API) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	views, err := a.questions.List(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *API) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Question == nil || *req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	id, err := a.questions.Create(r.Context(), sessionFrom(r), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (a *API) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	view, err := a.questions.Get(r.Context(), sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decode(w, r, &req) {
		return
	}

	if err := a.questions.Update(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), req.input()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := a.questions.Delete(r.Context(), sessionFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
