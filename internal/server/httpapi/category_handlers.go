package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"minventory/internal/server/services"
)

type categoryRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	ParentID         *string `json:"parentId"`
	Private          *bool   `json:"private"`
	IntentionalCount *int    `json:"intentionalCount"`
	Color            *string `json:"color"`
}

func (r categoryRequest) input() services.CategoryInput {
	return services.CategoryInput{
		Name:             r.Name,
		Description:      r.Description,
		ParentID:         r.ParentID,
		Private:          r.Private,
		IntentionalCount: r.IntentionalCount,
		Color:            r.Color,
	}
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	views, err := a.categories.List(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	id, err := a.categories.Create(r.Context(), sessionFrom(r), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (a *API) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	view, err := a.categories.Get(r.Context(), sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}

	if err := a.categories.Update(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), req.input()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := a.categories.Delete(r.Context(), sessionFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
