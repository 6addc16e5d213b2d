package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"minventory/internal/server/services"
)

type itemRequest struct {
	Name        *string  `json:"name"`
	Quantity    *float64 `json:"quantity"`
	UsageFreq   *string  `json:"usageFrequency"`
	Attachment  *string  `json:"attachment"`
	Intention   *string  `json:"intention"`
	Joy         *string  `json:"joy"`
	IsIsolated  *bool    `json:"isIsolated"`
	CategoryIDs []string `json:"categoryIds"`
}

func (r itemRequest) input() services.ItemInput {
	return services.ItemInput{
		Name:        r.Name,
		Quantity:    r.Quantity,
		UsageFreq:   r.UsageFreq,
		Attachment:  r.Attachment,
		Intention:   r.Intention,
		Joy:         r.Joy,
		IsIsolated:  r.IsIsolated,
		CategoryIDs: r.CategoryIDs,
	}
}

// imageRequest carries both renditions; the blobs arrive base64-encoded in
// JSON and land here as raw bytes.
type imageRequest struct {
	Image       []byte `json:"image"`
	ImageMime   string `json:"imageMime"`
	ImageWidth  int    `json:"imageWidth"`
	ImageHeight int    `json:"imageHeight"`
	Thumbnail   []byte `json:"thumbnail"`
	ThumbMime   string `json:"thumbMime"`
	ThumbWidth  int    `json:"thumbWidth"`
	ThumbHeight int    `json:"thumbHeight"`
}

func (a *API) handleListItems(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	views, err := a.items.List(r.Context(), sess, r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}

	// ?private=true narrows to gated items; meaningless while locked, since
	// nothing private survives the gate anyway
	if r.URL.Query().Get("private") == "true" && sess.PrivacyUnlocked() {
		filtered := views[:0]
		for _, v := range views {
			if v.Private {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	writeJSON(w, http.StatusOK, views)
}

func (a *API) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	id, err := a.items.Create(r.Context(), sessionFrom(r), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (a *API) handleGetItem(w http.ResponseWriter, r *http.Request) {
	detail, err := a.items.Get(r.Context(), sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (a *API) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decode(w, r, &req) {
		return
	}

	if err := a.items.Update(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), req.input()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := a.items.Delete(r.Context(), sessionFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSetItemImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Image) == 0 || len(req.Thumbnail) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "image and thumbnail are required"})
		return
	}

	err := a.items.SetImage(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), services.ImageUpload{
		Image:       req.Image,
		ImageMime:   req.ImageMime,
		ImageWidth:  req.ImageWidth,
		ImageHeight: req.ImageHeight,
		Thumbnail:   req.Thumbnail,
		ThumbMime:   req.ThumbMime,
		ThumbWidth:  req.ThumbWidth,
		ThumbHeight: req.ThumbHeight,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleGetItemImage(w http.ResponseWriter, r *http.Request) {
	image, mime, err := a.items.GetImage(r.Context(), sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	serveBlob(w, image, mime)
}

func (a *API) handleGetItemThumbnail(w http.ResponseWriter, r *http.Request) {
	thumb, mime, err := a.items.GetThumbnail(r.Context(), sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	serveBlob(w, thumb, mime)
}

func serveBlob(w http.ResponseWriter, blob []byte, mime string) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	// decrypted content must never land in a shared cache
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (a *API) handleListItemTransactions(w http.ResponseWriter, r *http.Request) {
	detail, err := a.items.Get(r.Context(), sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail.Transactions)
}

func (a *API) handleAddItemTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta  float64 `json:"delta"`
		Reason string  `json:"reason"`
		Note   string  `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}

	quantity, err := a.items.AddTransaction(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), req.Delta, req.Reason, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"quantity": quantity})
}
