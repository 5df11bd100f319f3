package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/erazemk/pivoteka/internal/model"
	"github.com/erazemk/pivoteka/internal/store"
)

// User-facing messages, one per outcome.
const (
	msgDuplicateName = "record with this name already exists"
	msgCreateFailed  = "could not save new record"
	msgNotFound      = "record not found"
	msgRemoved       = "record removed"
)

// BeersHandler handles the beer CRUD endpoints.
type BeersHandler struct {
	DB *sql.DB
}

type createBeerRequest struct {
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	IBU   *float64 `json:"ibu"`
	Value *float64 `json:"value"`
	Note  *float64 `json:"note"`
}

// validate checks required fields and length limits, returning a user-facing
// message for the first violation found. Limits count characters, not bytes,
// matching the store's length() check.
func (req *createBeerRequest) validate() string {
	switch {
	case req.Name == "":
		return "name is required"
	case utf8.RuneCountInString(req.Name) > model.MaxNameLen:
		return fmt.Sprintf("name must be at most %d characters", model.MaxNameLen)
	case utf8.RuneCountInString(req.Type) > model.MaxTypeLen:
		return fmt.Sprintf("type must be at most %d characters", model.MaxTypeLen)
	case req.Note == nil:
		return "note is required"
	}
	return ""
}

// decodeCreateRequest reads a create request from either a form-encoded body
// (what the original clients send) or a JSON body.
func decodeCreateRequest(r *http.Request, req *createBeerRequest) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data" {
		return decodeCreateForm(r, req)
	}

	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(req)
}

func decodeCreateForm(r *http.Request, req *createBeerRequest) error {
	if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
		return err
	}

	req.Name = r.PostFormValue("name")
	req.Type = r.PostFormValue("type")

	var err error
	if req.IBU, err = formFloat(r, "ibu"); err != nil {
		return err
	}
	if req.Value, err = formFloat(r, "value"); err != nil {
		return err
	}
	if req.Note, err = formFloat(r, "note"); err != nil {
		return err
	}
	return nil
}

// formFloat parses an optional float form field, nil when absent.
func formFloat(r *http.Request, key string) (*float64, error) {
	raw := r.PostFormValue(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &f, nil
}

// Create handles POST /beer.
func (h *BeersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBeerRequest
	if err := decodeCreateRequest(r, &req); err != nil {
		slog.Warn("invalid create request body", "error", err)
		jsonMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := req.validate(); msg != "" {
		slog.Warn("create request failed validation", "reason", msg)
		jsonMessage(w, http.StatusBadRequest, msg)
		return
	}

	beer := model.New(req.Name, req.Type, req.IBU, req.Value, *req.Note, time.Time{})
	created, err := store.CreateBeer(r.Context(), h.DB, beer)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			slog.Warn("duplicate beer name", "name", req.Name)
			jsonMessage(w, http.StatusConflict, msgDuplicateName)
			return
		}
		slog.Warn("failed to create beer", "name", req.Name, "error", err)
		jsonMessage(w, http.StatusBadRequest, msgCreateFailed)
		return
	}

	jsonResponse(w, http.StatusOK, created)
}

// List handles GET /beers. An empty collection is a successful result.
func (h *BeersHandler) List(w http.ResponseWriter, r *http.Request) {
	beers, err := store.ListBeers(r.Context(), h.DB)
	if err != nil {
		slog.Warn("failed to list beers", "error", err)
		jsonMessage(w, http.StatusInternalServerError, "could not list records")
		return
	}
	if beers == nil {
		beers = []model.Beer{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"beers": beers})
}

// Get handles GET /beer.
func (h *BeersHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		slog.Warn("get request missing name parameter")
		jsonMessage(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	beer, err := store.GetBeerByName(r.Context(), h.DB, name)
	if err != nil {
		slog.Warn("failed to get beer", "name", name, "error", err)
		jsonMessage(w, http.StatusInternalServerError, "could not fetch record")
		return
	}
	if beer == nil {
		slog.Warn("beer not found", "name", name)
		jsonMessage(w, http.StatusNotFound, msgNotFound)
		return
	}

	jsonResponse(w, http.StatusOK, beer)
}

// Delete handles DELETE /beer.
func (h *BeersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		slog.Warn("delete request missing name parameter")
		jsonMessage(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	count, err := store.DeleteBeerByName(r.Context(), h.DB, name)
	if err != nil {
		slog.Warn("failed to delete beer", "name", name, "error", err)
		jsonMessage(w, http.StatusInternalServerError, "could not delete record")
		return
	}
	if count == 0 {
		slog.Warn("beer not found for deletion", "name", name)
		jsonMessage(w, http.StatusNotFound, msgNotFound)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{
		"message": msgRemoved,
		"name":    name,
	})
}
