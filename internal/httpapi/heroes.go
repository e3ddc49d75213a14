package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-heroes/hero"
	"github.com/goliatone/go-heroes/internal/service"
	"github.com/goliatone/go-heroes/query"
)

// HeroService is the catalog used by the handlers.
type HeroService interface {
	List(ctx context.Context, q service.ListQuery) (query.Page[hero.Hero], error)
	Get(ctx context.Context, id int64) (*hero.Hero, error)
	Image(ctx context.Context, id int64) ([]byte, error)
	Create(ctx context.Context, h *hero.Hero, upload *service.Upload) (*hero.Hero, error)
	Update(ctx context.Context, h *hero.Hero) (*hero.Hero, error)
	Delete(ctx context.Context, id int64) error
}

// HeroHandler serves the hero endpoints.
type HeroHandler struct {
	heroes         HeroService
	maxUploadBytes int64
}

// NewHeroHandler creates the handler. Multipart bodies above maxUploadBytes
// are rejected.
func NewHeroHandler(heroes HeroService, maxUploadBytes int64) *HeroHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &HeroHandler{heroes: heroes, maxUploadBytes: maxUploadBytes}
}

// List handles GET /api/Hero/GetAllHeroes. Missing or malformed paging
// values fall back to the defaults.
func (h *HeroHandler) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := service.ListQuery{
		Search:     queryValue(values, "searchString"),
		SortBy:     queryValue(values, "sortBy"),
		PageNumber: atoiOrZero(queryValue(values, "PageNumber")),
		PageSize:   atoiOrZero(queryValue(values, "PageSize")),
	}

	page, err := h.heroes.List(r.Context(), q)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, page)
}

// Details handles GET /heroDetails?heroId=.
func (h *HeroHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := heroIDParam(w, r, queryValue(r.URL.Query(), "heroId"))
	if !ok {
		return
	}

	found, err := h.heroes.Get(r.Context(), id)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, found)
}

// Image handles GET /heroImage?heroId=.
func (h *HeroHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, ok := heroIDParam(w, r, queryValue(r.URL.Query(), "heroId"))
	if !ok {
		return
	}

	data, err := h.heroes.Image(r.Context(), id)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	RespondWithBytes(w, r, "image/png", data)
}

// Create handles POST /api/Hero with a multipart form carrying the hero
// fields and an optional "image" file.
func (h *HeroHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondWithError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		RespondWithError(w, r, http.StatusBadRequest, "expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := &hero.Hero{
		Name:      formValue(r, "name"),
		FirstName: formValue(r, "firstName"),
		LastName:  formValue(r, "lastName"),
		Place:     formValue(r, "place"),
	}

	var upload *service.Upload
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		if header.Size > 0 {
			upload = &service.Upload{Filename: header.Filename, Body: file}
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		RespondWithError(w, r, http.StatusBadRequest, "invalid image upload")
		return
	}

	created, err := h.heroes.Create(r.Context(), in, upload)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, created)
}

// Update handles PUT /api/Hero with a JSON hero.
func (h *HeroHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in hero.Hero
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	in.Image = nil

	updated, err := h.heroes.Update(r.Context(), &in)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /api/Hero/{heroId}.
func (h *HeroHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := heroIDParam(w, r, chi.URLParam(r, "heroId"))
	if !ok {
		return
	}

	if err := h.heroes.Delete(r.Context(), id); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func heroIDParam(w http.ResponseWriter, r *http.Request, raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		RespondWithError(w, r, http.StatusBadRequest, "heroId must be a positive integer")
		return 0, false
	}
	return id, true
}

// queryValue looks up a query parameter ignoring the case of its name.
func queryValue(values map[string][]string, name string) string {
	if v, ok := values[name]; ok && len(v) > 0 {
		return v[0]
	}
	for k, v := range values {
		if strings.EqualFold(k, name) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func formValue(r *http.Request, name string) string {
	if r.MultipartForm != nil {
		if v := queryValue(r.MultipartForm.Value, name); v != "" {
			return v
		}
	}
	return queryValue(r.PostForm, name)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
