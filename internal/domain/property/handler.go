package property

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/middleware"
	"github.com/estora/estora-api/internal/pkg/response"
	"github.com/estora/estora-api/internal/pkg/validator"
)

// URLResolver resolves storage keys into public URLs
type URLResolver interface {
	GetURL(key string) string
}

// Handler handles property HTTP requests
type Handler struct {
	service *Service
	urls    URLResolver
}

// NewHandler creates property handler
func NewHandler(service *Service, urls URLResolver) *Handler {
	return &Handler{service: service, urls: urls}
}

// Create handles POST /properties
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ownerID := middleware.GetUserID(r.Context())
	p, err := h.service.Create(r.Context(), ownerID, &req)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, h.toResponse(p))
}

// Get handles GET /properties/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Property not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, h.toResponse(p))
}

// List handles GET /properties
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		City:   r.URL.Query().Get("city"),
		Type:   r.URL.Query().Get("type"),
		Page:   parseIntParam(r.URL.Query().Get("page"), 1),
		Limit:  parseIntParam(r.URL.Query().Get("limit"), 20),
	}

	props, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*Response, len(props))
	for i, p := range props {
		items[i] = h.toResponse(p)
	}

	pages := (total + filter.Limit - 1) / filter.Limit
	response.WithMeta(w, items, response.Meta{
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
		Pages:   pages,
		HasNext: filter.Page < pages,
		HasPrev: filter.Page > 1,
	})
}

// ListMine handles GET /properties/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	props, err := h.service.ListByOwner(r.Context(), ownerID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*Response, len(props))
	for i, p := range props {
		items[i] = h.toResponse(p)
	}
	response.OK(w, items)
}

// Update handles PATCH /properties/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p, err := h.service.Update(r.Context(), id, middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.OK(w, h.toResponse(p))
}

// ChangeStatus handles PATCH /properties/{id}/status
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p, err := h.service.ChangeStatus(r.Context(), id, middleware.GetUserID(r.Context()), Status(req.Status))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.OK(w, h.toResponse(p))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Property not found")
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, "Only the property owner may do this")
	case errors.Is(err, ErrInvalidStatus):
		response.Conflict(w, "Invalid status transition")
	default:
		response.InternalError(w)
	}
}

func (h *Handler) toResponse(p *Property) *Response {
	urls := make([]string, 0, len(p.PhotoKeys))
	if h.urls != nil {
		for _, key := range p.PhotoKeys {
			urls = append(urls, h.urls.GetURL(key))
		}
	}
	return ResponseFromEntity(p, urls)
}

func parseIntParam(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
