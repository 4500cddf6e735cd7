package kyc

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

// maxDocumentSize caps uploaded document images at 10 MB
const maxDocumentSize = 10 << 20

// Handler handles kyc HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates kyc handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit handles POST /kyc (multipart: document file + type field)
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	docType := DocumentType(r.FormValue("type"))
	switch docType {
	case DocPassport, DocNationalID, DocDriversLicense, DocUtilityBill:
	default:
		response.BadRequest(w, "type must be one of passport, national_id, drivers_license, utility_bill")
		return
	}

	file, _, err := r.FormFile("document")
	if err != nil {
		response.BadRequest(w, "document file is required")
		return
	}
	defer file.Close()

	v, err := h.service.Submit(r.Context(), middleware.GetUserID(r.Context()), docType, file)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, ToResponse(v))
}

// Status handles GET /kyc/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetStatus(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w)
		return
	}
	if v == nil {
		response.NotFound(w, "No verification submitted yet")
		return
	}
	response.OK(w, ToResponse(v))
}

// ListPending handles GET /kyc/pending (admin)
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r.URL.Query().Get("limit"), 20)
	page := parseIntParam(r.URL.Query().Get("page"), 1)

	list, total, err := h.service.ListPending(r.Context(), limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*Response, len(list))
	for i, v := range list {
		items[i] = ToResponse(v)
	}

	pages := (total + limit - 1) / limit
	response.WithMeta(w, items, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	})
}

// Approve handles POST /kyc/{id}/approve (admin)
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid verification id")
		return
	}

	v, err := h.service.Approve(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(v))
}

// Reject handles POST /kyc/{id}/reject (admin)
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid verification id")
		return
	}

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	v, err := h.service.Reject(r.Context(), middleware.GetUserID(r.Context()), id, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(v))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Verification not found")
	case errors.Is(err, ErrAlreadySubmitted):
		response.Error(w, http.StatusConflict, "ALREADY_SUBMITTED", "A verification is already pending")
	case errors.Is(err, ErrAlreadyApproved):
		response.Error(w, http.StatusConflict, "ALREADY_APPROVED", "You are already verified")
	case errors.Is(err, ErrAlreadyDecided):
		response.Error(w, http.StatusConflict, "ALREADY_DECIDED", "Verification has already been decided")
	case errors.Is(err, ErrReasonRequired):
		response.BadRequest(w, "A rejection needs a reason")
	case errors.Is(err, ErrInvalidDocument):
		response.UnprocessableEntity(w, "INVALID_DOCUMENT", "Document image could not be processed")
	default:
		response.InternalError(w)
	}
}

func parseIntParam(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
