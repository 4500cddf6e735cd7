package token

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/property"
	"github.com/estora/estora-api/internal/domain/user"
	"github.com/estora/estora-api/internal/middleware"
	"github.com/estora/estora-api/internal/pkg/response"
	"github.com/estora/estora-api/internal/pkg/validator"
)

// Handler handles token HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates token handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /tokens
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	t, err := h.service.CreateForListing(r.Context(), middleware.GetUserID(r.Context()), propertyID, req.Symbol, req.TotalShares, req.SharePrice)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, ToTokenResponse(t))
}

// Get handles GET /tokens/{propertyId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyId"))
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	t, err := h.service.GetToken(r.Context(), propertyID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToTokenResponse(t))
}

// Associate handles POST /tokens/associate
func (h *Handler) Associate(w http.ResponseWriter, r *http.Request) {
	var req AssociateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	if err := h.service.Associate(r.Context(), middleware.GetUserID(r.Context()), propertyID, req.AccountID); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// Balance handles GET /tokens/{propertyId}/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyId"))
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	holding, ledger, err := h.service.Balance(r.Context(), middleware.GetUserID(r.Context()), propertyID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var ledgerBalance *int64
	if ledger != nil {
		ledgerBalance = &ledger.Balance
	}
	response.OK(w, ToHoldingResponse(holding, ledgerBalance))
}

// ListHoldings handles GET /tokens/holdings
func (h *Handler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.service.ListHoldings(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*HoldingResponse, len(holdings))
	for i, holding := range holdings {
		items[i] = ToHoldingResponse(holding, nil)
	}
	response.OK(w, items)
}

// ListTransfers handles GET /tokens/transfers
func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.service.ListTransfers(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		items[i] = ToTransferResponse(t)
	}
	response.OK(w, items)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, property.ErrNotFound):
		response.NotFound(w, "Property not found")
	case errors.Is(err, user.ErrNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrTokenNotFound):
		response.NotFound(w, "Property token not found")
	case errors.Is(err, ErrNotPropertyOwner):
		response.Forbidden(w, "Only the property owner can tokenize it")
	case errors.Is(err, ErrAlreadyTokenized), errors.Is(err, property.ErrAlreadyTokenized):
		response.Error(w, http.StatusConflict, "ALREADY_TOKENIZED", "Property already has a token")
	case errors.Is(err, ErrInvalidSupply), errors.Is(err, ErrInvalidSharePrice):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
