package market

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/property"
	"github.com/estora/estora-api/internal/middleware"
	"github.com/estora/estora-api/internal/pkg/response"
	"github.com/estora/estora-api/internal/pkg/validator"
)

// Handler handles marketplace HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates market handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Depth handles GET /market/{propertyId}/depth
func (h *Handler) Depth(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyId"))
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	table, err := h.service.Depth(r.Context(), propertyID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, table)
}

// Estimate handles GET /market/{propertyId}/estimate?side=buy&quantity=10
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyId"))
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	side := Side(r.URL.Query().Get("side"))
	if side != SideBuy && side != SideSell {
		response.BadRequest(w, "side must be buy or sell")
		return
	}
	quantity, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 64)
	if err != nil || quantity <= 0 {
		response.BadRequest(w, "quantity must be a positive integer")
		return
	}

	est, err := h.service.Estimate(r.Context(), propertyID, side, quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, est)
}

// PlaceOrder handles POST /market/orders
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
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

	userID := middleware.GetUserID(r.Context())
	order, err := h.service.Place(r.Context(), userID, propertyID, Side(req.Side), req.Price, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, ToOrderResponse(order))
}

// ListMine handles GET /market/orders
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = ToOrderResponse(o)
	}
	response.OK(w, items)
}

// GetFill handles GET /market/fills/{reference}
func (h *Handler) GetFill(w http.ResponseWriter, r *http.Request) {
	fill, err := h.service.GetFill(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "reference"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToFillResponse(fill))
}

// CancelOrder handles POST /market/orders/{id}/cancel
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid order id")
		return
	}

	if err := h.service.Cancel(r.Context(), middleware.GetUserID(r.Context()), orderID); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, property.ErrNotFound):
		response.NotFound(w, "Property not found")
	case errors.Is(err, ErrOrderNotFound):
		response.NotFound(w, "Order not found")
	case errors.Is(err, ErrFillNotFound):
		response.NotFound(w, "Fill not found")
	case errors.Is(err, ErrNotTokenized):
		response.UnprocessableEntity(w, "NOT_TOKENIZED", "Property has no tradable token")
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidPrice):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrInsufficientShares):
		response.UnprocessableEntity(w, "INSUFFICIENT_SHARES", "Not enough unlocked shares to sell")
	case errors.Is(err, ErrInsufficientLiquidity):
		response.UnprocessableEntity(w, "INSUFFICIENT_LIQUIDITY", "Not enough liquidity on the opposing side")
	case errors.Is(err, ErrNotOrderOwner):
		response.Forbidden(w, "Order belongs to another user")
	case errors.Is(err, ErrOrderClosed):
		response.Error(w, http.StatusConflict, "ORDER_CLOSED", "Order is no longer open")
	case errors.Is(err, ErrSelfTrade):
		response.UnprocessableEntity(w, "SELF_TRADE", "Cannot buy from your own order")
	case errors.Is(err, ErrQuantityExceedsOrder):
		response.UnprocessableEntity(w, "QUANTITY_EXCEEDS_ORDER", "Quantity exceeds order remainder")
	default:
		response.InternalError(w)
	}
}
