package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/market"
	"github.com/estora/estora-api/internal/domain/reservation"
	"github.com/estora/estora-api/internal/middleware"
	"github.com/estora/estora-api/internal/pkg/errorhandler"
	"github.com/estora/estora-api/internal/pkg/paystack"
	"github.com/estora/estora-api/internal/pkg/response"
	"github.com/estora/estora-api/internal/pkg/validator"
)

// maxWebhookBody caps provider webhook payloads at 1 MB
const maxWebhookBody = 1 << 20

// Handler handles payment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// InitializeReservation handles POST /payments/reservations
func (h *Handler) InitializeReservation(w http.ResponseWriter, r *http.Request) {
	var req InitializeReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	reservationID, err := uuid.Parse(req.ReservationID)
	if err != nil {
		response.BadRequest(w, "Invalid reservation id")
		return
	}

	p, authURL, err := h.service.InitializeReservation(r.Context(), middleware.GetUserID(r.Context()), reservationID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, InitializeResponse{Payment: ToResponse(p), AuthorizationURL: authURL})
}

// InitializePurchase handles POST /payments/purchases
func (h *Handler) InitializePurchase(w http.ResponseWriter, r *http.Request) {
	var req InitializePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		response.BadRequest(w, "Invalid order id")
		return
	}

	p, authURL, err := h.service.InitializeSharePurchase(r.Context(), middleware.GetUserID(r.Context()), orderID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, InitializeResponse{Payment: ToResponse(p), AuthorizationURL: authURL})
}

// Verify handles POST /payments/{reference}/verify
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		response.BadRequest(w, "reference is required")
		return
	}

	p, err := h.service.Verify(r.Context(), middleware.GetUserID(r.Context()), reference)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(p))
}

// Get handles GET /payments/{reference}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	p, err := h.service.GetByReference(r.Context(), middleware.GetUserID(r.Context()), reference)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponse(p))
}

// ListMine handles GET /payments
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*Response, len(list))
	for i, p := range list {
		items[i] = ToResponse(p)
	}
	response.OK(w, items)
}

// Webhook handles POST /webhooks/paystack. The provider expects a 200
// on anything it should not retry.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "Unreadable body")
		return
	}

	err = h.service.HandleWebhook(r.Context(), body, r.Header.Get(paystack.SignatureHeader))
	if err != nil {
		if errors.Is(err, ErrBadSignature) {
			response.Unauthorized(w, "Invalid signature")
			return
		}
		errorhandler.LogExternalServiceError(r.Context(), "paystack", "webhook", 0, err)
		response.InternalError(w)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Payment not found")
	case errors.Is(err, ErrNotPayer):
		response.Forbidden(w, "Payment belongs to another user")
	case errors.Is(err, ErrAmountMismatch), errors.Is(err, ErrCurrencyMismatch):
		response.UnprocessableEntity(w, "CHARGE_MISMATCH", "Charged amount does not match the quote")
	case errors.Is(err, ErrProviderDeclined):
		response.UnprocessableEntity(w, "CHARGE_DECLINED", "Provider reported the charge unsuccessful")
	case errors.Is(err, reservation.ErrNotFound):
		response.NotFound(w, "Reservation not found")
	case errors.Is(err, reservation.ErrNotParticipant):
		response.Forbidden(w, "You do not have access to this reservation")
	case errors.Is(err, reservation.ErrNotPayable):
		response.Error(w, http.StatusConflict, "NOT_PAYABLE", "Reservation is not awaiting payment")
	case errors.Is(err, market.ErrOrderNotFound):
		response.NotFound(w, "Order not found")
	case errors.Is(err, market.ErrOrderClosed):
		response.Error(w, http.StatusConflict, "ORDER_CLOSED", "Order is no longer open")
	case errors.Is(err, market.ErrSelfTrade):
		response.UnprocessableEntity(w, "SELF_TRADE", "Cannot buy from your own order")
	case errors.Is(err, market.ErrQuantityExceedsOrder):
		response.UnprocessableEntity(w, "QUANTITY_EXCEEDS_ORDER", "Quantity exceeds order remainder")
	case errors.Is(err, market.ErrInvalidQuantity):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
