package reservation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/property"
	"github.com/estora/estora-api/internal/middleware"
	"github.com/estora/estora-api/internal/pkg/response"
	"github.com/estora/estora-api/internal/pkg/validator"
)

// Handler handles reservation HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates reservation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Availability handles GET /properties/{id}/availability
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	blocked, err := h.service.Availability(r.Context(), propertyID)
	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			response.NotFound(w, "Property not found")
			return
		}
		response.InternalError(w)
		return
	}

	dates := make([]string, len(blocked))
	for i, d := range blocked {
		dates[i] = d.Format(dateLayout)
	}

	response.OK(w, AvailabilityResponse{
		PropertyID:   propertyID.String(),
		BlockedDates: dates,
	})
}

// Quote handles POST /reservations/quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	propertyID, stay, err := parseStay(req.PropertyID, req.From, req.To)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	breakdown, err := h.service.GetQuote(r.Context(), propertyID, stay)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]LineItemResponse, len(breakdown.Items))
	for i, item := range breakdown.Items {
		items[i] = LineItemResponse{Description: item.Description, Amount: item.Amount}
	}

	response.OK(w, QuoteResponse{
		PropertyID:  propertyID.String(),
		From:        stay.From.Format(dateLayout),
		To:          stay.To.Format(dateLayout),
		Nights:      stay.Normalize().Nights(),
		Items:       items,
		TotalAmount: breakdown.TotalAmount,
		Currency:    breakdown.Currency,
	})
}

// Create handles POST /reservations
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

	propertyID, stay, err := parseStay(req.PropertyID, req.From, req.To)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	guestID := middleware.GetUserID(r.Context())
	guests := GuestCount{Adults: req.Adults, Children: req.Children, Infants: req.Infants}

	res, err := h.service.Create(r.Context(), guestID, propertyID, stay, guests)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, ToResponse(res))
}

// Get handles GET /reservations/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid reservation id")
		return
	}

	res, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, ToResponse(res))
}

// ListMine handles GET /reservations
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForGuest(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, ToResponseList(list))
}

// ListForProperty handles GET /properties/{id}/reservations
func (h *Handler) ListForProperty(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid property id")
		return
	}

	list, err := h.service.ListForProperty(r.Context(), middleware.GetUserID(r.Context()), propertyID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, ToResponseList(list))
}

// Cancel handles POST /reservations/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid reservation id")
		return
	}

	res, err := h.service.Cancel(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, ToResponse(res))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, property.ErrNotFound):
		response.NotFound(w, "Property not found")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Reservation not found")
	case errors.Is(err, ErrDatesConflict):
		response.Error(w, http.StatusConflict, "DATES_CONFLICT", "Selected dates are no longer available")
	case errors.Is(err, ErrPastCheckIn):
		response.UnprocessableEntity(w, "PAST_CHECK_IN", "Check-in date is in the past")
	case errors.Is(err, ErrZeroNights):
		response.UnprocessableEntity(w, "ZERO_NIGHTS", "Stay must be at least one night")
	case errors.Is(err, ErrPropertyInactive):
		response.UnprocessableEntity(w, "PROPERTY_INACTIVE", "Property is not accepting reservations")
	case errors.Is(err, ErrInvalidGuests):
		response.UnprocessableEntity(w, "INVALID_GUESTS", "At least one adult is required")
	case errors.Is(err, ErrNotParticipant):
		response.Forbidden(w, "You do not have access to this reservation")
	case errors.Is(err, ErrNotCancellable):
		response.Error(w, http.StatusConflict, "NOT_CANCELLABLE", "Reservation can no longer be cancelled")
	default:
		response.InternalError(w)
	}
}

func parseStay(propertyID, from, to string) (uuid.UUID, DateRange, error) {
	id, err := uuid.Parse(propertyID)
	if err != nil {
		return uuid.Nil, DateRange{}, errors.New("invalid property id")
	}
	fromDate, err := time.Parse(dateLayout, from)
	if err != nil {
		return uuid.Nil, DateRange{}, errors.New("invalid from date")
	}
	toDate, err := time.Parse(dateLayout, to)
	if err != nil {
		return uuid.Nil, DateRange{}, errors.New("invalid to date")
	}
	return id, DateRange{From: fromDate, To: toDate}, nil
}
