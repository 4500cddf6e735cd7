package governance

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

// Handler handles governance HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates governance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateGroup handles POST /groups
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
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

	group, err := h.service.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), propertyID, req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, ToGroupResponse(group))
}

// ListGroups handles GET /groups?property_id=...
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(r.URL.Query().Get("property_id"))
	if err != nil {
		response.BadRequest(w, "property_id query parameter is required")
		return
	}

	groups, err := h.service.ListGroups(r.Context(), propertyID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		items[i] = ToGroupResponse(g)
	}
	response.OK(w, items)
}

// Join handles POST /groups/{id}/join
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group id")
		return
	}

	if err := h.service.Join(r.Context(), middleware.GetUserID(r.Context()), groupID); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// Leave handles POST /groups/{id}/leave
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group id")
		return
	}

	if err := h.service.Leave(r.Context(), middleware.GetUserID(r.Context()), groupID); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// CreatePoll handles POST /groups/{id}/polls
func (h *Handler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group id")
		return
	}

	var req CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	closesAt, err := time.Parse(time.RFC3339, req.ClosesAt)
	if err != nil {
		response.BadRequest(w, "closes_at must be RFC3339")
		return
	}
	if !closesAt.After(time.Now()) {
		response.BadRequest(w, "closes_at must be in the future")
		return
	}

	poll, options, err := h.service.CreatePoll(r.Context(), middleware.GetUserID(r.Context()), groupID, req.Question, req.Options, closesAt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, ToPollResponse(poll, options))
}

// ListPolls handles GET /groups/{id}/polls
func (h *Handler) ListPolls(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group id")
		return
	}

	polls, err := h.service.ListPolls(r.Context(), middleware.GetUserID(r.Context()), groupID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]*PollResponse, len(polls))
	for i, p := range polls {
		items[i] = ToPollResponse(p, nil)
	}
	response.OK(w, items)
}

// CastVote handles POST /polls/{id}/votes
func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid poll id")
		return
	}

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	optionID, err := uuid.Parse(req.OptionID)
	if err != nil {
		response.BadRequest(w, "Invalid option id")
		return
	}

	if err := h.service.CastVote(r.Context(), middleware.GetUserID(r.Context()), pollID, optionID); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// GetResults handles GET /polls/{id}/results
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid poll id")
		return
	}

	results, err := h.service.GetResults(r.Context(), middleware.GetUserID(r.Context()), pollID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, results)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, property.ErrNotFound):
		response.NotFound(w, "Property not found")
	case errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, "Group not found")
	case errors.Is(err, ErrPollNotFound):
		response.NotFound(w, "Poll not found")
	case errors.Is(err, ErrOptionNotFound):
		response.UnprocessableEntity(w, "OPTION_NOT_FOUND", "Option does not belong to the poll")
	case errors.Is(err, ErrNotMember):
		response.Forbidden(w, "You are not a member of this group")
	case errors.Is(err, ErrNotGroupAdmin):
		response.Forbidden(w, "Only group admins can do this")
	case errors.Is(err, ErrAlreadyMember):
		response.Error(w, http.StatusConflict, "ALREADY_MEMBER", "You are already a member")
	case errors.Is(err, ErrAlreadyVoted):
		response.Error(w, http.StatusConflict, "ALREADY_VOTED", "You have already voted in this poll")
	case errors.Is(err, ErrPollClosed):
		response.Error(w, http.StatusConflict, "POLL_CLOSED", "Poll is closed")
	case errors.Is(err, ErrTooFewOptions):
		response.BadRequest(w, "Poll needs at least two options")
	case errors.Is(err, ErrCreatorLeaving):
		response.UnprocessableEntity(w, "CREATOR_CANNOT_LEAVE", "Group creator cannot leave the group")
	default:
		response.InternalError(w)
	}
}
