package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"brain2-canvas/application/commands"
	"brain2-canvas/application/commands/bus"
	"brain2-canvas/application/queries"
	querybus "brain2-canvas/application/queries/bus"
	"brain2-canvas/domain/events"
	"brain2-canvas/pkg/common"
	pkgerrors "brain2-canvas/pkg/errors"
)

// APIVersion is reported in every response envelope
const APIVersion = "v1"

// CanvasHandler serves the read models of the running canvas and the
// explicit save operation.
type CanvasHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *ErrorWriter
	logger     *zap.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errors *ErrorWriter, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errors,
		logger:     logger,
	}
}

// GetGraph handles GET /graph
func (h *CanvasHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	includeHidden, err := parseBool(r, "include_hidden")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	h.ask(w, r, queries.GetGraphDataQuery{IncludeHidden: includeHidden})
}

// GetNode handles GET /nodes/{nodeID}
func (h *CanvasHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetNodeQuery{NodeID: chi.URLParam(r, "nodeID")})
}

// GetSelection handles GET /selection
func (h *CanvasHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetSelectionQuery{})
}

// GetViewport handles GET /viewport
func (h *CanvasHandler) GetViewport(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetViewportQuery{})
}

// GetStatus handles GET /status
func (h *CanvasHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetSaveStatusQuery{})
}

// ListActions handles GET /actions?limit=&name=
func (h *CanvasHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	query := queries.ListActionsQuery{
		Limit: 100,
		Name:  events.ActionName(r.URL.Query().Get("name")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.errors.Write(w, r, pkgerrors.NewValidationError("limit must be an integer").
				WithDetail("limit", raw))
			return
		}
		query.Limit = limit
	}
	h.ask(w, r, query)
}

// Save handles POST /save. Errors from the backend are reported with
// their classification, the dirty flag stays set for the next attempt.
func (h *CanvasHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.commandBus.Send(r.Context(), &commands.SaveProjectCommand{}); err != nil {
		h.logger.Warn("Explicit save failed",
			zap.String("requestID", common.ExtractRequestID(r)),
			zap.Error(err))
		h.errors.Write(w, r, err)
		return
	}
	h.ask(w, r, queries.GetSaveStatusQuery{})
}

func (h *CanvasHandler) ask(w http.ResponseWriter, r *http.Request, query querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	common.RespondWithMeta(w, http.StatusOK, result, common.NewMeta(r, APIVersion))
}

func parseBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.NewValidationError(name + " must be a boolean").WithDetail(name, raw)
	}
	return v, nil
}
