// Package handler exposes the contact aggregation engine over HTTP: the
// minimal host-provider surface (synchronous aggregation, scheduling a
// pass, and the suggestion query). There is no wire protocol or CLI
// beyond this.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "portal_final_backend/internal/http"
	"portal_final_backend/internal/http/response"

	"portal_final_backend/internal/contacts/scheduler"
	"portal_final_backend/internal/contacts/service"
	"portal_final_backend/internal/contacts/transport"
	"portal_final_backend/platform/apperr"
	"portal_final_backend/platform/logger"
	"portal_final_backend/platform/validator"
)

// Handler wires the HTTP layer to the contacts Service.
type Handler struct {
	svc *service.Service
	sch *scheduler.Scheduler
	val *validator.Validator
	log *logger.Logger
}

// New returns a Handler.
func New(svc *service.Service, sch *scheduler.Scheduler, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, sch: sch, val: val, log: log}
}

// Name implements apphttp.Module.
func (h *Handler) Name() string { return "contacts" }

// RegisterRoutes implements apphttp.Module.
func (h *Handler) RegisterRoutes(ctx *apphttp.RouterContext) {
	g := ctx.V1.Group("/contacts")
	g.POST("/:id/aggregate", h.aggregateContact)
	g.POST("/schedule", h.schedulePass)
	ctx.V1.GET("/aggregates/:id/suggestions", h.suggestions)
}

func (h *Handler) aggregateContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeErr(c, apperr.BadRequest("invalid raw contact id"))
		return
	}

	aggID, err := h.sch.AggregateContactSync(c.Request.Context(), id)
	if err != nil {
		writeErr(c, apperr.Wrap(apperr.KindInternal, "aggregation failed", err))
		return
	}

	response.OK(c, transport.AggregateContactResponse{AggregateID: aggID})
}

func (h *Handler) schedulePass(c *gin.Context) {
	var req transport.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, apperr.Wrap(apperr.KindBadRequest, "invalid request body", err))
		return
	}
	if err := h.val.Struct(req); err != nil {
		writeErr(c, apperr.Wrap(apperr.KindValidation, "validation failed", err))
		return
	}
	if req.OrganizationID != h.sch.OrganizationID() {
		writeErr(c, apperr.BadRequest("organization id does not match this scheduler's scope"))
		return
	}

	h.sch.Schedule()
	response.OK(c, gin.H{"scheduled": true})
}

func (h *Handler) suggestions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeErr(c, apperr.BadRequest("invalid aggregate id"))
		return
	}

	suggestions, err := h.svc.Suggestions(c.Request.Context(), id)
	if err != nil {
		writeErr(c, apperr.Wrap(apperr.KindInternal, "suggestion query failed", err))
		return
	}

	response.OK(c, transport.SuggestionsResponse{Suggestions: suggestions})
}

func writeErr(c *gin.Context, err *apperr.Error) {
	response.Error(c, err.HTTPStatus(), err.Message, err.Details)
}
