// Package contacts wires the aggregation core's packages into the
// application: the repository implementation, the scheduler, the read-side
// service, and the HTTP handler.
package contacts

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"portal_final_backend/internal/contacts/aggregator"
	"portal_final_backend/internal/contacts/handler"
	"portal_final_backend/internal/contacts/normalize"
	"portal_final_backend/internal/contacts/repository"
	"portal_final_backend/internal/contacts/scheduler"
	"portal_final_backend/internal/contacts/service"
	"portal_final_backend/internal/events"
	apphttp "portal_final_backend/internal/http"
	"portal_final_backend/platform/config"
	"portal_final_backend/platform/logger"
	"portal_final_backend/platform/validator"
)

// Module bundles everything the composition root needs from the contact
// aggregation engine: its HTTP handler and its scheduler (the latter must
// be Run and Stopped by main.go alongside the HTTP server). An ingest
// pipeline that needs aggregation to commit atomically with its own write
// (IMMEDIATE mode) calls Scheduler.AggregateContactTx directly with its own
// transaction instead of going through the handler.
type Module struct {
	Handler   *handler.Handler
	Scheduler *scheduler.Scheduler
}

// New constructs the contact aggregation engine against pool, scoped to
// organizationID, wired to bus for AggregationPassCompleted notifications.
func New(pool *pgxpool.Pool, cfg config.AggregationConfig, bus events.Bus, log *logger.Logger, organizationID uuid.UUID) *Module {
	thresholds := aggregator.Thresholds{
		Primary:   cfg.GetScoreThresholdPrimary(),
		Secondary: cfg.GetScoreThresholdSecondary(),
		Suggest:   cfg.GetScoreThresholdSuggest(),
	}

	store := repository.New(pool)
	agg := aggregator.New(thresholds, normalize.DefaultNicknameClusters)
	sch := scheduler.New(store, agg, bus, log, cfg.GetAggregationDelay(), organizationID)
	svc := service.New(store, thresholds, normalize.DefaultNicknameClusters, cfg.GetSuggestionMax())
	h := handler.New(svc, sch, validator.New(), log)

	bus.Subscribe("contacts.raw_contact.marked_for_aggregation", markedForAggregationHandler{sch: sch})

	return &Module{Handler: h, Scheduler: sch}
}

// markedForAggregationHandler debounces a background pass whenever ingest
// publishes events.ContactMarkedForAggregation.
type markedForAggregationHandler struct {
	sch *scheduler.Scheduler
}

func (h markedForAggregationHandler) Handle(ctx context.Context, _ events.Event) error {
	h.sch.Schedule()
	return nil
}

var _ apphttp.Module = (*handler.Handler)(nil)
