// Package scheduler runs the background aggregation pass on a debounced
// timer, serialized against synchronous single-contact calls by a single
// advisory lock.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/aggregator"
	"portal_final_backend/internal/contacts/ports"
	"portal_final_backend/internal/events"
	"portal_final_backend/platform/logger"
)

// Scheduler owns the one long-lived worker goroutine that drives background
// aggregation passes, plus the advisory lock shared with synchronous
// single-contact calls.
type Scheduler struct {
	store          ports.Store
	aggregator     *aggregator.Aggregator
	bus            events.Bus
	log            *logger.Logger
	delay          time.Duration
	organizationID uuid.UUID

	// writeLock is the one-deep advisory lock: a synchronous single-contact
	// call and the background pass's per-iteration work both hold it for
	// the duration of one raw contact's aggregation.
	writeLock sync.Mutex

	mu        sync.Mutex
	timer     *time.Timer
	cancelled atomic.Bool

	quit   chan struct{}
	quitWG sync.WaitGroup
}

// New returns a Scheduler scoped to one organization. Call Run to start its
// worker goroutine.
func New(store ports.Store, agg *aggregator.Aggregator, bus events.Bus, log *logger.Logger, delay time.Duration, organizationID uuid.UUID) *Scheduler {
	return &Scheduler{
		store:          store,
		aggregator:     agg,
		bus:            bus,
		log:            log,
		delay:          delay,
		organizationID: organizationID,
		quit:           make(chan struct{}),
	}
}

// Run starts the worker. It blocks until Stop is called or ctx is
// cancelled; callers invoke it in its own goroutine. A pending timer set by
// Schedule before Run was called still fires normally.
func (s *Scheduler) Run(ctx context.Context) {
	s.quitWG.Add(1)
	defer s.quitWG.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-s.fireCh():
			s.cancelled.Store(false)
			s.runPass(ctx)
		}
	}
}

// fireCh returns the debounce timer's channel, lazily creating a
// never-fired timer if Schedule hasn't been called yet.
func (s *Scheduler) fireCh() <-chan time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		s.timer = time.NewTimer(s.delay)
		s.timer.Stop()
		select {
		case <-s.timer.C:
		default:
		}
	}
	return s.timer.C
}

// Schedule requests a debounced pass: the run fires AGGREGATION_DELAY after
// the most recent call, coalescing intervening calls into one run.
func (s *Scheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		s.timer = time.NewTimer(s.delay)
		return
	}
	if !s.timer.Stop() {
		select {
		case <-s.timer.C:
		default:
		}
	}
	s.timer.Reset(s.delay)
}

// OrganizationID returns the organization this Scheduler is scoped to.
func (s *Scheduler) OrganizationID() uuid.UUID { return s.organizationID }

// Interrupt sets the cancel flag, causing the current pass to exit at the
// next per-raw-contact boundary. Cancellation is best-effort: a raw contact
// already mid-aggregation runs to completion.
func (s *Scheduler) Interrupt() {
	s.cancelled.Store(true)
}

// Stop terminates the worker. Safe to call once.
func (s *Scheduler) Stop() {
	close(s.quit)
	s.quitWG.Wait()
}

// AggregateContactSync runs the single-contact algorithm synchronously,
// opening its own transaction, serialized against the background pass by
// the shared write lock.
func (s *Scheduler) AggregateContactSync(ctx context.Context, rawContactID uuid.UUID) (uuid.UUID, error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	before, err := tx.RawContacts().Get(ctx, rawContactID)
	if err != nil {
		return uuid.Nil, err
	}

	aggID, err := s.aggregator.AggregateContact(ctx, tx, rawContactID)
	if err != nil {
		return uuid.Nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}

	s.publishAggregateChanged(ctx, aggID, rawContactID, before.AggregateID)
	return aggID, nil
}

// AggregateContactTx runs the single-contact algorithm inside tx, a
// transaction already owned and committed by the caller (e.g. an ingest
// pipeline aggregating a contact in the same transaction as the write that
// created it). Unlike AggregateContactSync it neither opens nor commits a
// transaction, and it does not publish AggregateChanged: the result isn't
// durable until the caller commits tx, which this method has no visibility
// into.
func (s *Scheduler) AggregateContactTx(ctx context.Context, tx ports.Tx, rawContactID uuid.UUID) (uuid.UUID, error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	return s.aggregator.AggregateContact(ctx, tx, rawContactID)
}

// publishAggregateChanged is a no-op when no bus was configured (tests that
// don't care about notifications pass nil).
func (s *Scheduler) publishAggregateChanged(ctx context.Context, aggregateID, rawContactID uuid.UUID, previous *uuid.UUID) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.AggregateChanged{
		BaseEvent:     events.NewBaseEvent(),
		AggregateID:   aggregateID,
		RawContactID:  rawContactID,
		PreviousAggID: previous,
	})
}

// runPass executes one background pass: open a cursor over unaggregated
// default-mode raw contacts, then one write transaction inside which each
// row is processed under the shared write lock, yielding between rows and
// checking the cancel flag at the top of each iteration.
func (s *Scheduler) runPass(ctx context.Context) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		s.log.Error("aggregation pass: begin transaction failed", "error", err)
		return
	}
	defer tx.Rollback(ctx)

	cursor, err := tx.RawContacts().PendingDefault(ctx, s.organizationID)
	if err != nil {
		s.log.Error("aggregation pass: open cursor failed", "error", err)
		return
	}
	defer cursor.Close(ctx)

	total := cursor.Total()
	processed := 0
	interrupted := false

	type change struct {
		aggregateID, rawContactID uuid.UUID
		previous                  *uuid.UUID
	}
	var changes []change

	for {
		if s.cancelled.Load() {
			interrupted = true
			break
		}

		rc, ok, err := cursor.Next(ctx)
		if err != nil {
			s.log.Error("aggregation pass: reading pending raw contacts failed", "error", err)
			return
		}
		if !ok {
			break
		}

		s.writeLock.Lock()
		aggID, err := s.aggregator.AggregateContact(ctx, tx, rc.ID)
		s.writeLock.Unlock()
		if err != nil {
			s.log.Warn("aggregation pass: skipping raw contact after error", "raw_contact_id", rc.ID, "error", err)
			continue
		}
		processed++
		changes = append(changes, change{aggregateID: aggID, rawContactID: rc.ID, previous: rc.AggregateID})

		if err := tx.YieldIfContended(ctx); err != nil {
			s.log.Warn("aggregation pass: yield failed", "error", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.log.Error("aggregation pass: commit failed", "error", err)
		return
	}

	for _, c := range changes {
		s.publishAggregateChanged(ctx, c.aggregateID, c.rawContactID, c.previous)
	}

	if interrupted {
		s.log.Info("aggregation pass interrupted", "processed", processed, "total", total)
	} else {
		s.log.Info("aggregation pass complete", "processed", processed, "total", total)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.AggregationPassCompleted{
			BaseEvent:   events.NewBaseEvent(),
			Processed:   processed,
			Total:       total,
			Interrupted: interrupted,
		})
	}
}
