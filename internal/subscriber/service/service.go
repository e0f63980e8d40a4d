// Package service orchestrates subscriber provisioning: defaulting,
// validation, storage, and the audit/metrics side effects of mutations.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"coregw/internal/subscriber/metrics"
	"coregw/internal/subscriber/models"
	"coregw/internal/subscriber/store"
	"coregw/internal/subscriber/validation"
	dErrors "coregw/pkg/domain-errors"
	"coregw/pkg/platform/audit"
	"coregw/pkg/platform/sentinel"
)

// Auditor is the subset of the audit emitter the service needs.
type Auditor interface {
	Emit(ctx context.Context, action audit.Action, imsi string)
}

// Service owns the subscriber use cases. All storage interaction goes
// through the Store interface; the service never sees the database.
type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor Auditor
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: slog.Default(),
		tracer: otel.Tracer("coregw/subscriber"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns subscribers matching the filter, paginated. Limit must be at
// least 1 and offset non-negative.
func (s *Service) List(ctx context.Context, filter store.Filter, limit, offset int) ([]*models.SubscriberRecord, error) {
	ctx, span := s.tracer.Start(ctx, "subscriber.List")
	defer span.End()

	if limit < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "limit must be at least 1")
	}
	if offset < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "offset must be non-negative")
	}

	records, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "subscriber store unavailable")
	}
	if records == nil {
		records = []*models.SubscriberRecord{}
	}
	span.SetAttributes(attribute.Int("subscriber.count", len(records)))
	return records, nil
}

// Register validates and persists a new subscriber. The pre-existence check
// gives a clearer error; the store's unique-key constraint remains the final
// arbiter under concurrent registration.
func (s *Service) Register(ctx context.Context, rec *models.SubscriberRecord) (*models.SubscriberRecord, error) {
	ctx, span := s.tracer.Start(ctx, "subscriber.Register")
	defer span.End()

	if err := s.prepare(rec); err != nil {
		return nil, err
	}

	if _, err := s.store.GetByIMSI(ctx, rec.IMSI); err == nil {
		return nil, s.duplicateErr(rec.IMSI)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "subscriber store unavailable")
	}

	if err := s.store.Create(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return nil, s.duplicateErr(rec.IMSI)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "subscriber store unavailable")
	}

	s.logger.InfoContext(ctx, "subscriber registered", "imsi", rec.IMSI)
	s.metrics.IncrementCreated()
	s.emit(ctx, audit.ActionSubscriberCreated, rec.IMSI)
	return rec, nil
}

// Replace stores a full replacement of the record at the given IMSI. The
// path IMSI always wins: any IMSI embedded in the payload is overwritten
// before validation reruns.
func (s *Service) Replace(ctx context.Context, imsi string, rec *models.SubscriberRecord) error {
	ctx, span := s.tracer.Start(ctx, "subscriber.Replace")
	defer span.End()

	rec.IMSI = imsi
	if err := s.prepare(rec); err != nil {
		return err
	}

	if err := s.store.ReplaceByIMSI(ctx, imsi, rec); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.notFoundErr(imsi)
		}
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "subscriber store unavailable")
	}

	s.logger.InfoContext(ctx, "subscriber replaced", "imsi", imsi)
	s.metrics.IncrementReplaced()
	s.emit(ctx, audit.ActionSubscriberReplaced, imsi)
	return nil
}

// Delete removes the record at the given IMSI.
func (s *Service) Delete(ctx context.Context, imsi string) error {
	ctx, span := s.tracer.Start(ctx, "subscriber.Delete")
	defer span.End()

	if err := s.store.DeleteByIMSI(ctx, imsi); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.notFoundErr(imsi)
		}
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "subscriber store unavailable")
	}

	s.logger.InfoContext(ctx, "subscriber deleted", "imsi", imsi)
	s.metrics.IncrementDeleted()
	s.emit(ctx, audit.ActionSubscriberDeleted, imsi)
	return nil
}

// prepare runs the defaulting step and then the full validation pass.
func (s *Service) prepare(rec *models.SubscriberRecord) error {
	rec.ApplyDefaults()
	if violations := validation.Validate(rec); len(violations) > 0 {
		s.metrics.IncrementValidationFailures()
		return dErrors.New(dErrors.CodeValidation, "subscriber record failed validation").
			WithViolations(violations)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, imsi string) {
	if s.auditor != nil {
		s.auditor.Emit(ctx, action, imsi)
	}
}

func (s *Service) duplicateErr(imsi string) error {
	return dErrors.Newf(dErrors.CodeDuplicateKey, "subscriber with IMSI %s already exists", imsi)
}

func (s *Service) notFoundErr(imsi string) error {
	return dErrors.Newf(dErrors.CodeNotFound, "subscriber with IMSI %s not found", imsi)
}
