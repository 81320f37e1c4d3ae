package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/logger"
	"github.com/cafenowa/cafenowa-backend/pkg/metrics"
	"github.com/cafenowa/cafenowa-backend/pkg/pagination"
)

// Entry describes one action to be written to the trail.
type Entry struct {
	Role        enums.Role
	ActorID     *uuid.UUID
	Username    string
	Action      string
	ActionType  enums.ActionType
	TargetTable *string
	TargetID    *uuid.UUID
	IPAddress   string
	UserAgent   string
	Details     *string
}

// Recorder writes audit rows. Recording never fails the calling
// operation: a write error is logged and counted, not propagated.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Service exposes audit recording and querying.
type Service interface {
	Recorder
	Query(ctx context.Context, filter Filter, page pagination.Params) (*TrailPage, error)
}

type auditRepository interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error
	Query(ctx context.Context, filter Filter, page pagination.Params) ([]models.AuditEntry, int64, error)
}

type service struct {
	repo    auditRepository
	logg    *logger.Logger
	metrics *metrics.AuthMetrics
}

// ServiceParams bundles the dependencies required to build an audit service.
type ServiceParams struct {
	Repo    auditRepository
	Logger  *logger.Logger
	Metrics *metrics.AuthMetrics
}

// NewService constructs an audit service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:    params.Repo,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

func (s *service) Record(ctx context.Context, entry Entry) {
	row := &models.AuditEntry{
		ID:            uuid.New(),
		Role:          entry.Role,
		ActorID:       entry.ActorID,
		ActorUsername: entry.Username,
		Action:        entry.Action,
		ActionType:    entry.ActionType,
		TargetTable:   entry.TargetTable,
		TargetID:      entry.TargetID,
		IPAddress:     entry.IPAddress,
		UserAgent:     entry.UserAgent,
		Details:       entry.Details,
	}
	if row.Role == "" {
		row.Role = enums.RoleUnknown
	}

	if err := s.repo.Insert(ctx, row); err != nil {
		s.metrics.IncAuditFailure()
		lctx := s.logg.WithFields(ctx, map[string]any{
			"action":      entry.Action,
			"action_type": entry.ActionType,
		})
		s.logg.Error(lctx, "audit trail write failed", err)
	}
}

func (s *service) Query(ctx context.Context, filter Filter, page pagination.Params) (*TrailPage, error) {
	page = pagination.Normalize(page)

	if filter.Role != "" && !filter.Role.IsValid() && filter.Role != enums.RoleUnknown {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter").
			WithDetails(map[string]string{"role": filter.Role.String()})
	}
	if filter.ActionType != "" && !filter.ActionType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid action type filter").
			WithDetails(map[string]string{"action_type": filter.ActionType.String()})
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_to precedes date_from")
	}

	entries, total, err := s.repo.Query(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.WrapStore(err, "query audit trail")
	}

	return newTrailPage(entries, total, page), nil
}

// DayBounds expands a date-only filter value to the full day it names.
func DayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Nanosecond)
}
