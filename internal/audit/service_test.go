package audit

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cafenowa/cafenowa-backend/pkg/db/models"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/logger"
	"github.com/cafenowa/cafenowa-backend/pkg/pagination"
)

type stubRepo struct {
	inserted  []*models.AuditEntry
	insertErr error
	queryErr  error
	rows      []models.AuditEntry
	total     int64
}

func (s *stubRepo) Insert(_ context.Context, entry *models.AuditEntry) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, entry)
	return nil
}

func (s *stubRepo) Query(_ context.Context, _ Filter, _ pagination.Params) ([]models.AuditEntry, int64, error) {
	if s.queryErr != nil {
		return nil, 0, s.queryErr
	}
	return s.rows, s.total, nil
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRecordWritesRow(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	actorID := uuid.New()
	svc.Record(context.Background(), Entry{
		Role:       enums.RoleAdmin,
		ActorID:    &actorID,
		Username:   "ana",
		Action:     "Updated menu item Latte",
		ActionType: enums.ActionUpdate,
		IPAddress:  "10.0.0.1",
		UserAgent:  "test-agent",
	})

	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.inserted))
	}
	row := repo.inserted[0]
	if row.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if row.Role != enums.RoleAdmin || row.ActorUsername != "ana" {
		t.Errorf("unexpected row %+v", row)
	}
}

func TestRecordDefaultsRoleUnknown(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	svc.Record(context.Background(), Entry{
		Username:   "ghost@cafenowa.test",
		Action:     "Failed login attempt",
		ActionType: enums.ActionFailedLogin,
		IPAddress:  "10.0.0.1",
	})

	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.inserted))
	}
	if repo.inserted[0].Role != enums.RoleUnknown {
		t.Errorf("role = %s, want %s", repo.inserted[0].Role, enums.RoleUnknown)
	}
	if repo.inserted[0].ActorID != nil {
		t.Error("expected nil actor id for unresolved login")
	}
}

func TestRecordSwallowsWriteFailure(t *testing.T) {
	repo := &stubRepo{insertErr: errors.New("disk full")}
	svc := newTestService(t, repo)

	// Must not panic or surface the error to the caller.
	svc.Record(context.Background(), Entry{
		Role:       enums.RoleAdmin,
		Username:   "ana",
		Action:     "Logged in",
		ActionType: enums.ActionLogin,
		IPAddress:  "10.0.0.1",
	})
}

func TestQueryRejectsInvalidFilters(t *testing.T) {
	svc := newTestService(t, &stubRepo{})
	ctx := context.Background()

	_, err := svc.Query(ctx, Filter{Role: enums.Role("wizard")}, pagination.Params{})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Query(ctx, Filter{ActionType: enums.ActionType("meditate")}, pagination.Params{})
	assertCode(t, err, pkgerrors.CodeValidation)

	from := time.Now().UTC()
	to := from.Add(-time.Hour)
	_, err = svc.Query(ctx, Filter{DateFrom: &from, DateTo: &to}, pagination.Params{})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestQueryBuildsPage(t *testing.T) {
	actorID := uuid.New()
	repo := &stubRepo{
		rows: []models.AuditEntry{{
			ID:            uuid.New(),
			Role:          enums.RoleEmployee,
			ActorID:       &actorID,
			ActorUsername: "dario",
			Action:        "Logged out",
			ActionType:    enums.ActionLogout,
			IPAddress:     "10.0.0.2",
			UserAgent:     "test-agent",
		}},
		total: 120,
	}
	svc := newTestService(t, repo)

	page, err := svc.Query(context.Background(), Filter{}, pagination.Params{Page: 2, Limit: 50})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(page.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(page.Entries))
	}
	if page.Pagination.CurrentPage != 2 || page.Pagination.TotalRecords != 120 || page.Pagination.TotalPages != 3 {
		t.Errorf("unexpected pagination %+v", page.Pagination)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("code = %s, want %s", typed.Code(), code)
	}
}
