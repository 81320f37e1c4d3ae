package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/internal/audit"
	"github.com/cafenowa/cafenowa-backend/pkg/config"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/pagination"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

type stubIdentityRepo struct {
	records    map[string]*Record
	createErr  error
	listCalled []enums.Role
}

func newStubRepo() *stubIdentityRepo {
	return &stubIdentityRepo{records: map[string]*Record{}}
}

func key(role enums.Role, id uuid.UUID) string { return role.String() + "/" + id.String() }

func (s *stubIdentityRepo) put(record *Record) {
	s.records[key(record.Role, record.ID)] = record
}

func (s *stubIdentityRepo) FindByID(_ context.Context, role enums.Role, id uuid.UUID) (*Record, error) {
	if record, ok := s.records[key(role, id)]; ok {
		return record, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubIdentityRepo) Create(_ context.Context, role enums.Role, params CreateParams) (*Record, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	record := &Record{
		ID:           uuid.New(),
		Role:         role,
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		FullName:     params.FullName,
		IsActive:     params.IsActive,
		Position:     params.Position,
		Phone:        params.Phone,
		CreatedAt:    time.Now().UTC(),
	}
	s.put(record)
	return record, nil
}

func (s *stubIdentityRepo) Update(_ context.Context, role enums.Role, id uuid.UUID, params UpdateParams) error {
	record, ok := s.records[key(role, id)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if params.FullName != nil {
		record.FullName = *params.FullName
	}
	if params.PasswordHash != nil {
		record.PasswordHash = *params.PasswordHash
	}
	return nil
}

func (s *stubIdentityRepo) SetActive(_ context.Context, role enums.Role, id uuid.UUID, active bool) error {
	record, ok := s.records[key(role, id)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.IsActive = active
	return nil
}

func (s *stubIdentityRepo) Delete(_ context.Context, role enums.Role, id uuid.UUID) error {
	if _, ok := s.records[key(role, id)]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.records, key(role, id))
	return nil
}

func (s *stubIdentityRepo) List(_ context.Context, roles []enums.Role, _ string, _ pagination.Params) ([]Record, int64, error) {
	s.listCalled = roles
	var out []Record
	for _, record := range s.records {
		for _, role := range roles {
			if record.Role == role {
				out = append(out, *record)
			}
		}
	}
	return out, int64(len(out)), nil
}

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func newTestService(t *testing.T, repo *stubIdentityRepo) (Service, *recordingAudit) {
	t.Helper()
	recorder := &recordingAudit{}
	svc, err := NewService(ServiceParams{
		Repo:  repo,
		Audit: recorder,
		// MinCost keeps bcrypt fast in tests.
		Security: config.SecurityConfig{BcryptCost: 4},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, recorder
}

func adminActor() types.Actor {
	return types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, Username: "ana"}
}

func testMeta() types.RequestMeta {
	return types.RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test-agent"}
}

func wantCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("code = %s, want %s", typed.Code(), code)
	}
}

func TestCreateUserHashesPasswordAndAudits(t *testing.T) {
	repo := newStubRepo()
	svc, recorder := newTestService(t, repo)

	dto, err := svc.CreateUser(context.Background(), adminActor(), testMeta(), CreateUserRequest{
		UserType: "employee",
		Username: "dario",
		Email:    "dario@cafenowa.test",
		Password: "espresso-machine",
		FullName: "Dario Reyes",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.UserType != enums.RoleEmployee || dto.Username != "dario" {
		t.Errorf("unexpected dto %+v", dto)
	}

	stored := repo.records[key(enums.RoleEmployee, dto.ID)]
	if stored.PasswordHash == "espresso-machine" || stored.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	if len(recorder.entries) != 1 || recorder.entries[0].ActionType != enums.ActionCreate {
		t.Fatalf("expected one create audit entry, got %+v", recorder.entries)
	}
}

func TestCreateUserTierEnforcement(t *testing.T) {
	svc, _ := newTestService(t, newStubRepo())

	// Admins cannot mint other admins.
	_, err := svc.CreateUser(context.Background(), adminActor(), testMeta(), CreateUserRequest{
		UserType: "admin",
		Username: "bea",
		Email:    "bea@cafenowa.test",
		Password: "espresso-machine",
		FullName: "Bea",
	})
	wantCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.CreateUser(context.Background(), adminActor(), testMeta(), CreateUserRequest{
		UserType: "wizard",
		Username: "bea",
		Email:    "bea@cafenowa.test",
		Password: "espresso-machine",
		FullName: "Bea",
	})
	wantCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc, _ := newTestService(t, newStubRepo())

	_, err := svc.UpdateUser(context.Background(), adminActor(), testMeta(), UpdateUserRequest{
		UserID:   uuid.New(),
		UserType: "employee",
	})
	wantCode(t, err, pkgerrors.CodeNotFound)
}

func TestSelfDeactivateRejected(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo)

	actor := types.Actor{ID: uuid.New(), Role: enums.RoleSuperAdmin, Username: "root"}
	repo.put(&Record{ID: actor.ID, Role: enums.RoleSuperAdmin, Username: "root", IsActive: true})

	inactive := false
	_, err := svc.UpdateUser(context.Background(), actor, testMeta(), UpdateUserRequest{
		UserID:   actor.ID,
		UserType: "super_admin",
		IsActive: &inactive,
	})
	wantCode(t, err, pkgerrors.CodeInvalidOperation)

	err = svc.DeleteUser(context.Background(), actor, testMeta(), DeleteUserRequest{
		UserID:   actor.ID,
		UserType: "super_admin",
	})
	wantCode(t, err, pkgerrors.CodeInvalidOperation)
}

func TestDeleteDefaultsToDeactivate(t *testing.T) {
	repo := newStubRepo()
	svc, recorder := newTestService(t, repo)
	actor := adminActor()

	target := &Record{ID: uuid.New(), Role: enums.RoleEmployee, Username: "dario", IsActive: true}
	repo.put(target)

	err := svc.DeleteUser(context.Background(), actor, testMeta(), DeleteUserRequest{
		UserID:   target.ID,
		UserType: "employee",
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if target.IsActive {
		t.Error("expected account deactivated")
	}
	if _, ok := repo.records[key(enums.RoleEmployee, target.ID)]; !ok {
		t.Error("non-permanent delete must keep the row")
	}
	if len(recorder.entries) != 1 || recorder.entries[0].ActionType != enums.ActionUpdate {
		t.Fatalf("expected deactivate audited as update, got %+v", recorder.entries)
	}
}

func TestPermanentDeleteRemovesRow(t *testing.T) {
	repo := newStubRepo()
	svc, recorder := newTestService(t, repo)

	target := &Record{ID: uuid.New(), Role: enums.RoleCustomer, Username: "elena", IsActive: true}
	repo.put(target)

	err := svc.DeleteUser(context.Background(), adminActor(), testMeta(), DeleteUserRequest{
		UserID:    target.ID,
		UserType:  "customer",
		Permanent: true,
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.records[key(enums.RoleCustomer, target.ID)]; ok {
		t.Error("permanent delete must remove the row")
	}
	if len(recorder.entries) != 1 || recorder.entries[0].ActionType != enums.ActionDelete {
		t.Fatalf("expected delete audit entry, got %+v", recorder.entries)
	}
}

func TestListUsersScopesPartitions(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.ListUsers(context.Background(), adminActor(), testMeta(), "", "", pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, role := range repo.listCalled {
		if role == enums.RoleSuperAdmin {
			t.Fatal("admin listing must never touch the super admin partition")
		}
	}

	_, err = svc.ListUsers(context.Background(), adminActor(), testMeta(), "super_admin", "", pagination.Params{})
	wantCode(t, err, pkgerrors.CodeForbidden)

	employeeActor := types.Actor{ID: uuid.New(), Role: enums.RoleEmployee, Username: "dario"}
	_, err = svc.ListUsers(context.Background(), employeeActor, testMeta(), "", "", pagination.Params{})
	wantCode(t, err, pkgerrors.CodeForbidden)
}
