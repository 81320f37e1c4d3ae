package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafenowa/cafenowa-backend/internal/audit"
	"github.com/cafenowa/cafenowa-backend/internal/identity"
	"github.com/cafenowa/cafenowa-backend/pkg/auth/session"
	"github.com/cafenowa/cafenowa-backend/pkg/config"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/logger"
	"github.com/cafenowa/cafenowa-backend/pkg/metrics"
	"github.com/cafenowa/cafenowa-backend/pkg/security"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

// invalidCredentialsMessage is returned for both unknown email and
// wrong password. The two cases must stay byte-identical so responses
// cannot be used to probe which emails have accounts.
const invalidCredentialsMessage = "invalid email or password"

const lockedOutMessage = "too many failed attempts, try again later"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest, meta types.RequestMeta) (*LoginResponse, error)
	Logout(ctx context.Context, token string, actor types.Actor, meta types.RequestMeta) error
}

type identityRepository interface {
	FindByEmail(ctx context.Context, role enums.Role, email string) (*identity.Record, error)
	UpdateLastLogin(ctx context.Context, role enums.Role, id uuid.UUID, at time.Time) error
}

type attemptLedger interface {
	Record(ctx context.Context, email, ipAddress string, succeeded bool) error
	CountRecentFailures(ctx context.Context, email, ipAddress string, window time.Duration) (int64, error)
}

type sessionIssuer interface {
	Issue(ctx context.Context, identity session.Identity) (string, error)
	Destroy(ctx context.Context, token string) error
}

type service struct {
	identities identityRepository
	attempts   attemptLedger
	sessions   sessionIssuer
	audit      audit.Recorder
	logg       *logger.Logger
	metrics    *metrics.AuthMetrics
	security   config.SecurityConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Identities identityRepository
	Attempts   attemptLedger
	Sessions   sessionIssuer
	Audit      audit.Recorder
	Logger     *logger.Logger
	Metrics    *metrics.AuthMetrics
	Security   config.SecurityConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Identities == nil {
		return nil, fmt.Errorf("identity repository is required")
	}
	if params.Attempts == nil {
		return nil, fmt.Errorf("attempt ledger is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		identities: params.Identities,
		attempts:   params.Attempts,
		sessions:   params.Sessions,
		audit:      params.Audit,
		logg:       params.Logger,
		metrics:    params.Metrics,
		security:   params.Security,
	}, nil
}

// Login runs the full state machine: lockout gate, partition fan-out,
// credential verification, session issue, audit. The lockout gate runs
// before any credential lookup so a locked caller learns nothing about
// whether the email exists.
func (s *service) Login(ctx context.Context, req LoginRequest, meta types.RequestMeta) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	portal := Portal(req.UserType)
	if portal == "" {
		portal = PortalAuto
	}
	partitions := partitionsFor(portal)
	if partitions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user_type").
			WithDetails(map[string]string{"user_type": req.UserType})
	}

	failures, err := s.attempts.CountRecentFailures(ctx, email, meta.IPAddress, s.security.LockoutWindow)
	if err != nil {
		return nil, pkgerrors.WrapStore(err, "check lockout window")
	}
	if failures >= int64(s.security.MaxLoginAttempts) {
		s.metrics.IncLockout(string(portal))
		s.auditFailedLogin(ctx, enums.RoleUnknown, nil, email, meta,
			fmt.Sprintf("Login rejected by lockout for %s", email))
		return nil, pkgerrors.New(pkgerrors.CodeLockedOut, lockedOutMessage)
	}

	record, err := s.findAccount(ctx, partitions, email)
	if err != nil {
		return nil, err
	}
	if record == nil {
		s.recordFailure(ctx, email, meta, string(portal))
		s.auditFailedLogin(ctx, enums.RoleUnknown, nil, email, meta,
			fmt.Sprintf("Failed login attempt for %s", email))
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(req.Password, record.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		s.recordFailure(ctx, email, meta, string(portal))
		s.auditFailedLogin(ctx, record.Role, &record.ID, record.Username, meta,
			fmt.Sprintf("Failed login attempt for %s", email))
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if !record.IsActive {
		s.recordFailure(ctx, email, meta, string(portal))
		s.auditFailedLogin(ctx, record.Role, &record.ID, record.Username, meta,
			fmt.Sprintf("Login blocked for disabled account %s", record.Username))
		return nil, pkgerrors.New(pkgerrors.CodeAccountDisabled, "account is disabled")
	}

	// Attempt bookkeeping is best-effort from here on; a ledger hiccup
	// must not bounce a correct login.
	if err := s.attempts.Record(ctx, email, meta.IPAddress, true); err != nil {
		s.logg.Error(ctx, "record successful login attempt", err)
	}

	now := time.Now().UTC()
	if err := s.identities.UpdateLastLogin(ctx, record.Role, record.ID, now); err != nil {
		return nil, pkgerrors.WrapStore(err, "update last login")
	}

	token, err := s.sessions.Issue(ctx, session.Identity{
		ID:       record.ID,
		Role:     record.Role,
		Username: record.Username,
		Email:    record.Email,
		FullName: record.FullName,
	})
	if err != nil {
		return nil, pkgerrors.WrapStore(err, "issue session")
	}

	s.metrics.IncLogin(string(portal), "success")
	s.audit.Record(ctx, audit.Entry{
		Role:       record.Role,
		ActorID:    &record.ID,
		Username:   record.Username,
		Action:     fmt.Sprintf("%s logged in", record.Username),
		ActionType: enums.ActionLogin,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})

	return &LoginResponse{
		Token:       token,
		UserType:    record.Role,
		Username:    record.Username,
		FullName:    record.FullName,
		RedirectURL: redirectFor(record.Role),
	}, nil
}

// Logout destroys the session and audits the exit. Destroying an
// already dead token still succeeds.
func (s *service) Logout(ctx context.Context, token string, actor types.Actor, meta types.RequestMeta) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return pkgerrors.WrapStore(err, "destroy session")
	}

	s.audit.Record(ctx, audit.Entry{
		Role:       actor.Role,
		ActorID:    &actor.ID,
		Username:   actor.Username,
		Action:     fmt.Sprintf("%s logged out", actor.Username),
		ActionType: enums.ActionLogout,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})
	return nil
}

// findAccount walks the portal's partitions in priority order and
// returns the first match, or nil when the email is unknown everywhere.
func (s *service) findAccount(ctx context.Context, partitions []enums.Role, email string) (*identity.Record, error) {
	for _, role := range partitions {
		record, err := s.identities.FindByEmail(ctx, role, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, pkgerrors.WrapStore(err, "lookup account")
		}
		return record, nil
	}
	return nil, nil
}

func (s *service) recordFailure(ctx context.Context, email string, meta types.RequestMeta, portal string) {
	s.metrics.IncLogin(portal, "failure")
	if err := s.attempts.Record(ctx, email, meta.IPAddress, false); err != nil {
		s.logg.Error(ctx, "record failed login attempt", err)
	}
}

func (s *service) auditFailedLogin(ctx context.Context, role enums.Role, actorID *uuid.UUID, username string, meta types.RequestMeta, action string) {
	s.audit.Record(ctx, audit.Entry{
		Role:       role,
		ActorID:    actorID,
		Username:   username,
		Action:     action,
		ActionType: enums.ActionFailedLogin,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})
}
