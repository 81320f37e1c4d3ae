package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cafenowa/cafenowa-backend/internal/auth"
	"github.com/cafenowa/cafenowa-backend/pkg/auth/session"
	"github.com/cafenowa/cafenowa-backend/pkg/config"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

type stubAuthService struct {
	loginResp *auth.LoginResponse
	loginErr  error
	logoutErr error
	loggedOut []string
	lastActor types.Actor
	lastReq   auth.LoginRequest
	lastMeta  types.RequestMeta
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest, meta types.RequestMeta) (*auth.LoginResponse, error) {
	s.lastReq = req
	s.lastMeta = meta
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) Logout(_ context.Context, token string, actor types.Actor, _ types.RequestMeta) error {
	s.loggedOut = append(s.loggedOut, token)
	s.lastActor = actor
	return s.logoutErr
}

type stubSessions struct {
	sess *session.Session
}

func (s stubSessions) Validate(context.Context, string) (*session.Session, error) {
	return s.sess, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "dev"
	cfg.Session.CookieName = "cafenowa_session"
	cfg.Session.TTL = time.Hour
	return cfg
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) types.Envelope {
	t.Helper()
	var env types.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestAuthLoginSetsCookieAndEnvelope(t *testing.T) {
	svc := &stubAuthService{loginResp: &auth.LoginResponse{
		Token:       "tok-123",
		UserType:    enums.RoleAdmin,
		Username:    "boss",
		RedirectURL: "/admin/dashboard",
	}}
	handler := AuthLogin(svc, testConfig(), nil)

	body := `{"email":"boss@cafenowa.com","password":"secret-pass","user_type":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = "10.1.1.1:40000"
	req.Header.Set("User-Agent", "test-agent")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatal("expected success envelope")
	}

	cookies := resp.Result().Cookies()
	var found *http.Cookie
	for _, c := range cookies {
		if c.Name == "cafenowa_session" {
			found = c
		}
	}
	if found == nil {
		t.Fatal("session cookie not set")
	}
	if found.Value != "tok-123" || !found.HttpOnly {
		t.Fatalf("unexpected cookie %+v", found)
	}

	if svc.lastMeta.IPAddress != "10.1.1.1" {
		t.Fatalf("expected client ip forwarded to service, got %q", svc.lastMeta.IPAddress)
	}
	if svc.lastMeta.UserAgent != "test-agent" {
		t.Fatalf("expected user agent forwarded, got %q", svc.lastMeta.UserAgent)
	}
}

func TestAuthLoginRejectsMalformedBody(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogin(svc, testConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if env := decodeEnvelope(t, resp); env.Success {
		t.Fatal("expected failure envelope")
	}
}

func TestAuthLoginPassesServiceErrorThrough(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}
	handler := AuthLogin(svc, testConfig(), nil)

	body := `{"email":"boss@cafenowa.com","password":"wrong-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	if env.Message != "invalid email or password" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestAuthLogoutWithoutSessionGets400(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, stubSessions{}, testConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	if env.Message != "not logged in" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	if len(svc.loggedOut) != 0 {
		t.Fatal("logout must not reach the service without a session")
	}
}

func TestAuthLogoutDestroysSessionAndClearsCookie(t *testing.T) {
	id := uuid.New()
	svc := &stubAuthService{}
	sessions := stubSessions{sess: &session.Session{
		IdentityID: id,
		Role:       enums.RoleEmployee,
		Username:   "barista1",
	}}
	handler := AuthLogout(svc, sessions, testConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "cafenowa_session", Value: "tok-9"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "tok-9" {
		t.Fatalf("expected service logout with tok-9, got %v", svc.loggedOut)
	}
	if svc.lastActor.ID != id || svc.lastActor.Role != enums.RoleEmployee {
		t.Fatalf("unexpected actor %+v", svc.lastActor)
	}

	var cleared *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == "cafenowa_session" {
			cleared = c
		}
	}
	if cleared == nil || cleared.Value != "" || cleared.MaxAge != -1 {
		t.Fatalf("expected cleared cookie, got %+v", cleared)
	}
}
