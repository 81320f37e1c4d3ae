package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cafenowa/cafenowa-backend/pkg/config"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	redisclient "github.com/cafenowa/cafenowa-backend/pkg/redis"
)

const tokenBytes = 32

// Identity is the minimum the session layer needs to know about who
// logged in.
type Identity struct {
	ID       uuid.UUID
	Role     enums.Role
	Username string
	Email    string
	FullName string
}

// Session is the server-side state referenced by an opaque client token.
// The token itself is never embedded in the stored payload and never
// logged.
type Session struct {
	IdentityID uuid.UUID  `json:"identity_id"`
	Role       enums.Role `json:"role"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	IssuedAt   time.Time  `json:"issued_at"`
}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type sessionKeyer interface {
	SessionKey(token string) string
	SessionOwnerKey(role, identityID string) string
}

// Manager owns session issue, validation, and destruction. Policy: one
// active token per identity (issuing invalidates the previous token) and
// a sliding expiry window refreshed on every validated request.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Validator exposes the read-only surface needed by middleware.
type Validator interface {
	Validate(ctx context.Context, token string) (*Session, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   cfg.TTL,
	}, nil
}

// Issue creates a fresh token for the identity, invalidating any token
// previously issued to it. Called immediately after credential
// verification so a pre-login token can never survive authentication.
func (m *Manager) Issue(ctx context.Context, identity Identity) (string, error) {
	if identity.ID == uuid.Nil {
		return "", fmt.Errorf("identity id is required")
	}
	if !identity.Role.IsValid() {
		return "", fmt.Errorf("invalid role %q", identity.Role)
	}

	ownerKey := m.keyer.SessionOwnerKey(identity.Role.String(), identity.ID.String())
	if prior, err := m.store.Get(ctx, ownerKey); err == nil && prior != "" {
		if err := m.store.Del(ctx, m.keyer.SessionKey(prior)); err != nil {
			return "", fmt.Errorf("invalidate prior session: %w", err)
		}
	} else if err != nil && !redisclient.IsNil(err) {
		return "", err
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(Session{
		IdentityID: identity.ID,
		Role:       identity.Role,
		Username:   identity.Username,
		Email:      identity.Email,
		FullName:   identity.FullName,
		IssuedAt:   time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	sessionKey := m.keyer.SessionKey(token)
	if err := m.store.Set(ctx, sessionKey, payload, m.ttl); err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, ownerKey, token, m.ttl); err != nil {
		// Roll back the session key so a half-issued session can never
		// be validated without an owner mapping to destroy it through.
		if delErr := m.store.Del(ctx, sessionKey); delErr != nil {
			return "", fmt.Errorf("record session owner: %w (orphan cleanup: %v)", err, delErr)
		}
		return "", fmt.Errorf("record session owner: %w", err)
	}
	return token, nil
}

// Validate resolves a token to its session, refreshing the sliding
// expiry window. Unknown and expired tokens both return (nil, nil).
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	raw, err := m.store.Get(ctx, m.keyer.SessionKey(token))
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, nil
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	// Sliding window: both the session and its owner index stay alive as
	// long as the dashboard keeps being used.
	if _, err := m.store.Expire(ctx, m.keyer.SessionKey(token), m.ttl); err != nil {
		return nil, err
	}
	ownerKey := m.keyer.SessionOwnerKey(sess.Role.String(), sess.IdentityID.String())
	if _, err := m.store.Expire(ctx, ownerKey, m.ttl); err != nil {
		return nil, err
	}

	return &sess, nil
}

// Destroy invalidates a token. Destroying an unknown or already
// destroyed token is not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	raw, err := m.store.Get(ctx, m.keyer.SessionKey(token))
	if err != nil {
		if redisclient.IsNil(err) {
			return nil
		}
		return err
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err == nil {
		ownerKey := m.keyer.SessionOwnerKey(sess.Role.String(), sess.IdentityID.String())
		// Only drop the owner index when it still points at this token;
		// a newer login may already have replaced it.
		if current, err := m.store.Get(ctx, ownerKey); err == nil &&
			subtle.ConstantTimeCompare([]byte(current), []byte(token)) == 1 {
			if err := m.store.Del(ctx, ownerKey); err != nil {
				return err
			}
		}
	}

	return m.store.Del(ctx, m.keyer.SessionKey(token))
}

// CurrentRole returns the role bound to a token, or false for an
// unknown/expired token.
func (m *Manager) CurrentRole(ctx context.Context, token string) (enums.Role, bool, error) {
	sess, err := m.Validate(ctx, token)
	if err != nil {
		return "", false, err
	}
	if sess == nil {
		return "", false, nil
	}
	return sess.Role, true, nil
}

func generateToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
