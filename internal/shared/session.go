package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager issues and resolves opaque bearer tokens backed by Redis.
// The SPA stores the token and sends it as an Authorization header; nothing
// about the consultant is encoded in the token itself.
type SessionManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Session is the payload stored for an active consultant token.
type Session struct {
	Token        string    `json:"-"`
	ConsultantID int64     `json:"consultant_id"`
	Email        string    `json:"email"`
	IssuedAt     time.Time `json:"issued_at"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, prefix string, ttl time.Duration) *SessionManager {
	return &SessionManager{client: client, prefix: prefix, ttl: ttl}
}

// Issue creates a new session token for the consultant.
func (sm *SessionManager) Issue(ctx context.Context, consultantID int64, email string) (*Session, error) {
	sess := &Session{
		Token:        uuid.NewString(),
		ConsultantID: consultantID,
		Email:        email,
		IssuedAt:     time.Now().UTC(),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := sm.client.Set(ctx, sm.key(sess.Token), payload, sm.ttl).Err(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Resolve looks up the session behind a token, refreshing its TTL.
func (sm *SessionManager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}
	payload, err := sm.client.Get(ctx, sm.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}
	sess.Token = token
	_ = sm.client.Expire(ctx, sm.key(token), sm.ttl).Err()
	return &sess, nil
}

// Revoke deletes the session behind a token.
func (sm *SessionManager) Revoke(ctx context.Context, token string) error {
	err := sm.client.Del(ctx, sm.key(token)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (sm *SessionManager) key(token string) string {
	return sm.prefix + ":" + token
}
