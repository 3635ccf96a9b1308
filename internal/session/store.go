package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storeshop/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSession is returned when a cookie cannot be decoded; callers start
// a fresh session.
var ErrInvalidSession = errors.New("invalid session")

// Store loads and saves the session context of a request.
type Store interface {
	Load(r *http.Request) (Context, error)
	Save(w http.ResponseWriter, r *http.Request, c Context) error
}

// NewStore picks the backend configured in cfg. kv is required for the redis
// backend only.
func NewStore(cfg config.SessionConfig, kv KeyValue) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case config.SessionBackendCookie:
		return NewCookieStore(cfg)
	case config.SessionBackendRedis:
		return NewRedisStore(cfg, kv)
	}
	return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
}

func writeCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

var signingMethod = jwt.SigningMethodHS256

type claims struct {
	Session Context `json:"ctx"`
	jwt.RegisteredClaims
}

// CookieStore keeps the whole context in an HMAC-signed JWT cookie.
type CookieStore struct {
	name   string
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewCookieStore builds a signed-cookie store.
func NewCookieStore(cfg config.SessionConfig) (*CookieStore, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &CookieStore{
		name:   cfg.CookieName,
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

func (s *CookieStore) Load(r *http.Request) (Context, error) {
	cookie, err := r.Cookie(s.name)
	if err != nil {
		return Context{}, nil
	}
	parsed := &claims{}
	_, err = jwt.ParseWithClaims(
		cookie.Value,
		parsed,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != signingMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return parsed.Session, nil
}

func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, c Context) error {
	now := s.now()
	token := jwt.NewWithClaims(signingMethod, claims{
		Session: c,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("signing session: %w", err)
	}
	writeCookie(w, r, s.name, signed, s.ttl)
	return nil
}

// KeyValue is the redis surface the RedisStore needs.
type KeyValue interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Touch(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionID string) string
}

// RedisStore keeps a random session id in the cookie and the context in redis.
type RedisStore struct {
	name string
	kv   KeyValue
	ttl  time.Duration
}

// NewRedisStore builds a redis-backed store.
func NewRedisStore(cfg config.SessionConfig, kv KeyValue) (*RedisStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client is required for redis sessions")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &RedisStore{name: cfg.CookieName, kv: kv, ttl: cfg.TTL}, nil
}

func (s *RedisStore) Load(r *http.Request) (Context, error) {
	cookie, err := r.Cookie(s.name)
	if err != nil {
		return Context{}, nil
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return Context{}, fmt.Errorf("%w: malformed id", ErrInvalidSession)
	}
	key := s.kv.SessionKey(cookie.Value)
	raw, err := s.kv.Get(r.Context(), key)
	if err != nil {
		// expired or evicted
		return Context{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	var c Context
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		_ = s.kv.Del(r.Context(), key)
		return Context{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	// sliding expiry; a failed refresh only shortens the session
	_ = s.kv.Touch(r.Context(), key, s.ttl)
	return c, nil
}

func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, c Context) error {
	id := ""
	if cookie, err := r.Cookie(s.name); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			id = cookie.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.kv.Set(r.Context(), s.kv.SessionKey(id), string(payload), s.ttl); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	writeCookie(w, r, s.name, id, s.ttl)
	return nil
}

type ctxKey struct{}

// WithContext stores the session context on a request context.
func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the session context stored by WithContext.
func FromContext(ctx context.Context) Context {
	if ctx == nil {
		return Context{}
	}
	c, _ := ctx.Value(ctxKey{}).(Context)
	return c
}
