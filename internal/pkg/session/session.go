package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/lipsense/portal/internal/pkg/backend"
	"github.com/lipsense/portal/internal/pkg/cache"
	"github.com/lipsense/portal/internal/pkg/env"
)

const (
	keyToken = "access_token"
	keyUser  = "user"
)

// ErrNotInitialized is returned when the store was never set up.
var ErrNotInitialized = errors.New("session store not initialized")

// Identity is the signed-in account: the backend token and its profile.
type Identity struct {
	Token string
	User  backend.User
}

func (i Identity) LoggedIn() bool {
	return i.Token != ""
}

// Store owns the process-wide auth state. It starts empty, persists to the
// session backend on Login and is torn down on Logout.
type Store struct {
	sessions *session.Store
}

func New(sessions *session.Store) *Store {
	return &Store{sessions: sessions}
}

// NewSessionStore creates the Redis-backed store. Without Redis, sessions
// are kept in process memory.
func NewSessionStore() *Store {
	cfg := session.Config{
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		CookieSameSite: "Lax",
		Expiration:     env.GetSeconds("SESSION_TTL_SECONDS", 12*time.Hour),
		KeyLookup:      "cookie:portal_session",
	}

	// Reuse the cache connection settings.
	cacheClient := cache.GetClient()
	if cacheClient == nil {
		log.Warn("[Session] redis not connected, sessions are kept in memory")
		return New(session.New(cfg))
	}

	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	addr := cacheClient.Options().Addr
	if h, p, err := net.SplitHostPort(addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	if p := cacheClient.Options().Password; p != "" {
		password = p
	}

	// Sessions use database 1 (cache uses DB 0)
	cfg.Storage = redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
	return New(session.New(cfg))
}

// Login stores the token and profile under a fresh session id.
func (s *Store) Login(c *fiber.Ctx, token string, user backend.User) error {
	if s == nil || s.sessions == nil {
		return ErrNotInitialized
	}
	if token == "" {
		return errors.New("login requires a token")
	}

	sess, err := s.sessions.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	sess.Set(keyToken, token)
	sess.Set(keyUser, string(raw))
	return sess.Save()
}

// Logout destroys the session and its cookie.
func (s *Store) Logout(c *fiber.Ctx) error {
	if s == nil || s.sessions == nil {
		return ErrNotInitialized
	}
	sess, err := s.sessions.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	return sess.Destroy()
}

// Current returns the signed-in identity, or a zero Identity for visitors.
func (s *Store) Current(c *fiber.Ctx) (Identity, error) {
	if s == nil || s.sessions == nil {
		return Identity{}, ErrNotInitialized
	}
	sess, err := s.sessions.Get(c)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to get session: %w", err)
	}

	token, _ := sess.Get(keyToken).(string)
	if token == "" {
		return Identity{}, nil
	}
	id := Identity{Token: token}
	if raw, ok := sess.Get(keyUser).(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &id.User); err != nil {
			return Identity{}, fmt.Errorf("decode user: %w", err)
		}
	}
	return id, nil
}

// ID returns the session id, creating the session if needed.
func (s *Store) ID(c *fiber.Ctx) (string, error) {
	if s == nil || s.sessions == nil {
		return "", ErrNotInitialized
	}
	sess, err := s.sessions.Get(c)
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	id := sess.ID()
	if sess.Fresh() {
		if err := sess.Save(); err != nil {
			return "", fmt.Errorf("failed to save session: %w", err)
		}
	}
	return id, nil
}
