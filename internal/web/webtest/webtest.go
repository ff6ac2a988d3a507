// Package webtest provides shared fixtures for handler tests: an in-memory
// database, an in-memory session store and helpers to issue requests as an
// authenticated user.
package webtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/inkpress/inkpress/internal/config"
	userctl "github.com/inkpress/inkpress/internal/db/controller/user"
	"github.com/inkpress/inkpress/internal/db/controller/userrole"
	"github.com/inkpress/inkpress/internal/db/models"
	"github.com/inkpress/inkpress/internal/roles"
	"github.com/inkpress/inkpress/internal/web/handler"
	"github.com/inkpress/inkpress/internal/web/middleware/principal"
	websess "github.com/inkpress/inkpress/internal/web/session"
)

// NewDB opens an in-memory database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.UserRoles{},
		&models.RoleRequest{},
		&models.Body{},
		&models.Post{},
	)
	if err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db
}

// NewConfig returns a config suitable for handler tests.
func NewConfig() *config.Config {
	return &config.Config{
		DevMode: false,
		Title:   "inkpress-test",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
}

// NewApp creates a Fiber app with the principal middleware installed.
func NewApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
	app.Use(principal.Middleware(db))

	return app
}

// testStorage is a minimal in-memory implementation of storage.Storage.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

// InitSessionStore installs a fresh in-memory session store.
func InitSessionStore() {
	websess.Init(&testStorage{data: make(map[string][]byte)})
}

// CreateUser stores a user with the given roles and returns it.
func CreateUser(t *testing.T, db *gorm.DB, username string, held ...roles.Role) *models.User {
	t.Helper()

	created, err := userctl.Create(db, username, username+"@example.com", "Sup3r$ecret")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}

	for _, role := range held {
		if _, err := userrole.Grant(db, created.ID, role); err != nil {
			t.Fatalf("failed to grant %s to %s: %v", role, username, err)
		}
	}

	return created
}

// LoginAs opens a session for the user and returns the session ID to be sent
// as the session cookie.
func LoginAs(t *testing.T, user *models.User) string {
	t.Helper()

	sessionID, err := websess.GenerateSessionID()
	if err != nil {
		t.Fatalf("failed to generate session ID: %v", err)
	}

	data := &websess.Data{User: *user}
	if err := data.Write(sessionID, time.Minute); err != nil {
		t.Fatalf("failed to write session: %v", err)
	}

	return sessionID
}

// Request issues a JSON request against the app. An empty sessionID sends the
// request anonymously.
func Request(t *testing.T, app *fiber.App, method, target, sessionID string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Reader

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}

		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: handler.SessionCookieName, Value: sessionID})
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

// DecodeBody decodes the JSON response body into a map.
func DecodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer func() {
		_ = resp.Body.Close()
	}()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}

	return out
}

// DecodeList decodes the JSON response body into a slice of maps.
func DecodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()

	defer func() {
		_ = resp.Body.Close()
	}()

	var out []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}

	return out
}
