package register

import (
	"net/http"
	"testing"

	"github.com/inkpress/inkpress/internal/db/controller/userrole"
	"github.com/inkpress/inkpress/internal/web/webtest"
)

func TestPost_Anonymous_CreatesUser(t *testing.T) {
	db := webtest.NewDB(t)
	cfg := webtest.NewConfig()
	app := webtest.NewApp(db)

	webtest.InitSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("failed to init handler: %v", err)
	}

	resp := webtest.Request(t, app, http.MethodPost, Path, "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "Sup3r$ecret",
	})

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d", resp.StatusCode)
	}

	body := webtest.DecodeBody(t, resp)
	if _, ok := body["id"]; !ok {
		t.Fatalf("expected id in response, got %v", body)
	}

	if len(body) != 1 {
		t.Fatalf("expected id-only response, got %v", body)
	}

	// the new account starts with an empty role set, not without one
	record, err := userrole.Get(db, uint64(body["id"].(float64)))
	if err != nil {
		t.Fatalf("expected role record for new user: %v", err)
	}

	if len(record.Roles) != 0 {
		t.Fatalf("expected empty role set, got %v", record.Roles)
	}
}

func TestPost_Authenticated_IsDenied(t *testing.T) {
	db := webtest.NewDB(t)
	cfg := webtest.NewConfig()
	app := webtest.NewApp(db)

	webtest.InitSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("failed to init handler: %v", err)
	}

	bob := webtest.CreateUser(t, db, "bob")
	sessionID := webtest.LoginAs(t, bob)

	resp := webtest.Request(t, app, http.MethodPost, Path, sessionID, map[string]string{
		"username": "mallory",
		"email":    "mallory@example.com",
		"password": "Sup3r$ecret",
	})

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 Forbidden for authenticated caller, got %d", resp.StatusCode)
	}
}

func TestPost_InvalidFields(t *testing.T) {
	db := webtest.NewDB(t)
	cfg := webtest.NewConfig()
	app := webtest.NewApp(db)

	webtest.InitSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("failed to init handler: %v", err)
	}

	tests := []struct {
		name     string
		payload  map[string]string
		errField string
	}{
		{
			name:     "short username",
			payload:  map[string]string{"username": "xx", "email": "a@example.com", "password": "Sup3r$ecret"},
			errField: "username",
		},
		{
			name:     "invalid username characters",
			payload:  map[string]string{"username": "xxx+", "email": "a@example.com", "password": "Sup3r$ecret"},
			errField: "username",
		},
		{
			name:     "invalid email",
			payload:  map[string]string{"username": "alice", "email": "not-an-email", "password": "Sup3r$ecret"},
			errField: "email",
		},
		{
			name:     "weak password",
			payload:  map[string]string{"username": "alice", "email": "a@example.com", "password": "password"},
			errField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := webtest.Request(t, app, http.MethodPost, Path, "", tt.payload)

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400 Bad Request, got %d", resp.StatusCode)
			}

			body := webtest.DecodeBody(t, resp)
			if _, ok := body[tt.errField]; !ok {
				t.Fatalf("expected error keyed by %q, got %v", tt.errField, body)
			}
		})
	}
}

func TestPost_DuplicateUsername(t *testing.T) {
	db := webtest.NewDB(t)
	cfg := webtest.NewConfig()
	app := webtest.NewApp(db)

	webtest.InitSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("failed to init handler: %v", err)
	}

	webtest.CreateUser(t, db, "alice")

	resp := webtest.Request(t, app, http.MethodPost, Path, "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "Sup3r$ecret",
	})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 Bad Request for duplicate username, got %d", resp.StatusCode)
	}
}
