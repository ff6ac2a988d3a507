package role

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/inkpress/inkpress/internal/web/webtest"
)

func givePath(userID uint64) string {
	return fmt.Sprintf("/users/%d/roles/give", userID)
}

func revokePath(userID uint64) string {
	return fmt.Sprintf("/users/%d/roles/revoke", userID)
}

func rolesOf(t *testing.T, body map[string]any) []string {
	t.Helper()

	raw, ok := body["roles"].([]any)
	if !ok {
		t.Fatalf("expected roles array in response, got %v", body)
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(string))
	}

	return out
}

func TestGive_GrantsRole(t *testing.T) {
	db := webtest.NewDB(t)
	cfg := webtest.NewConfig()
	app := webtest.NewApp(db)

	webtest.InitSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("failed to init handler: %v", err)
	}

	alice := webtest.CreateUser(t, db, "alice")

	// the endpoint is open: no session needed
	resp := webtest.Request(t, app, http.MethodPost, givePath(alice.ID), "", map[string]string{
		"role": "writer",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}

	held := rolesOf(t, webtest.DecodeBody(t, resp))
	if len(held) != 1 || held[0] != "writer" {
		t.Fatalf("expected [writer], got %v", held)
	}
}

func TestGive_IsIdempotent(t *testing.T) {
	db := webtest.NewDB(t)
	cfg := webtest.NewConfig()
	app := webtest.NewApp(db)

	webtest.InitSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("failed to init handler: %v", err)
	}

	alice := webtest.CreateUser(t, db, "alice")

	for n := 0; n < 2; n++ {
		resp := webtest.Request(t, app, http.MethodPost, givePath(alice.ID), "", map[string]string{
			"role": "editor",
		})

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
		}

		held := rolesOf(t, webtest.DecodeBody(t, resp))
		if len(held) != 1 || held[0] != "editor" {
			t.Fatalf("expected [editor], got %v", held)
		}
	}
}

func TestRevoke_RemovesRole(t *testing.T) {
	db := webtest.NewDB(t)
	cfg := webtest.NewConfig()
	app := webtest.NewApp(db)

	webtest.InitSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("failed to init handler: %v", err)
	}

	alice := webtest.CreateUser(t, db, "alice", "writer", "editor")

	resp := webtest.Request(t, app, http.MethodPost, revokePath(alice.ID), "", map[string]string{
		"role": "writer",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}

	held := rolesOf(t, webtest.DecodeBody(t, resp))
	if len(held) != 1 || held[0] != "editor" {
		t.Fatalf("expected [editor], got %v", held)
	}

	// revoking an unheld role is a no-op, not an error
	resp = webtest.Request(t, app, http.MethodPost, revokePath(alice.ID), "", map[string]string{
		"role": "writer",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK on repeated revoke, got %d", resp.StatusCode)
	}
}

func TestGive_RoleErrors(t *testing.T) {
	db := webtest.NewDB(t)
	cfg := webtest.NewConfig()
	app := webtest.NewApp(db)

	webtest.InitSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("failed to init handler: %v", err)
	}

	alice := webtest.CreateUser(t, db, "alice")

	tests := []struct {
		name string
		role string
		want string
	}{
		{name: "empty role", role: "", want: EmptyRoleMsg},
		{name: "unknown literal", role: "owner", want: InvalidRoleMsg},
		{name: "case sensitive", role: "Writer", want: InvalidRoleMsg},
		{name: "padded literal", role: " writer", want: InvalidRoleMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := webtest.Request(t, app, http.MethodPost, givePath(alice.ID), "", map[string]string{
				"role": tt.role,
			})

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400 Bad Request, got %d", resp.StatusCode)
			}

			body := webtest.DecodeBody(t, resp)
			if body["role"] != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, body)
			}
		})
	}
}

func TestGive_UnknownUser(t *testing.T) {
	db := webtest.NewDB(t)
	cfg := webtest.NewConfig()
	app := webtest.NewApp(db)

	webtest.InitSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("failed to init handler: %v", err)
	}

	resp := webtest.Request(t, app, http.MethodPost, givePath(4242), "", map[string]string{
		"role": "writer",
	})

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 Not Found, got %d", resp.StatusCode)
	}
}
