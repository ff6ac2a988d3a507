package post

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	postctl "github.com/inkpress/inkpress/internal/db/controller/post"
	"github.com/inkpress/inkpress/internal/db/controller/userrole"
	"github.com/inkpress/inkpress/internal/roles"
	"github.com/inkpress/inkpress/internal/web/webtest"
)

func newHandler(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := webtest.NewDB(t)
	cfg := webtest.NewConfig()
	app := webtest.NewApp(db)

	webtest.InitSessionStore()

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("failed to init handler: %v", err)
	}

	return app, db
}

func newBody(t *testing.T, db *gorm.DB) uint64 {
	t.Helper()

	body, err := postctl.CreateBody(db, "article text")
	if err != nil {
		t.Fatalf("failed to create body: %v", err)
	}

	return body.ID
}

func TestPost_OwnerWithoutContentRole(t *testing.T) {
	app, db := newHandler(t)

	reader := webtest.CreateUser(t, db, "reader", "editor", "moderator")
	bodyID := newBody(t, db)

	resp := webtest.Request(t, app, http.MethodPost, Path, "", map[string]any{
		"owner": reader.ID,
		"title": "hello",
		"body":  bodyID,
	})

	// a validation failure on the owner field, not a permission denial
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 Bad Request, got %d", resp.StatusCode)
	}

	out := webtest.DecodeBody(t, resp)
	if _, ok := out["owner"]; !ok {
		t.Fatalf("expected error keyed by owner, got %v", out)
	}
}

func TestPost_GrantThenCreateSucceeds(t *testing.T) {
	app, db := newHandler(t)

	alice := webtest.CreateUser(t, db, "alice")
	bodyID := newBody(t, db)

	payload := map[string]any{
		"owner": alice.ID,
		"title": "hello",
		"body":  bodyID,
	}

	resp := webtest.Request(t, app, http.MethodPost, Path, "", payload)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 before grant, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	if _, err := userrole.Grant(db, alice.ID, roles.RoleWriter); err != nil {
		t.Fatalf("failed to grant writer: %v", err)
	}

	resp = webtest.Request(t, app, http.MethodPost, Path, "", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 after grant, got %d", resp.StatusCode)
	}

	out := webtest.DecodeBody(t, resp)
	if _, ok := out["id"]; !ok || len(out) != 1 {
		t.Fatalf("expected id-only response, got %v", out)
	}
}

func TestPost_MissingBody(t *testing.T) {
	app, db := newHandler(t)

	alice := webtest.CreateUser(t, db, "alice", "writer")

	resp := webtest.Request(t, app, http.MethodPost, Path, "", map[string]any{
		"owner": alice.ID,
		"title": "hello",
		"body":  4242,
	})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 Bad Request, got %d", resp.StatusCode)
	}

	out := webtest.DecodeBody(t, resp)
	if _, ok := out["body"]; !ok {
		t.Fatalf("expected error keyed by body, got %v", out)
	}
}

func TestPut_RevalidatesOwnership(t *testing.T) {
	app, db := newHandler(t)

	alice := webtest.CreateUser(t, db, "alice", "writer")
	bob := webtest.CreateUser(t, db, "bob")
	bodyID := newBody(t, db)

	created, err := postctl.Create(db, postctl.Attrs{OwnerID: alice.ID, Title: "hello", BodyID: bodyID})
	if err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	// handing the post to a non-writer fails on the owner field
	resp := webtest.Request(t, app, http.MethodPut, fmt.Sprintf("%s/%d", Path, created.ID), "", map[string]any{
		"owner": bob.ID,
		"title": "hello",
		"body":  bodyID,
	})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 Bad Request, got %d", resp.StatusCode)
	}

	out := webtest.DecodeBody(t, resp)
	if _, ok := out["owner"]; !ok {
		t.Fatalf("expected error keyed by owner, got %v", out)
	}
}

func TestGetListDelete(t *testing.T) {
	app, db := newHandler(t)

	alice := webtest.CreateUser(t, db, "alice", "writer")
	bodyID := newBody(t, db)

	created, err := postctl.Create(db, postctl.Attrs{OwnerID: alice.ID, Title: "hello", BodyID: bodyID})
	if err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	resp := webtest.Request(t, app, http.MethodGet, fmt.Sprintf("%s/%d", Path, created.ID), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}

	out := webtest.DecodeBody(t, resp)
	if out["title"] != "hello" || uint64(out["owner"].(float64)) != alice.ID {
		t.Fatalf("unexpected post view: %v", out)
	}

	resp = webtest.Request(t, app, http.MethodGet, Path, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}

	if got := webtest.DecodeList(t, resp); len(got) != 1 {
		t.Fatalf("expected 1 post, got %d", len(got))
	}

	resp = webtest.Request(t, app, http.MethodDelete, fmt.Sprintf("%s/%d", Path, created.ID), "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 No Content, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	if _, err := postctl.Get(db, created.ID); err == nil {
		t.Fatalf("expected post to be gone")
	}
}
