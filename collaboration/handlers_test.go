package collaboration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	"potluck/collab"
	"potluck/db"
	"potluck/models"
	"potluck/mq"
	"potluck/testutil"
	"potluck/utils"
)

type fixture struct {
	recipes *db.MemoryRecipeStore
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{recipes: db.NewMemoryRecipeStore()}
	users := db.NewMemoryUserStore()
	for _, u := range []models.User{
		{ID: "owner", Email: "olive@example.com"},
		{ID: "zed", Email: "zed@example.com"},
	} {
		u := u
		if err := users.Insert(ctx, &u); err != nil {
			t.Fatal(err)
		}
	}
	clock := testutil.FixedClock()
	if err := f.recipes.Insert(ctx, &models.Recipe{ID: "r1", Title: "Stew", Owner: "owner", CreatedAt: clock.Now()}); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := collab.NewRegistry(f.recipes, users, clock, models.DefaultPermission, &mq.Recorder{}, logger)
	f.handler = NewHandler(f.recipes, registry, logger)
	return f
}

func call(h httprouter.Handle, method, actor, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if actor != "" {
		req = req.WithContext(utils.WithSession(req.Context(), &models.Session{UserID: actor}))
	}
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	return rec
}

func TestInviteCollaborator(t *testing.T) {
	f := newFixture(t)
	h := f.handler.InviteCollaborator

	rec := call(h, http.MethodPost, "owner", `{"recipeId":"r1","email":"zed@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"permission":"edit"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	tests := []struct {
		name  string
		actor string
		body  string
		want  int
		code  string
	}{
		{"again", "owner", `{"recipeId":"r1","email":"zed@example.com"}`, http.StatusConflict, "ALREADY_COLLABORATOR"},
		{"unknown email", "owner", `{"recipeId":"r1","email":"ghost@example.com"}`, http.StatusNotFound, "NOT_FOUND"},
		{"unknown recipe", "owner", `{"recipeId":"r9","email":"zed@example.com"}`, http.StatusNotFound, "NOT_FOUND"},
		{"not owner", "zed", `{"recipeId":"r1","email":"olive@example.com"}`, http.StatusForbidden, "FORBIDDEN"},
		{"no email", "owner", `{"recipeId":"r1"}`, http.StatusBadRequest, "INVALID"},
		{"no recipe", "owner", `{"email":"zed@example.com"}`, http.StatusBadRequest, "INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(h, http.MethodPost, tt.actor, tt.body)
			if rec.Code != tt.want || !strings.Contains(rec.Body.String(), tt.code) {
				t.Errorf("status = %d body %s, want %d %s", rec.Code, rec.Body.String(), tt.want, tt.code)
			}
		})
	}

	r, _ := f.recipes.FindByID(context.Background(), "r1")
	if len(r.Collaborators) != 1 {
		t.Errorf("Collaborators = %+v, want exactly zed", r.Collaborators)
	}
}

func TestPermissionsAndRemove(t *testing.T) {
	f := newFixture(t)
	call(f.handler.InviteCollaborator, http.MethodPost, "owner", `{"recipeId":"r1","email":"zed@example.com"}`)

	rec := call(f.handler.UpdatePermissions, http.MethodPatch, "owner", `{"recipeId":"r1","userId":"zed","permissions":"suggest"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("permissions status = %d, body %s", rec.Code, rec.Body.String())
	}
	r, _ := f.recipes.FindByID(context.Background(), "r1")
	if c, _ := r.Collaborator("zed"); c == nil || c.Permission != models.PermissionSuggest {
		t.Errorf("collaborator = %+v", c)
	}

	if rec := call(f.handler.UpdatePermissions, http.MethodPatch, "owner", `{"recipeId":"r1","userId":"zed","permissions":"admin"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad level status = %d, want 400", rec.Code)
	}
	if rec := call(f.handler.UpdatePermissions, http.MethodPatch, "zed", `{"recipeId":"r1","userId":"zed","permissions":"edit"}`); rec.Code != http.StatusForbidden {
		t.Errorf("self-promotion status = %d, want 403", rec.Code)
	}

	if rec := call(f.handler.RemoveCollaborator, http.MethodPost, "owner", `{"recipeId":"r1","userId":"zed"}`); rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := call(f.handler.RemoveCollaborator, http.MethodPost, "owner", `{"recipeId":"r1","userId":"zed"}`); rec.Code != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", rec.Code)
	}
}
