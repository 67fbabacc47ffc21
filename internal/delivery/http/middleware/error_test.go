package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"skill-hire/internal/domain/user"

	"github.com/gofiber/fiber/v3"
)

type envelope struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func newErrorApp(h fiber.Handler, mw ...fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(log.New(io.Discard, "", 0)).Middleware())
	handlers := make([]any, 0, len(mw)+1)
	for _, m := range mw {
		handlers = append(handlers, m)
	}
	handlers = append(handlers, h)
	app.Get("/x", handlers[0], handlers[1:]...)
	return app
}

func getEnvelope(t *testing.T, app *fiber.App) (int, envelope) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, env
}

func TestErrorMiddleware_ClientErrorKeepsMessage(t *testing.T) {
	app := newErrorApp(func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusConflict, "Already applied to this job", nil, errors.New("duplicate key"))
	})

	status, env := getEnvelope(t, app)
	if status != fiber.StatusConflict || env.Status != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d/%d", status, env.Status)
	}
	if env.Message != "Already applied to this job" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestErrorMiddleware_ServerErrorHidesCauseKeepsData(t *testing.T) {
	app := newErrorApp(func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusBadGateway, "upstream exploded", fiber.Map{"recorded": 1}, errors.New("secret detail"))
	})

	status, env := getEnvelope(t, app)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if env.Message != "internal server error" {
		t.Fatalf("expected generic message, got %q", env.Message)
	}
	if env.Data["recorded"] != float64(1) {
		t.Fatalf("expected data passed through, got %v", env.Data)
	}
}

func TestErrorMiddleware_UnavailableKeepsStatus(t *testing.T) {
	app := newErrorApp(func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusServiceUnavailable, "storage down", nil, nil)
	})

	status, env := getEnvelope(t, app)
	if status != fiber.StatusServiceUnavailable || env.Message != "service unavailable" {
		t.Fatalf("expected 503 service unavailable, got %d %q", status, env.Message)
	}
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	app := newErrorApp(func(c fiber.Ctx) error {
		panic("boom")
	})

	status, env := getEnvelope(t, app)
	if status != fiber.StatusInternalServerError || env.Message != "internal server error" {
		t.Fatalf("expected 500, got %d %q", status, env.Message)
	}
}

func TestRequireRole(t *testing.T) {
	setRole := func(role user.Role) fiber.Handler {
		return func(c fiber.Ctx) error {
			c.Locals(CtxRoleKey, role)
			return c.Next()
		}
	}
	ok := func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": 200, "message": "ok"})
	}

	status, _ := getEnvelope(t, newErrorApp(ok, setRole(user.RoleEmployer), RequireRole(user.RoleEmployer)))
	if status != fiber.StatusOK {
		t.Fatalf("employer: expected 200, got %d", status)
	}

	status, env := getEnvelope(t, newErrorApp(ok, setRole(user.RoleEmployee), RequireRole(user.RoleEmployer)))
	if status != fiber.StatusForbidden || env.Message != "Forbidden" {
		t.Fatalf("employee: expected 403 Forbidden, got %d %q", status, env.Message)
	}

	status, _ = getEnvelope(t, newErrorApp(ok, RequireRole(user.RoleEmployee)))
	if status != fiber.StatusForbidden {
		t.Fatalf("no role: expected 403, got %d", status)
	}
}

func TestBearerTokenFromHeader(t *testing.T) {
	cases := map[string]bool{
		"Bearer abc": true,
		"bearer abc": true,
		"Bearer ":    false,
		"Basic abc":  false,
		"":           false,
		"abc":        false,
	}
	for header, want := range cases {
		if _, got := BearerToken(header); got != want {
			t.Fatalf("%q: expected %v, got %v", header, want, got)
		}
	}
}
