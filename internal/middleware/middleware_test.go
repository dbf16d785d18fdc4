package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tiendabot/storefront/internal/access"
	"github.com/tiendabot/storefront/internal/auth"
)

var testSecret = []byte("gateway-secret")

func TestGatewayAuth(t *testing.T) {
	app := fiber.New()
	app.Use(GatewayAuth(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		caller, ok := CallerFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "no caller")
		}
		return c.SendString(caller.ID)
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"not bearer", "Basic abc", fiber.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", fiber.StatusUnauthorized},
	}

	valid, err := auth.Sign(access.Caller{ID: "42", Roles: []string{access.RoleStaff}}, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	cases = append(cases, struct {
		name   string
		header string
		want   int
	}{"valid", "Bearer " + valid, fiber.StatusOK})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestMutationRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(callerKey, access.Caller{ID: c.Get("X-Caller")})
		return c.Next()
	})
	app.Use(MutationRateLimit(cache, 2))
	app.Post("/credit", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	send := func(caller string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/credit", nil)
		req.Header.Set("X-Caller", caller)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 2; i++ {
		if got := send("7"); got != fiber.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, got)
		}
	}
	if got := send("7"); got != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", got)
	}
	if got := send("8"); got != fiber.StatusOK {
		t.Fatalf("other caller should not be limited, got %d", got)
	}

	mr.FastForward(time.Minute + time.Second)
	if got := send("7"); got != fiber.StatusOK {
		t.Fatalf("window should reset, got %d", got)
	}
}

func TestRequestIDEchoesHeader(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(RequestIDFrom(c)) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(requestIDHeader); got != "req-1" {
		t.Fatalf("expected echoed id, got %q", got)
	}

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected generated id")
	}
}
