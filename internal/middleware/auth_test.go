package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"go-negotiation/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(skipAuth bool) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", AuthMiddleware(skipAuth), func(c *fiber.Ctx) error {
		claims := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		return c.JSON(claims)
	})
	app.Get("/audit", AuthMiddleware(skipAuth), RequireAnyRole("auditor"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	resp, err := newTestApp(false).Test(httptest.NewRequest("GET", "/whoami", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	utils.SetSecret("middleware-test")
	token, _ := utils.GenerateToken("u-1", []string{"auditor"}, time.Hour)

	req := httptest.NewRequest("GET", "/audit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newTestApp(false).Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRequireAnyRoleForbidsOtherRoles(t *testing.T) {
	req := httptest.NewRequest("GET", "/audit", nil)
	req.Header.Set(DevRolesHeader, "legal, director")
	resp, err := newTestApp(true).Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}
