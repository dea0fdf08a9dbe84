package middleware

import "github.com/gofiber/fiber/v3"

// CtxTenantIDKey holds the tenant scope for the request. Empty means the
// shared, untenanted data set.
const CtxTenantIDKey = "tenant_id"

type TenantMiddleware struct{}

func NewTenantMiddleware() *TenantMiddleware {
	return &TenantMiddleware{}
}

func (m *TenantMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals(CtxTenantIDKey, c.Get("X-Tenant-ID"))
		return c.Next()
	}
}

// TenantID reads the tenant scope set by the middleware.
func TenantID(c fiber.Ctx) string {
	if v, ok := c.Locals(CtxTenantIDKey).(string); ok {
		return v
	}
	return ""
}
