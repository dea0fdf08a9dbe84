package routes

import (
	"talent-match/internal/delivery/http/handler"
	"talent-match/internal/delivery/http/middleware"
	"talent-match/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	Health   *handler.HealthHandler
	Match    *handler.MatchHandler
	Backfill *handler.BackfillHandler
	Weights  *handler.WeightsHandler
	Taxonomy *handler.TaxonomyHandler
	WS       *ws.Handler

	AccessLog *middleware.AccessLogMiddleware
	Errors    *middleware.ErrorMiddleware
	Tenant    *middleware.TenantMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	app.Use(r.AccessLog.Middleware())
	app.Use(r.Errors.Middleware())

	r.Health.RegisterRoutes(app)
	if r.WS != nil {
		app.Get("/ws", r.WS.HandleEventsWS)
	}

	api := app.Group("/api/v1", r.Tenant.Middleware())
	r.Match.RegisterRoutes(api)
	r.Backfill.RegisterRoutes(api)
	r.Weights.RegisterRoutes(api)
	r.Taxonomy.RegisterRoutes(api)
}
