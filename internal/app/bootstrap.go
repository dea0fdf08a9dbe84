package app

import (
	"fmt"
	"strings"

	"talent-match/internal/config"
	"talent-match/internal/delivery/http/handler"
	"talent-match/internal/delivery/http/middleware"
	"talent-match/internal/delivery/http/routes"
	"talent-match/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap wires the full service and returns it with its cleanup func.
func Bootstrap(logger *zap.Logger, cfg config.Config) (*App, func(), error) {
	c, err := NewContainer(logger, cfg)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{
		AppName: cfg.App.AppName,
	})

	reg := &routes.Registry{
		Health:   handler.NewHealthHandler(c.Store),
		Match:    handler.NewMatchHandler(c.RankUC, c.WeightsUC),
		Backfill: handler.NewBackfillHandler(c.BackfillUC),
		Weights:  handler.NewWeightsHandler(c.WeightsUC),
		Taxonomy: handler.NewTaxonomyHandler(c.TaxonomyUC),
		WS:       ws.NewHandler(c.Hub, logger),

		AccessLog: middleware.NewAccessLogMiddleware(logger),
		Errors:    middleware.NewErrorMiddleware(logger),
		Tenant:    middleware.NewTenantMiddleware(),
	}
	reg.Register(f)

	return &App{Fiber: f, Container: c}, c.Close, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
