package system

import (
	"context"
	"time"

	"go-negotiation/internal/common/api"
	"go-negotiation/internal/database"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type HealthApi struct {
	db  *database.MongodbDB
	log *zap.Logger
}

func NewHealthApi(db *database.MongodbDB, log *zap.Logger) api.Route {
	return &HealthApi{db: db, log: log}
}

// Setup registers health check route
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Check that the server is up and MongoDB answers
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.db.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.log.Warn("health check: database unreachable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": "down"})
	}
	return c.JSON(fiber.Map{"status": "ok", "database": "up"})
}
