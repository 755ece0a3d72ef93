package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wrenhq/wren-social-api/internal/config"
	"github.com/wrenhq/wren-social-api/internal/utils"
)

var startedAt = time.Now().UTC()

// HealthResponse is the liveness payload scraped by the platform monitor.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Service       string    `json:"service"`
	Environment   string    `json:"environment"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// HealthCheck reports process liveness. Dependency health is visible through
// /metrics instead, so this endpoint stays dependency-free and always fast.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		return utils.SendSuccess(c, "service healthy", HealthResponse{
			Status:        "ok",
			Timestamp:     now,
			Service:       cfg.AppName,
			Environment:   cfg.AppEnv,
			UptimeSeconds: int64(now.Sub(startedAt).Seconds()),
		})
	}
}
