package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger логирует запросы; пробы /health/* пропускаются, чтобы не засорять лог.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Next: func(c fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/health/")
		},
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | ${bytesSent}B | Content-Type: ${reqHeader:Content-Type}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
