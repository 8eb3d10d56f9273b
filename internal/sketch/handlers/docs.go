package handlers

import (
	_ "embed"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// API Docs
// ============================================================

//go:embed docs/openapi.yaml
var openapiSpec []byte

// SwaggerSpec отдаёт OpenAPI YAML.
func SwaggerSpec(c fiber.Ctx) error {
	c.Type("yaml")
	return c.Send(openapiSpec)
}

// swaggerPage показывает встроенную спецификацию; версия swagger-ui зафиксирована.
const swaggerPage = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>Floorplan Sketch API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
  SwaggerUIBundle({ url: '/docs/openapi.yaml', dom_id: '#swagger-ui', tryItOutEnabled: true });
</script>
</body>
</html>`

// SwaggerUI отдаёт страницу Swagger UI для /docs/openapi.yaml.
func SwaggerUI(c fiber.Ctx) error {
	c.Type("html")
	return c.SendString(swaggerPage)
}
