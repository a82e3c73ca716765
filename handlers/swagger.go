package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the hub API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Ipaporanga Hub API — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document for the hub resources. Products additionally accept
// a storeId equality filter on listing; stores expose per-id read and replace.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "Ipaporanga Hub API", "version": "v1.0.0" },
  "paths": {
    "/api/": { "get": { "summary": "API status", "responses": { "200": { "description": "status message" } } } },
    "/api/stores": {
      "post": { "summary": "Create a store", "responses": { "200": { "description": "store with id" }, "400": { "description": "validation error" } } },
      "get": { "summary": "List stores, newest first", "responses": { "200": { "description": "store array" } } }
    },
    "/api/stores/{id}": {
      "get": { "summary": "Fetch one store", "responses": { "200": { "description": "store" }, "404": { "description": "not found" } } },
      "put": { "summary": "Replace a store", "responses": { "200": { "description": "store" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a store", "responses": { "200": { "description": "ack message" } } }
    },
    "/api/products": {
      "post": { "summary": "Create a product", "responses": { "200": { "description": "product with id" } } },
      "get": { "summary": "List products, newest first", "parameters": [ { "name": "storeId", "in": "query", "schema": { "type": "string" } } ], "responses": { "200": { "description": "product array" } } }
    },
    "/api/products/{id}": { "delete": { "summary": "Delete a product", "responses": { "200": { "description": "ack message" } } } },
    "/api/news": {
      "post": { "summary": "Create a news entry", "responses": { "200": { "description": "news with id" } } },
      "get": { "summary": "List news, newest first", "responses": { "200": { "description": "news array" } } }
    },
    "/api/news/{id}": { "delete": { "summary": "Delete a news entry", "responses": { "200": { "description": "ack message" } } } },
    "/api/professionals": {
      "post": { "summary": "Create a professional", "responses": { "200": { "description": "professional with id" } } },
      "get": { "summary": "List professionals, newest first", "responses": { "200": { "description": "professional array" } } }
    },
    "/api/professionals/{id}": { "delete": { "summary": "Delete a professional", "responses": { "200": { "description": "ack message" } } } },
    "/api/trips": {
      "post": { "summary": "Create a trip", "responses": { "200": { "description": "trip with id" } } },
      "get": { "summary": "List trips by departure time", "responses": { "200": { "description": "trip array" } } }
    },
    "/api/trips/{id}": { "delete": { "summary": "Delete a trip", "responses": { "200": { "description": "ack message" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
