package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"voicedoc/internal/auth"
	"voicedoc/internal/http/middleware"
	"voicedoc/internal/service"
)

// RegisterRoutes attaches the HTTP surface to the Fiber app. Everything
// under /records and /auth/me requires a bearer token; the download routes
// additionally accept the token as a query parameter.
func RegisterRoutes(app *fiber.App, db *sql.DB, authSvc auth.Service, recSvc service.RecordService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/login", Login(authSvc))
	app.Get("/auth/me", middleware.Auth(authSvc), Me())

	records := app.Group("/records", middleware.Auth(authSvc))
	records.Post("/", CreateRecord(recSvc))
	records.Get("/", ListRecords(recSvc))
	records.Get("/:id", GetRecord(recSvc))
	records.Patch("/:id", UpdateRecord(recSvc))
	records.Delete("/:id", DeleteRecord(recSvc))
	records.Post("/:id/regenerate-word", RegenerateDocument(recSvc))
	records.Get("/:id/download/audio", DownloadAudio(recSvc))
	records.Get("/:id/download/word", DownloadDocument(recSvc))
}
