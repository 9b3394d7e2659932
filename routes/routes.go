package routes

import (
	"jadwali_go/controllers"
	"jadwali_go/services"
	"jadwali_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, wsHub *websocket.Hub, store *services.TimetableStore, healthService *services.HealthService) {
	// Initialize controllers
	importController := controllers.NewTimetableImportController(store, wsHub)
	timetableController := controllers.NewTimetableController(store)
	generateController := controllers.NewScheduleGenerateController(store)
	exportController := controllers.NewScheduleExportController(store, services.NewExportArchiveService())
	spanController := controllers.NewCanonicalSpanController(wsHub)
	healthController := controllers.NewHealthController(healthService)
	wsController := controllers.NewWebSocketController(wsHub)

	app.Get("/health", healthController.GetHealthStatus)

	// API group
	api := app.Group("/api")

	// Timetable import and inspection
	timetables := api.Group("/timetables")
	timetables.Post("/import", importController.Import)
	timetables.Get("/", timetableController.ListUploads)
	timetables.Get("/:uploadId/catalog", timetableController.GetCatalog)
	timetables.Get("/:uploadId/entries", timetableController.GetEntries)

	// Personalized schedule assembly
	schedules := api.Group("/schedules")
	schedules.Post("/:uploadId/generate", generateController.Generate)
	schedules.Post("/:uploadId/export", exportController.Export)

	// Canonical span administration
	spans := api.Group("/canonical-spans")
	spans.Get("/", spanController.List)
	spans.Put("/", spanController.Upsert)
	spans.Delete("/:courseCode", spanController.Delete)

	// WebSocket routes
	api.Get("/ws/stats", wsController.GetWebSocketStats)

	// WebSocket connection endpoint - use websocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		// IsWebSocketUpgrade returns true if the client
		// requested upgrade to the WebSocket protocol.
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.WebSocketHandler())
}

// SetupStaticRoutes configures static file serving
func SetupStaticRoutes(app *fiber.App) {
	// Serve static files if needed
	app.Static("/", "./public")
}
