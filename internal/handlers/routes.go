package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register mounts every route on app
func Register(app *fiber.App, site *Site) {
	app.Get("/", HomeHandler(site))

	// Navigation
	app.Post("/clubs/:id", SelectClubHandler(site))
	app.Post("/home", GoHomeHandler(site))

	// Join form
	app.Post("/join", RequestJoinHandler(site))
	app.Post("/join/field", JoinFieldHandler(site))
	app.Post("/join/submit", JoinSubmitHandler(site))

	// Overlays
	app.Get("/contact", ContactHandler(site))
	app.Post("/contact/open", OpenContactHandler(site))
	app.Post("/contact/close", CloseContactHandler(site))
	app.Post("/contact/field", ContactFieldHandler(site))
	app.Post("/contact/submit", ContactSubmitHandler(site))
	app.Post("/learn-more/open", OpenLearnMoreHandler(site))
	app.Post("/learn-more/close", CloseLearnMoreHandler(site))

	// Operations
	app.Get("/healthz", HealthHandler(site))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func HealthHandler(site *Site) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"clubs":    site.Catalog.Len(),
			"visitors": site.Registry.Len(),
		})
	}
}
