package feed

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Register mounts the feed routes on a fiber app.
func Register(app *fiber.App, svc *Service) {
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"ok": true,
			"at": time.Now().UTC().Format(time.RFC3339),
		})
	})

	app.Get("/api/transactions", func(c *fiber.Ctx) error {
		q := Query{
			Q:        c.Query("q"),
			Status:   c.Query("status"),
			Type:     c.Query("type"),
			Page:     c.QueryInt("page", 1),
			PageSize: c.QueryInt("pageSize", defaultPageSize),
		}

		page, err := svc.Search(c.Context(), q)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
		}
		return c.JSON(page)
	})
}
