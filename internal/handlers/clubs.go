package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/clubs/internal/navigator"
)

func SelectClubHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		if err := r.visitor.SelectClub(c.Params("id")); err != nil {
			if errors.Is(err, navigator.ErrUnknownClub) {
				return c.Status(fiber.StatusNotFound).SendString("Club not found")
			}
			return c.Status(fiber.StatusInternalServerError).SendString("Error selecting club")
		}
		return site.done(c, r)
	})
}

func GoHomeHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		r.visitor.GoHome()
		return site.done(c, r)
	})
}

func OpenLearnMoreHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		r.visitor.OpenLearnMore()
		return site.done(c, r)
	})
}

func CloseLearnMoreHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		r.visitor.CloseLearnMore()
		return site.done(c, r)
	})
}
