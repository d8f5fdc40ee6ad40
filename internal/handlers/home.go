package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/clubs/internal/navigator"
)

// HomeHandler renders the current screen. A success deep link starts the
// visitor over and, when it resolves, redirects to strip the query.
func HomeHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		params := url.Values{}
		for _, key := range []string{navigator.ParamClub, navigator.ParamSuccess} {
			if value := c.Query(key); value != "" {
				params.Set(key, value)
			}
		}

		if params.Has(navigator.ParamClub) && params.Get(navigator.ParamSuccess) == "true" {
			r.visitor = site.Registry.Replace(r.session.ID())
		}

		if r.visitor.Mount(params) {
			site.Logger.Info("deep link into join success",
				zap.String("club", params.Get(navigator.ParamClub)))
			if err := site.save(r); err != nil {
				site.Logger.Error("failed to persist navigation", zap.Error(err))
			}
			return c.Redirect("/", fiber.StatusSeeOther)
		}

		return site.renderPage(c, r, fiber.StatusOK)
	})
}
