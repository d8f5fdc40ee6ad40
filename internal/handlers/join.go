package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/clubs/internal/joinform"
	"github.com/jjenkins/clubs/internal/model"
	"github.com/jjenkins/clubs/internal/navigator"
	"github.com/jjenkins/clubs/internal/templates"
)

var joinFields = []string{
	model.FieldFirstName,
	model.FieldLastName,
	model.FieldEmail,
	model.FieldPhone,
	model.FieldStudentID,
	model.FieldGrade,
	model.FieldExperience,
	model.FieldMotivation,
}

func RequestJoinHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		if _, err := r.visitor.RequestJoin(); err != nil {
			if errors.Is(err, navigator.ErrNoClub) {
				return c.Status(fiber.StatusConflict).SendString("No club selected")
			}
			return c.Status(fiber.StatusInternalServerError).SendString("Error opening join form")
		}
		return site.done(c, r)
	})
}

// JoinFieldHandler records an edit to the join form. HTMX requests get the
// field's error slot back, cleared by the edit.
func JoinFieldHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		form := r.visitor.Join()
		if form == nil {
			return c.Status(fiber.StatusConflict).SendString("Join form is not open")
		}

		field := c.Get("HX-Trigger-Name")
		if field != "" {
			if err := form.Set(field, c.FormValue(field)); err != nil {
				return c.Status(fiber.StatusBadRequest).SendString("Unknown field")
			}
		} else {
			setPosted(c, joinFields, form.Set)
		}

		if isHTMX(c) && field != "" {
			return render(c, fiber.StatusOK, templates.FieldError(field, form.View().Errors.Get(field)))
		}
		return site.done(c, r)
	})
}

// JoinSubmitHandler validates and sends the application. The request blocks
// until the endpoint answers.
func JoinSubmitHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		form := r.visitor.Join()
		if form == nil {
			return site.renderJoin(c, r, fiber.StatusConflict)
		}
		if club := c.FormValue(model.FieldClub); club != "" && club != form.ClubID() {
			site.Logger.Info("stale join form posted",
				zap.String("posted", club),
				zap.String("open", form.ClubID()))
			return site.renderJoin(c, r, fiber.StatusConflict)
		}

		setPosted(c, joinFields, form.Set)

		err := form.Submit(c.UserContext())
		switch {
		case err == nil:
			return site.done(c, r)
		case errors.Is(err, joinform.ErrInvalid):
			return site.renderJoin(c, r, fiber.StatusUnprocessableEntity)
		case errors.Is(err, joinform.ErrInFlight), errors.Is(err, joinform.ErrUnmounted):
			return site.renderJoin(c, r, fiber.StatusConflict)
		default:
			// the form keeps its draft and shows the failure notice
			return site.renderJoin(c, r, fiber.StatusBadGateway)
		}
	})
}

// renderJoin answers a join form request that did not succeed
func (s *Site) renderJoin(c *fiber.Ctx, r *request, status int) error {
	if isHTMX(c) {
		if form := r.visitor.Join(); form != nil {
			return render(c, status, templates.JoinForm(form.View()))
		}
		c.Set("HX-Redirect", "/")
		return c.SendStatus(status)
	}
	return s.renderPage(c, r, status)
}

// setPosted applies every posted value among fields
func setPosted(c *fiber.Ctx, fields []string, set func(field, value string) error) {
	args := c.Request().PostArgs()
	for _, field := range fields {
		if args.Has(field) {
			_ = set(field, c.FormValue(field))
		}
	}
}
