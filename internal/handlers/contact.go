package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/clubs/internal/contactform"
	"github.com/jjenkins/clubs/internal/model"
	"github.com/jjenkins/clubs/internal/navigator"
	"github.com/jjenkins/clubs/internal/service"
	"github.com/jjenkins/clubs/internal/templates"
)

var contactFields = []string{
	model.FieldName,
	model.FieldEmail,
	model.FieldSubject,
	model.FieldMessage,
}

func ContactHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		if err := site.save(r); err != nil {
			site.Logger.Error("failed to persist navigation", zap.Error(err))
		}
		return render(c, fiber.StatusOK, templates.ContactModal(r.visitor.Contact.View()))
	})
}

// OpenContactHandler opens the contact overlay, about a club when one is posted
func OpenContactHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		if err := r.visitor.OpenContact(c.FormValue(model.FieldClub)); err != nil {
			if errors.Is(err, navigator.ErrUnknownClub) {
				return c.Status(fiber.StatusNotFound).SendString("Club not found")
			}
			return c.Status(fiber.StatusInternalServerError).SendString("Error opening contact form")
		}
		return site.contactDone(c, r, fiber.StatusOK)
	})
}

func CloseContactHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		r.visitor.CloseContact()
		return site.contactDone(c, r, fiber.StatusOK)
	})
}

func ContactFieldHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		if field := c.Get("HX-Trigger-Name"); field != "" {
			if err := r.visitor.Contact.Set(field, c.FormValue(field)); err != nil {
				return contactError(c, err)
			}
		} else {
			setPosted(c, contactFields, r.visitor.Contact.Set)
		}
		return site.contactDone(c, r, fiber.StatusOK)
	})
}

// ContactSubmitHandler validates and forwards an inquiry. Delivery problems are
// never shown to the visitor; only validation errors are.
func ContactSubmitHandler(site *Site) fiber.Handler {
	return site.withVisitor(func(c *fiber.Ctx, r *request) error {
		setPosted(c, contactFields, r.visitor.Contact.Set)

		err := r.visitor.Contact.Submit(c.UserContext(), c.FormValue(service.HoneypotField))
		switch {
		case err == nil:
			return site.contactDone(c, r, fiber.StatusOK)
		case errors.Is(err, contactform.ErrInvalid):
			return site.contactDone(c, r, fiber.StatusUnprocessableEntity)
		case errors.Is(err, contactform.ErrClosed), errors.Is(err, contactform.ErrInFlight),
			errors.Is(err, contactform.ErrAcknowledged):
			return site.contactDone(c, r, fiber.StatusConflict)
		default:
			site.Logger.Error("contact submission failed", zap.Error(err))
			return site.contactDone(c, r, fiber.StatusInternalServerError)
		}
	})
}

// contactDone answers with the overlay fragment for HTMX and the whole page otherwise
func (s *Site) contactDone(c *fiber.Ctx, r *request, status int) error {
	if status == fiber.StatusOK && !isHTMX(c) {
		return s.done(c, r)
	}
	if isHTMX(c) {
		if err := s.save(r); err != nil {
			s.Logger.Error("failed to persist navigation", zap.Error(err))
		}
		return render(c, status, templates.ContactModal(r.visitor.Contact.View()))
	}
	return s.renderPage(c, r, status)
}

func contactError(c *fiber.Ctx, err error) error {
	if errors.Is(err, contactform.ErrUnknownField) {
		return c.Status(fiber.StatusBadRequest).SendString("Unknown field")
	}
	return c.Status(fiber.StatusConflict).SendString("Contact form is not open")
}
