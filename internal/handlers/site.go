package handlers

import (
	"fmt"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"github.com/jjenkins/clubs/internal/catalog"
	"github.com/jjenkins/clubs/internal/navigator"
	"github.com/jjenkins/clubs/internal/service"
	"github.com/jjenkins/clubs/internal/templates"
	"github.com/jjenkins/clubs/internal/visitor"
)

// navKey is the session key holding the encoded navigation snapshot
const navKey = "nav"

// Site carries what every handler needs
type Site struct {
	Catalog  *catalog.Catalog
	Registry *visitor.Registry
	Sessions *session.Store
	Stats    service.DirectoryStats
	Logger   *zap.Logger
}

// request is the visitor bound to the current session
type request struct {
	visitor *visitor.Visitor
	session *session.Session
	created bool
}

// load resolves the session cookie to a live visitor. A visitor that is no
// longer in the registry is rebuilt from the stored snapshot.
func (s *Site) load(c *fiber.Ctx) (*request, error) {
	sess, err := s.Sessions.Get(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var snapshot *navigator.Snapshot
	if raw, ok := sess.Get(navKey).(string); ok && raw != "" {
		decoded, err := navigator.DecodeSnapshot(raw)
		if err != nil {
			s.Logger.Warn("discarding unreadable navigation snapshot", zap.Error(err))
		} else {
			snapshot = &decoded
		}
	}

	v, created := s.Registry.Get(sess.ID(), snapshot)
	return &request{visitor: v, session: sess, created: created}, nil
}

func (s *Site) save(r *request) error {
	encoded, err := r.visitor.Nav.Snapshot().Encode()
	if err != nil {
		return err
	}
	r.session.Set(navKey, encoded)
	if err := r.session.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// page builds the full page model for a visitor
func (s *Site) page(v *visitor.Visitor) templates.Page {
	p := templates.Page{
		Stats:   s.Stats,
		Clubs:   s.Catalog.All(),
		State:   v.Nav.State(),
		Contact: v.Contact.View(),
	}
	if p.State.View() == navigator.JoinForm {
		if form := v.Join(); form != nil {
			view := form.View()
			p.Join = &view
		} else {
			// a submission resolved between the two reads
			p.State = v.Nav.State()
			p.State.JoinFormOpen = false
		}
	}
	return p
}

func isHTMX(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

func render(c *fiber.Ctx, status int, component templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(component, templ.WithStatus(status)))
	return handler(c)
}

func (s *Site) renderPage(c *fiber.Ctx, r *request, status int) error {
	if err := s.save(r); err != nil {
		s.Logger.Error("failed to persist navigation", zap.Error(err))
	}
	return render(c, status, templates.Index(s.page(r.visitor)))
}

// done persists the navigation state and sends the browser back to the page
func (s *Site) done(c *fiber.Ctx, r *request) error {
	if err := s.save(r); err != nil {
		s.Logger.Error("failed to persist navigation", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Error saving session")
	}
	if isHTMX(c) {
		c.Set("HX-Redirect", "/")
		return c.SendStatus(fiber.StatusOK)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// withVisitor wraps a handler that needs the session's visitor
func (s *Site) withVisitor(h func(c *fiber.Ctx, r *request) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := s.load(c)
		if err != nil {
			s.Logger.Error("failed to resolve visitor", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading session")
		}
		return h(c, r)
	}
}
