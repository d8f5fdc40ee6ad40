package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/clubs/internal/catalog"
	"github.com/jjenkins/clubs/internal/config"
	"github.com/jjenkins/clubs/internal/handlers"
	applog "github.com/jjenkins/clubs/internal/logger"
	"github.com/jjenkins/clubs/internal/service"
	"github.com/jjenkins/clubs/internal/store"
	"github.com/jjenkins/clubs/internal/visitor"
)

const defaultPort = "8080"

var (
	port        string
	catalogPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the club directory web server",
	Long: `Start the web server for the club directory.

Examples:
  # Serve the embedded catalog on :8080 with in-memory sessions
  ./clubs serve

  # Serve a custom catalog and keep sessions in Redis
  CLUBS_SESSION_BACKEND=redis ./clubs serve --catalog clubs.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", defaultPort, "Port to run the server on")
	serveCmd.Flags().StringVar(&catalogPath, "catalog", "", "Clubs YAML file (default: embedded catalog)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Flags win over config; PORT is honoured when the flag was left alone
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	} else if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.Server.Port = envPort
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}

	log, err := applog.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", zap.Int("clubs", cat.Len()), zap.String("source", sourceName(cfg.Catalog.Path)))

	storage, cleanup, err := sessionStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := visitor.NewRegistry(visitor.Deps{
		Catalog:          cat,
		JoinSubmitter:    joinSubmitter(cfg, log),
		ContactSubmitter: contactSubmitter(cfg, log),
		Token:            cfg.Submit.Token,
		AutoClose:        cfg.Submit.AutoClose,
		Logger:           log,
	})
	go registry.Run(ctx, cfg.Session.SweepInterval, cfg.Session.VisitorIdle)

	sessions := session.New(session.Config{
		Storage:        storage,
		Expiration:     cfg.Session.Expiration,
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		KeyGenerator:   uuid.NewString,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})

	app := fiber.New(fiber.Config{
		AppName:               "Oakridge Clubs",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	handlers.Register(app, &handlers.Site{
		Catalog:  cat,
		Registry: registry,
		Sessions: sessions,
		Stats:    service.NewStatsService(cat).Calculate(),
		Logger:   log,
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("starting server", zap.String("port", cfg.Server.Port), zap.String("sessions", cfg.Session.Backend))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// sessionStorage picks the fiber session backend. A nil storage keeps sessions in memory.
func sessionStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (fiber.Storage, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendPostgres:
		db, err := store.NewDB(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		sessions := store.NewSessionStore(db)
		if err := sessions.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		go purgeExpired(ctx, sessions, cfg.Session.SweepInterval, log)
		return sessions, func() { sessions.Close() }, nil

	case config.BackendRedis:
		sessions, err := store.NewRedisStore(ctx, store.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return sessions, func() { sessions.Close() }, nil

	default:
		return nil, func() {}, nil
	}
}

func purgeExpired(ctx context.Context, sessions *store.SessionStore, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				log.Warn("failed to purge expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}

func joinSubmitter(cfg *config.Config, log *zap.Logger) service.Submitter {
	if cfg.Submit.JoinEndpoint == "" {
		log.Warn("no join endpoint configured, applications are only logged")
		return service.NewLogSubmitter("join", log)
	}
	return service.NewScriptClient(cfg.Submit.JoinEndpoint, log)
}

func contactSubmitter(cfg *config.Config, log *zap.Logger) service.Submitter {
	if cfg.Submit.ContactEndpoint == "" {
		log.Warn("no contact endpoint configured, inquiries are only logged")
		return service.NewLogSubmitter("contact", log)
	}
	return service.NewFormHostClient(cfg.Submit.ContactEndpoint, cfg.Submit.ContactFormName, log)
}
