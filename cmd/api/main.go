package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anjiri1684/membership_network/cache"
	config "github.com/anjiri1684/membership_network/configs"
	"github.com/anjiri1684/membership_network/database"
	"github.com/anjiri1684/membership_network/events"
	"github.com/anjiri1684/membership_network/handlers"
	"github.com/anjiri1684/membership_network/jobs"
	applogger "github.com/anjiri1684/membership_network/logger"
	"github.com/anjiri1684/membership_network/metrics"
	"github.com/anjiri1684/membership_network/middleware"
	"github.com/anjiri1684/membership_network/notifications"
	"github.com/anjiri1684/membership_network/repositories"
	"github.com/anjiri1684/membership_network/routes"
	"github.com/anjiri1684/membership_network/services"
	"github.com/anjiri1684/membership_network/utils"
	"github.com/anjiri1684/membership_network/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 Failed to load configuration: %v", err)
	}
	l := applogger.New(applogger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	if err := run(cfg, l); err != nil {
		l.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, l *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	l.Info("✅ Database connected successfully", "driver", cfg.DBDriver)
	if err := database.Migrate(db); err != nil {
		return err
	}
	l.Info("✅ Database migration successful")

	users := repositories.NewUserRepository(db)
	groups := repositories.NewGroupRepository(db)
	profiles := repositories.NewProfileRepository(db)
	referrals := repositories.NewReferralRepository(db)
	intentions := repositories.NewIntentionRepository(db)

	if err := database.SeedAdmin(ctx, users, cfg, l); err != nil {
		return err
	}

	var denylist cache.Denylist
	if cfg.RedisURL != "" {
		redisDenylist, err := cache.NewRedisDenylist(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisDenylist.Close()
		denylist = redisDenylist
		l.Info("token denylist backed by Redis")
	} else {
		denylist = cache.NewMemoryDenylist()
		l.Warn("REDIS_URL not set, token denylist is process-local")
	}

	var publisher events.Publisher = events.LogPublisher{Logger: l}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		l.Info("publishing domain events to Kafka", "topic", cfg.KafkaTopic)
	}

	m := metrics.New()
	hub := websocket.NewHub(l)
	mailer := notifications.NewMailer(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName, l)
	notifier := notifications.NewNotifier(mailer, hub, cfg.FrontendURL, l)
	issuer := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn)

	intentionService := services.NewIntentionService(intentions, notifier, publisher, m, cfg.IntentionTokenTTL, l)

	h := &handlers.Handler{
		Auth:          services.NewAuthService(users, issuer, denylist, m, l),
		Users:         services.NewUserService(users, notifier, publisher, l),
		Groups:        services.NewGroupService(groups),
		Profiles:      services.NewProfileService(profiles, intentions, profiles, publisher, m, l),
		Referrals:     services.NewReferralService(referrals, users, notifier, publisher, m, l),
		Intentions:    intentionService,
		Reports:       services.NewReportService(referrals, services.ChromePDFRenderer{}),
		Authenticator: middleware.NewAuthenticator(issuer, users, denylist, l),
		Hub:           hub,
		Logger:        l,
	}
	if cfg.CloudinaryURL != "" {
		signer, err := handlers.NewUploadSigner(cfg.CloudinaryURL)
		if err != nil {
			return err
		}
		h.Uploads = signer
	} else {
		l.Warn("CLOUDINARY_URL not set, upload signatures disabled")
	}

	c := cron.New()
	if err := jobs.Schedule(c, jobs.NewIntentionExpiryJob(intentionService, l)); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()
	l.Info("✅ Cron job for intention token expiry scheduled successfully.")

	app := newApp(cfg, h, m, l)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		l.Info("✅ Server is running", "port", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("shutting down server")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newApp(cfg *config.Config, h *handlers.Handler, m *metrics.Metrics, l *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       cfg.AppName,
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			l.Error("unhandled request error", "error", err, "path", c.Path(), "method", c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization, Content-Disposition",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(m.Middleware())

	routes.PublicRoutes(app, cfg.AppName, m)
	routes.AuthRoutes(app, h)
	routes.UserRoutes(app, h)
	routes.GroupRoutes(app, h)
	routes.ProfileRoutes(app, h)
	routes.ReferralRoutes(app, h)
	routes.AdminRoutes(app, h)
	routes.UploadRoutes(app, h)
	routes.RealtimeRoutes(app, h)

	return app
}
