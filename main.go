package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/config"
	"github.com/Sujan7036/friends-momo-sub001/events"
	"github.com/Sujan7036/friends-momo-sub001/handlers"
	"github.com/Sujan7036/friends-momo-sub001/mailer"
	"github.com/Sujan7036/friends-momo-sub001/middleware"
	"github.com/Sujan7036/friends-momo-sub001/pkg/logging"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/routes"
	"github.com/Sujan7036/friends-momo-sub001/service"
	"github.com/Sujan7036/friends-momo-sub001/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	seed := flag.Bool("seed", false, "create default settings, the admin account and a sample menu, then exit")
	flag.Parse()

	logging.Setup()
	cfg := config.Load()
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDatabase(cfg.Database, cfg.Debug)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := config.Migrate(db); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if *seed {
		if err := config.Seed(ctx, db, cfg); err != nil {
			slog.Error("Seeding failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database seeded")
		return
	}

	// Repositories
	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	items := repository.NewMenuItemRepository(db)
	orders := repository.NewOrderRepository(db)
	reservations := repository.NewReservationRepository(db)
	settingsRepo := repository.NewSettingRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Sessions live in Redis when configured, otherwise in process memory
	var store session.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("Failed to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.Session.TTL)
		slog.Info("Using Redis session store", "addr", cfg.Redis.Addr)
	} else {
		store = session.NewMemoryStore(cfg.Session.TTL)
		slog.Warn("REDIS_ADDR not set; sessions are kept in memory")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer kp.Close()
		publisher = kp
		slog.Info("Publishing events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.Mail.Host != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			FromName: cfg.Mail.FromName,
		})
	}

	// Services
	settingsSvc := service.NewSettingsService(settingsRepo, cfg.Pricing)
	if err := settingsSvc.EnsureDefaults(ctx); err != nil {
		slog.Error("Failed to write default settings", "error", err)
		os.Exit(1)
	}
	activity := service.NewActivityService(activityRepo)
	auth := service.NewAuthService(users, activity, mail, cfg.AppURL, cfg.Session.RememberTTL)

	sessions := &middleware.Sessions{
		Store:      store,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
		Remember:   auth,
	}
	jwt := &middleware.JWT{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL}

	h := &handlers.Handler{
		Auth:         auth,
		Users:        service.NewUserService(users, activity),
		Menu:         service.NewMenuService(categories, items, activity),
		Cart:         service.NewCartService(items, settingsSvc),
		Orders:       service.NewOrderService(orders, items, settingsSvc, activity, publisher),
		Reservations: service.NewReservationService(reservations, settingsSvc, activity, publisher, cfg.AppURL),
		Settings:     settingsSvc,
		Activity:     activity,
		Dashboard:    service.NewDashboardService(orders, reservations, users, items),
		Sessions:     sessions,
		JWT:          jwt,
	}

	metrics := middleware.NewMetrics()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(sessions.Middleware())
	r.Use(middleware.Identify(jwt))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": cfg.AppName,
		})
	})
	r.GET("/metrics", metrics.Handler())

	routes.SetupRoutes(r, h)

	slog.Info("Server starting", "url", "http://localhost:"+cfg.Port, "env", cfg.AppEnv)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
