package app

import (
	"cattletrack-backend/internal/auth"
	"cattletrack-backend/internal/cattle"
	"cattletrack-backend/internal/config"
	"cattletrack-backend/internal/dashboard"
	"cattletrack-backend/internal/database"
	"cattletrack-backend/internal/emails"
	"cattletrack-backend/internal/expenses"
	"cattletrack-backend/internal/feed"
	"cattletrack-backend/internal/middleware"
	"cattletrack-backend/internal/milk"
	"cattletrack-backend/internal/status"
	"cattletrack-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. The DB and Redis clients are returned so main can verify
// connectivity before listening.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS before session so preflights never touch Redis.
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	// Status pages, no auth.
	var dbPinger status.DBPinger
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			dbPinger = sqlDB
		}
	}
	statusHandlers := &status.Handlers{
		Rdb:            rdb,
		DB:             dbPinger,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", statusHandlers.Dashboard)
	app.Get("/reset", statusHandlers.Reset)
	app.Get("/health/json", statusHandlers.JSON)
	app.Get("/health/errors", statusHandlers.Errors)

	var mailer emails.Sender
	if cfg.SendinblueAPIKey != "" {
		mailer = &emails.BrevoClient{
			APIKey:   cfg.SendinblueAPIKey,
			MailFrom: cfg.MailFrom,
		}
	}

	// Auth routes, public.
	authHandlers := &auth.Handlers{
		Service:  &auth.Service{DB: db, Rdb: rdb, Mailer: mailer},
		Config:   sessionCfg,
		Verifier: &auth.GoogleVerifier{ClientID: cfg.GoogleClientID},
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", authHandlers.Register)
	authGroup.Post("/send-code", authHandlers.SendCode)
	authGroup.Post("/verify-code", authHandlers.VerifyCode)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Post("/google", authHandlers.GoogleLogin)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	if db != nil {
		userHandlers := &users.Handlers{Service: &users.Service{DB: db, Rdb: rdb}, Config: sessionCfg}
		userGroup := app.Group("/api/v1/users", middleware.RequireAuth())
		userGroup.Put("/profile", userHandlers.UpdateProfile)
		userGroup.Post("/change-password", userHandlers.ChangePassword)

		cattleHandlers := &cattle.Handlers{Service: &cattle.Service{DB: db}}
		cattleGroup := app.Group("/api/v1/cattle", middleware.RequireAuth())
		cattleGroup.Post("/", cattleHandlers.Create)
		cattleGroup.Get("/", cattleHandlers.List)
		cattleGroup.Get("/:id", cattleHandlers.Get)
		cattleGroup.Put("/:id", cattleHandlers.Update)
		cattleGroup.Delete("/:id", cattleHandlers.Delete)
		cattleGroup.Post("/:id/filter", cattleHandlers.Filter)
		cattleGroup.Get("/:id/summary", cattleHandlers.Summary)
		cattleGroup.Post("/:id/health", cattleHandlers.AddHealth)
		cattleGroup.Get("/:id/health", cattleHandlers.ListHealth)
		cattleGroup.Get("/:id/report", cattleHandlers.Report)

		milkHandlers := &milk.Handlers{Service: &milk.Service{DB: db}}
		milkGroup := app.Group("/api/v1/milk", middleware.RequireAuth())
		milkGroup.Get("/summary", milkHandlers.Summary)
		milkGroup.Get("/chart", milkHandlers.Chart)
		milkGroup.Post("/report", milkHandlers.Report)
		milkGroup.Get("/", milkHandlers.List)
		milkGroup.Post("/", milkHandlers.Add)
		milkGroup.Put("/:id", milkHandlers.Update)
		milkGroup.Delete("/:id", milkHandlers.Delete)

		feedHandlers := &feed.Handlers{Service: &feed.Service{DB: db}}
		feedGroup := app.Group("/api/v1/feed", middleware.RequireAuth())
		feedGroup.Get("/inventory", feedHandlers.Inventory)
		feedGroup.Post("/stock", feedHandlers.UpsertStock)
		feedGroup.Get("/stock-value", feedHandlers.StockValue)
		feedGroup.Post("/usage", feedHandlers.AddUsage)
		feedGroup.Get("/usage", feedHandlers.ListUsage)
		feedGroup.Put("/usage/:id", feedHandlers.UpdateUsage)
		feedGroup.Delete("/usage/:id", feedHandlers.DeleteUsage)
		feedGroup.Get("/chart", feedHandlers.Chart)
		feedGroup.Get("/alerts", feedHandlers.Alerts)

		expenseHandlers := &expenses.Handlers{Service: &expenses.Service{DB: db}}
		expenseGroup := app.Group("/api/v1/expenses", middleware.RequireAuth())
		expenseGroup.Get("/metrics", expenseHandlers.Metrics)
		expenseGroup.Get("/cashflow", expenseHandlers.Cashflow)
		expenseGroup.Get("/transactions", expenseHandlers.Transactions)
		expenseGroup.Get("/breakdown", expenseHandlers.Breakdown)
		expenseGroup.Get("/report", expenseHandlers.Report)
		expenseGroup.Post("/", expenseHandlers.Add)

		dashHandlers := &dashboard.Handlers{Service: &dashboard.Service{DB: db, Rdb: rdb}}
		dashGroup := app.Group("/api/v1/dashboard", middleware.RequireAuth())
		dashGroup.Get("/", dashHandlers.Get)
		dashGroup.Get("/activity", dashHandlers.Activity)
		dashGroup.Get("/alerts", dashHandlers.Alerts)
	}

	return app, db, rdb, nil
}
