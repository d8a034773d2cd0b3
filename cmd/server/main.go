// Package main runs the back-office HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/venuedesk/backend/config"
	"github.com/venuedesk/backend/internal/auth"
	"github.com/venuedesk/backend/internal/customers"
	"github.com/venuedesk/backend/internal/events"
	"github.com/venuedesk/backend/internal/locations"
	"github.com/venuedesk/backend/internal/middleware"
	"github.com/venuedesk/backend/internal/organizations"
	"github.com/venuedesk/backend/internal/payments"
	"github.com/venuedesk/backend/internal/permissions"
	"github.com/venuedesk/backend/internal/places"
	"github.com/venuedesk/backend/internal/requests"
	"github.com/venuedesk/backend/internal/users"
	"github.com/venuedesk/backend/pkg/database"
	"github.com/venuedesk/backend/pkg/redis"
	"github.com/venuedesk/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	response.SetIncludeDetails(!cfg.IsProduction())

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnLifetimeMin) * time.Minute,
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis only backs the places response cache; the server runs without it.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}, logger)
		if err != nil {
			logger.Warn("redis disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	accessControl := permissions.Backoffice()
	superAdmin := permissions.NewSuperAdmin(cfg.SuperAdmin.UserIDs, cfg.SuperAdmin.Roles)

	// Organizations
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, orgRepo, jwtService, logger)

	// Users
	userRepo := users.NewRepository(pool)
	userHandler := users.NewHandler(userRepo, logger)

	// Customers
	customerRepo := customers.NewRepository(pool)
	customerHandler := customers.NewHandler(customerRepo, logger)

	// Payments
	paymentRepo := payments.NewRepository(pool)
	paymentHandler := payments.NewHandler(paymentRepo, logger)

	// Requests and the approval workflow
	requestRepo := requests.NewRepository(pool)
	workflow := requests.NewWorkflow(pool)
	requestHandler := requests.NewHandler(requestRepo, workflow, logger)

	// Locations and calendar events
	locationRepo := locations.NewRepository(pool)
	locationHandler := locations.NewHandler(locationRepo, logger)
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, logger)

	// Google Places proxy
	placesClient := places.NewClient(cfg.Places)
	placesCache := places.NewCache(rdb, cfg.Places.CacheTTLSec)
	placesHandler := places.NewHandler(placesClient, placesCache, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)
		api.POST("/auth/switch-organization", authHandler.SwitchOrganization)

		api.GET("/organizations", orgHandler.ListMine)
		api.POST("/organizations", orgHandler.Create)
		api.POST("/organizations/join", orgHandler.Join)
	}

	// Organization-scoped API (active organization membership required)
	org := api.Group("")
	org.Use(middleware.RequireOrganization(orgRepo, superAdmin))
	{
		can := func(resource, action string) gin.HandlerFunc {
			return middleware.RequirePermission(accessControl, superAdmin, resource, action)
		}

		org.GET("/organizations/members", can("member", "read"), orgHandler.ListMembers)
		org.PATCH("/organizations/members/:userId/active", can("member", "update"), orgHandler.SetMemberActive)

		org.GET("/users", can("member", "read"), userHandler.List)
		org.GET("/users/:id", can("member", "read"), userHandler.Get)
		org.PATCH("/users/:id", can("member", "update"), userHandler.Update)

		org.GET("/customers", can("customer", "read"), customerHandler.List)
		org.POST("/customers", can("customer", "create"), customerHandler.Create)
		org.POST("/customers/bulk-delete", can("customer", "delete"), customerHandler.BulkDelete)
		org.GET("/customers/:id", can("customer", "read"), customerHandler.Get)
		org.PATCH("/customers/:id", can("customer", "update"), customerHandler.Update)
		org.DELETE("/customers/:id", can("customer", "delete"), customerHandler.Delete)
		org.POST("/customers/:id/addresses", can("customerAddress", "create"), customerHandler.CreateAddress)
		org.PATCH("/customers/:id/addresses/:addressId", can("customerAddress", "update"), customerHandler.UpdateAddress)
		org.DELETE("/customers/:id/addresses/:addressId", can("customerAddress", "delete"), customerHandler.DeleteAddress)

		org.GET("/payments", can("payment", "read"), paymentHandler.List)
		org.POST("/payments", can("payment", "create"), paymentHandler.Create)
		org.POST("/payments/bulk-delete", can("payment", "delete"), paymentHandler.BulkDelete)
		org.GET("/payments/:id", can("payment", "read"), paymentHandler.Get)
		org.PATCH("/payments/:id", can("payment", "update"), paymentHandler.Update)
		org.DELETE("/payments/:id", can("payment", "delete"), paymentHandler.Delete)

		org.GET("/requests", can("request", "read"), requestHandler.List)
		org.POST("/requests", can("request", "create"), requestHandler.Create)
		org.GET("/requests/:id", can("request", "read"), requestHandler.Get)
		org.PATCH("/requests/:id", can("request", "update"), requestHandler.Update)
		org.DELETE("/requests/:id", can("request", "delete"), requestHandler.Delete)
		org.GET("/requests/:id/items", can("request", "read"), requestHandler.ListItems)
		org.POST("/requests/:id/items", can("request", "update"), requestHandler.CreateItem)
		org.GET("/requests/:id/items/:itemId/options", can("request", "read"), requestHandler.ListOptions)
		org.POST("/requests/:id/items/:itemId/options", can("request", "update"), requestHandler.CreateOption)
		org.POST("/requests/:id/items/:itemId/options/:optionId/select", can("request", "handle"), requestHandler.SelectOption)
		org.POST("/requests/:id/items/:itemId/options/:optionId/reject-others", can("request", "handle"), requestHandler.RejectOtherOptions)

		org.GET("/locations", can("location", "read"), locationHandler.List)
		org.GET("/locations/:id", can("location", "read"), locationHandler.Get)
		org.POST("/locations", can("location", "create"), locationHandler.Create)

		org.GET("/events", can("calendarEvent", "read"), eventHandler.List)
		org.POST("/events", can("calendarEvent", "create"), eventHandler.Create)
		org.GET("/events/:id", can("calendarEvent", "read"), eventHandler.Get)
		org.PATCH("/events/:id", can("calendarEvent", "update"), eventHandler.Update)
		org.DELETE("/events/:id", can("calendarEvent", "delete"), eventHandler.Delete)

		org.POST("/places/autocomplete", placesHandler.Autocomplete)
		org.GET("/places/:placeId", placesHandler.Details)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
