package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"playermarket-api/internal/blacklist"
	"playermarket-api/internal/config"
	"playermarket-api/internal/economy"
	"playermarket-api/internal/handler"
	"playermarket-api/internal/item"
	"playermarket-api/internal/market"
	"playermarket-api/internal/middleware"
	"playermarket-api/internal/router"
	"playermarket-api/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting playermarket API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Process-local blacklist mirror, fed by the propagation consumer.
	mirror := blacklist.NewMirror()

	// Initialize storage backend based on config
	var (
		store      storage.Store
		poller     *blacklist.Poller
		subscriber *blacklist.Subscriber
	)
	switch cfg.Storage.Type {
	case "relational":
		var (
			sqlStore *storage.SQLStore
			err      error
		)
		if cfg.SQL.Driver == "sqlite" {
			sqlStore, err = storage.NewSQLiteStore(cfg.SQL.SQLitePath)
		} else {
			sqlStore, err = storage.NewMySQLStore(cfg.SQL.DSN())
		}
		if err != nil {
			log.Fatalf("Failed to initialize relational storage: %v", err)
		}
		store = sqlStore
		poller = blacklist.NewPoller(sqlStore, mirror, cfg.Storage.PollInterval)
		log.Printf("Relational storage initialized (%s)", cfg.SQL.Driver)

	case "memory":
		store = storage.NewMemoryStore()
		log.Println("In-memory storage initialized")

	default: // keyvalue
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		cancel()

		kvStore := storage.NewRedisStore(redisClient, cfg.Storage.ServerName)
		store = kvStore
		subscriber = blacklist.NewSubscriber(redisClient, mirror, kvStore.Blacklist)
		defer redisClient.Close()
		log.Println("Key-value storage initialized")
	}
	defer store.Close()

	// Seed the mirror from the authoritative store, then start the
	// propagation consumer for the configured backend.
	if subscriber != nil {
		subscriber.Start() // seeds the mirror itself after subscribing
		defer subscriber.Stop()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		items, err := store.Blacklist(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to load blacklist: %v", err)
		}
		mirror.Replace(items)
	}
	if poller != nil {
		poller.Start()
		defer poller.Stop()
	}

	// Collaborators: the default JSON item codec and the built-in ledger.
	// Production deployments swap in the game economy here.
	codec := item.NewJSONCodec()
	ledger := economy.NewLedger(cfg.Economy.OpeningBalance)

	marketService := market.NewService(store, mirror, codec, ledger)
	if marketService == nil {
		log.Fatal("Failed to initialize market service")
	}

	// Initialize handlers
	healthHandler := handler.New(store, cfg.Storage.Type, cfg.App.Version)
	listingHandler := handler.NewListingHandler(marketService)
	blacklistHandler := handler.NewBlacklistHandler(marketService)
	playerHandler := handler.NewPlayerHandler(marketService)

	moderatorMiddleware := middleware.NewModeratorMiddleware(middleware.ModeratorConfig{
		Key: cfg.App.ModeratorKey,
	})

	// Create router
	r := router.New(router.Config{
		Handler:             healthHandler,
		ListingHandler:      listingHandler,
		BlacklistHandler:    blacklistHandler,
		PlayerHandler:       playerHandler,
		ModeratorMiddleware: moderatorMiddleware,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
