package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/tiankay999/Kay-Birks-website/internal/cart"
	"github.com/tiankay999/Kay-Birks-website/internal/catalog"
	"github.com/tiankay999/Kay-Birks-website/internal/checkout"
	h "github.com/tiankay999/Kay-Birks-website/internal/http"
	"github.com/tiankay999/Kay-Birks-website/internal/notify"
	"github.com/tiankay999/Kay-Birks-website/internal/outbox"
	"github.com/tiankay999/Kay-Birks-website/internal/payment"
	"github.com/tiankay999/Kay-Birks-website/internal/storage"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	PaystackBaseURL   string
	PaystackSecretKey string

	CartBackend   string // "redis" or "mongo"
	RedisAddr     string
	RedisPassword string
	MongoURI      string
	MongoDBName   string

	SQLitePath     string
	MigrationsPath string

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	AdminEmail string

	KafkaBrokers []string
}

func loadConfig() *Config {
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		log.Fatalf("Invalid SMTP_PORT: %v", err)
	}

	var brokers []string
	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "5000"),
		RequestTimeout:    30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaystackSecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
		CartBackend:       getEnv("CART_BACKEND", "redis"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:       getEnv("MONGO_DB_NAME", "shopdb"),
		SQLitePath:        getEnv("SQLITE_PATH", "./shop.db"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "./migrations"),
		SMTPHost:          getEnv("SMTP_HOST", "localhost"),
		SMTPPort:          smtpPort,
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPass:          getEnv("SMTP_PASS", ""),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		KafkaBrokers:      brokers,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("shop server starting...")

	cfg := loadConfig()
	ctx := context.Background()

	// Embedded database: product catalog + notification ledger
	db, err := storage.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	catalogRepo := catalog.NewRepository(db)
	ledger := outbox.NewRepository(db)

	// Cart persistence backend
	cartRepo, closeBackend := newCartRepository(ctx, cfg)
	defer closeBackend()

	store := cart.NewStore(ctx, cartRepo)
	log.Printf("Cart restored with %d item(s)", store.ItemCount())

	// Payment provider
	provider := payment.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)

	// Notification dispatcher
	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.AdminEmail)
	dispatcher := outbox.NewDispatcher(ledger, mailer, cfg.KafkaBrokers...)
	defer dispatcher.Close()

	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	defer stopDispatcher()
	go dispatcher.Run(dispatcherCtx)

	// Checkout service: the cart is cleared only on verified success
	tracker := checkout.NewAttemptTracker()
	defer tracker.Close()

	checkoutService := checkout.NewCheckoutService(provider, ledger, tracker, func(ctx context.Context) {
		store.Clear(ctx)
	})

	paymentHandler := h.NewPaymentHandler(checkoutService, cfg.RequestTimeout)
	cartHandler := h.NewCartHandler(store, catalogRepo, cfg.RequestTimeout)
	catalogHandler := h.NewCatalogHandler(catalogRepo, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/{product_id}", catalogHandler.GetProduct)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{item_id}", cartHandler.ChangeQuantity)
			r.Delete("/items/{item_id}", cartHandler.RemoveItem)
			r.Post("/promo", cartHandler.ApplyPromo)
		})
		r.Route("/payment", func(r chi.Router) {
			r.Post("/initialize", paymentHandler.Initialize)
			r.Get("/verify/{reference}", paymentHandler.Verify)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	stopDispatcher()
	log.Println("server exited")
}

func newCartRepository(ctx context.Context, cfg *Config) (cart.Repository, func()) {
	switch cfg.CartBackend {
	case "mongo":
		mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		log.Printf("Connected to MongoDB at %s", cfg.MongoURI)
		return cart.NewMongoRepository(mongoDB), func() {
			if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
				log.Printf("mongo disconnect failed: %v", err)
			}
		}
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Printf("Connected to Redis at %s", cfg.RedisAddr)
		return cart.NewRedisRepository(client), func() { client.Close() }
	default:
		log.Fatalf("Unknown CART_BACKEND %q (want redis or mongo)", cfg.CartBackend)
		return nil, nil
	}
}
