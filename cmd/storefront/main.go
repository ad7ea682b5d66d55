package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fjod/forgeline/internal/archive"
	"github.com/fjod/forgeline/internal/catalog"
	"github.com/fjod/forgeline/internal/chat"
	"github.com/fjod/forgeline/internal/events"
	h "github.com/fjod/forgeline/internal/http"
	"github.com/fjod/forgeline/internal/invoice"
	"github.com/fjod/forgeline/internal/relay"
	"github.com/fjod/forgeline/internal/session"
	"github.com/fjod/forgeline/internal/storage"
	"github.com/fjod/forgeline/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	RedisPassword   string
	CatalogDBPath   string
	RelayURL        string
	RelayTo         string
	RelayTimeout    time.Duration
	KafkaBrokers    []string
	Company         invoice.Company
	ArchiveDir      string
	ArchiveBaseURL  string
	SessionTTL      time.Duration
	LogLevel        string
	LogFormat       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	// a missing .env is fine, the environment wins anyway
	_ = godotenv.Load()

	port := getEnv("HTTP_PORT", "8080")
	company := invoice.DefaultCompany()
	return &Config{
		HTTPPort:        port,
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CatalogDBPath:   getEnv("CATALOG_DB_PATH", ""),
		RelayURL:        getEnv("RELAY_URL", relay.DefaultBaseURL),
		RelayTo:         getEnv("RELAY_TO", "ventas@forgeline.hn"),
		RelayTimeout:    getDuration("RELAY_TIMEOUT", relay.DefaultTimeout),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		ArchiveDir:      getEnv("ARCHIVE_DIR", "assets/invoices"),
		ArchiveBaseURL:  getEnv("ARCHIVE_BASE_URL", "http://localhost:"+port+"/invoices"),
		SessionTTL:      getDuration("SESSION_TTL", session.DefaultTTL),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Company: invoice.Company{
			Name:    getEnv("COMPANY_NAME", company.Name),
			TaxID:   getEnv("COMPANY_RTN", company.TaxID),
			Address: getEnv("COMPANY_ADDRESS", company.Address),
			Phone:   getEnv("COMPANY_PHONE", company.Phone),
			Email:   getEnv("COMPANY_EMAIL", company.Email),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid %s %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	cfg := loadConfig()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog: SQLite when configured, built-in list otherwise
	var products catalog.Provider = catalog.Default()
	if cfg.CatalogDBPath != "" {
		repo, err := catalog.NewSQLiteRepository(cfg.CatalogDBPath)
		if err != nil {
			zl.Fatal("Failed to open catalog database", zap.Error(err))
		}
		defer repo.Close()
		if err := repo.RunMigrations(); err != nil {
			zl.Fatal("Failed to run catalog migrations", zap.Error(err))
		}
		zl.Info("catalog database ready", zap.String("path", cfg.CatalogDBPath))
		products = repo
	}

	// Cart storage: Redis when configured, in-process otherwise
	var carts storage.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zl.Fatal("Redis connection failed", zap.Error(err))
		}
		zl.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		carts = storage.NewRedisStore(redisClient, storage.DefaultTTL)
	} else {
		mem := storage.NewMemoryStore(storage.DefaultTTL)
		defer mem.Close()
		carts = mem
	}

	// Checkout events: Kafka behind an outbox when brokers are configured
	var publisher events.Publisher = events.Nop{}
	outboxDone := make(chan struct{})
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kafkaPublisher.Close()

		outbox := events.NewOutbox(kafkaPublisher, time.Second, zl)
		go func() {
			defer close(outboxDone)
			outbox.Run(ctx)
		}()
		publisher = outbox
		zl.Info("publishing checkout events", zap.Strings("brokers", cfg.KafkaBrokers))
	} else {
		close(outboxDone)
	}

	relayClient := relay.NewClient(relay.Config{BaseURL: cfg.RelayURL, Timeout: cfg.RelayTimeout}, zl)

	emitter, err := invoice.NewEmitter(relayClient, invoice.NewNumberer(), invoice.Config{To: cfg.RelayTo, Company: cfg.Company})
	if err != nil {
		zl.Fatal("Failed to build invoice emitter", zap.Error(err))
	}

	docs, err := archive.NewStore(cfg.ArchiveDir, cfg.ArchiveBaseURL)
	if err != nil {
		zl.Fatal("Failed to prepare invoice archive", zap.Error(err))
	}

	sessions := session.NewManager(session.Deps{
		Catalog: products,
		Storage: carts,
		Emitter: emitter,
		Events:  publisher,
		Bot:     chat.NewBot(chat.DefaultRules, chat.DefaultReply),
		Log:     zl,
	}, cfg.SessionTTL)
	defer sessions.Close()

	router := h.NewRouter(h.RouterConfig{
		Catalog:        products,
		Sessions:       sessions,
		Relay:          relayClient,
		RelayTo:        cfg.RelayTo,
		Archive:        docs,
		RequestTimeout: cfg.RequestTimeout,
		Log:            zl,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()

	zl.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	<-outboxDone

	zl.Info("server exited")
}
