package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/casino-server/internal/api"
	"github.com/annel0/casino-server/internal/auth"
	"github.com/annel0/casino-server/internal/cache"
	"github.com/annel0/casino-server/internal/config"
	"github.com/annel0/casino-server/internal/eventbus"
	"github.com/annel0/casino-server/internal/logging"
	"github.com/annel0/casino-server/internal/mail"
	"github.com/annel0/casino-server/internal/observability"
	"github.com/annel0/casino-server/internal/shop"
	"github.com/annel0/casino-server/internal/skins"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	if err := logging.Init("casino"); err != nil {
		log.Fatalf("❌ Failed to initialise logging: %v", err)
	}
	defer logging.Close()

	logging.Info("🎰 Starting casino server...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Failed to load config: %v", err)
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// === TRACING ===
	// Spans go nowhere without an exporter, so only install the provider
	// when a collector endpoint is configured.
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		shutdownTracing, err := observability.InitTelemetry(context.Background(), "casino_api")
		if err != nil {
			logging.Warn("Tracing disabled: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(ctx); err != nil {
					logging.Warn("Tracing shutdown: %v", err)
				}
			}()
		}
	}

	// === STORAGE ===
	userRepo, skinRepo, err := buildRepositories(cfg)
	if err != nil {
		logging.Error("❌ Failed to initialise storage: %v", err)
		log.Fatalf("❌ Failed to initialise storage: %v", err)
	}
	defer userRepo.Close()

	// === CACHE ===
	var skinCache cache.Cache
	if addr := cfg.Redis.GetAddr(); addr != "" {
		redisCache, err := cache.NewRedisCache(addr)
		if err != nil {
			logging.Warn("Redis unavailable at %s, falling back to in-memory cache: %v", addr, err)
		} else {
			logging.Info("✅ Redis cache connected: %s", addr)
			skinCache = redisCache
		}
	}
	if skinCache == nil {
		skinCache = cache.NewMemoryCache()
	}
	defer skinCache.Close()

	// === EVENT BUS ===
	var events eventbus.Publisher = eventbus.NopPublisher{}
	if url := cfg.Nats.GetURL(); url != "" {
		natsPub, err := eventbus.NewNatsPublisher(url)
		if err != nil {
			logging.Warn("NATS unavailable at %s, events disabled: %v", url, err)
		} else {
			logging.Info("✅ NATS event publishing enabled: %s", url)
			events = natsPub
		}
	}
	defer events.Close()

	// === MAIL ===
	var mailer mail.Mailer
	if apiKey := cfg.Mail.GetAPIKey(); apiKey != "" {
		mailer = mail.NewSendGridMailer(apiKey, cfg.Mail.GetSender())
		logging.Info("✅ SendGrid mailer configured (sender: %s)", cfg.Mail.GetSender())
	} else {
		mailer = mail.LogMailer{}
		logging.Warn("SENDGRID_API_KEY not set, password-reset mails are logged only")
	}

	// === SERVICES ===
	secret := cfg.JWT.GetSecret()
	if secret == "" {
		logging.Error("❌ JWT_SECRET is not set")
		log.Fatalf("❌ JWT_SECRET is not set")
	}
	codec, err := auth.NewTokenCodec(secret, cfg.JWT.GetExpiration())
	if err != nil {
		logging.Error("❌ Failed to build token codec: %v", err)
		log.Fatalf("❌ Failed to build token codec: %v", err)
	}

	skinSvc := skins.NewService(skinRepo, skinCache)
	defaultSkin := cfg.Shop.GetDefaultSkin()
	if err := skinSvc.EnsureDefault(defaultSkin); err != nil {
		logging.Error("❌ Failed to seed default skin %q: %v", defaultSkin, err)
		log.Fatalf("❌ Failed to seed default skin %q: %v", defaultSkin, err)
	}

	authSvc := auth.NewService(auth.ServiceConfig{
		Users:       userRepo,
		Skins:       skinSvc,
		Codec:       codec,
		Mailer:      mailer,
		Events:      events,
		DefaultSkin: defaultSkin,
		WebHost:     cfg.Mail.GetWebHost(),
	})

	shopSvc := shop.NewService(userRepo, skinSvc, events)

	// === REST API ===
	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	server := api.NewRestServer(api.Config{
		Port:  restPort,
		Auth:  authSvc,
		Skins: skinSvc,
		Shop:  shopSvc,
		Codec: codec,
	})

	go func() {
		if err := server.Start(); err != nil {
			logging.Error("❌ REST API server error: %v", err)
		}
	}()

	logging.Info("✅ Casino server ready")
	logging.Info("   🌐 REST API: http://localhost%s", restPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)
	logging.Info("   📊 Metrics: http://localhost%s/metrics", restPort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logging.Info("📡 Received signal %v, shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logging.Error("❌ Error stopping REST API: %v", err)
	}

	logging.Info("👋 Casino server stopped")
}

// buildRepositories selects the persistence backend. The MariaDB backend has
// no skin table yet, so its catalog lives in memory and is reseeded on boot.
func buildRepositories(cfg *config.Config) (auth.UserRepository, skins.Repository, error) {
	backend := cfg.Storage.GetBackend()
	logging.Info("💾 Storage backend: %s", backend)

	switch backend {
	case "mongo":
		userRepo, err := auth.NewMongoUserRepo(auth.MongoConfig{
			URI:      cfg.Mongo.GetURI(),
			Database: cfg.Mongo.GetDatabase(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("mongo users: %w", err)
		}
		skinRepo, err := skins.NewMongoSkinRepo(userRepo.Database())
		if err != nil {
			userRepo.Close()
			return nil, nil, fmt.Errorf("mongo skins: %w", err)
		}
		return userRepo, skinRepo, nil

	case "maria":
		userRepo, err := auth.NewMariaUserRepo(auth.MariaConfig{
			Host:     cfg.Maria.Host,
			Port:     cfg.Maria.Port,
			Database: cfg.Maria.Database,
			Username: cfg.Maria.Username,
			Password: cfg.Maria.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("maria users: %w", err)
		}
		logging.Warn("MariaDB backend stores users only, skin catalog is in-memory")
		return userRepo, skins.NewMemorySkinRepo(), nil

	case "memory":
		logging.Warn("In-memory storage selected, all data is lost on restart")
		return auth.NewMemoryUserRepo(), skins.NewMemorySkinRepo(), nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
