package bootstrap

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"crimson-crm-be/internal/config"
	"crimson-crm-be/internal/constant"
	"crimson-crm-be/internal/controller"
	"crimson-crm-be/internal/pkg/logger"
	"crimson-crm-be/internal/pkg/mailer"
	"crimson-crm-be/internal/pkg/serverutils"
	"crimson-crm-be/internal/repository/memory"
	"crimson-crm-be/internal/service"
	"crimson-crm-be/pkg/bioclient"
	"crimson-crm-be/pkg/biostate"
	"crimson-crm-be/pkg/kvstore"
	"crimson-crm-be/pkg/llm/factory"

	pktNats "crimson-crm-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const eventsTopic = "crm_events"

type Container struct {
	// Controllers
	BioController     controller.IBioController
	ProfileController controller.IProfileController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func()
}

// NewContainer wires the application. db is only used by the postgres storage
// driver and may be nil otherwise.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	auditLogger := logger.NewIsolatedLogger(filepath.Join(filepath.Dir(cfg.App.LogFilePath), "events.log"))

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
		)
	} else {
		log.Printf("[INFO] SMTP not configured, bio email disabled")
	}

	c := &Container{}
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() }, func() { _ = auditLogger.Sync() })

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	publisherService := service.NewPublisherService(eventsTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, eventsTopic, forwarder, auditLogger, sysLogger)

	// 3. Storage
	store := newStore(cfg, db, c)

	// 4. Bio generation
	provider, err := factory.NewSearchProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Keys.Perplexity,
		cfg.Ai.BaseURL,
		time.Duration(cfg.Ai.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	bioService := service.NewBioService(provider, service.BioServiceConfig{
		APIKey:           cfg.Keys.Perplexity,
		Model:            cfg.Ai.LLMModel,
		Timeout:          time.Duration(cfg.Ai.TimeoutSeconds) * time.Second,
		SearchDomains:    searchDomains(cfg.Ai),
		RecencyFilter:    cfg.Ai.RecencyFilter,
		StructuredOutput: cfg.Ai.StructuredOutput,
	}, sysLogger)

	var generator biostate.BioGenerator
	if cfg.Ai.BioProxyURL != "" {
		// Leave headroom over the proxy's own upstream timeout.
		generator = bioclient.New(cfg.Ai.BioProxyURL, time.Duration(cfg.Ai.TimeoutSeconds+5)*time.Second)
		log.Printf("[INFO] Profiles generate bios through proxy %s", cfg.Ai.BioProxyURL)
	} else {
		generator = service.NewLocalBioGenerator(bioService)
	}

	sessionRepo := memory.NewSessionRepository(time.Duration(cfg.App.SessionTTLMinutes) * time.Minute)
	profileService := service.NewProfileService(
		sessionRepo,
		store,
		generator,
		service.NewWealthService(),
		publisherService,
		emailService,
		sysLogger,
	)

	// 5. Controllers
	var guard fiber.Handler
	if cfg.App.JWTSecret != "" {
		guard = serverutils.NewJwtMiddleware(cfg.App.JWTSecret)
	}

	c.BioController = controller.NewBioController(bioService, sysLogger)
	c.ProfileController = controller.NewProfileController(profileService, guard)
	return c
}

// Close releases connections opened by NewContainer, most recent first.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newStore(cfg *config.Config, db *gorm.DB, c *Container) kvstore.Store {
	switch cfg.Storage.Driver {
	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		log.Printf("[INFO] Using storage driver: REDIS")
		return kvstore.NewRedisStore(rdb, "crm:")

	case "postgres":
		if db == nil {
			log.Fatalf("[FATAL] STORAGE_DRIVER=postgres needs DB_CONNECTION_STRING")
		}
		store := kvstore.NewGormStore(db)
		if err := store.Migrate(); err != nil {
			log.Fatalf("[FATAL] Failed to migrate kv store: %v", err)
		}
		log.Printf("[INFO] Using storage driver: POSTGRES")
		return store

	default:
		log.Printf("[INFO] Using storage driver: MEMORY")
		return kvstore.NewMemoryStore()
	}
}

func searchDomains(ai config.AIConfig) []string {
	if len(ai.SearchDomains) > 0 {
		return ai.SearchDomains
	}
	if ai.ExtendedDomains {
		return append(append([]string{}, constant.BioSearchDomains...), constant.BioNewsDomains...)
	}
	return constant.BioSearchDomains
}
