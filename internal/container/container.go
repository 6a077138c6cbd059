package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortn/internal/events"
	"github.com/serroba/shortn/internal/handlers"
	"github.com/serroba/shortn/internal/health"
	"github.com/serroba/shortn/internal/messaging"
	"github.com/serroba/shortn/internal/middleware"
	"github.com/serroba/shortn/internal/shortener"
	"github.com/serroba/shortn/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Event transports.
const (
	EventsNone  = "none"
	EventsRedis = "redis"
)

const schemaTimeout = 10 * time.Second

// Options configures the server and the consumer. The server reads them through
// humacli (flags or SERVICE_* variables); the consumer through envconfig.
type Options struct {
	Port          int    `default:"8888"                                          envconfig:"PORT"           help:"Port to listen on"                                 short:"p"`
	BaseURL       string `envconfig:"BASE_URL"                                    help:"Base address short links are built on (default http://localhost:<port>)" name:"base-url"`
	Store         string `default:"postgres"                                      envconfig:"STORE"          help:"Link store: postgres, sqlite, redis or memory"     short:"s"`
	DatabaseURL   string `default:"postgres://localhost:5432/shortn?sslmode=disable" envconfig:"DATABASE_URL" help:"PostgreSQL connection string"                     name:"database-url"`
	SQLitePath    string `default:"shortn.db"                                     envconfig:"SQLITE_PATH"    help:"SQLite database file"                              name:"sqlite-path"`
	RedisAddr     string `default:"localhost:6379"                                envconfig:"REDIS_ADDR"     help:"Redis server address"                              name:"redis-addr" short:"r"`
	IDLength      int    `default:"6"                                             envconfig:"ID_LENGTH"      help:"Length of generated short identifiers"             name:"id-length"`
	IDRetries     int    `default:"0"                                             envconfig:"ID_RETRIES"     help:"Fresh identifiers to try after an identifier collision" name:"id-retries"`
	Events        string `default:"none"                                          envconfig:"EVENTS"         help:"Event transport for link.assigned: none or redis"`
	ConsumerGroup string `default:"audit"                                         envconfig:"CONSUMER_GROUP" help:"Redis stream consumer group"                       name:"consumer-group"`
	LogFormat     string `default:"console"                                       envconfig:"LOG_FORMAT"     help:"Log format: console or json"                      name:"log-format"`
	LogLevel      string `default:"info"                                          envconfig:"LOG_LEVEL"      help:"Log level: debug, info, warn or error"             name:"log-level"`
}

// ResolvedBaseURL returns BaseURL, or the local address when it is unset.
func (o *Options) ResolvedBaseURL() string {
	if o.BaseURL != "" {
		return strings.TrimSuffix(o.BaseURL, "/")
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// RedisClient owns the shared Redis connection.
type RedisClient struct {
	*redis.Client
}

// Shutdown closes the connection.
func (r *RedisClient) Shutdown() error {
	return r.Close()
}

// NewLogger builds a zap logger for format ("console" or "json") at level.
func NewLogger(format, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var cfg zap.Config

	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat, opts.LogLevel)
	})
}

func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// StorePackage provides the configured shortener.Store, provisioned and ready.
func StorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Store, error) {
		opts := do.MustInvoke[*Options](i)

		gen, err := shortener.NewIDGenerator(opts.IDLength)
		if err != nil {
			return nil, err
		}

		storeOpts := store.Options{NewID: gen, IDLength: opts.IDLength, IDRetries: opts.IDRetries}

		s, err := newStore(i, opts, storeOpts)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
		defer cancel()

		if err := s.EnsureSchema(ctx); err != nil {
			if closer, ok := s.(do.Shutdownable); ok {
				_ = closer.Shutdown()
			}

			return nil, err
		}

		return s, nil
	})
}

func newStore(i *do.Injector, opts *Options, storeOpts store.Options) (shortener.Store, error) {
	switch opts.Store {
	case StorePostgres:
		pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, shortener.E("container.newStore", shortener.KindStoreUnavailable, err)
		}

		return store.NewPostgresStore(pool, storeOpts), nil
	case StoreSQLite:
		return store.NewSQLiteStore(opts.SQLitePath, storeOpts)
	case StoreRedis:
		client := do.MustInvoke[*RedisClient](i)

		return store.NewRedisStore(client.Client, storeOpts), nil
	case StoreMemory:
		return store.NewMemoryStore(storeOpts), nil
	default:
		return nil, fmt.Errorf("unknown store %q", opts.Store)
	}
}

// EventsPackage provides the link.assigned publish function. With events disabled
// it discards events and never touches Redis.
func EventsPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client.Client},
			messaging.NewZapLogger(logger.Named("watermill")),
		)
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[events.LinkAssigned], error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Events {
		case EventsNone:
			return messaging.NoopPublish[events.LinkAssigned](), nil
		case EventsRedis:
			group := do.MustInvoke[*messaging.PublisherGroup](i)

			return messaging.NewPublishFunc[events.LinkAssigned](group.Publisher(), events.TopicLinkAssigned), nil
		default:
			return nil, fmt.Errorf("unknown event transport %q", opts.Events)
		}
	})
}

func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		linkStore := do.MustInvoke[shortener.Store](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return shortener.NewService(linkStore, opts.ResolvedBaseURL(), logger), nil
	})
}

// HTTPPackage provides the router and the API. Invoking huma.API registers every route.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		service := do.MustInvoke[*shortener.Service](i)
		publish := do.MustInvoke[messaging.Publish[events.LinkAssigned]](i)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestLogger(logger.Named("http")))

		handlers.RegisterRoutes(api, handlers.NewURLHandler(service, publish, logger))

		checkers := map[string]health.Checker{
			"store": do.MustInvoke[shortener.Store](i),
		}
		if opts.Events == EventsRedis {
			checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
		}

		health.RegisterRoutes(api, health.NewHandler(checkers))

		return api, nil
	})
}

// ConsumerGroupPackage provides the audit consumer group reading link.assigned events.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        client.Client,
				ConsumerGroup: opts.ConsumerGroup,
			},
			messaging.NewZapLogger(logger.Named("watermill")),
		)
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}

		audit := events.NewAuditLog(logger)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, events.TopicLinkAssigned, audit.LinkAssigned, logger))

		return group, nil
	})
}
