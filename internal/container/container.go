// Package container wires the application's services together with samber/do.
// Each concern is registered by its own Package function so the server and
// the consumer binaries can compose only what they need.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/laudier3/urlcurt/internal/auth"
	"github.com/laudier3/urlcurt/internal/geo"
	"github.com/laudier3/urlcurt/internal/handlers"
	"github.com/laudier3/urlcurt/internal/health"
	"github.com/laudier3/urlcurt/internal/messaging"
	"github.com/laudier3/urlcurt/internal/middleware"
	"github.com/laudier3/urlcurt/internal/notify"
	"github.com/laudier3/urlcurt/internal/ratelimit"
	"github.com/laudier3/urlcurt/internal/shortener"
	"github.com/laudier3/urlcurt/internal/store"
	"github.com/laudier3/urlcurt/internal/user"
	"github.com/laudier3/urlcurt/internal/visits"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Options holds all runtime configuration, parsed by humacli from flags and
// SERVICE_* environment variables.
type Options struct {
	Port            int    `default:"8888"                   help:"Port to listen on"                                              short:"p"`
	BaseURL         string `default:""                       help:"Public base URL for short links (default http://localhost:<port>)"`
	FrontendBaseURL string `default:"http://localhost:3000"  help:"Frontend base URL used in password reset links"`
	DatabaseURL     string `default:""                       help:"PostgreSQL connection URL; empty runs fully in memory"`
	RedisAddr       string `default:""                       help:"Redis server address; empty disables caching and messaging"     short:"r"`
	JWTSecret       string `default:"dev-secret-change-me"   help:"Secret used to sign auth tokens"`
	URLQuota        int    `default:"10"                     help:"Maximum short URLs per user"`
	GeoEndpoint     string `default:"http://ip-api.com/json" help:"IP geolocation provider base URL; empty disables geo lookups"`
	SMSEndpoint     string `default:""                       help:"SMS provider endpoint; empty logs messages instead of sending"`
	SMSFrom         string `default:""                       help:"Sender phone number for outbound SMS"`
	SMSAPIKey       string `default:""                       help:"API key for the SMS provider"`
	LogFormat       string `default:"console"                enum:"console,json"                                                   help:"Log output format"`
	SecureCookies   bool   `default:"false"                  help:"Mark auth cookies as Secure (requires HTTPS)"`
	MigrateOnStart  bool   `default:"true"                   help:"Apply pending database migrations on startup"`
}

func (o *Options) baseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client, or nil when no address is
// configured. Downstream packages treat a nil client as "Redis disabled".
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr == "" {
			return nil, nil
		}

		return redis.NewClient(&redis.Options{Addr: options.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx connection pool, or nil when the service
// runs in memory. Migrations run here when enabled.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		if options.DatabaseURL == "" {
			return nil, nil
		}

		if options.MigrateOnStart {
			if err := store.RunMigrations(options.DatabaseURL); err != nil {
				return nil, err
			}
		}

		pool, err := pgxpool.New(context.Background(), options.DatabaseURL)
		if err != nil {
			return nil, err
		}

		if err := pool.Ping(context.Background()); err != nil {
			pool.Close()

			return nil, err
		}

		return pool, nil
	})
}

// RepositoryPackage provides the user, short URL and visit repositories,
// backed by Postgres when configured and memory otherwise. Slug lookups are
// cached in Redis when a client is available.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*store.MemoryStore, error) {
		return store.NewMemoryStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (user.Repository, error) {
		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			return store.NewPostgresUserStore(pool), nil
		}

		return do.MustInvoke[*store.MemoryStore](i).Users(), nil
	})

	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		var repo shortener.Repository

		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			repo = store.NewPostgresStore(pool)
		} else {
			repo = do.MustInvoke[*store.MemoryStore](i)
		}

		if client := do.MustInvoke[*redis.Client](i); client != nil {
			repo = store.NewRedisCacheRepository(repo, client, 5*time.Minute)
		}

		return repo, nil
	})

	do.Provide(injector, func(i *do.Injector) (visits.Store, error) {
		if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
			return store.NewPostgresVisitStore(pool), nil
		}

		return do.MustInvoke[*store.MemoryStore](i), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Allocator, error) {
		options := do.MustInvoke[*Options](i)

		generate, err := nanoid.CustomASCII(shortener.SlugAlphabet, shortener.SlugLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewAllocator(
			do.MustInvoke[shortener.Repository](i),
			shortener.SlugGenerator(generate),
			options.baseURL(),
			int64(options.URLQuota),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*visits.Recorder, error) {
		return visits.NewRecorder(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[visits.Store](i),
			do.MustInvoke[geo.Lookup](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// AuthPackage provides the token service.
func AuthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*auth.TokenService, error) {
		options := do.MustInvoke[*Options](i)

		return auth.NewTokenService(options.JWTSecret, auth.DefaultTokenTTL), nil
	})
}

// GeoPackage provides the IP geolocation lookup.
func GeoPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (geo.Lookup, error) {
		options := do.MustInvoke[*Options](i)

		if options.GeoEndpoint == "" {
			return geo.Noop{}, nil
		}

		return geo.NewHTTPLookup(options.GeoEndpoint, 3*time.Second), nil
	})
}

// NotifyPackage provides the SMS notifier.
func NotifyPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (notify.Notifier, error) {
		options := do.MustInvoke[*Options](i)

		if options.SMSEndpoint == "" {
			return notify.NewLogNotifier(do.MustInvoke[*zap.Logger](i)), nil
		}

		return notify.NewHTTPNotifier(
			options.SMSEndpoint,
			options.SMSFrom,
			options.SMSAPIKey,
			5*time.Second,
		), nil
	})
}

// RateLimitPackage provides the rate limit counter store, shared via Redis
// when available.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		if client := do.MustInvoke[*redis.Client](i); client != nil {
			return store.NewRedisRateLimitStore(client), nil
		}

		return ratelimit.NewMemoryStore(), nil
	})
}

// PublisherGroupPackage provides the event publisher and the typed publish
// function for registration events. Without Redis, events are dropped.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)
		if client == nil {
			return nil, nil
		}

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[notify.UserRegisteredEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)
		if group == nil {
			return messaging.NoopPublish[notify.UserRegisteredEvent](), nil
		}

		return messaging.NewPublishFunc[notify.UserRegisteredEvent](group.Publisher(), notify.TopicUserRegistered), nil
	})
}

// ConsumerGroupPackage provides the consumer group that delivers welcome SMS
// messages for registration events.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*redis.Client](i)
		if client == nil {
			return nil, fmt.Errorf("consumer requires a Redis address")
		}

		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: "notify",
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			notify.TopicUserRegistered,
			notify.WelcomeHandler(do.MustInvoke[notify.Notifier](i), logger),
			logger,
		))

		return group, nil
	})
}

// HTTPPackage provides the router and the API with all middlewares and
// routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("urlcurt", "1.0.0"))

		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.RateLimiter(
				api,
				do.MustInvoke[ratelimit.Store](i),
				ratelimit.LimitConfig{Window: time.Minute, Max: 100},
				logger,
			),
			middleware.Auth(api, do.MustInvoke[*auth.TokenService](i)),
		)

		authHandler := handlers.NewAuthHandler(
			do.MustInvoke[user.Repository](i),
			do.MustInvoke[*auth.TokenService](i),
			do.MustInvoke[notify.Notifier](i),
			do.MustInvoke[geo.Lookup](i),
			do.MustInvoke[messaging.Publish[notify.UserRegisteredEvent]](i),
			options.FrontendBaseURL,
			options.SecureCookies,
			logger,
		)

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Allocator](i),
			do.MustInvoke[shortener.Repository](i),
			logger,
		)

		statsHandler := handlers.NewStatsHandler(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[visits.Store](i),
		)

		redirectHandler := handlers.NewRedirectHandler(do.MustInvoke[*visits.Recorder](i))

		handlers.RegisterRoutes(api, authHandler, urlHandler, statsHandler, redirectHandler)
		health.RegisterRoutes(api, healthHandler(i))

		return api, nil
	})
}

func healthHandler(i *do.Injector) *health.Handler {
	var postgres, redisCheck health.Checker

	if pool := do.MustInvoke[*pgxpool.Pool](i); pool != nil {
		postgres = health.NewPostgresChecker(pool)
	}

	if client := do.MustInvoke[*redis.Client](i); client != nil {
		redisCheck = health.NewRedisChecker(client)
	}

	return health.NewHandler(postgres, redisCheck)
}
