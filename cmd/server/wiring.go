package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"

	"homedisclose/internal/collaborators/directory"
	"homedisclose/internal/collaborators/notifier"
	"homedisclose/internal/collaborators/renderer"
	disclosureHandler "homedisclose/internal/disclosure/handler"
	disclosureMetrics "homedisclose/internal/disclosure/metrics"
	disclosureService "homedisclose/internal/disclosure/service"
	documentStore "homedisclose/internal/disclosure/store/document"
	jwttoken "homedisclose/internal/jwt_token"
	ledgerDispatcher "homedisclose/internal/ledger/dispatcher"
	ledgerHandler "homedisclose/internal/ledger/handler"
	ledgerMetrics "homedisclose/internal/ledger/metrics"
	ledgerService "homedisclose/internal/ledger/service"
	"homedisclose/internal/ledger/sink"
	ledgerMemory "homedisclose/internal/ledger/store/memory"
	ledgerPostgres "homedisclose/internal/ledger/store/postgres"
	"homedisclose/internal/platform/config"
	"homedisclose/internal/platform/kafka"
	"homedisclose/internal/platform/metrics"
	"homedisclose/internal/platform/postgres"
	redisClient "homedisclose/internal/platform/redis"
	rateLimitMetrics "homedisclose/internal/ratelimit/metrics"
	rateLimitMW "homedisclose/internal/ratelimit/middleware"
	rateLimitModels "homedisclose/internal/ratelimit/models"
	"homedisclose/internal/ratelimit/store/bucket"
	sharingHandler "homedisclose/internal/sharing/handler"
	sharingMetrics "homedisclose/internal/sharing/metrics"
	sharingService "homedisclose/internal/sharing/service"
	shareStore "homedisclose/internal/sharing/store/share"
	"homedisclose/pkg/platform/circuit"
	"homedisclose/pkg/platform/httputil"
	authmw "homedisclose/pkg/platform/middleware/auth"
	"homedisclose/pkg/platform/middleware/metadata"
	"homedisclose/pkg/platform/middleware/request"
	"homedisclose/pkg/platform/middleware/requesttime"
	txcontext "homedisclose/pkg/platform/tx"
)

// infra holds the optional external connections. A nil field means the
// in-memory implementation is used for that concern.
type infra struct {
	db    *sql.DB
	pool  *pgxpool.Pool
	redis *redisClient.Client
	kafka *kgo.Client
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}
	if cfg.Database.URL != "" {
		if cfg.Database.MigrateOnStart {
			if err := postgres.Migrate(cfg.Database.URL, log); err != nil {
				return nil, err
			}
		}
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.db = db
		pool, err := postgres.OpenPool(ctx, cfg.Database)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.pool = pool
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	rc, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	in.redis = rc

	producer, err := kafka.NewProducer(ctx, cfg.Kafka, log)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	in.kafka = producer
	return in, nil
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.pool != nil {
		in.pool.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}

// health pings every configured backend.
func (in *infra) health(ctx context.Context) map[string]string {
	out := map[string]string{}
	check := func(name string, err error) {
		if err != nil {
			out[name] = "down"
			return
		}
		out[name] = "up"
	}
	if in.db != nil {
		check("postgres", in.db.PingContext(ctx))
	}
	if in.pool != nil {
		check("ledger_postgres", in.pool.Ping(ctx))
	}
	if in.redis != nil {
		check("redis", in.redis.Health(ctx))
	}
	return out
}

type ledgerStore interface {
	ledgerDispatcher.Store
	ledgerService.Store
}

type app struct {
	httpMetrics *metrics.Metrics
	validator   authmw.JWTValidator
	dispatcher  *ledgerDispatcher.Dispatcher
	rateLimit   *rateLimitMW.Middleware
	disclosure  *disclosureHandler.Handler
	sharing     *sharingHandler.Handler
	ledger      *ledgerHandler.Handler
}

func buildApp(cfg config.Config, log *slog.Logger, in *infra) *app {
	var (
		documents disclosureService.Store
		shares    sharingService.Store
		runner    txcontext.Runner
		events    ledgerStore
	)
	if in.db != nil {
		documents = documentStore.NewPostgres(in.db)
		shares = shareStore.NewPostgres(in.db)
		runner = txcontext.NewSQLRunner(in.db, cfg.Database.TxTimeout)
		events = ledgerPostgres.New(in.pool)
	} else {
		documents = documentStore.NewInMemory()
		shares = shareStore.NewInMemory()
		runner = txcontext.NewShardedRunner(cfg.Database.TxTimeout)
		events = ledgerMemory.New()
	}

	ledgerBreaker := circuit.New("ledger",
		circuit.WithFailureThreshold(cfg.Ledger.BreakerThreshold),
		circuit.WithCooldown(cfg.Ledger.BreakerCooldown),
	)
	dispatcherOpts := []ledgerDispatcher.Option{
		ledgerDispatcher.WithLogger(log),
		ledgerDispatcher.WithMetrics(ledgerMetrics.New()),
		ledgerDispatcher.WithBreaker(ledgerBreaker),
		ledgerDispatcher.WithAsyncBuffer(cfg.Ledger.BufferSize),
	}
	if in.kafka != nil {
		dispatcherOpts = append(dispatcherOpts, ledgerDispatcher.WithSink(sink.NewKafkaSink(in.kafka, cfg.Kafka.LedgerTopic)))
	}
	dispatcher := ledgerDispatcher.New(events, dispatcherOpts...)

	var note disclosureService.Notifier = notifier.NewLogNotifier(log)
	if cfg.Collaborators.NotifierWebhookURL != "" {
		note = notifier.NewWebhookNotifier(cfg.Collaborators.NotifierWebhookURL, cfg.Collaborators.HTTPTimeout)
	}
	var render disclosureService.Renderer = renderer.NoopRenderer{}
	if cfg.Collaborators.RendererURL != "" {
		render = renderer.NewHTTPRenderer(cfg.Collaborators.RendererURL, cfg.Collaborators.HTTPTimeout)
	}
	dir := newDirectory(cfg, log)

	disclosures := disclosureService.New(documents, runner, dispatcher,
		disclosureService.WithLogger(log),
		disclosureService.WithMetrics(disclosureMetrics.New()),
		disclosureService.WithRenderer(render),
		disclosureService.WithNotifier(note),
		disclosureService.WithDirectory(dir),
		disclosureService.WithSigningThreshold(cfg.Signing.CompletionThreshold),
	)

	sharing := sharingService.New(shares, documents, sharingService.NewSigningTx(runner, shares, documents), dispatcher,
		sharingService.WithLogger(log),
		sharingService.WithMetrics(sharingMetrics.New()),
		sharingService.WithNotifier(note),
		sharingService.WithSellerDirectory(dir),
		sharingService.WithPDFRefresher(disclosures),
		sharingService.WithPublicBaseURL(cfg.Server.PublicBaseURL),
	)

	analytics := ledgerService.New(events, disclosures, sharing,
		ledgerService.WithLogger(log),
		ledgerService.WithMaxTimelineLimit(cfg.Ledger.TimelineMaxLimit),
	)

	rlMetrics := rateLimitMetrics.New()
	limiter := rateLimitMW.NewLimiter(rateLimitPrimary(in), bucket.NewInMemoryBucketStore(),
		rateLimitMW.WithBreaker(circuit.New("ratelimit-redis")),
		rateLimitMW.WithLimiterMetrics(rlMetrics),
		rateLimitMW.WithLimiterLogger(log),
	)

	return &app{
		httpMetrics: metrics.New(),
		validator:   jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)),
		dispatcher:  dispatcher,
		rateLimit:   rateLimitMW.New(limiter, log, rateLimitMW.WithMetrics(rlMetrics)),
		disclosure:  disclosureHandler.New(disclosures, log),
		sharing:     sharingHandler.New(sharing, log),
		ledger:      ledgerHandler.New(analytics, log),
	}
}

// directoryClient covers both lookups the services make against the listing
// platform.
type directoryClient interface {
	disclosureService.PropertyDirectory
	sharingService.SellerDirectory
}

func newDirectory(cfg config.Config, log *slog.Logger) directoryClient {
	if cfg.Collaborators.DirectoryURL == "" {
		return directory.NewStaticDirectory()
	}
	breaker := circuit.New("directory", circuit.WithCooldown(cfg.Ledger.BreakerCooldown))
	return directory.NewHTTPDirectory(cfg.Collaborators.DirectoryURL, cfg.Collaborators.HTTPTimeout,
		cfg.Collaborators.DirectoryCacheSize, breaker, log)
}

func rateLimitPrimary(in *infra) rateLimitMW.BucketStore {
	if in.redis == nil {
		return nil
	}
	return bucket.NewRedisBucketStore(in.redis.Client)
}

func newRouter(cfg config.Config, log *slog.Logger, in *infra, a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log, a.httpMetrics))
	r.Use(request.Timeout(cfg.Server.RequestTimeout))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		deps := in.health(r.Context())
		status := http.StatusOK
		for _, state := range deps {
			if state != "up" {
				status = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, status, map[string]any{"status": http.StatusText(status), "dependencies": deps})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(a.validator, log))
		a.disclosure.Register(r)
		a.sharing.Register(r)
		a.ledger.Register(r)
	})

	// Token links are reachable without an account, so they are throttled per
	// client IP. A bearer token is still honoured to attribute the signer.
	r.Group(func(r chi.Router) {
		r.Use(a.rateLimit.PerIP(rateLimitModels.ScopePublicToken, cfg.Sharing.PublicRequestsPerWindow, cfg.Sharing.PublicWindow))
		r.Use(authmw.OptionalAuth(a.validator, log))
		a.sharing.RegisterPublic(r)
	})
	return r
}
