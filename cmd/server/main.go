package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	accountservice "travelogy/internal/account/service"
	accountstore "travelogy/internal/account/store"
	authservice "travelogy/internal/auth/service"
	userstore "travelogy/internal/auth/store/user"
	consentservice "travelogy/internal/consent/service"
	consentstore "travelogy/internal/consent/store"
	jwttoken "travelogy/internal/jwt_token"
	"travelogy/internal/platform/config"
	"travelogy/internal/platform/httpserver"
	"travelogy/internal/platform/logger"
	"travelogy/internal/platform/metrics"
	platformredis "travelogy/internal/platform/redis"
	tokenservice "travelogy/internal/token/service"
	"travelogy/internal/token/store/blacklist"
	"travelogy/internal/token/store/refresh"
	httptransport "travelogy/internal/transport/http"
	"travelogy/pkg/platform/audit"
	auditkafka "travelogy/pkg/platform/audit/store/kafka"
	auditmem "travelogy/pkg/platform/audit/store/memory"
	auditworker "travelogy/pkg/platform/audit/worker"
)

const auditInboxSize = 1024

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Refresh side of the audit pipeline: services publish to an in-memory
	// inbox; a single worker drains it into Kafka (or the memory store when
	// no brokers are configured).
	auditStore, closeAudit, err := newAuditStore(ctx, cfg.Audit, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	inbox := make(chan audit.Event, auditInboxSize)
	publisher := audit.NewPublisher(auditworker.NewChannelStore(inbox))
	worker := auditworker.New(auditStore, inbox, log)

	m := metrics.New()

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	var bl tokenservice.Blacklist
	if redisClient != nil {
		bl = blacklist.NewRedisBlacklist(redisClient.Client)
	} else {
		bl = blacklist.NewPostgresBlacklist(db)
	}

	tokens := tokenservice.NewService(
		jwtService,
		refresh.NewPostgresStore(db),
		bl,
		cfg.Tokens.AccessTTL,
		cfg.Tokens.RefreshTTL,
		publisher,
		m,
		log,
	)

	users := userstore.NewPostgresStore(db)
	auth := authservice.NewService(users, tokens, publisher, m, log)
	consent := consentservice.NewService(
		consentstore.NewPostgresStore(db),
		users,
		newConsentPostgresTx(db),
		publisher,
		m,
		otel.Tracer("travelogy"),
		log,
	)
	account := accountservice.NewService(accountstore.NewPostgresStore(db))

	router := httptransport.NewRouter(
		httptransport.RouterConfig{
			Logger:         log,
			Metrics:        m,
			JWTValidator:   jwttoken.NewJWTServiceAdapter(jwtService),
			ActiveChecker:  auth,
			RequestTimeout: cfg.RequestTimeout,
		},
		httptransport.NewAuthHandler(auth, tokens, log),
		httptransport.NewConsentHandler(consent, log),
		httptransport.NewAccountHandler(account, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}

func newAuditStore(ctx context.Context, cfg config.AuditConfig, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Brokers) == 0 {
		log.Warn("no kafka brokers configured, audit events stay in memory")
		return auditmem.New(), func() {}, nil
	}
	store, err := auditkafka.New(ctx, cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
