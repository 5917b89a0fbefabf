package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"profiling/internal/audit"
	httpapi "profiling/internal/http"
	"profiling/internal/membership"
	"profiling/internal/platform/config"
	"profiling/internal/platform/httpserver"
	"profiling/internal/platform/logger"
	"profiling/internal/platform/metrics"
	platformredis "profiling/internal/platform/redis"
	"profiling/internal/policy"
	"profiling/internal/profile"
	profilehandler "profiling/internal/profile/handler"
	"profiling/internal/profile/store/eventlog"
	"profiling/internal/profile/store/index"
	"profiling/internal/token"
	tokenhandler "profiling/internal/token/handler"
	"profiling/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Search index: redis when configured, in-memory otherwise.
	var eventIndex profile.EventIndex
	var health httpapi.HealthCheck
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		eventIndex = index.NewRedis(redisClient.Client)
		health = redisClient.Health
		log.Info("using redis event index")
	} else {
		eventIndex = index.NewMemory()
		log.Info("no REDIS_URL set, using in-memory event index")
	}

	// Durable event log is optional; the index alone serves reads.
	var writer profile.EventWriter
	if eventLog, err := eventlog.NewPostgres(ctx, cfg.PostgresURL); err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	} else if eventLog != nil {
		defer eventLog.Close()
		writer = eventLog
		log.Info("durable event log enabled")
	}

	var membershipClient membership.Client
	if cfg.MembershipURL != "" {
		membershipClient = membership.NewHTTPClient(cfg.MembershipURL, cfg.MembershipTimeout)
	} else {
		membershipClient = membership.MockClient{
			Latency: 50 * time.Millisecond,
			Known:   map[int]membership.Membership{1: {ID: 1, Name: "Phillip", Surname: "Kruger"}},
		}
		log.Info("no MEMBERSHIP_URL set, using mock membership client")
	}
	breaker := circuit.New("membership", circuit.WithCooldown(cfg.MembershipBreakerCooldown))
	gateway := membership.NewGateway(membershipClient, breaker, log, m)

	auditPublisher := audit.NewPublisher(cfg.EventQueueSize)
	auditWorker := audit.NewWorker(audit.NewMemoryStore(), auditPublisher.Inbox(), log)

	recorder := profile.NewRecorder(eventIndex, writer, cfg.EventQueueSize, log, m)
	profileService := profile.NewService(recorder, eventIndex, gateway, auditPublisher, log, m)

	signer := token.NewSigner(cfg.JWTSigningKey)
	tokenService := token.NewService(token.NewIssuer(cfg.TokenLifetime), signer, auditPublisher, log)
	validator := token.NewValidator(signer)

	table := policy.Default()
	router := httpapi.New(log, health,
		profilehandler.New(profileService, table, validator, log),
		tokenhandler.New(tokenService, table, validator, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting profiling service", "addr", cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return ignoreCanceled(recorder.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(auditWorker.Run(gctx)) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
