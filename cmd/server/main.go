// Package main wires high-level dependencies, exposes the HTTP router, and
// keeps the server lifecycle small. Business logic lives in internal services
// packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	artifacthandler "pactum/internal/artifact/handler"
	artifactservice "pactum/internal/artifact/service"
	artifactstore "pactum/internal/artifact/store"
	ingesthandler "pactum/internal/ingest/handler"
	ingestservice "pactum/internal/ingest/service"
	ingeststore "pactum/internal/ingest/store"
	jwttoken "pactum/internal/jwt_token"
	ledgerhandler "pactum/internal/ledger/handler"
	ledgerservice "pactum/internal/ledger/service"
	ledgerstore "pactum/internal/ledger/store"
	partyhandler "pactum/internal/party/handler"
	partyservice "pactum/internal/party/service"
	partystore "pactum/internal/party/store"
	"pactum/internal/platform/config"
	"pactum/internal/platform/database"
	"pactum/internal/platform/health"
	"pactum/internal/platform/httpserver"
	platformkafka "pactum/internal/platform/kafka"
	"pactum/internal/platform/kafka/consumer"
	"pactum/internal/platform/kafka/producer"
	"pactum/internal/platform/logger"
	"pactum/internal/platform/metrics"
	platformredis "pactum/internal/platform/redis"
	reciprocityhandler "pactum/internal/reciprocity/handler"
	reciprocityservice "pactum/internal/reciprocity/service"
	reusehandler "pactum/internal/reuse/handler"
	reuseservice "pactum/internal/reuse/service"
	reusestore "pactum/internal/reuse/store"
	"pactum/internal/seeder"
	httptransport "pactum/internal/transport/http"
	audit "pactum/pkg/platform/audit"
	auditconsumer "pactum/pkg/platform/audit/consumer"
	auditmetrics "pactum/pkg/platform/audit/metrics"
	outboxmetrics "pactum/pkg/platform/audit/outbox/metrics"
	outboxpostgres "pactum/pkg/platform/audit/outbox/store/postgres"
	outboxworker "pactum/pkg/platform/audit/outbox/worker"
	auditpublisher "pactum/pkg/platform/audit/publisher"
	auditmemory "pactum/pkg/platform/audit/store/memory"
	auditpostgres "pactum/pkg/platform/audit/store/postgres"
	"pactum/pkg/platform/middleware/request"
)

// The report reads counts straight from the stores, so each store value has
// to satisfy both its owning service's interface and the reciprocity read
// side. These compositions name that requirement once.
type ingestStore interface {
	ingestservice.Store
	reciprocityservice.IngestLog
}

type artifactStore interface {
	artifactservice.Store
	reciprocityservice.ArtifactRegistry
}

type reuseStore interface {
	reuseservice.Store
	reciprocityservice.ReuseLog
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	log.Info("initializing pactum",
		"addr", cfg.HTTP.Addr,
		"environment", cfg.HTTP.Environment,
	)

	m := metrics.New()

	// Persistence. An empty database URL selects the in-memory stores so the
	// service can run standalone; the audit trail then stays in process too.
	pool, err := database.New(database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	var (
		parties    partyservice.Store
		receipts   ledgerservice.Store
		ingests    ingestStore
		artifacts  artifactStore
		reuses     reuseStore
		auditStore audit.Store
	)
	if pool != nil {
		db := pool.DB()
		parties = partystore.NewPostgres(db)
		receipts = ledgerstore.NewPostgres(db)
		ingests = ingeststore.NewPostgres(db)
		artifacts = artifactstore.NewPostgres(db)
		reuses = reusestore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
		log.Info("using postgres stores")
	} else {
		parties = partystore.New()
		receipts = ledgerstore.New()
		ingests = ingeststore.New()
		artifacts = artifactstore.New()
		reuses = reusestore.New()
		auditStore = auditmemory.NewInMemoryStore()
		log.Warn("no database configured, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to initialize redis", "error", err)
		os.Exit(1)
	}

	auditor := auditpublisher.NewPublisher(auditStore,
		auditpublisher.WithAsyncBuffer(1024),
		auditpublisher.WithPublisherLogger(log),
		auditpublisher.WithMetrics(auditmetrics.New()),
	)

	// Services.
	partySvc := partyservice.New(parties,
		partyservice.WithLogger(log),
		partyservice.WithMetrics(m),
		partyservice.WithAuditor(auditor),
	)

	ledgerOpts := []ledgerservice.Option{
		ledgerservice.WithLogger(log),
		ledgerservice.WithMetrics(m),
		ledgerservice.WithAuditor(auditor),
	}
	if redisClient != nil {
		cache := ledgerstore.NewRedisStatusCache(redisClient.Client, cfg.Redis.StatusCacheTTL, m, log)
		ledgerOpts = append(ledgerOpts, ledgerservice.WithStatusCache(cache))
		log.Info("status cache enabled", "ttl", cfg.Redis.StatusCacheTTL)
	}
	ledgerSvc := ledgerservice.New(receipts, partySvc, ledgerOpts...)

	artifactSvc := artifactservice.New(artifacts,
		artifactservice.WithLogger(log),
		artifactservice.WithMetrics(m),
		artifactservice.WithAuditor(auditor),
	)

	ingestSvc := ingestservice.New(ingests, partySvc, ledgerSvc, artifactSvc,
		ingestservice.WithLogger(log),
		ingestservice.WithMetrics(m),
		ingestservice.WithAuditor(auditor),
	)

	reuseSvc := reuseservice.New(reuses, artifactSvc,
		reuseservice.WithLogger(log),
		reuseservice.WithMetrics(m),
		reuseservice.WithAuditor(auditor),
	)

	reciprocitySvc := reciprocityservice.New(receipts, parties, ingests, artifacts, reuses,
		reciprocityservice.WithLogger(log),
		reciprocityservice.WithMetrics(m),
		reciprocityservice.WithAuditor(auditor),
	)

	if cfg.SeedDemo {
		if cfg.Database.URL != "" {
			log.Warn("PACTUM_SEED_DEMO is set but a database is configured, skipping demo seed")
		} else {
			seed := seeder.New(partySvc, ledgerSvc, ingestSvc, artifactSvc, reuseSvc, log)
			if err := seed.SeedAll(context.Background()); err != nil {
				log.Error("failed to seed demo data", "error", err)
				os.Exit(1)
			}
		}
	}

	// Audit pipeline: outbox worker drains to Kafka, consumer materializes
	// the topic into audit_events. Both need the database and brokers.
	var (
		auditProducer *producer.Producer
		worker        *outboxworker.Worker
		auditConsumer *consumer.Consumer
	)
	if cfg.Kafka.Brokers != "" && pool != nil {
		prodCfg := platformkafka.DefaultProducerConfig()
		auditProducer, err = producer.New(producer.Config{
			Brokers:         cfg.Kafka.Brokers,
			Acks:            prodCfg.Acks,
			Retries:         prodCfg.Retries,
			DeliveryTimeout: prodCfg.DeliveryTimeout,
		}, log)
		if err != nil {
			log.Error("failed to initialize kafka producer", "error", err)
			os.Exit(1)
		}

		worker = outboxworker.New(outboxpostgres.New(pool.DB()), auditProducer,
			outboxworker.WithTopic(cfg.Kafka.AuditTopic),
			outboxworker.WithMetrics(outboxmetrics.New()),
			outboxworker.WithLogger(log),
		)
		worker.Start()

		consCfg := platformkafka.DefaultConsumerConfig()
		auditConsumer, err = consumer.New(consumer.Config{
			Brokers:         cfg.Kafka.Brokers,
			GroupID:         cfg.Kafka.AuditConsumerGroup,
			AutoOffsetReset: consCfg.AutoOffsetReset,
		}, auditconsumer.NewHandler(auditpostgres.New(pool.DB()), log), log)
		if err != nil {
			log.Error("failed to initialize kafka consumer", "error", err)
			os.Exit(1)
		}
		if err := auditConsumer.Subscribe([]string{cfg.Kafka.AuditTopic}); err != nil {
			log.Error("failed to subscribe audit consumer", "error", err)
			os.Exit(1)
		}
		auditConsumer.Start()

		log.Info("audit pipeline started", "topic", cfg.Kafka.AuditTopic, "group", cfg.Kafka.AuditConsumerGroup)
	} else if cfg.Kafka.Brokers != "" {
		log.Warn("kafka brokers configured without a database, audit pipeline disabled")
	}

	// Health checks for everything wired above.
	healthHandler := health.New(cfg.HTTP.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
	}
	if cfg.Kafka.Brokers != "" && pool != nil {
		kafkaHealth := platformkafka.NewHealthChecker(cfg.Kafka.Brokers)
		healthHandler.RegisterCheck("kafka", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return kafkaHealth.Check(ctx)
		})
	}

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.TokenTTL)

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:         log,
		HTTP:           cfg.HTTP,
		RequestMetrics: request.NewMetrics(),
		JWTValidator:   jwttoken.NewJWTServiceAdapter(jwtService),
		Health:         healthHandler,
		Parties:        partyhandler.New(partySvc, log),
		Ledger:         ledgerhandler.New(ledgerSvc, log),
		Artifacts:      artifacthandler.New(artifactSvc, log),
		Ingests:        ingesthandler.New(ingestSvc, log),
		Reuses:         reusehandler.New(reuseSvc, log),
		Reciprocity:    reciprocityhandler.New(reciprocitySvc, log),
	})

	srv := httpserver.New(cfg.HTTP.Addr, router)

	log.Info("starting http server", "addr", cfg.HTTP.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Pool gauges refresh on a slow tick; stops with the process.
	statsDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-statsDone:
				return
			case <-ticker.C:
				if pool != nil {
					pool.RecordPoolStats()
				}
				if redisClient != nil {
					redisClient.RecordPoolStats()
				}
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")
	close(statsDone)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Stop the pipeline back to front so in-flight audit events still land:
	// publisher drains into the outbox, the worker drains the outbox to
	// Kafka, then the consumer commits what it has.
	auditor.Close()
	if worker != nil {
		if err := worker.Stop(ctx); err != nil {
			log.Error("outbox worker shutdown failed", "error", err)
		}
	}
	if auditConsumer != nil {
		if err := auditConsumer.Stop(ctx); err != nil {
			log.Error("audit consumer shutdown failed", "error", err)
		}
	}
	if auditProducer != nil {
		if err := auditProducer.Close(); err != nil {
			log.Error("kafka producer close failed", "error", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("redis close failed", "error", err)
		}
	}
	if pool != nil {
		if err := pool.Close(); err != nil {
			log.Error("database close failed", "error", err)
		}
	}

	log.Info("server stopped")
}
