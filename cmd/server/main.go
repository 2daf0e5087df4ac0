// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"civicpulse/internal/engagement/leaderboard"
	engmetrics "civicpulse/internal/engagement/metrics"
	engagement "civicpulse/internal/engagement/service"
	userstore "civicpulse/internal/identity/store/user"
	"civicpulse/internal/notify"
	"civicpulse/internal/pipeline"
	"civicpulse/internal/platform/config"
	"civicpulse/internal/platform/httpserver"
	"civicpulse/internal/platform/logger"
	"civicpulse/internal/platform/middleware"
	platformredis "civicpulse/internal/platform/redis"
	reporthandler "civicpulse/internal/report/handler"
	reportmetrics "civicpulse/internal/report/metrics"
	reportservice "civicpulse/internal/report/service"
	reportstore "civicpulse/internal/report/store/report"
	votestore "civicpulse/internal/report/store/vote"
	"civicpulse/internal/storage"
	"civicpulse/pkg/platform/httputil"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	reportM := reportmetrics.New()
	engM := engmetrics.New()

	// Persistence: postgres when configured, in-memory otherwise.
	var (
		reports reportservice.ReportStore
		users   reportservice.UserStore
		votes   engagement.VoteStore
		userInc engagement.UserStore
		runner  reportservice.TxRunner
		db      *sql.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("opening database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("pinging database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		reports = reportstore.NewPostgres(db)
		pgUsers := userstore.NewPostgres(db)
		users = pgUsers
		userInc = pgUsers
		votes = votestore.NewPostgres(db)
		runner = newPostgresTx(db)
		log.Info("using postgres stores")
	} else {
		memReports := reportstore.NewInMemory()
		memUsers := userstore.NewInMemory()
		memVotes := votestore.NewInMemory()
		reports = memReports
		users = memUsers
		userInc = memUsers
		votes = memVotes
		runner = reportservice.NewMemoryTx(memReports, memUsers, memVotes)
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	var board *leaderboard.Leaderboard
	if redisClient != nil {
		defer redisClient.Close()
		board = leaderboard.New(redisClient.Client, leaderboard.WithLogger(log))
		log.Info("leaderboard cache enabled")
	}

	var notifier notify.Publisher = notify.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, notify.WithLogger(log))
		if err != nil {
			log.Error("connecting to kafka", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		notifier = kafka
		log.Info("event publisher enabled", "topic", cfg.Kafka.Topic)
	}

	ledgerOpts := []engagement.Option{
		engagement.WithLogger(log),
		engagement.WithMetrics(engM),
	}
	if board != nil {
		ledgerOpts = append(ledgerOpts, engagement.WithBoard(board))
	}
	ledger := engagement.NewLedger(votes, userInc, ledgerOpts...)

	processor := pipeline.NewProcessor(
		pipeline.WithLogger(log),
		pipeline.WithAttemptTimeout(cfg.Enhancer.AttemptTimeout),
	)

	svcOpts := []reportservice.Option{
		reportservice.WithLogger(log),
		reportservice.WithMetrics(reportM),
		reportservice.WithNotifier(notifier),
	}
	if board != nil {
		svcOpts = append(svcOpts, reportservice.WithBoard(board))
	}
	svc := reportservice.NewService(reports, users, ledger, processor, runner, svcOpts...)

	verifier := middleware.NewHMACVerifier([]byte(cfg.JWTSigningKey))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.Authenticate(verifier, log))

	reporthandler.New(svc, storage.NewInMemory(), log).Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "ok"}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				body["cache"] = "unavailable"
			} else {
				body["cache"] = "ok"
			}
		}
		httputil.WriteJSON(w, http.StatusOK, body)
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting civicpulse", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
