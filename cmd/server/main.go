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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	netstateclient "coregw/internal/netstate/client"
	netstatehandler "coregw/internal/netstate/handler"
	netstatemetrics "coregw/internal/netstate/metrics"
	"coregw/internal/platform/config"
	"coregw/internal/platform/httpserver"
	"coregw/internal/platform/logger"
	"coregw/internal/platform/middleware"
	"coregw/internal/platform/postgres"
	subscriberhandler "coregw/internal/subscriber/handler"
	subscribermetrics "coregw/internal/subscriber/metrics"
	subscriberservice "coregw/internal/subscriber/service"
	subscriberstore "coregw/internal/subscriber/store"
	"coregw/pkg/platform/audit"
	"coregw/pkg/platform/httputil"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal feature packages.
func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise subscriber store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	publisher, err := buildPublisher(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise audit publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()
	emitter := audit.NewEmitter(publisher, log, 256)

	subscribers := subscriberservice.New(store,
		subscriberservice.WithLogger(log),
		subscriberservice.WithMetrics(subscribermetrics.New()),
		subscriberservice.WithAuditor(emitter),
	)

	netClient := netstateclient.New(netstateclient.Config{
		MMEBaseURL: cfg.MMEBaseURL,
		AMFBaseURL: cfg.AMFBaseURL,
		SMFBaseURL: cfg.SMFBaseURL,
		Timeout:    cfg.UpstreamTimeout,
	})

	router := buildRouter(cfg, log,
		subscriberhandler.New(subscribers, log),
		netstatehandler.New(netClient, log, netstatemetrics.New()),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting coregw", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := emitter.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("coregw stopped")
}

func buildStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (subscriberstore.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		log.Info("no postgres DSN configured, using in-memory subscriber store")
		return subscriberstore.NewInMemory(), func() {}, nil
	}

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	st := subscriberstore.NewPostgres(db)
	if err := st.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("using postgres subscriber store")
	return st, func() { db.Close() }, nil
}

func buildPublisher(ctx context.Context, cfg *config.Config, log *slog.Logger) (audit.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("no kafka brokers configured, auditing to process log")
		return audit.NewSlogPublisher(log), nil
	}
	log.Info("auditing to kafka", "topic", cfg.AuditTopic)
	return audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
}

func buildRouter(cfg *config.Config, log *slog.Logger, handlers ...interface{ Register(chi.Router) }) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(cfg.StoreTimeout + cfg.UpstreamTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/core", handleEndpointDirectory)
	r.Handle("/metrics", promhttp.Handler())
	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

// handleEndpointDirectory lists the management API surface so operators can
// discover it without docs.
func handleEndpointDirectory(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"subscribers": "/core/subscribers",
		"subscriber":  "/core/subscriber",
		"enb-info":    "/core/enb-info",
		"ue-info":     "/core/ue-info",
		"gnb-info":    "/core/gnb-info",
		"pdu-info":    "/core/pdu-info",
		"metrics":     "/metrics",
	})
}
