package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"wildcats-food-express/internal/order/api/http/handle"
	"wildcats-food-express/internal/order/api/ws"
	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/app/services"
	"wildcats-food-express/internal/xpkg/config"
	"wildcats-food-express/internal/xpkg/logger"
	"wildcats-food-express/internal/xpkg/telemetry"

	brokermessage "wildcats-food-express/internal/order/adapter/broker_message"
	database "wildcats-food-express/internal/order/adapter/db"
	"wildcats-food-express/internal/order/adapter/memory"
	"wildcats-food-express/internal/order/adapter/notifier"
	"wildcats-food-express/internal/order/adapter/stream"
)

var ErrServerClosed = errors.New("Server closed")

type Server struct {
	mux         *http.ServeMux
	cfg         *config.Config
	srv         *http.Server
	orderParams *core.OrderParams
	mylog       logger.Logger
	metrics     *telemetry.Metrics
	tracer      trace.Tracer

	store     core.IStore
	mb        core.IRabbitMQ
	hub       *ws.Hub
	sinks     []core.ISink
	publisher *notifier.Publisher

	ctx    context.Context
	appCtx context.Context
	mu     sync.Mutex
}

func NewServer(
	ctx, appCtx context.Context,
	cfg *config.Config,
	orderParams *core.OrderParams,
	tel *telemetry.Provider,
	metrics *telemetry.Metrics,
	mylog logger.Logger,
) *Server {
	return &Server{
		ctx:         ctx,
		appCtx:      appCtx,
		cfg:         cfg,
		orderParams: orderParams,
		mylog:       mylog,
		metrics:     metrics,
		tracer:      tel.Tracer,
		mux:         http.NewServeMux(),
	}
}

// Run initializes storage, notification sinks and routes, then serves until
// the server context is cancelled.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	if err := s.initializeStorage(); err != nil {
		mylog.Action("db_connection_failed").Error("Failed to connect to database", err)
		return err
	}
	mylog.Action("db_connected").Info("Storage ready", "storage", s.orderParams.Storage)

	s.initializeSinks()
	s.Configure()

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.orderParams.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()

	mylog.WithGroup("details").With("port", s.orderParams.Port, "max-concurrent", s.orderParams.MaxConcurrent).
		Info("server is running")

	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Action("graceful_shutdown_started").Info("Shutting down HTTP server...")

	var errs []error
	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, core.WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Action("graceful_shutdown_failed").Error("Failed to shut down HTTP server gracefully", err)
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.mylog.Action("sinks_close_failed").Error("Failed to close notification sinks", err)
			errs = append(errs, fmt.Errorf("notification sinks close: %w", err))
		} else {
			s.mylog.Action("sinks_closed").Info("Notification sinks closed")
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.mylog.Action("db_close_failed").Error("Failed to close database", err)
			errs = append(errs, fmt.Errorf("db close: %w", err))
		} else {
			s.mylog.Action("db_closed").Info("Database closed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.mylog.Action("graceful_shutdown_completed").Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	g, ctx := errgroup.WithContext(s.ctx)

	g.Go(func() error {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ErrServerClosed
	})
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) initializeStorage() error {
	if s.orderParams.Storage == core.StorageMemory {
		s.store = memory.New()
		return nil
	}

	db, err := database.Start(s.appCtx, s.cfg.DB, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.store = db
	return nil
}

// initializeSinks wires the websocket hub and whichever brokers are reachable.
// Notifications are best-effort, so a missing broker is logged and skipped.
func (s *Server) initializeSinks() {
	s.hub = ws.NewHub(s.cfg.Server.AllowedOrigins, s.mylog)
	s.sinks = append(s.sinks, s.hub)

	if s.cfg.RMQ != nil && s.cfg.RMQ.Host != "" {
		mb, err := brokermessage.New(s.appCtx, s.cfg.RMQ, s.mylog)
		if err != nil {
			s.mylog.Action("mb_connection_failed").Error("Failed to connect to message broker, continuing without it", err)
		} else {
			s.mb = mb
			s.sinks = append(s.sinks, mb)
			s.mylog.Action("mb_connected").Info("Successful message broker connection", "exchange", s.cfg.RMQ.Exchange)
		}
	}

	if s.cfg.Kafka != nil && len(s.cfg.Kafka.Brokers) > 0 {
		s.sinks = append(s.sinks, stream.New(s.cfg.Kafka.Brokers, s.cfg.Kafka.Topic))
		s.mylog.Action("stream_configured").Info("Publishing order events to kafka", "topic", s.cfg.Kafka.Topic)
	}
}

// Configure builds services and handlers and registers every route.
func (s *Server) Configure() {
	s.publisher = notifier.New(s.mylog, s.metrics, s.sinks...)

	orderService := services.NewOrderService(s.store, s.publisher, s.metrics, s.tracer, s.mylog)
	lifecycleService := services.NewLifecycleService(s.store, s.publisher, s.metrics, s.tracer, s.mylog)
	historyService := services.NewHistoryService(s.store, s.mylog)
	inventoryService := services.NewInventoryService(s.store, s.mylog)
	clientOrderService := services.NewClientOrderService(s.store, s.mylog)

	orderHandler := handle.NewOrderHandler(orderService, lifecycleService, handle.NewReceiptStore(s.cfg.Uploads.ReceiptsDir), s.mylog)
	menuHandler := handle.NewMenuHandler(inventoryService, s.cfg.Uploads.ImagesDir, s.mylog)
	historyHandler := handle.NewHistoryHandler(historyService, s.mylog)
	clientOrderHandler := handle.NewClientOrderHandler(clientOrderService, s.mylog)
	session := handle.NewSessionHandler(s.cfg.Auth.AccessSecret, s.mylog)
	limiter := handle.NewRateLimiter(s.cfg.Server.RateLimit, s.cfg.Server.RateBurst)

	public := func(h http.Handler) http.Handler { return limiter.Limit(h) }
	user := func(h http.Handler) http.Handler { return session.Authenticate(limiter.Limit(h)) }
	admin := func(h http.Handler) http.Handler {
		return session.Authenticate(session.RequireAdmin(limiter.Limit(h)))
	}

	// Register routes
	s.mux.Handle("GET /health", handle.Health(s.store, s.mb))
	s.mux.Handle("GET /ws", s.hub)

	s.mux.Handle("GET /menu", public(menuHandler.List()))
	s.mux.Handle("GET /menu/{id}/quantity", public(menuHandler.Quantity()))
	s.mux.Handle("POST /menu", admin(menuHandler.Create()))
	s.mux.Handle("PUT /menu/{id}", admin(menuHandler.Update()))
	s.mux.Handle("DELETE /menu/{id}", admin(menuHandler.Delete()))
	s.mux.Handle("POST /menu/{id}/adjust", admin(menuHandler.Adjust()))

	s.mux.Handle("POST /orders", user(orderHandler.Create()))
	s.mux.Handle("GET /orders", user(orderHandler.List()))
	s.mux.Handle("PUT /orders/{id}/status", admin(orderHandler.SetStatus()))
	s.mux.Handle("PUT /orders/{id}/payment", user(orderHandler.AttachPayment()))

	s.mux.Handle("GET /history-orders", user(historyHandler.List()))

	s.mux.Handle("POST /clientorders", admin(clientOrderHandler.Create()))
	s.mux.Handle("GET /clientorders", admin(clientOrderHandler.List()))
	s.mux.Handle("PUT /clientorders/{id}/status", admin(clientOrderHandler.SetStatus()))
	s.mux.Handle("DELETE /clientorders/{id}", admin(clientOrderHandler.Delete()))
}

// Handler is the mux behind the cross-cutting middleware.
func (s *Server) Handler() http.Handler {
	return handle.Cors(s.cfg.Server.AllowedOrigins)(handle.MaxConcurrent(s.orderParams.MaxConcurrent)(s.mux))
}
