package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"connectrpc.com/connect"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/payhive/internal/auth"
	"github.com/mmynk/payhive/internal/config"
	"github.com/mmynk/payhive/internal/ledger"
	"github.com/mmynk/payhive/internal/metrics"
	"github.com/mmynk/payhive/internal/middleware"
	"github.com/mmynk/payhive/internal/payment"
	"github.com/mmynk/payhive/internal/service"
	"github.com/mmynk/payhive/internal/storage"
	"github.com/mmynk/payhive/internal/storage/memory"
	"github.com/mmynk/payhive/internal/storage/sqlite"
	"github.com/mmynk/payhive/pkg/api"
)

// backend is what the server needs from a store.
type backend interface {
	storage.Store
	storage.UserStore
}

// serverDeps are collaborators the host supplies outside the config file.
type serverDeps struct {
	// tokenClient enables the PYUSD rail.
	tokenClient payment.TokenClient
	// paypalHTTPClient replaces the PayPal gateway's HTTP client.
	paypalHTTPClient *http.Client
}

type server struct {
	handler http.Handler
	closers []func() error
}

// newServer wires storage, the ledger, payment rails and the RPC services.
func newServer(cfg *config.Config, deps serverDeps) (*server, error) {
	s := &server{}

	store, err := openStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, store.Close)

	recorder := metrics.New()
	l := ledger.New(store, ledger.WithObserver(recorder))

	gateways, err := buildGateways(cfg, deps)
	if err != nil {
		s.Close()
		return nil, err
	}

	breaker := payment.DefaultBreakerConfig()
	if cfg.Payments.Breaker.ConsecutiveFailures > 0 {
		breaker.ConsecutiveFailures = cfg.Payments.Breaker.ConsecutiveFailures
	}
	if cfg.Payments.Breaker.Timeout > 0 {
		breaker.Timeout = cfg.Payments.Breaker.Timeout
	}
	opts := []payment.Option{
		payment.WithRecorder(store),
		payment.WithObserver(recorder),
		payment.WithPreferredRail(cfg.Payments.PreferredRail),
		payment.WithBreakerConfig(breaker),
	}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, client.Close)
		opts = append(opts, payment.WithLocker(payment.NewRedisLocker(client, cfg.Redis.LockTTL)))
		slog.Info("Settlement locks shared through Redis", "addr", cfg.Redis.Addr)
	}
	orchestrator := payment.NewOrchestrator(gateways, opts...)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, slog.Default()),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	))
	mux.Handle(api.NewGroupServiceHandler(service.NewGroupService(l, store), interceptors))
	mux.Handle(api.NewExpenseServiceHandler(
		service.NewExpenseService(l, service.WithParticipantOnlyApprovals(cfg.Approvals.ParticipantsOnly)),
		interceptors,
	))
	mux.Handle(api.NewSettlementServiceHandler(service.NewSettlementService(l, orchestrator, store), interceptors))
	mux.Handle("/metrics", recorder.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// h2c serves HTTP/2 without TLS, which Connect clients use.
	s.handler = h2c.NewHandler(loggingMiddleware(corsMiddleware(cfg.Server.CORSOrigins, mux)), &http2.Server{})
	return s, nil
}

func (s *server) Handler() http.Handler { return s.handler }

// Close releases the store and the Redis client.
func (s *server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openStore(path string) (backend, error) {
	if path == ":memory:" {
		slog.Info("Storage initialized", "backend", "memory")
		return memory.New(), nil
	}
	store, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "backend", "sqlite", "database", path)
	return store, nil
}

// buildGateways returns the configured rails, PYUSD first.
func buildGateways(cfg *config.Config, deps serverDeps) ([]payment.Gateway, error) {
	var gateways []payment.Gateway

	if deps.tokenClient != nil {
		fee, err := decimal.NewFromString(cfg.Payments.PYUSD.NetworkFee)
		if err != nil {
			return nil, fmt.Errorf("invalid payments.pyusd.network_fee %q: %w", cfg.Payments.PYUSD.NetworkFee, err)
		}
		gateways = append(gateways, payment.NewPYUSDGateway(deps.tokenClient, fee))
	} else {
		slog.Info("PYUSD rail disabled: no token client", "preferred_rail", cfg.Payments.PreferredRail)
	}

	pp := cfg.Payments.PayPal
	if pp.ClientID != "" && pp.ClientSecret != "" {
		gateways = append(gateways, payment.NewPayPalGateway(payment.PayPalConfig{
			ClientID:     pp.ClientID,
			ClientSecret: pp.ClientSecret,
			BaseURL:      pp.BaseURL,
			Currency:     pp.Currency,
			BrandName:    "PayHive",
			ReturnURL:    pp.ReturnURL,
			CancelURL:    pp.CancelURL,
			HTTPClient:   deps.paypalHTTPClient,
		}))
	}

	if len(gateways) == 0 {
		slog.Warn("No payment rails configured; SettleUp will report every rail unavailable")
	}
	return gateways, nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowAll := slices.Contains(origins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
