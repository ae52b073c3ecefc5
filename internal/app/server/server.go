package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"payslip/internal/domain/payslip"
	"payslip/internal/platform/config"
	"payslip/internal/platform/db"
	"payslip/internal/platform/email"
	"payslip/internal/platform/metrics"
	"payslip/internal/platform/render"
	"payslip/internal/platform/storage"
	payslipshandler "payslip/internal/transport/http/handlers/payslip"
	"payslip/internal/transport/http/api"
	"payslip/internal/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

// Deps are the collaborators the HTTP surface needs. DB may be nil.
type Deps struct {
	Config      config.Config
	DB          *pgxpool.Pool
	Service     *payslip.Service
	Idempotency *middleware.IdempotencyStore
	Metrics     *metrics.Collector
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = db.Connect(ctx, cfg)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				log.Fatalf("migrations failed: %v", err)
			}
		}
	} else {
		slog.Warn("DATABASE_URL not set, batches are kept in memory")
	}

	service, collector, err := NewService(ctx, cfg, pool)
	if err != nil {
		log.Fatalf("service setup failed: %v", err)
	}

	router := NewRouter(Deps{
		Config:      cfg,
		DB:          pool,
		Service:     service,
		Idempotency: middleware.NewIdempotencyStore(pool),
		Metrics:     collector,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}()

	slog.Info("payslip server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

// NewService wires the payslip service from configuration.
func NewService(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (*payslip.Service, *metrics.Collector, error) {
	generator, err := render.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	objects, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	profile, err := config.LoadCompany(cfg)
	if err != nil {
		return nil, nil, err
	}
	company := payslip.Company{Name: profile.Name, Address: profile.Address, City: profile.City, Logo: profile.Logo}

	var store payslip.StoreAPI = payslip.NewMemoryStore()
	if pool != nil {
		store = payslip.NewStore(pool)
	}
	collector := metrics.New()

	processor := &payslip.Processor{
		Generator:     generator,
		Storage:       objects,
		Company:       company,
		RenderTimeout: cfg.RenderTimeout,
		Recorder:      collector,
	}
	distributor := &payslip.Distributor{
		Mailer:      email.New(cfg),
		Storage:     objects,
		From:        cfg.EmailFrom,
		Company:     company,
		Limiter:     rate.NewLimiter(rate.Limit(cfg.MailRatePerSecond), 1),
		Concurrency: cfg.MailConcurrency,
	}
	return payslip.NewService(store, objects, processor, distributor), collector, nil
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(deps.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.BodyLimit(cfg.MaxUploadBytes))

		payslipHandler := payslipshandler.NewHandler(deps.Service, deps.Idempotency)
		payslipHandler.RegisterRoutes(r)
	})

	return router
}
