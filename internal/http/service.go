package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/studentalliance/catalog-gateway/internal/config"
	"github.com/studentalliance/catalog-gateway/internal/editor"
	"github.com/studentalliance/catalog-gateway/internal/http/apierr"
	"github.com/studentalliance/catalog-gateway/internal/http/metric"
	"github.com/studentalliance/catalog-gateway/internal/http/middleware"
	"github.com/studentalliance/catalog-gateway/internal/http/swagger"
	"github.com/studentalliance/catalog-gateway/internal/remote"
	"github.com/studentalliance/catalog-gateway/internal/store"
	"github.com/studentalliance/catalog-gateway/internal/view"
	"github.com/studentalliance/catalog-gateway/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTP
	logger    *slog.Logger
	metrics   *metric.Metrics
	validator validator.Validator

	storeSvc   *store.Store
	viewSvc    *view.Service
	editorSvc  *editor.Editor
	productCli *remote.ProductsClient
	authCli    *remote.AuthClient
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	v validator.Validator,
	storeSvc *store.Store,
	viewSvc *view.Service,
	editorSvc *editor.Editor,
	productCli *remote.ProductsClient,
	authCli *remote.AuthClient,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     log.With(slog.String("service", "http")),
		metrics:    metric.New(),
		validator:  v,
		storeSvc:   storeSvc,
		viewSvc:    viewSvc,
		editorSvc:  editorSvc,
		productCli: productCli,
		authCli:    authCli,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	s.metrics.Register(prometheus.DefaultRegisterer)

	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Session(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	r.Route("/admin/products", func(r chi.Router) {
		r.Get("/", s.listProducts)

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", s.openDraft)
			r.Route("/{draftID}", func(r chi.Router) {
				r.Get("/", s.getDraft)
				r.Patch("/", s.applyDraftPatch)
				r.Delete("/", s.discardDraft)
				r.Post("/images", s.uploadDraftImage)
				r.Post("/submit", s.submitDraft)
			})
		})

		r.Route("/{productID}/delete", func(r chi.Router) {
			r.Post("/", s.stageDelete)
			r.Post("/confirm", s.confirmDelete)
			r.Post("/cancel", s.cancelDelete)
		})
	})

	r.Get("/catalog/{category}", s.browseCategory)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/signup", s.signup)
		r.Post("/update-password", s.updatePassword)
	})

	r.Get("/healthz", s.healthz)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding response",
			slog.Any("error", err))
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
