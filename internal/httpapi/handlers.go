package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"crudstore.app/internal/audit"
	"crudstore.app/internal/auth"
	"crudstore.app/internal/catalog"
	"crudstore.app/internal/obs"
)

const serviceName = "crudstore-api"

type readinessChecker interface {
	Check(ctx context.Context) error
}

// ReadyProbe pings the database when one is configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options wires the services behind the HTTP layer.
type Options struct {
	Auth    *auth.Service
	Catalog *catalog.Service
	// Policy defaults to auth.DefaultPolicy.
	Policy *auth.Policy
	Ready  readinessChecker

	Version string
	Commit  string

	Logger *zap.Logger
	Audit  *audit.Logger

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

// API is the HTTP layer.
type API struct {
	auth       *auth.Service
	codec      *auth.TokenCodec
	catalog    *catalog.Service
	policy     *auth.Policy
	readyProbe readinessChecker
	version    string
	commit     string
	log        *zap.Logger
	audit      *audit.Logger

	allowedOrigins []string
	ratePerSec     float64
	rateBurst      int
	maxBodyBytes   int64
}

func New(opts Options) (*API, error) {
	if opts.Auth == nil {
		return nil, errors.New("httpapi: auth service is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("httpapi: catalog service is required")
	}
	a := &API{
		auth:           opts.Auth,
		codec:          opts.Auth.Codec(),
		catalog:        opts.Catalog,
		policy:         opts.Policy,
		readyProbe:     opts.Ready,
		version:        opts.Version,
		commit:         opts.Commit,
		log:            opts.Logger,
		audit:          opts.Audit,
		allowedOrigins: opts.AllowedOrigins,
		ratePerSec:     opts.RateLimitRPS,
		rateBurst:      opts.RateLimitBurst,
		maxBodyBytes:   opts.MaxBodyBytes,
	}
	if a.policy == nil {
		a.policy = auth.DefaultPolicy()
	}
	if a.readyProbe == nil {
		a.readyProbe = ReadyProbe{}
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.audit == nil {
		a.audit = audit.New(a.log)
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = 1 << 20
	}
	return a, nil
}

// Handler assembles the router. Operational endpoints sit outside the
// authorization policy; everything else passes the filter and the policy.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		RequestID,
		Logging(a.log),
		Recoverer(a.log),
		obs.Instrument,
		SecurityHeaders,
		RateLimit(a.ratePerSec, a.rateBurst),
		MaxBodyBytes(a.maxBodyBytes),
	)

	r.Get("/healthz", a.Healthz)
	r.Get("/readyz", a.Ready)
	r.Get("/version", a.Version)
	r.Handle("/metrics", obs.Handler())

	protected := chi.NewRouter()
	protected.Use(CORS("/api", a.allowedOrigins), a.withAuth, a.authorize)
	protected.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "RESOURCE_NOT_FOUND", "No handler for "+r.Method+" "+r.URL.Path)
	})
	protected.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method "+r.Method+" is not supported")
	})
	protected.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up", a.handleSignUp)
		r.Post("/log-in", a.handleLogIn)
	})
	protected.Route("/api", func(r chi.Router) {
		r.Route("/categorias", func(r chi.Router) {
			r.Get("/", a.listCategories)
			r.Post("/create", a.createCategory)
			r.Get("/{id}", a.getCategory)
			r.Put("/{id}", a.updateCategory)
			r.Delete("/{id}", a.deleteCategory)
		})
		r.Route("/productos", func(r chi.Router) {
			r.Get("/", a.listProducts)
			r.Post("/", a.createProduct)
			r.Get("/categoria/{categoriaId}", a.listProductsByCategory)
			r.Get("/{id}", a.getProduct)
			r.Put("/{id}", a.updateProduct)
			r.Delete("/{id}", a.deleteProduct)
		})
	})
	r.Mount("/", protected)

	return r
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"version": a.version,
		"commit":  a.commit,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// --- helpers ---

// errBadRequest marks request decoding failures; it maps to VALIDATION_ERROR.
var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body is required", errBadRequest)
	}
	err := json.NewDecoder(r.Body).Decode(v)
	var maxErr *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &maxErr):
		return err
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: request body is required", errBadRequest)
	case errors.Is(err, catalog.ErrInvalidInput):
		return err
	default:
		return fmt.Errorf("%w: malformed JSON body", errBadRequest)
	}
}
