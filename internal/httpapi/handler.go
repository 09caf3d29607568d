package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/kevinxuez/social-map/internal/auth"
	"github.com/kevinxuez/social-map/internal/db"
	"github.com/kevinxuez/social-map/internal/graphcache"
	"github.com/kevinxuez/social-map/internal/metrics"
	"github.com/kevinxuez/social-map/internal/sqlcgen"
)

const (
	DefaultRateLimitPerMinute = 120
	maxImportBytes            = 10 << 20
)

// Store is the query surface the handlers use. *sqlcgen.Queries satisfies it.
type Store interface {
	ListGroups(ctx context.Context) ([]sqlcgen.Group, error)
	GetGroup(ctx context.Context, id string) (sqlcgen.Group, error)
	CreateGroup(ctx context.Context, arg sqlcgen.CreateGroupParams) (sqlcgen.Group, error)
	UpdateGroup(ctx context.Context, arg sqlcgen.UpdateGroupParams) (sqlcgen.Group, error)
	DeleteGroup(ctx context.Context, id string) (int64, error)
	ReassignMainGroup(ctx context.Context, groupID string) (int64, error)
	DeleteGroupMemberships(ctx context.Context, groupID string) error

	ListEntities(ctx context.Context, arg sqlcgen.ListEntitiesParams) ([]sqlcgen.Entity, error)
	GetEntity(ctx context.Context, id string) (sqlcgen.Entity, error)
	FindEntityByEmail(ctx context.Context, email string) (sqlcgen.Entity, error)
	CreateEntity(ctx context.Context, arg sqlcgen.CreateEntityParams) (sqlcgen.Entity, error)
	UpdateEntity(ctx context.Context, arg sqlcgen.UpdateEntityParams) (sqlcgen.Entity, error)
	UpdateEntityPosition(ctx context.Context, arg sqlcgen.UpdateEntityPositionParams) (int64, error)
	DeleteEntity(ctx context.Context, id string) (int64, error)

	ListMemberships(ctx context.Context) ([]sqlcgen.Membership, error)
	ListEntityGroupIDs(ctx context.Context, entityID string) ([]string, error)
	AddMembership(ctx context.Context, arg sqlcgen.AddMembershipParams) error
	RemoveMembership(ctx context.Context, arg sqlcgen.AddMembershipParams) error

	ListEdges(ctx context.Context) ([]sqlcgen.Edge, error)
	FindEdgeByPair(ctx context.Context, arg sqlcgen.EdgePairParams) (sqlcgen.Edge, error)
	CreateEdge(ctx context.Context, arg sqlcgen.CreateEdgeParams) (sqlcgen.Edge, error)
	UpdateEdgeLabel(ctx context.Context, arg sqlcgen.UpdateEdgeLabelParams) (int64, error)
	DeleteEdge(ctx context.Context, id string) (int64, error)
	DeleteEdgeByPair(ctx context.Context, arg sqlcgen.EdgePairParams) (int64, error)
	DeleteEntityEdges(ctx context.Context, entityID string) error
	ListNeighborIDs(ctx context.Context, entityID string) ([]string, error)
}

type Config struct {
	// CORSOrigins may be credentialed, so "*" is not a useful value here.
	CORSOrigins        []string
	RateLimitPerMinute int
	DisableRateLimit   bool

	Cache    graphcache.Cache
	Metrics  *metrics.Metrics
	Verifier *auth.Verifier
}

type Handler struct {
	log      zerolog.Logger
	pool     *db.Pool
	store    Store
	cache    graphcache.Cache
	metrics  *metrics.Metrics
	verifier *auth.Verifier
	validate *validator.Validate
	cfg      Config
}

func NewHandler(log zerolog.Logger, pool *db.Pool, cfg Config) *Handler {
	h := &Handler{
		log:      log,
		pool:     pool,
		cache:    cfg.Cache,
		metrics:  cfg.Metrics,
		verifier: cfg.Verifier,
		validate: newValidator(),
		cfg:      cfg,
	}
	if q := pool.Queries(); q != nil {
		h.store = q
	}
	if h.cache == nil {
		h.cache = graphcache.NewMemory()
	}
	if len(h.cfg.CORSOrigins) == 0 {
		h.cfg.CORSOrigins = []string{"http://localhost:3000"}
	}
	if h.cfg.RateLimitPerMinute <= 0 {
		h.cfg.RateLimitPerMinute = DefaultRateLimitPerMinute
	}
	return h
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(h.accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if !h.cfg.DisableRateLimit {
		r.Use(httprate.Limit(
			h.cfg.RateLimitPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				h.writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
			}),
		))
	}

	// Health
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyZ)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.verifier.Middleware(h.unauthorized))

		r.Route("/graph", func(r chi.Router) {
			r.Get("/", h.handleGetGraph)
			r.Put("/positions", h.handleSavePositions)
		})

		r.Route("/entities", func(r chi.Router) {
			r.Get("/", h.handleListEntities)
			r.Post("/", h.handleCreateEntity)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", h.handlePatchEntity)
				r.Delete("/", h.handleDeleteEntity)
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", h.handleListGroups)
			r.Post("/", h.handleCreateGroup)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", h.handlePatchGroup)
				r.Delete("/", h.handleDeleteGroup)
			})
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", h.handleCreateEdge)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", h.handlePatchEdge)
				r.Delete("/", h.handleDeleteEdge)
			})
		})

		r.Route("/csv", func(r chi.Router) {
			r.Get("/export", h.handleExportCSV)
			r.Post("/import", h.handleImportCSV)
		})

		r.Post("/telemetry", h.handleTelemetry)
	})

	return r
}

// echoRequestID returns the request id to the caller.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		h.metrics.ObserveHTTPRequest(r.Method, path, status, time.Since(start))

		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("http_request")
	})
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected session token")
	h.writeError(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	resp := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	}
	if details != nil {
		resp["error"].(map[string]any)["details"] = details
	}
	h.writeJSON(w, status, resp)
}

// decodeJSONLenient accepts unknown fields and ignores trailing data.
func decodeJSONLenient(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func decodeJSONStrict(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected extra data after JSON body")
		}
		return err
	}
	return nil
}

// decodeBody writes the 400 response itself and reports whether to go on.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSONStrict(r, dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) validateStruct(w http.ResponseWriter, v any) bool {
	return h.validationResult(w, h.validate.Struct(v))
}

func (h *Handler) validationResult(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	details := map[string]any{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	} else {
		details["error"] = err.Error()
	}
	h.writeError(w, http.StatusBadRequest, "validation_failed", "request validation failed", details)
	return false
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) handleReadyZ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.pool == nil {
		h.writeError(w, http.StatusServiceUnavailable, "db_unavailable", "database not configured", nil)
		return
	}

	if err := h.pool.Ping(ctx); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "db_unavailable", "database not ready", map[string]any{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

func (h *Handler) ensureStore(w http.ResponseWriter) bool {
	if h.store == nil {
		h.writeError(w, http.StatusServiceUnavailable, "db_unavailable", "database not configured", nil)
		return false
	}
	return true
}

// inTx runs fn in a database transaction. Without a pool (tests) fn runs
// directly against the configured store.
func (h *Handler) inTx(ctx context.Context, fn func(s Store) error) error {
	if h.pool == nil {
		return fn(h.store)
	}
	return h.pool.InTx(ctx, func(q *sqlcgen.Queries) error {
		return fn(q)
	})
}

// pathID reads and validates the {id} route parameter.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, what string) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", what+" id is not a valid uuid", map[string]any{"id": id})
		return "", false
	}
	return id, true
}

var errNotFound = errors.New("not found")

func isInvalidUUID(err error) bool {
	return hasPgCode(err, "22P02")
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

// storeError maps a query error onto the error envelope.
func (h *Handler) storeError(w http.ResponseWriter, err error, what, op string, id string) {
	details := map[string]any{}
	if id != "" {
		details["id"] = id
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, errNotFound):
		h.writeError(w, http.StatusNotFound, "not_found", what+" not found", details)
	case isInvalidUUID(err):
		h.writeError(w, http.StatusBadRequest, "invalid_id", "id is not a valid uuid", details)
	case hasPgCode(err, "23505"):
		h.writeError(w, http.StatusBadRequest, "conflict", what+" conflicts with an existing record", details)
	case hasPgCode(err, "23503"):
		h.writeError(w, http.StatusBadRequest, "validation_failed", "referenced record does not exist", details)
	case hasPgCode(err, "23514"):
		h.writeError(w, http.StatusBadRequest, "validation_failed", what+" violates a constraint", details)
	default:
		h.log.Error().Err(err).Str("id", id).Msg(op + " failed")
		h.writeError(w, http.StatusInternalServerError, "db_error", "failed to "+op, nil)
	}
}
