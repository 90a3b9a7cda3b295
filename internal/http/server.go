package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/cors"

	"savings/internal/app"
	"savings/internal/log"
	"savings/internal/middleware/ratelimit"
	"savings/internal/middleware/security"
	"savings/internal/middleware/trace"
	appweb "savings/web"
)

// Pinger is implemented by storage backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the server. Zero values fall back to defaults.
type Options struct {
	Logger             *log.Logger
	CORSAllowedOrigins []string
	TrustedProxies     []string
	RateLimitPerMinute int
	MaxUploadBytes     int64
	UndoWindow         time.Duration
	// Storage is checked by /readyz when set.
	Storage Pinger
}

type Server struct {
	http.Server
	templates *template.Template
	ctrl      *app.Controller
	opts      Options

	logger *log.Logger
	events *log.StructuredLogger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// appMetrics counts successful goal mutations.
type appMetrics struct {
	uptime      time.Time
	goalsSaved  atomic.Int64
	deletions   atomic.Int64
	undos       atomic.Int64
	deposits    atomic.Int64
	backgrounds atomic.Int64
	uploads     atomic.Int64
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, ctrl *app.Controller, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 2 << 20
	}
	if opts.UndoWindow <= 0 {
		opts.UndoWindow = 7 * time.Second
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		ctrl:             ctrl,
		opts:             opts,
		logger:           opts.Logger.WithComponent(log.ComponentHTTP),
		events:           log.NewStructuredLogger(opts.Logger),
		securityDetector: security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Methods:           []string{http.MethodPost},
		}),
		appMetrics: &appMetrics{uptime: time.Now()},
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.securityDetector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(opts.Logger, s.securityDetector.ExtractClientIP)

	t, err := template.New("savings").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err,
			log.FieldComponent, log.ComponentTemplate)
		t = nil
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	// UI partials
	mux.HandleFunc("/ui/app", s.handleApp)
	mux.HandleFunc("/ui/modal/create", s.handleOpenModal(app.ActionCreate))
	mux.HandleFunc("/ui/modal/edit", s.handleOpenModal(app.ActionEdit))
	mux.HandleFunc("/ui/modal/delete", s.handleOpenModal(app.ActionDelete))
	mux.HandleFunc("/ui/modal/deposit", s.handleOpenModal(app.ActionAddMoney))
	mux.HandleFunc("/ui/modal/background", s.handleOpenModal(app.ActionCustomizeBackground))
	mux.HandleFunc("/ui/modal/close", s.handleCloseModal)
	mux.HandleFunc("/ui/menu", s.handleToggleMenu)
	mux.HandleFunc("/ui/menu/close", s.handleCloseMenu)
	mux.HandleFunc("/ui/filter", s.handleFilter)
	mux.HandleFunc("/ui/sort", s.handleSort)
	mux.HandleFunc("/ui/theme", s.handleTheme)
	mux.HandleFunc("/ui/background/color", s.handleSelectColor)
	mux.HandleFunc("/ui/background/tab", s.handleSwitchTab)
	mux.HandleFunc("/ui/background/image", s.handleUploadImage)
	mux.HandleFunc("/ui/background/image/remove", s.handleRemoveImage)

	// Goal mutations
	mux.HandleFunc("/goals", s.handleSaveGoal)
	mux.HandleFunc("/goals/delete", s.handleDeleteGoal)
	mux.HandleFunc("/goals/undo", s.handleUndo)
	mux.HandleFunc("/goals/deposit", s.handleDeposit)
	mux.HandleFunc("/goals/background", s.handleSaveBackground)

	s.Handler = s.chain(mux)
	return s
}

// chain wraps the mux, outermost first: CORS, tracing, security headers,
// suspicious request logging, rate limiting.
func (s *Server) chain(mux http.Handler) http.Handler {
	h := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit)(mux)
	h = s.securityDetector.Middleware(s.opts.Logger)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.traceMiddleware.Middleware(h)

	if len(s.opts.CORSAllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: s.opts.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "HX-Request", "HX-Target", "HX-Trigger", "HX-Current-URL"},
			ExposedHeaders: []string{"HX-Trigger", "X-Request-ID"},
		})
		h = c.Handler(h)
	}
	return h
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldComponent, log.ComponentRateLimit)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").
		TriggerErrorNotification("Too many requests, slow down a little.").
		Write(w)
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
