package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"savings/internal/app"
	"savings/internal/core"
	"savings/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.opts.Storage != nil {
		if err := s.opts.Storage.Ping(ctx); err != nil {
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	} else {
		checks["storage"] = "ok"
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	stats := s.ctrl.View().Stats
	m := s.appMetrics

	w.WriteHeader(http.StatusOK)

	// Prometheus-like text format
	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_errors_total HTTP responses with an error status\n")
	fmt.Fprintf(w, "# TYPE http_errors_total counter\n")
	fmt.Fprintf(w, "http_errors_total{class=\"4xx\"} %d\n", traceMetrics.ClientErrors)
	fmt.Fprintf(w, "http_errors_total{class=\"5xx\"} %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP http_response_time_avg_microseconds Mean response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_avg_microseconds gauge\n")
	fmt.Fprintf(w, "http_response_time_avg_microseconds %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP goals Current number of goals\n")
	fmt.Fprintf(w, "# TYPE goals gauge\n")
	fmt.Fprintf(w, "goals %d\n", stats.TotalGoals)
	fmt.Fprintf(w, "goals_completed %d\n\n", stats.Completed)

	fmt.Fprintf(w, "# HELP goal_operations_total Successful goal mutations\n")
	fmt.Fprintf(w, "# TYPE goal_operations_total counter\n")
	fmt.Fprintf(w, "goal_operations_total{op=\"save\"} %d\n", m.goalsSaved.Load())
	fmt.Fprintf(w, "goal_operations_total{op=\"delete\"} %d\n", m.deletions.Load())
	fmt.Fprintf(w, "goal_operations_total{op=\"undo\"} %d\n", m.undos.Load())
	fmt.Fprintf(w, "goal_operations_total{op=\"deposit\"} %d\n", m.deposits.Load())
	fmt.Fprintf(w, "goal_operations_total{op=\"background\"} %d\n", m.backgrounds.Load())
	fmt.Fprintf(w, "goal_operations_total{op=\"upload\"} %d\n\n", m.uploads.Load())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(m.uptime).Seconds())
}

type sortOption struct {
	Value core.SortKey
	Label string
}

var sortOptions = []sortOption{
	{core.SortDateDesc, "Newest First"},
	{core.SortProgressDesc, "Progress"},
	{core.SortTargetDesc, "Target Amount"},
}

// pageData is what the templates see.
type pageData struct {
	app.Page
	Modal        string
	SortOptions  []sortOption
	MaxImage     string
	UndoWindowMs int64
}

func (s *Server) pageData() pageData {
	p := s.ctrl.Page()
	d := pageData{
		Page:         p,
		SortOptions:  sortOptions,
		MaxImage:     app.SizeLabel(s.opts.MaxUploadBytes),
		UndoWindowMs: s.opts.UndoWindow.Milliseconds(),
	}
	if p.UI.Action != nil {
		d.Modal = string(p.UI.Action.Type)
	}
	return d
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			"error_type", log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", s.pageData()); err != nil {
		s.events.LogError(r.Context(), "Index template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.LogFields{"template": "index.html"})
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleApp re-renders the whole application partial.
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	s.writeApp(w, r, NewHTMXResponse())
}

// writeApp renders the "app" partial into b and writes it.
func (s *Server) writeApp(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder) {
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "app", s.pageData()); err != nil {
		s.events.LogError(r.Context(), "App template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.LogFields{"template": "app"})
		InternalServerError("Failed to render").Write(w)
		return
	}
	b.BodyHTML(buf.String()).Write(w)
}

// writeToast re-renders after a successful mutation and raises the toast.
func (s *Server) writeToast(w http.ResponseWriter, r *http.Request, toast app.Toast) {
	b := NewHTMXResponse()
	if toast.Undo {
		b.TriggerUndoNotification(toast.Message, int(s.opts.UndoWindow.Milliseconds()))
	} else {
		b.TriggerSuccessNotification(toast.Message)
	}
	s.writeApp(w, r, b)
}

// writeError maps controller errors onto responses. Form validation
// failures become a 422 with an alert; the open modal stays as it was.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr) && op == log.OpUpload:
		// Upload problems surface as a toast rather than an alert.
		logger.InfoContext(ctx, "Image rejected", log.FieldOperation, op, log.FieldError, err,
			"error_type", log.ErrorTypeValidation)
		ErrorResponse(http.StatusUnprocessableEntity, verr.Message).TriggerErrorNotification(verr.Message).Write(w)
	case errors.As(err, &verr):
		logger.InfoContext(ctx, "Validation failed", log.FieldOperation, op, log.FieldError, err,
			"error_type", log.ErrorTypeValidation)
		UnprocessableEntityError(verr.Message).Write(w)
	case errors.Is(err, app.ErrImageRead):
		logger.WarnContext(ctx, "Image upload failed", log.FieldOperation, op, log.FieldError, err)
		ErrorResponse(http.StatusUnprocessableEntity, "Failed to read image").
			TriggerErrorNotification("Failed to read image").Write(w)
	case errors.Is(err, errBadID):
		BadRequestError("Invalid goal id").Write(w)
	case errors.Is(err, app.ErrGoalNotFound):
		logger.WarnContext(ctx, "Goal not found", log.FieldOperation, op, log.FieldError, err,
			"error_type", log.ErrorTypeNotFound)
		NotFoundError("Goal not found").TriggerErrorNotification("That goal no longer exists").Write(w)
	case errors.Is(err, app.ErrNothingToUndo):
		ConflictError("Nothing to undo").
			TriggerNotification(NotificationInfo, "Nothing to undo", 3000).Write(w)
	case errors.Is(err, app.ErrNoAction):
		logger.InfoContext(ctx, "Stale dialog", log.FieldOperation, op, "error_type", log.ErrorTypeConflict)
		ConflictError("This dialog is no longer open").
			TriggerNotification(NotificationWarning, "This dialog is no longer open", 3000).Write(w)
	default:
		s.events.LogError(ctx, "Request failed", err, log.ComponentHTTP, op, nil)
		InternalServerError("Something went wrong").TriggerErrorNotification("Something went wrong").Write(w)
	}
}
