// Package httphandler implements the JSON REST driving adapter.
package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ericfisherdev/difystudio/internal/application"
	"github.com/ericfisherdev/difystudio/internal/metrics"
)

// DefaultMaxUploadBytes matches Dify's own upload limit.
const DefaultMaxUploadBytes int64 = 15 << 20

// Version is reported by the root endpoint.
const Version = "0.1.0"

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	configSvc   *application.ConfigService
	datasetSvc  *application.DatasetService
	workflowSvc *application.WorkflowService
	modelSvc    *application.ModelService
	healthSvc   *application.HealthService
	validate    *validator.Validate
	logger      *slog.Logger
	now         func() time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	configSvc *application.ConfigService,
	datasetSvc *application.DatasetService,
	workflowSvc *application.WorkflowService,
	modelSvc *application.ModelService,
	healthSvc *application.HealthService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		configSvc:   configSvc,
		datasetSvc:  datasetSvc,
		workflowSvc: workflowSvc,
		modelSvc:    modelSvc,
		healthSvc:   healthSvc,
		validate:    newValidator(),
		logger:      logger,
		now:         time.Now,
	}
}

// ServerOptions carries the cross-cutting settings applied around the routes.
// MaxUploadBytes caps multipart upload bodies; zero means
// DefaultMaxUploadBytes.
type ServerOptions struct {
	AllowedOrigins []string
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	MaxUploadBytes int64
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with recovery, metrics, logging and CORS middleware.
func NewServeMux(h *Handler, logger *slog.Logger, opts ServerOptions) http.Handler {
	mux := http.NewServeMux()

	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	var routes []string
	handle := func(pattern string, handler http.Handler) {
		mux.Handle(pattern, handler)
		routes = append(routes, pattern)
	}

	handle("GET /{$}", http.HandlerFunc(h.Root))
	handle("GET /health", http.HandlerFunc(h.Health))
	if opts.MetricsHandler != nil {
		handle("GET /metrics", opts.MetricsHandler)
	}

	handle("GET /api/config", http.HandlerFunc(h.GetConfig))
	handle("POST /api/config", http.HandlerFunc(h.UpdateConfig))
	handle("GET /api/config/test", http.HandlerFunc(h.TestConnection))

	handle("GET /api/datasets", http.HandlerFunc(h.ListDatasets))
	handle("POST /api/datasets", http.HandlerFunc(h.CreateDataset))
	handle("DELETE /api/datasets/{dataset_id}", http.HandlerFunc(h.DeleteDataset))
	handle("GET /api/datasets/{dataset_id}/files", http.HandlerFunc(h.ListDocuments))
	handle("POST /api/datasets/{dataset_id}/files", limitBodyMiddleware(maxUpload, http.HandlerFunc(h.UploadDocument)))
	handle("DELETE /api/datasets/{dataset_id}/files/{document_id}", http.HandlerFunc(h.DeleteDocument))

	handle("GET /api/models", http.HandlerFunc(h.ListModels))
	handle("POST /api/models", http.HandlerFunc(h.CreateModel))
	handle("PATCH /api/models/{model_id}", http.HandlerFunc(h.UpdateModel))
	handle("DELETE /api/models/{model_id}", http.HandlerFunc(h.DeleteModel))

	handle("POST /api/workflows/{workflow_id}/run", http.HandlerFunc(h.RunWorkflow))
	handle("GET /api/workflows/runs/{run_id}", http.HandlerFunc(h.GetWorkflowRun))
	handle("POST /api/workflows/files", limitBodyMiddleware(maxUpload, http.HandlerFunc(h.UploadWorkflowFile)))
	handle("POST /api/workflows/generate-dsl", http.HandlerFunc(h.GenerateDSL))

	mux.Handle("GET /docs", docsHandler(routes))

	// Recovery innermost so panics are caught before logging.
	var wrapped http.Handler = recoveryMiddleware(logger, mux)
	if opts.HTTPMetrics != nil {
		wrapped = metricsMiddleware(opts.HTTPMetrics, wrapped)
	}
	wrapped = loggingMiddleware(logger, wrapped)
	if len(opts.AllowedOrigins) > 0 {
		wrapped = corsMiddleware(opts.AllowedOrigins, wrapped)
	}

	return wrapped
}

// Root describes the service.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message: "Dify Studio API",
		Version: Version,
		Docs:    "/docs",
	})
}

// docsHandler lists the registered route patterns.
func docsHandler(routes []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, DocsResponse{Routes: routes})
	})
}

// Health returns the service health status. The status is degraded when the
// database cannot be reached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.healthSvc.Check(r.Context())

	resp := HealthResponse{
		Status:     "ok",
		Time:       h.now().UTC().Format(time.RFC3339),
		Database:   "ok",
		Configured: report.Configured,
	}
	status := http.StatusOK
	if !report.Healthy() {
		resp.Status = "degraded"
		resp.Database = "unavailable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}
