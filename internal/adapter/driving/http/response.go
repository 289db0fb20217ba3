package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ericfisherdev/difystudio/internal/application"
	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error","code":500,"success":false}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeRawJSON writes an upstream JSON body through unchanged.
func writeRawJSON(w http.ResponseWriter, status int, body json.RawMessage) {
	if len(body) == 0 {
		body = json.RawMessage(`{}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: status})
}

// writeUploadTooLarge writes a 413 naming the byte limit.
func writeUploadTooLarge(w http.ResponseWriter, limit int64) {
	writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", limit))
}

// writeValidationError writes a 422 with per-field details.
func writeValidationError(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:   "validation failed",
		Code:    http.StatusUnprocessableEntity,
		Details: details,
	})
}

// writeServiceError maps an application or adapter error onto the error envelope.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var upErr *driven.UpstreamError

	switch {
	case errors.Is(err, driven.ErrNotConfigured):
		writeError(w, http.StatusBadRequest, "dify api key is not configured")
	case errors.Is(err, driven.ErrModelNotFound):
		writeError(w, http.StatusNotFound, "model not found")
	case errors.Is(err, application.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &upErr):
		status := upErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		h.logger.Warn("dify api error", "path", r.URL.Path, "status", upErr.StatusCode)
		writeError(w, status, upErr.Error())
	case errors.Is(err, driven.ErrUpstreamUnavailable):
		h.logger.Error("dify connection error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "dify connection error")
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error   string            `json:"error"`
	Code    int               `json:"code"`
	Success bool              `json:"success"`
	Details map[string]string `json:"details,omitempty"`
}

// messageResponse is the body of operations that only confirm success.
type messageResponse struct {
	Message string `json:"message"`
}

// RootResponse describes the service at GET /.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

// DocsResponse lists the API routes at GET /docs.
type DocsResponse struct {
	Routes []string `json:"routes"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status     string `json:"status"`
	Time       string `json:"time"`
	Database   string `json:"database"`
	Configured bool   `json:"configured"`
}

// ConfigResponse is the masked credential record.
type ConfigResponse struct {
	BaseURL    string `json:"base_url"`
	APIKey     string `json:"api_key"`
	Configured bool   `json:"configured"`
}

// UpdateConfigRequest is the JSON body for the config update endpoint.
// Omitted fields keep their stored value.
type UpdateConfigRequest struct {
	BaseURL *string `json:"base_url"`
	APIKey  *string `json:"api_key"`
}

// UpdateConfigResponse confirms a credential update.
type UpdateConfigResponse struct {
	Message string `json:"message"`
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

// TestConnectionResponse reports a successful round trip to Dify.
type TestConnectionResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// UploadDocumentResponse confirms a file upload into a dataset.
type UploadDocumentResponse struct {
	Message    string          `json:"message"`
	DatasetID  string          `json:"dataset_id"`
	FileName   string          `json:"file_name"`
	DocumentID string          `json:"document_id"`
	Result     json.RawMessage `json:"result"`
}

// ModelResponse is the JSON representation of a registered AI model. The API
// key is always masked.
type ModelResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Provider  string          `json:"provider"`
	ModelName string          `json:"model_name"`
	BaseURL   string          `json:"base_url"`
	APIKey    string          `json:"api_key"`
	Enabled   bool            `json:"enabled"`
	Config    json.RawMessage `json:"config"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// ModelMutationResponse wraps a model returned from create or update.
type ModelMutationResponse struct {
	Message string        `json:"message"`
	Model   ModelResponse `json:"model"`
}

// CreateModelRequest is the JSON body for the model create endpoint.
type CreateModelRequest struct {
	Name      string          `json:"name" validate:"required"`
	Provider  string          `json:"provider" validate:"required"`
	ModelName string          `json:"model_name" validate:"required"`
	BaseURL   string          `json:"base_url" validate:"omitempty,url"`
	APIKey    string          `json:"api_key"`
	Enabled   *bool           `json:"enabled"`
	Config    json.RawMessage `json:"config"`
}

// UpdateModelRequest is the JSON body for the model patch endpoint. Omitted
// fields are left unchanged.
type UpdateModelRequest struct {
	Name      *string         `json:"name" validate:"omitempty,min=1"`
	Provider  *string         `json:"provider" validate:"omitempty,min=1"`
	ModelName *string         `json:"model_name" validate:"omitempty,min=1"`
	BaseURL   *string         `json:"base_url"`
	APIKey    *string         `json:"api_key"`
	Enabled   *bool           `json:"enabled"`
	Config    json.RawMessage `json:"config"`
}

// GenerateDSLResponse wraps a drafted workflow definition.
type GenerateDSLResponse struct {
	DSL     application.WorkflowDSL `json:"dsl"`
	Message string                  `json:"message"`
}

func toConfigResponse(v application.ConfigView) ConfigResponse {
	return ConfigResponse{
		BaseURL:    v.BaseURL,
		APIKey:     v.MaskedAPIKey,
		Configured: v.Configured,
	}
}

// toModelResponse converts a domain AIModel to its JSON representation.
func toModelResponse(m model.AIModel) ModelResponse {
	cfg := m.Config
	if len(cfg) == 0 {
		cfg = json.RawMessage(`{}`)
	}

	return ModelResponse{
		ID:        m.ID,
		Name:      m.Name,
		Provider:  m.Provider,
		ModelName: m.ModelName,
		BaseURL:   m.BaseURL,
		APIKey:    model.MaskAPIKey(m.APIKey),
		Enabled:   m.Enabled,
		Config:    cfg,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: m.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
