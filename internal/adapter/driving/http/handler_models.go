package httphandler

import (
	"net/http"

	"github.com/ericfisherdev/difystudio/internal/application"
	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

// ListModels returns all registered AI models with their keys masked.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.modelSvc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := make([]ModelResponse, 0, len(models))
	for _, m := range models {
		resp = append(resp, toModelResponse(m))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateModel registers a new AI model.
func (h *Handler) CreateModel(w http.ResponseWriter, r *http.Request) {
	var req CreateModelRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	details := map[string]string{}
	checkObject("config", req.Config, details)
	if len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	m, err := h.modelSvc.Create(r.Context(), application.NewModelInput{
		Name:      req.Name,
		Provider:  req.Provider,
		ModelName: req.ModelName,
		BaseURL:   req.BaseURL,
		APIKey:    req.APIKey,
		Enabled:   req.Enabled,
		Config:    req.Config,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info("model registered", "id", m.ID, "provider", m.Provider)

	writeJSON(w, http.StatusCreated, ModelMutationResponse{
		Message: "model created",
		Model:   toModelResponse(m),
	})
}

// UpdateModel applies a partial update to a registered model.
func (h *Handler) UpdateModel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("model_id")

	var req UpdateModelRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	details := map[string]string{}
	h.checkURL("base_url", req.BaseURL, details)
	checkObject("config", req.Config, details)
	if len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	update := model.AIModelUpdate{
		Name:      req.Name,
		Provider:  req.Provider,
		ModelName: req.ModelName,
		BaseURL:   req.BaseURL,
		APIKey:    req.APIKey,
		Enabled:   req.Enabled,
	}
	if len(req.Config) > 0 && string(req.Config) != "null" {
		update.Config = req.Config
	}

	m, err := h.modelSvc.Update(r.Context(), id, update)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ModelMutationResponse{
		Message: "model updated",
		Model:   toModelResponse(m),
	})
}

// DeleteModel removes a registered model.
func (h *Handler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("model_id")

	if err := h.modelSvc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info("model deleted", "id", id)

	writeJSON(w, http.StatusOK, messageResponse{Message: "model deleted"})
}
