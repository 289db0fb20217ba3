package httphandler

import (
	"net/http"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

// GetConfig returns the stored Dify credentials with the API key masked.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	view, err := h.configSvc.Get(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toConfigResponse(view))
}

// UpdateConfig saves the Dify base URL and API key. Omitted fields keep their
// stored values; an empty api_key clears the key.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req UpdateConfigRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	details := map[string]string{}
	h.checkURL("base_url", req.BaseURL, details)
	if len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	view, err := h.configSvc.Update(r.Context(), model.DifyConfigUpdate{
		BaseURL: req.BaseURL,
		APIKey:  req.APIKey,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info("dify config updated", "base_url", view.BaseURL, "configured", view.Configured)

	writeJSON(w, http.StatusOK, UpdateConfigResponse{
		Message: "configuration saved",
		BaseURL: view.BaseURL,
		APIKey:  view.MaskedAPIKey,
	})
}

// TestConnection verifies the credentials by listing one dataset.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	data, err := h.configSvc.TestConnection(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TestConnectionResponse{
		Success: true,
		Message: "connection successful",
		Data:    data,
	})
}
