package httphandler

import (
	"net/http"
	"strings"
)

const defaultUploadUser = "difystudio"

// RunWorkflow forwards a run request for the workflow in the path.
func (h *Handler) RunWorkflow(w http.ResponseWriter, r *http.Request) {
	body, ok := readRawObject(w, r)
	if !ok {
		return
	}

	resp, err := h.workflowSvc.Run(r.Context(), r.PathValue("workflow_id"), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeRawJSON(w, http.StatusOK, resp)
}

// GetWorkflowRun returns the state of a workflow run.
func (h *Handler) GetWorkflowRun(w http.ResponseWriter, r *http.Request) {
	resp, err := h.workflowSvc.GetRun(r.Context(), r.PathValue("run_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeRawJSON(w, http.StatusOK, resp)
}

// UploadWorkflowFile uploads a multipart "file" for use as a workflow input.
func (h *Handler) UploadWorkflowFile(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, ok := readUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	user := strings.TrimSpace(r.FormValue("user"))
	if user == "" {
		user = defaultUploadUser
	}

	resp, err := h.workflowSvc.UploadFile(r.Context(), upload, user)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeRawJSON(w, http.StatusOK, resp)
}

// GenerateDSL drafts a workflow definition from the "description" query
// parameter. The draft is a fixed example.
func (h *Handler) GenerateDSL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	description := strings.TrimSpace(q.Get("description"))
	if description == "" {
		writeValidationError(w, map[string]string{"description": "required"})
		return
	}

	writeJSON(w, http.StatusOK, GenerateDSLResponse{
		DSL:     h.workflowSvc.GenerateDSL(description, q.Get("model_id")),
		Message: "DSL generated (example)",
	})
}
