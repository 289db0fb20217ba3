package httphandler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

// maxUploadMemory is how much of a multipart form is kept in memory before
// the remainder spills to temporary files.
const maxUploadMemory = 8 << 20

// ListDatasets returns one page of Dify knowledge bases.
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	opts, ok := parseListOptions(w, r)
	if !ok {
		return
	}

	resp, err := h.datasetSvc.ListDatasets(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeRawJSON(w, http.StatusOK, resp)
}

// CreateDataset forwards the request body to Dify as a new knowledge base.
func (h *Handler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	body, ok := readRawObject(w, r)
	if !ok {
		return
	}

	resp, err := h.datasetSvc.CreateDataset(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeRawJSON(w, http.StatusOK, resp)
}

// DeleteDataset deletes a knowledge base.
func (h *Handler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	datasetID := r.PathValue("dataset_id")

	if err := h.datasetSvc.DeleteDataset(r.Context(), datasetID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "dataset deleted"})
}

// ListDocuments returns one page of documents in a knowledge base.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	opts, ok := parseListOptions(w, r)
	if !ok {
		return
	}

	resp, err := h.datasetSvc.ListDocuments(r.Context(), r.PathValue("dataset_id"), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeRawJSON(w, http.StatusOK, resp)
}

// UploadDocument indexes a multipart "file" into a knowledge base.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	datasetID := r.PathValue("dataset_id")

	upload, cleanup, ok := readUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	upload.ProcessRule = r.FormValue("process_rule")
	upload.IndexingTechnique = r.FormValue("indexing_technique")

	res, err := h.datasetSvc.UploadDocument(r.Context(), datasetID, upload)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadDocumentResponse{
		Message:    "file uploaded",
		DatasetID:  datasetID,
		FileName:   upload.FileName,
		DocumentID: res.DocumentID,
		Result:     res.Result,
	})
}

// DeleteDocument removes a document from a knowledge base.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	err := h.datasetSvc.DeleteDocument(r.Context(), r.PathValue("dataset_id"), r.PathValue("document_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "document deleted"})
}

// parseListOptions reads keyword, page and limit from the query string.
// Absent values are left zero for the service to default.
func parseListOptions(w http.ResponseWriter, r *http.Request) (model.ListOptions, bool) {
	q := r.URL.Query()
	opts := model.ListOptions{Keyword: q.Get("keyword")}

	details := map[string]string{}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			details["page"] = "min=1"
		}
		opts.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			details["limit"] = "range=1..100"
		}
		opts.Limit = n
	}

	if len(details) > 0 {
		writeValidationError(w, details)
		return model.ListOptions{}, false
	}
	return opts, true
}

// readUpload pulls the "file" part out of a multipart request. The returned
// cleanup closes the part and removes temporary files.
func readUpload(w http.ResponseWriter, r *http.Request) (model.DocumentUpload, func(), bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeUploadTooLarge(w, tooLarge.Limit)
			return model.DocumentUpload{}, nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return model.DocumentUpload{}, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = r.MultipartForm.RemoveAll()
		writeValidationError(w, map[string]string{"file": "required"})
		return model.DocumentUpload{}, nil, false
	}

	cleanup := func() {
		_ = file.Close()
		_ = r.MultipartForm.RemoveAll()
	}

	return model.DocumentUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}, cleanup, true
}
