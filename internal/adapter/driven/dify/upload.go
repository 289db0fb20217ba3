package dify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// documentData is the JSON "data" field of a create-by-file request.
type documentData struct {
	IndexingTechnique string      `json:"indexing_technique"`
	ProcessRule       processRule `json:"process_rule"`
}

type processRule struct {
	Mode string `json:"mode"`
}

// CreateDocumentByFile uploads a file into a knowledge base and starts indexing it.
func (c *Client) CreateDocumentByFile(ctx context.Context, creds model.UpstreamCredentials, datasetID string, upload model.DocumentUpload) (json.RawMessage, error) {
	data, err := json.Marshal(documentData{
		IndexingTechnique: upload.IndexingTechnique,
		ProcessRule:       processRule{Mode: upload.ProcessRule},
	})
	if err != nil {
		return nil, fmt.Errorf("encode document data: %w", err)
	}

	body, contentType, err := buildMultipart(upload, map[string]string{"data": string(data)})
	if err != nil {
		return nil, err
	}

	req := request{
		operation:   "create_document_by_file",
		scope:       model.KeyScopeDataset,
		method:      http.MethodPost,
		path:        "/datasets/" + url.PathEscape(datasetID) + "/document/create-by-file",
		body:        body,
		contentType: contentType,
	}
	return c.do(ctx, creds, req)
}

// UploadFile uploads a file for later use as a workflow input.
func (c *Client) UploadFile(ctx context.Context, creds model.UpstreamCredentials, upload model.DocumentUpload, user string) (json.RawMessage, error) {
	body, contentType, err := buildMultipart(upload, map[string]string{"user": user})
	if err != nil {
		return nil, err
	}

	req := request{
		operation:   "upload_file",
		scope:       model.KeyScopeWorkflow,
		method:      http.MethodPost,
		path:        "/files/upload",
		body:        body,
		contentType: contentType,
	}
	return c.do(ctx, creds, req)
}

// buildMultipart streams fields and the uploaded file as multipart/form-data
// through a pipe, so the file is never held in memory. The file part is named
// "file" and keeps the caller's content type. The returned reader must be
// consumed or closed, or the encoding goroutine stays blocked.
func buildMultipart(upload model.DocumentUpload, fields map[string]string) (io.ReadCloser, string, error) {
	if upload.Content == nil {
		return nil, "", fmt.Errorf("upload %q has no content", upload.FileName)
	}

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeMultipart(w, upload, fields))
	}()

	return pr, w.FormDataContentType(), nil
}

func writeMultipart(w *multipart.Writer, upload model.DocumentUpload, fields map[string]string) error {
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(upload.FileName)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return fmt.Errorf("copy file %q: %w", upload.FileName, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	return nil
}
