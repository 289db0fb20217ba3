package application

import (
	"context"
	"encoding/json"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

// Default paging applied to dataset and document listings.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// UploadResult is the outcome of indexing a file into a dataset.
type UploadResult struct {
	DocumentID string
	Result     json.RawMessage
}

// DatasetService proxies knowledge-base operations to Dify.
type DatasetService struct {
	resolver *CredentialResolver
	client   driven.DifyClient
}

// NewDatasetService creates a DatasetService.
func NewDatasetService(resolver *CredentialResolver, client driven.DifyClient) *DatasetService {
	return &DatasetService{resolver: resolver, client: client}
}

// ListDatasets returns one page of knowledge bases.
func (s *DatasetService) ListDatasets(ctx context.Context, opts model.ListOptions) (json.RawMessage, error) {
	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListDatasets(ctx, creds, withPagingDefaults(opts))
}

// CreateDataset creates a knowledge base from the caller's JSON body.
func (s *DatasetService) CreateDataset(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.CreateDataset(ctx, creds, body)
}

// DeleteDataset deletes a knowledge base.
func (s *DatasetService) DeleteDataset(ctx context.Context, datasetID string) error {
	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	return s.client.DeleteDataset(ctx, creds, datasetID)
}

// ListDocuments returns one page of documents in a knowledge base.
func (s *DatasetService) ListDocuments(ctx context.Context, datasetID string, opts model.ListOptions) (json.RawMessage, error) {
	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListDocuments(ctx, creds, datasetID, withPagingDefaults(opts))
}

// UploadDocument indexes a file into a knowledge base. Empty processing
// options default to automatic rules and high-quality indexing.
func (s *DatasetService) UploadDocument(ctx context.Context, datasetID string, upload model.DocumentUpload) (UploadResult, error) {
	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return UploadResult{}, err
	}

	if upload.ProcessRule == "" {
		upload.ProcessRule = "automatic"
	}
	if upload.IndexingTechnique == "" {
		upload.IndexingTechnique = "high_quality"
	}

	resp, err := s.client.CreateDocumentByFile(ctx, creds, datasetID, upload)
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		DocumentID: documentID(resp),
		Result:     resp,
	}, nil
}

// DeleteDocument removes a document from a knowledge base.
func (s *DatasetService) DeleteDocument(ctx context.Context, datasetID, documentID string) error {
	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	return s.client.DeleteDocument(ctx, creds, datasetID, documentID)
}

func withPagingDefaults(opts model.ListOptions) model.ListOptions {
	if opts.Page <= 0 {
		opts.Page = DefaultPage
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return opts
}

// documentID extracts the created document's ID from a create-by-file
// response, which nests it as document.id. A top-level document_id is
// accepted as well. Returns "" when neither is present.
func documentID(resp json.RawMessage) string {
	var body struct {
		Document struct {
			ID string `json:"id"`
		} `json:"document"`
		DocumentID string `json:"document_id"`
	}
	if err := json.Unmarshal(resp, &body); err != nil {
		return ""
	}
	if body.Document.ID != "" {
		return body.Document.ID
	}
	return body.DocumentID
}
