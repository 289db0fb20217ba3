package driven

import (
	"context"
	"encoding/json"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

// DifyClient defines the driven port for the Dify REST API. Every call takes
// the credentials it authenticates with; implementations hold no per-request
// state. Non-2xx answers return *UpstreamError and transport failures wrap
// ErrUpstreamUnavailable.
type DifyClient interface {
	// Dataset methods authenticate with the dataset-scoped key.

	ListDatasets(ctx context.Context, creds model.UpstreamCredentials, opts model.ListOptions) (json.RawMessage, error)
	CreateDataset(ctx context.Context, creds model.UpstreamCredentials, body json.RawMessage) (json.RawMessage, error)
	DeleteDataset(ctx context.Context, creds model.UpstreamCredentials, datasetID string) error
	ListDocuments(ctx context.Context, creds model.UpstreamCredentials, datasetID string, opts model.ListOptions) (json.RawMessage, error)
	CreateDocumentByFile(ctx context.Context, creds model.UpstreamCredentials, datasetID string, upload model.DocumentUpload) (json.RawMessage, error)
	DeleteDocument(ctx context.Context, creds model.UpstreamCredentials, datasetID, documentID string) error

	// Workflow methods authenticate with the workflow-scoped key.

	RunWorkflow(ctx context.Context, creds model.UpstreamCredentials, body json.RawMessage) (json.RawMessage, error)
	GetWorkflowRun(ctx context.Context, creds model.UpstreamCredentials, runID string) (json.RawMessage, error)
	UploadFile(ctx context.Context, creds model.UpstreamCredentials, upload model.DocumentUpload, user string) (json.RawMessage, error)
}
