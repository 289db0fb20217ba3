package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

// WorkflowDSL is a draft workflow definition.
type WorkflowDSL struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Nodes       []DSLNode `json:"nodes"`
	Edges       []DSLEdge `json:"edges"`
}

// DSLNode is one step of a workflow definition.
type DSLNode struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config"`
}

// DSLEdge connects two nodes of a workflow definition.
type DSLEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// WorkflowService proxies workflow execution to Dify.
type WorkflowService struct {
	resolver *CredentialResolver
	client   driven.DifyClient
}

// NewWorkflowService creates a WorkflowService.
func NewWorkflowService(resolver *CredentialResolver, client driven.DifyClient) *WorkflowService {
	return &WorkflowService{resolver: resolver, client: client}
}

// Run executes a workflow. The caller's body must be a JSON object; the
// workflow ID is added to it unless the body already names one.
func (s *WorkflowService) Run(ctx context.Context, workflowID string, body json.RawMessage) (json.RawMessage, error) {
	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := withWorkflowID(body, workflowID)
	if err != nil {
		return nil, err
	}

	return s.client.RunWorkflow(ctx, creds, payload)
}

// GetRun returns the state of a workflow run.
func (s *WorkflowService) GetRun(ctx context.Context, runID string) (json.RawMessage, error) {
	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetWorkflowRun(ctx, creds, runID)
}

// UploadFile uploads a file for use as a workflow input.
func (s *WorkflowService) UploadFile(ctx context.Context, upload model.DocumentUpload, user string) (json.RawMessage, error) {
	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.UploadFile(ctx, creds, upload, user)
}

// GenerateDSL returns a single-node example definition built around the
// description. modelID is accepted but not used yet.
// TODO: generate the graph with the registered model identified by modelID.
func (s *WorkflowService) GenerateDSL(description, modelID string) WorkflowDSL {
	_ = modelID
	return WorkflowDSL{
		Name:        "Generated workflow",
		Description: description,
		Nodes: []DSLNode{
			{
				ID:   "node_1",
				Type: "llm",
				Config: map[string]any{
					"model":  "gpt-3.5-turbo",
					"prompt": "Handle the following request: " + description,
				},
			},
		},
		Edges: []DSLEdge{},
	}
}

func withWorkflowID(body json.RawMessage, workflowID string) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("%w: run body must be a JSON object", ErrInvalidInput)
		}
		if fields == nil {
			fields = map[string]json.RawMessage{}
		}
	}

	if _, ok := fields["workflow_id"]; !ok {
		id, err := json.Marshal(workflowID)
		if err != nil {
			return nil, fmt.Errorf("encode workflow id: %w", err)
		}
		fields["workflow_id"] = id
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode run body: %w", err)
	}
	return out, nil
}
