package dify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

// RunWorkflow executes the workflow app bound to the workflow key. body is
// forwarded unchanged and typically carries inputs, response_mode and user.
func (c *Client) RunWorkflow(ctx context.Context, creds model.UpstreamCredentials, body json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, creds, jsonRequest("run_workflow", model.KeyScopeWorkflow, http.MethodPost, "/workflows/run", body))
}

// GetWorkflowRun returns the status and outputs of a workflow execution.
func (c *Client) GetWorkflowRun(ctx context.Context, creds model.UpstreamCredentials, runID string) (json.RawMessage, error) {
	path := "/workflows/run/" + url.PathEscape(runID)
	return c.do(ctx, creds, jsonRequest("get_workflow_run", model.KeyScopeWorkflow, http.MethodGet, path, nil))
}
