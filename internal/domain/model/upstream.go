package model

import "io"

// KeyScope selects which upstream API key authenticates a call.
type KeyScope string

const (
	KeyScopeDataset  KeyScope = "dataset"
	KeyScopeWorkflow KeyScope = "workflow"
)

// UpstreamCredentials is an immutable per-request snapshot of everything needed
// to authenticate against the Dify API.
type UpstreamCredentials struct {
	BaseURL     string
	WorkflowKey string `json:"-"`
	DatasetKey  string `json:"-"`
}

// Key returns the API key for the given scope.
func (c UpstreamCredentials) Key(scope KeyScope) string {
	if scope == KeyScopeDataset {
		return c.DatasetKey
	}
	return c.WorkflowKey
}

// ListOptions are the paging and search parameters shared by Dify list endpoints.
type ListOptions struct {
	Page    int    `url:"page,omitempty"`
	Limit   int    `url:"limit,omitempty"`
	Keyword string `url:"keyword,omitempty"`
}

// DocumentUpload describes a file to be indexed into a dataset.
type DocumentUpload struct {
	FileName          string
	ContentType       string
	Content           io.Reader
	ProcessRule       string // "automatic" or "custom"
	IndexingTechnique string // "high_quality" or "economy"
}
