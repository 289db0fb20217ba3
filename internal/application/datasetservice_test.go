package application_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/difystudio/internal/application"
	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

func newDatasetService(client *mockDifyClient, fallback application.FallbackCredentials) *application.DatasetService {
	store := &mockConfigStore{cfg: &model.DifyConfig{BaseURL: "https://dify.internal/v1", APIKey: "app-key"}}
	resolver := application.NewCredentialResolver(store, fallback, discardLogger())
	return application.NewDatasetService(resolver, client)
}

func TestDatasetService_ListDatasetsAppliesPagingDefaults(t *testing.T) {
	client := &mockDifyClient{}
	svc := newDatasetService(client, application.FallbackCredentials{})

	_, err := svc.ListDatasets(context.Background(), model.ListOptions{Keyword: "docs"})
	require.NoError(t, err)

	opts := client.lastCall().Opts
	assert.Equal(t, application.DefaultPage, opts.Page)
	assert.Equal(t, application.DefaultLimit, opts.Limit)
	assert.Equal(t, "docs", opts.Keyword)
}

func TestDatasetService_ListDocumentsKeepsExplicitPaging(t *testing.T) {
	client := &mockDifyClient{}
	svc := newDatasetService(client, application.FallbackCredentials{})

	_, err := svc.ListDocuments(context.Background(), "ds-1", model.ListOptions{Page: 3, Limit: 50})
	require.NoError(t, err)

	call := client.lastCall()
	assert.Equal(t, "ds-1", call.Target)
	assert.Equal(t, 3, call.Opts.Page)
	assert.Equal(t, 50, call.Opts.Limit)
}

func TestDatasetService_UsesDatasetKeyOverride(t *testing.T) {
	client := &mockDifyClient{}
	svc := newDatasetService(client, application.FallbackCredentials{DatasetAPIKey: "dataset-env"})

	require.NoError(t, svc.DeleteDataset(context.Background(), "ds-1"))

	call := client.lastCall()
	assert.Equal(t, "DeleteDataset", call.Op)
	assert.Equal(t, "dataset-env", call.Creds.DatasetKey)
	assert.Equal(t, "app-key", call.Creds.WorkflowKey)
}

func TestDatasetService_CreateDatasetPassesBody(t *testing.T) {
	client := &mockDifyClient{response: json.RawMessage(`{"id":"ds-9"}`)}
	svc := newDatasetService(client, application.FallbackCredentials{})

	resp, err := svc.CreateDataset(context.Background(), json.RawMessage(`{"name":"kb"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"ds-9"}`, string(resp))
	assert.JSONEq(t, `{"name":"kb"}`, string(client.lastCall().Body))
}

func TestDatasetService_UploadDocument(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantID   string
	}{
		{name: "nested document id", response: `{"document":{"id":"doc-1"},"batch":"b1"}`, wantID: "doc-1"},
		{name: "top-level document id", response: `{"document_id":"doc-2"}`, wantID: "doc-2"},
		{name: "no id", response: `{"batch":"b1"}`, wantID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockDifyClient{response: json.RawMessage(tt.response)}
			svc := newDatasetService(client, application.FallbackCredentials{})

			res, err := svc.UploadDocument(context.Background(), "ds-1", model.DocumentUpload{
				FileName: "notes.md",
				Content:  strings.NewReader("# notes"),
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantID, res.DocumentID)
			assert.JSONEq(t, tt.response, string(res.Result))
		})
	}
}

func TestDatasetService_UploadDocumentDefaults(t *testing.T) {
	client := &mockDifyClient{}
	svc := newDatasetService(client, application.FallbackCredentials{})

	_, err := svc.UploadDocument(context.Background(), "ds-1", model.DocumentUpload{
		FileName: "notes.md",
		Content:  strings.NewReader("# notes"),
	})
	require.NoError(t, err)

	upload := client.lastCall().Upload
	assert.Equal(t, "automatic", upload.ProcessRule)
	assert.Equal(t, "high_quality", upload.IndexingTechnique)
}

func TestDatasetService_NotConfigured(t *testing.T) {
	client := &mockDifyClient{}
	resolver := application.NewCredentialResolver(&mockConfigStore{}, application.FallbackCredentials{}, discardLogger())
	svc := application.NewDatasetService(resolver, client)
	ctx := context.Background()

	_, err := svc.ListDatasets(ctx, model.ListOptions{})
	assert.ErrorIs(t, err, driven.ErrNotConfigured)
	_, err = svc.CreateDataset(ctx, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, driven.ErrNotConfigured)
	assert.ErrorIs(t, svc.DeleteDataset(ctx, "ds"), driven.ErrNotConfigured)
	_, err = svc.ListDocuments(ctx, "ds", model.ListOptions{})
	assert.ErrorIs(t, err, driven.ErrNotConfigured)
	_, err = svc.UploadDocument(ctx, "ds", model.DocumentUpload{})
	assert.ErrorIs(t, err, driven.ErrNotConfigured)
	assert.ErrorIs(t, svc.DeleteDocument(ctx, "ds", "doc"), driven.ErrNotConfigured)

	assert.Zero(t, client.callCount())
}

func TestDatasetService_PropagatesUpstreamError(t *testing.T) {
	client := &mockDifyClient{err: &driven.UpstreamError{StatusCode: 404, Body: "dataset not found"}}
	svc := newDatasetService(client, application.FallbackCredentials{})

	err := svc.DeleteDocument(context.Background(), "ds-1", "doc-1")

	var upErr *driven.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 404, upErr.StatusCode)
	assert.Equal(t, "ds-1/doc-1", client.lastCall().Target)
}
