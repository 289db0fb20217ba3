package dify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

// ListDatasets returns one page of knowledge bases.
func (c *Client) ListDatasets(ctx context.Context, creds model.UpstreamCredentials, opts model.ListOptions) (json.RawMessage, error) {
	req := request{
		operation: "list_datasets",
		scope:     model.KeyScopeDataset,
		method:    http.MethodGet,
		path:      "/datasets",
		query:     opts,
	}
	return c.do(ctx, creds, req)
}

// CreateDataset creates an empty knowledge base from the given JSON body.
func (c *Client) CreateDataset(ctx context.Context, creds model.UpstreamCredentials, body json.RawMessage) (json.RawMessage, error) {
	return c.do(ctx, creds, jsonRequest("create_dataset", model.KeyScopeDataset, http.MethodPost, "/datasets", body))
}

// DeleteDataset deletes a knowledge base and all of its documents.
func (c *Client) DeleteDataset(ctx context.Context, creds model.UpstreamCredentials, datasetID string) error {
	path := "/datasets/" + url.PathEscape(datasetID)
	_, err := c.do(ctx, creds, jsonRequest("delete_dataset", model.KeyScopeDataset, http.MethodDelete, path, nil))
	return err
}

// ListDocuments returns one page of documents in a knowledge base.
func (c *Client) ListDocuments(ctx context.Context, creds model.UpstreamCredentials, datasetID string, opts model.ListOptions) (json.RawMessage, error) {
	req := request{
		operation: "list_documents",
		scope:     model.KeyScopeDataset,
		method:    http.MethodGet,
		path:      "/datasets/" + url.PathEscape(datasetID) + "/documents",
		query:     opts,
	}
	return c.do(ctx, creds, req)
}

// DeleteDocument removes a single document from a knowledge base.
func (c *Client) DeleteDocument(ctx context.Context, creds model.UpstreamCredentials, datasetID, documentID string) error {
	path := "/datasets/" + url.PathEscape(datasetID) + "/documents/" + url.PathEscape(documentID)
	_, err := c.do(ctx, creds, jsonRequest("delete_document", model.KeyScopeDataset, http.MethodDelete, path, nil))
	return err
}
