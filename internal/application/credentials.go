// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

// FallbackCredentials are the environment-supplied upstream settings used
// when the credential record is missing or incomplete.
type FallbackCredentials struct {
	BaseURL       string
	APIKey        string
	DatasetAPIKey string
}

// CredentialResolver builds the credentials for one upstream call. Each call
// to Resolve returns a fresh value; nothing is shared or mutated between
// requests, so concurrent requests cannot observe each other's credentials.
type CredentialResolver struct {
	store    driven.DifyConfigStore
	fallback FallbackCredentials
	logger   *slog.Logger
}

// NewCredentialResolver creates a resolver over the stored credential record.
func NewCredentialResolver(store driven.DifyConfigStore, fallback FallbackCredentials, logger *slog.Logger) *CredentialResolver {
	if fallback.BaseURL == "" {
		fallback.BaseURL = model.DefaultDifyBaseURL
	}
	return &CredentialResolver{
		store:    store,
		fallback: fallback,
		logger:   logger,
	}
}

// Resolve returns the credentials for one request. The stored record takes
// priority over the environment for the base URL and workflow key. The dataset
// key is the environment's dataset key when set, else the workflow key.
// Returns driven.ErrNotConfigured when no workflow key is available.
func (r *CredentialResolver) Resolve(ctx context.Context) (model.UpstreamCredentials, error) {
	stored, err := r.store.Get(ctx)
	if err != nil {
		return model.UpstreamCredentials{}, fmt.Errorf("load dify config: %w", err)
	}

	creds := model.UpstreamCredentials{
		BaseURL:     r.fallback.BaseURL,
		WorkflowKey: r.fallback.APIKey,
	}
	if stored != nil {
		if stored.BaseURL != "" {
			creds.BaseURL = stored.BaseURL
		}
		if stored.Configured() {
			creds.WorkflowKey = stored.APIKey
		} else if stored.KeyUnreadable {
			r.logger.Debug("ignoring undecryptable stored dify api key")
		}
	}

	if creds.WorkflowKey == "" {
		return model.UpstreamCredentials{}, driven.ErrNotConfigured
	}

	creds.DatasetKey = creds.WorkflowKey
	if r.fallback.DatasetAPIKey != "" {
		creds.DatasetKey = r.fallback.DatasetAPIKey
	}

	return creds, nil
}
