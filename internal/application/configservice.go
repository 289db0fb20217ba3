package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

// ConfigView is the display form of the credential record. It never carries
// the plaintext key.
type ConfigView struct {
	BaseURL      string
	MaskedAPIKey string
	Configured   bool
}

// ConfigService manages the upstream credential record.
type ConfigService struct {
	store          driven.DifyConfigStore
	resolver       *CredentialResolver
	client         driven.DifyClient
	defaultBaseURL string
}

// NewConfigService creates a ConfigService. defaultBaseURL is reported when
// no record has been saved yet.
func NewConfigService(store driven.DifyConfigStore, resolver *CredentialResolver, client driven.DifyClient, defaultBaseURL string) *ConfigService {
	if defaultBaseURL == "" {
		defaultBaseURL = model.DefaultDifyBaseURL
	}
	return &ConfigService{
		store:          store,
		resolver:       resolver,
		client:         client,
		defaultBaseURL: defaultBaseURL,
	}
}

// Get returns the masked view of the stored record. Configured is true only
// when a record exists with a readable, non-empty key.
func (s *ConfigService) Get(ctx context.Context) (ConfigView, error) {
	cfg, err := s.store.Get(ctx)
	if err != nil {
		return ConfigView{}, fmt.Errorf("get config: %w", err)
	}
	if cfg == nil {
		return ConfigView{BaseURL: s.defaultBaseURL}, nil
	}
	return toConfigView(cfg), nil
}

// Update upserts the record. A nil update.APIKey keeps the stored key.
func (s *ConfigService) Update(ctx context.Context, update model.DifyConfigUpdate) (ConfigView, error) {
	cfg, err := s.store.Save(ctx, update)
	if err != nil {
		return ConfigView{}, fmt.Errorf("update config: %w", err)
	}
	return toConfigView(cfg), nil
}

// TestConnection lists a single dataset with the resolved credentials and
// returns the upstream response.
func (s *ConfigService) TestConnection(ctx context.Context) (json.RawMessage, error) {
	creds, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListDatasets(ctx, creds, model.ListOptions{Limit: 1})
}

func toConfigView(cfg *model.DifyConfig) ConfigView {
	return ConfigView{
		BaseURL:      cfg.BaseURL,
		MaskedAPIKey: cfg.MaskedAPIKey(),
		Configured:   cfg.Configured(),
	}
}
