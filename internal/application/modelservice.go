package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

// ErrInvalidInput marks a request the services refuse before touching storage
// or the upstream API.
var ErrInvalidInput = errors.New("invalid input")

// NewModelInput carries the fields of a model registration.
type NewModelInput struct {
	Name      string
	Provider  string
	ModelName string
	BaseURL   string
	APIKey    string
	Enabled   *bool
	Config    json.RawMessage
}

// ModelService manages locally registered AI models.
type ModelService struct {
	store driven.AIModelStore
	newID func() string
}

// NewModelService creates a ModelService that assigns random UUIDs.
func NewModelService(store driven.AIModelStore) *ModelService {
	return &ModelService{
		store: store,
		newID: uuid.NewString,
	}
}

// List returns every registered model.
func (s *ModelService) List(ctx context.Context) ([]model.AIModel, error) {
	models, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

// Create registers a model. Name, provider and model name are required.
// Enabled defaults to true and Config to an empty object.
func (s *ModelService) Create(ctx context.Context, in NewModelInput) (model.AIModel, error) {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Provider) == "" {
		missing = append(missing, "provider")
	}
	if strings.TrimSpace(in.ModelName) == "" {
		missing = append(missing, "model_name")
	}
	if len(missing) > 0 {
		return model.AIModel{}, fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}

	cfg := in.Config
	if len(cfg) == 0 || string(cfg) == "null" {
		cfg = json.RawMessage(`{}`)
	}

	created, err := s.store.Create(ctx, model.AIModel{
		ID:        s.newID(),
		Name:      in.Name,
		Provider:  in.Provider,
		ModelName: in.ModelName,
		BaseURL:   in.BaseURL,
		APIKey:    in.APIKey,
		Enabled:   enabled,
		Config:    cfg,
	})
	if err != nil {
		return model.AIModel{}, fmt.Errorf("create model: %w", err)
	}
	return created, nil
}

// Update applies a partial update. Returns driven.ErrModelNotFound for
// unknown IDs.
func (s *ModelService) Update(ctx context.Context, id string, update model.AIModelUpdate) (model.AIModel, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return model.AIModel{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if update.Provider != nil && strings.TrimSpace(*update.Provider) == "" {
		return model.AIModel{}, fmt.Errorf("%w: provider must not be empty", ErrInvalidInput)
	}
	if update.ModelName != nil && strings.TrimSpace(*update.ModelName) == "" {
		return model.AIModel{}, fmt.Errorf("%w: model_name must not be empty", ErrInvalidInput)
	}

	updated, err := s.store.Update(ctx, id, update)
	if err != nil {
		return model.AIModel{}, fmt.Errorf("update model %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a model. Returns driven.ErrModelNotFound for unknown IDs.
func (s *ModelService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete model %s: %w", id, err)
	}
	return nil
}
