package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/difystudio/internal/application"
	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

func TestModelService_CreateDefaults(t *testing.T) {
	store := newMockModelStore()
	svc := application.NewModelService(store)

	m, err := svc.Create(context.Background(), application.NewModelInput{
		Name:      "Local Llama",
		Provider:  "ollama",
		ModelName: "llama3",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(m.ID)
	require.NoError(t, err, "id should be a UUID")
	assert.True(t, m.Enabled)
	assert.JSONEq(t, `{}`, string(m.Config))
	assert.Contains(t, store.models, m.ID)
}

func TestModelService_CreateExplicitValues(t *testing.T) {
	svc := application.NewModelService(newMockModelStore())

	m, err := svc.Create(context.Background(), application.NewModelInput{
		Name:      "GPT",
		Provider:  "openai",
		ModelName: "gpt-4o",
		APIKey:    "sk-secret",
		Enabled:   ptr(false),
		Config:    json.RawMessage(`{"temperature":0.2}`),
	})
	require.NoError(t, err)

	assert.False(t, m.Enabled)
	assert.Equal(t, "sk-secret", m.APIKey)
	assert.JSONEq(t, `{"temperature":0.2}`, string(m.Config))
}

func TestModelService_CreateUniqueIDs(t *testing.T) {
	svc := application.NewModelService(newMockModelStore())
	in := application.NewModelInput{Name: "a", Provider: "ollama", ModelName: "m"}

	first, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestModelService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      application.NewModelInput
		missing string
	}{
		{name: "missing name", in: application.NewModelInput{Provider: "p", ModelName: "m"}, missing: "name"},
		{name: "missing provider", in: application.NewModelInput{Name: "n", ModelName: "m"}, missing: "provider"},
		{name: "blank model name", in: application.NewModelInput{Name: "n", Provider: "p", ModelName: "  "}, missing: "model_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockModelStore()
			svc := application.NewModelService(store)

			_, err := svc.Create(context.Background(), tt.in)
			require.ErrorIs(t, err, application.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.missing)
			assert.Empty(t, store.models)
		})
	}
}

func TestModelService_CreateStoreError(t *testing.T) {
	boom := errors.New("constraint failed")
	store := newMockModelStore()
	store.createErr = boom
	svc := application.NewModelService(store)

	_, err := svc.Create(context.Background(), application.NewModelInput{Name: "n", Provider: "p", ModelName: "m"})
	assert.ErrorIs(t, err, boom)
}

func TestModelService_UpdateAndDelete(t *testing.T) {
	store := newMockModelStore()
	svc := application.NewModelService(store)
	ctx := context.Background()

	m, err := svc.Create(ctx, application.NewModelInput{Name: "n", Provider: "p", ModelName: "m"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, m.ID, model.AIModelUpdate{Name: ptr("renamed"), Enabled: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.False(t, updated.Enabled)
	assert.Equal(t, "p", updated.Provider)

	require.NoError(t, svc.Delete(ctx, m.ID))

	models, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestModelService_NotFound(t *testing.T) {
	svc := application.NewModelService(newMockModelStore())
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", model.AIModelUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, driven.ErrModelNotFound)

	err = svc.Delete(ctx, "missing")
	assert.ErrorIs(t, err, driven.ErrModelNotFound)
}

func TestModelService_UpdateRejectsBlankRequiredField(t *testing.T) {
	store := newMockModelStore()
	svc := application.NewModelService(store)
	ctx := context.Background()

	m, err := svc.Create(ctx, application.NewModelInput{Name: "n", Provider: "p", ModelName: "m"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, m.ID, model.AIModelUpdate{Provider: ptr("")})
	require.ErrorIs(t, err, application.ErrInvalidInput)
	assert.Equal(t, "p", store.models[m.ID].Provider)
}
