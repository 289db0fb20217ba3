package driven

import (
	"context"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

// AIModelStore defines the driven port for AI model registrations.
// Get, Update and Delete return ErrModelNotFound for unknown IDs.
type AIModelStore interface {
	Create(ctx context.Context, m model.AIModel) (model.AIModel, error)
	Get(ctx context.Context, id string) (model.AIModel, error)
	ListAll(ctx context.Context) ([]model.AIModel, error)
	Update(ctx context.Context, id string, update model.AIModelUpdate) (model.AIModel, error)
	Delete(ctx context.Context, id string) error
}
