package driven

import (
	"context"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

// DifyConfigStore defines the driven port for the singleton upstream
// credential record. The adapter encrypts the API key on write and decrypts
// it on read; this interface operates on plaintext at the domain boundary.
type DifyConfigStore interface {
	// Get returns the stored record, or (nil, nil) if none exists. A key that
	// cannot be decrypted is reported as empty with KeyUnreadable set; it is
	// never returned as an error.
	Get(ctx context.Context) (*model.DifyConfig, error)

	// Save upserts the record. A nil APIKey leaves the stored ciphertext
	// untouched.
	Save(ctx context.Context, update model.DifyConfigUpdate) (*model.DifyConfig, error)
}
