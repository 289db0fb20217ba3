package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/difystudio/internal/application"
	"github.com/ericfisherdev/difystudio/internal/domain/model"
)

func TestHealthService_Check(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		cfg            *model.DifyConfig
		wantDatabaseOK bool
		wantConfigured bool
	}{
		{
			name:           "healthy and configured",
			cfg:            &model.DifyConfig{BaseURL: "https://x/v1", APIKey: "app-key"},
			wantDatabaseOK: true,
			wantConfigured: true,
		},
		{
			name:           "healthy but not configured",
			wantDatabaseOK: true,
		},
		{
			name:           "database down",
			pingErr:        errors.New("database is locked"),
			cfg:            &model.DifyConfig{BaseURL: "https://x/v1", APIKey: "app-key"},
			wantConfigured: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockConfigStore{cfg: tt.cfg}
			resolver := application.NewCredentialResolver(store, application.FallbackCredentials{}, discardLogger())
			svc := application.NewHealthService(&mockPinger{err: tt.pingErr}, resolver, discardLogger())

			report := svc.Check(context.Background())

			assert.Equal(t, tt.wantDatabaseOK, report.DatabaseOK)
			assert.Equal(t, tt.wantConfigured, report.Configured)
			assert.Equal(t, tt.wantDatabaseOK, report.Healthy())
		})
	}
}
