package application

import (
	"context"
	"log/slog"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReport is the liveness view served by the health endpoint.
type HealthReport struct {
	DatabaseOK bool
	Configured bool
}

// Healthy reports whether every dependency the service needs is reachable.
// An unconfigured service is still healthy.
func (r HealthReport) Healthy() bool {
	return r.DatabaseOK
}

// HealthService checks the database and credential state.
type HealthService struct {
	db       Pinger
	resolver *CredentialResolver
	logger   *slog.Logger
}

// NewHealthService creates a new HealthService with the required dependencies.
func NewHealthService(db Pinger, resolver *CredentialResolver, logger *slog.Logger) *HealthService {
	return &HealthService{
		db:       db,
		resolver: resolver,
		logger:   logger,
	}
}

// Check pings the database and reports whether upstream credentials resolve.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	var report HealthReport

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check: database ping failed", "error", err)
	} else {
		report.DatabaseOK = true
	}

	if _, err := s.resolver.Resolve(ctx); err == nil {
		report.Configured = true
	}

	return report
}
