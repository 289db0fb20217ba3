package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DifyConfigStore = (*DifyConfigRepo)(nil)

// DifyConfigRepo is the SQLite implementation of the DifyConfigStore port.
// The API key is sealed before write and opened after read; plaintext never
// reaches the table.
type DifyConfigRepo struct {
	db     *DB
	sealer *Sealer
	logger *slog.Logger
	now    func() time.Time
}

// NewDifyConfigRepo creates a DifyConfigRepo backed by the given DB and Sealer.
func NewDifyConfigRepo(db *DB, sealer *Sealer, logger *slog.Logger) *DifyConfigRepo {
	return &DifyConfigRepo{
		db:     db,
		sealer: sealer,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the singleton record, or (nil, nil) if none has been saved.
func (r *DifyConfigRepo) Get(ctx context.Context) (*model.DifyConfig, error) {
	const query = `SELECT base_url, api_key, created_at, updated_at FROM dify_config WHERE id = ?`

	var baseURL, encrypted, createdAt, updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, model.DefaultDifyConfigID).Scan(&baseURL, &encrypted, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dify config: %w", err)
	}

	return r.toModel(baseURL, encrypted, createdAt, updatedAt)
}

// Save upserts the singleton record. A nil update.APIKey keeps the stored
// ciphertext exactly as it is; a nil or empty update.BaseURL keeps the stored
// base URL (or the default on first insert).
func (r *DifyConfigRepo) Save(ctx context.Context, update model.DifyConfigUpdate) (*model.DifyConfig, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save dify config: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(r.now())
	baseURL := model.DefaultDifyBaseURL
	encrypted := ""
	createdAt := now

	const selectQuery = `SELECT base_url, api_key, created_at FROM dify_config WHERE id = ?`
	err = tx.QueryRowContext(ctx, selectQuery, model.DefaultDifyConfigID).Scan(&baseURL, &encrypted, &createdAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load dify config: %w", err)
	}

	if update.BaseURL != nil && strings.TrimSpace(*update.BaseURL) != "" {
		baseURL = strings.TrimRight(strings.TrimSpace(*update.BaseURL), "/")
	}

	if update.APIKey != nil {
		encrypted, err = r.sealer.Seal(*update.APIKey)
		if err != nil {
			return nil, fmt.Errorf("encrypt dify api key: %w", err)
		}
	}

	const upsert = `
		INSERT INTO dify_config (id, base_url, api_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			base_url = excluded.base_url,
			api_key = excluded.api_key,
			updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsert, model.DefaultDifyConfigID, baseURL, encrypted, createdAt, now); err != nil {
		return nil, fmt.Errorf("save dify config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit dify config: %w", err)
	}

	return r.toModel(baseURL, encrypted, createdAt, now)
}

// toModel decrypts the stored key. A ciphertext that cannot be opened (for
// example after the encryption secret changed) is reported as an empty key
// with KeyUnreadable set rather than as an error.
func (r *DifyConfigRepo) toModel(baseURL, encrypted, createdAt, updatedAt string) (*model.DifyConfig, error) {
	cfg := &model.DifyConfig{BaseURL: baseURL}

	var err error
	cfg.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	cfg.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	if encrypted == "" {
		r.logger.Debug("dify api key not configured")
		return cfg, nil
	}

	plaintext, err := r.sealer.Open(encrypted)
	if err != nil {
		r.logger.Warn("stored dify api key could not be decrypted; treating as not configured",
			"error", err,
		)
		cfg.KeyUnreadable = true
		return cfg, nil
	}
	cfg.APIKey = plaintext

	return cfg, nil
}
