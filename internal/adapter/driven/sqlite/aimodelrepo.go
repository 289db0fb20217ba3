package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AIModelStore = (*AIModelRepo)(nil)

const aiModelColumns = `id, name, provider, model_name, base_url, api_key, enabled, config, created_at, updated_at`

// AIModelRepo is the SQLite implementation of the AIModelStore port interface.
type AIModelRepo struct {
	db     *DB
	sealer *Sealer
	logger *slog.Logger
	now    func() time.Time
}

// NewAIModelRepo creates a new AIModelRepo backed by the given DB.
func NewAIModelRepo(db *DB, sealer *Sealer, logger *slog.Logger) *AIModelRepo {
	return &AIModelRepo{
		db:     db,
		sealer: sealer,
		logger: logger,
		now:    time.Now,
	}
}

// Create inserts a new model registration. CreatedAt and UpdatedAt are set
// to the current time.
func (r *AIModelRepo) Create(ctx context.Context, m model.AIModel) (model.AIModel, error) {
	now := r.now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if len(m.Config) == 0 {
		m.Config = json.RawMessage(`{}`)
	}

	encrypted, err := r.sealer.Seal(m.APIKey)
	if err != nil {
		return model.AIModel{}, fmt.Errorf("encrypt api key for model %q: %w", m.ID, err)
	}

	const query = `INSERT INTO ai_models (` + aiModelColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Writer.ExecContext(ctx, query,
		m.ID, m.Name, m.Provider, m.ModelName, m.BaseURL, encrypted,
		m.Enabled, string(m.Config), formatTime(now), formatTime(now),
	)
	if err != nil {
		return model.AIModel{}, fmt.Errorf("create model %q: %w", m.ID, err)
	}

	return m, nil
}

// Get returns a single model registration by ID.
func (r *AIModelRepo) Get(ctx context.Context, id string) (model.AIModel, error) {
	const query = `SELECT ` + aiModelColumns + ` FROM ai_models WHERE id = ?`

	m, err := r.scan(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.AIModel{}, fmt.Errorf("get model %q: %w", id, driven.ErrModelNotFound)
	}
	if err != nil {
		return model.AIModel{}, fmt.Errorf("get model %q: %w", id, err)
	}
	return m, nil
}

// ListAll returns every model registration ordered by creation time.
func (r *AIModelRepo) ListAll(ctx context.Context) ([]model.AIModel, error) {
	const query = `SELECT ` + aiModelColumns + ` FROM ai_models ORDER BY created_at, id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var models []model.AIModel
	for rows.Next() {
		m, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate models: %w", err)
	}

	return models, nil
}

// Update applies a partial update inside a single write transaction and
// returns the updated registration.
func (r *AIModelRepo) Update(ctx context.Context, id string, update model.AIModelUpdate) (model.AIModel, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.AIModel{}, fmt.Errorf("begin update model %q: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	const selectQuery = `SELECT ` + aiModelColumns + ` FROM ai_models WHERE id = ?`
	m, encrypted, err := r.scanSealed(tx.QueryRowContext(ctx, selectQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.AIModel{}, fmt.Errorf("update model %q: %w", id, driven.ErrModelNotFound)
	}
	if err != nil {
		return model.AIModel{}, fmt.Errorf("load model %q: %w", id, err)
	}

	update.Apply(&m)
	m.UpdatedAt = r.now().UTC()

	// The stored ciphertext is only replaced when a new key is supplied.
	if update.APIKey != nil {
		encrypted, err = r.sealer.Seal(m.APIKey)
		if err != nil {
			return model.AIModel{}, fmt.Errorf("encrypt api key for model %q: %w", id, err)
		}
	}

	const updateQuery = `
		UPDATE ai_models
		SET name = ?, provider = ?, model_name = ?, base_url = ?, api_key = ?,
			enabled = ?, config = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = tx.ExecContext(ctx, updateQuery,
		m.Name, m.Provider, m.ModelName, m.BaseURL, encrypted,
		m.Enabled, string(m.Config), formatTime(m.UpdatedAt), id,
	)
	if err != nil {
		return model.AIModel{}, fmt.Errorf("update model %q: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return model.AIModel{}, fmt.Errorf("commit model %q: %w", id, err)
	}

	return m, nil
}

// Delete removes a model registration. Returns ErrModelNotFound if the ID does
// not exist.
func (r *AIModelRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM ai_models WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete model %q: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete model %q: %w", id, driven.ErrModelNotFound)
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AIModelRepo) scan(row rowScanner) (model.AIModel, error) {
	m, _, err := r.scanSealed(row)
	return m, err
}

// scanSealed reads one row and also returns the stored api_key ciphertext.
func (r *AIModelRepo) scanSealed(row rowScanner) (model.AIModel, string, error) {
	var m model.AIModel
	var encrypted, config, createdAt, updatedAt string

	err := row.Scan(&m.ID, &m.Name, &m.Provider, &m.ModelName, &m.BaseURL,
		&encrypted, &m.Enabled, &config, &createdAt, &updatedAt)
	if err != nil {
		return model.AIModel{}, "", err
	}

	m.Config = json.RawMessage(config)

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.AIModel{}, "", fmt.Errorf("parse created_at: %w", err)
	}
	m.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.AIModel{}, "", fmt.Errorf("parse updated_at: %w", err)
	}

	m.APIKey, err = r.sealer.Open(encrypted)
	if err != nil {
		r.logger.Warn("stored model api key could not be decrypted; treating as absent",
			"model_id", m.ID,
			"error", err,
		)
		m.APIKey = ""
	}

	return m, encrypted, nil
}
