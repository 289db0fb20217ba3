package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// saltMetaKey is the app_meta row holding the installation's KDF salt.
const saltMetaKey = "kdf_salt"

// LoadOrCreateSalt returns the installation's key-derivation salt, generating
// and persisting a random one on first use. Every secret stored in this
// database is encrypted under a key derived with this salt.
func LoadOrCreateSalt(ctx context.Context, db *DB) ([]byte, error) {
	fresh := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, fresh); err != nil {
		return nil, fmt.Errorf("rand salt: %w", err)
	}

	// INSERT OR IGNORE keeps the first salt ever written.
	const insert = `INSERT OR IGNORE INTO app_meta (key, value) VALUES (?, ?)`
	if _, err := db.Writer.ExecContext(ctx, insert, saltMetaKey, hex.EncodeToString(fresh)); err != nil {
		return nil, fmt.Errorf("store salt: %w", err)
	}

	var encoded string
	const query = `SELECT value FROM app_meta WHERE key = ?`
	err := db.Writer.QueryRowContext(ctx, query, saltMetaKey).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("salt missing after insert")
	}
	if err != nil {
		return nil, fmt.Errorf("load salt: %w", err)
	}

	salt, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	return salt, nil
}
