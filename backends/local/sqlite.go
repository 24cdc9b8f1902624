// Package local provides a file-backed checkpoint store on SQLite.
package local

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/botirk38/simfunc/types"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	name       TEXT PRIMARY KEY,
	id         TEXT NOT NULL,
	config     TEXT NOT NULL,
	weights    BLOB,
	bias       REAL NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteBackend implements CheckpointStore in a single SQLite table
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (and if needed creates) the database at config.Path.
// ":memory:" gives a private in-memory database.
func NewSQLiteBackend(config types.StoreConfig) (*SQLiteBackend, error) {
	path := config.Path
	if path == "" {
		path = config.ConnectionString
	}
	if path == "" {
		return nil, errors.New("sqlite store requires a path")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create checkpoints table: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// floatsToBytes encodes a float64 slice as little-endian bytes
func floatsToBytes(fs []float64) []byte {
	buf := make([]byte, len(fs)*8)
	for i, f := range fs {
		binary.LittleEndian.PutUint64(buf[i*8:(i+1)*8], math.Float64bits(f))
	}
	return buf
}

// bytesToFloats decodes the output of floatsToBytes
func bytesToFloats(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("corrupt weights blob of %d bytes", len(buf))
	}
	if len(buf) == 0 {
		return nil, nil
	}
	fs := make([]float64, len(buf)/8)
	for i := range fs {
		fs[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8 : (i+1)*8]))
	}
	return fs, nil
}

// Save inserts or replaces the checkpoint
func (b *SQLiteBackend) Save(ctx context.Context, cp types.Checkpoint) error {
	if cp.Name == "" {
		return errors.New("checkpoint name cannot be empty")
	}

	config, err := json.Marshal(cp.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint config: %w", err)
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO checkpoints (name, id, config, weights, bias, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			id = excluded.id,
			config = excluded.config,
			weights = excluded.weights,
			bias = excluded.bias,
			updated_at = excluded.updated_at`,
		cp.Name, cp.ID.String(), string(config), floatsToBytes(cp.Weights), cp.Bias, cp.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Debug("checkpoint saved", "store", "sqlite", "name", cp.Name, "weights", len(cp.Weights))
	return nil
}

// Load retrieves the named checkpoint
func (b *SQLiteBackend) Load(ctx context.Context, name string) (types.Checkpoint, bool, error) {
	var (
		id        string
		config    string
		weights   []byte
		bias      float64
		updatedAt int64
	)
	err := b.db.QueryRowContext(ctx,
		`SELECT id, config, weights, bias, updated_at FROM checkpoints WHERE name = ?`, name).
		Scan(&id, &config, &weights, &bias, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Checkpoint{}, false, nil
	}
	if err != nil {
		return types.Checkpoint{}, false, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	cp := types.Checkpoint{
		Name:      name,
		Bias:      bias,
		UpdatedAt: time.Unix(0, updatedAt).UTC(),
	}
	if cp.ID, err = uuid.Parse(id); err != nil {
		return types.Checkpoint{}, false, fmt.Errorf("invalid checkpoint id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(config), &cp.Config); err != nil {
		return types.Checkpoint{}, false, fmt.Errorf("failed to unmarshal checkpoint config: %w", err)
	}
	if cp.Weights, err = bytesToFloats(weights); err != nil {
		return types.Checkpoint{}, false, err
	}
	return cp, true, nil
}

// Delete removes the named checkpoint
func (b *SQLiteBackend) Delete(ctx context.Context, name string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Contains checks if the named checkpoint exists
func (b *SQLiteBackend) Contains(ctx context.Context, name string) (bool, error) {
	var one int
	err := b.db.QueryRowContext(ctx, `SELECT 1 FROM checkpoints WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check checkpoint: %w", err)
	}
	return true, nil
}

// Names returns all checkpoint names, sorted
func (b *SQLiteBackend) Names(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT name FROM checkpoints ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Len returns the number of checkpoints
func (b *SQLiteBackend) Len(ctx context.Context) (int, error) {
	var n int
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM checkpoints`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count checkpoints: %w", err)
	}
	return n, nil
}

// Flush removes all checkpoints
func (b *SQLiteBackend) Flush(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM checkpoints`); err != nil {
		return fmt.Errorf("failed to flush checkpoints: %w", err)
	}
	return nil
}

// Close closes the database
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
