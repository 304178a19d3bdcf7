// Package sqlite provides a SQLite-backed carrier registry.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/danmuck/savestate/internal/avatar"
	"github.com/danmuck/savestate/internal/identity"
	"github.com/danmuck/savestate/internal/layout"
	"github.com/danmuck/savestate/internal/store"
	"github.com/danmuck/savestate/internal/store/sqlite/migrations"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var _ store.Registry = (*Store)(nil)

// Store persists carrier definitions in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the registry at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Debug().Str("path", path).Msg("carrier registry open")
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveDefinition inserts or replaces d and its slots.
func (s *Store) SaveDefinition(ctx context.Context, d avatar.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return fmt.Errorf("carrier name is required")
	}
	if strings.TrimSpace(d.EncryptionKey) == "" {
		return fmt.Errorf("encryption key is required")
	}
	d.Refresh()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save carrier: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO carriers (
		   name, blueprint, encryption_key, legacy, parameter,
		   coord_x, coord_y, coord_z, bit_count, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   blueprint = excluded.blueprint,
		   encryption_key = excluded.encryption_key,
		   legacy = excluded.legacy,
		   parameter = excluded.parameter,
		   coord_x = excluded.coord_x,
		   coord_y = excluded.coord_y,
		   coord_z = excluded.coord_z,
		   bit_count = excluded.bit_count,
		   updated_at = excluded.updated_at`,
		name,
		d.Blueprint,
		d.EncryptionKey,
		boolToInt(d.IsLegacy),
		d.ParameterName,
		float64(d.KeyCoordinate[0]),
		float64(d.KeyCoordinate[1]),
		float64(d.KeyCoordinate[2]),
		d.BitCount,
		time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("save carrier: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM carrier_slots WHERE carrier_name = ?`, name); err != nil {
		return fmt.Errorf("clear carrier slots: %w", err)
	}
	for i, slot := range d.Slots {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO carrier_slots (carrier_name, position, name, kind, bit_width) VALUES (?, ?, ?, ?, ?)`,
			name, i, slot.Name, slot.Kind.String(), slot.BitWidth,
		); err != nil {
			return fmt.Errorf("save carrier slot %q: %w", slot.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit carrier: %w", err)
	}
	return nil
}

// GetDefinition returns one carrier by name.
func (s *Store) GetDefinition(ctx context.Context, name string) (avatar.Definition, error) {
	if err := ctx.Err(); err != nil {
		return avatar.Definition{}, err
	}
	if s == nil || s.sqlDB == nil {
		return avatar.Definition{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return avatar.Definition{}, fmt.Errorf("carrier name is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT name, blueprint, encryption_key, legacy, parameter,
		        coord_x, coord_y, coord_z, bit_count
		   FROM carriers
		  WHERE name = ?`,
		name,
	)
	d, err := scanDefinition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return avatar.Definition{}, store.ErrNotFound
		}
		return avatar.Definition{}, fmt.Errorf("get carrier: %w", err)
	}
	if d.Slots, err = s.loadSlots(ctx, d.Name); err != nil {
		return avatar.Definition{}, err
	}
	return d, nil
}

// ListDefinitions returns every carrier ordered by name.
func (s *Store) ListDefinitions(ctx context.Context) ([]avatar.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name, blueprint, encryption_key, legacy, parameter,
		        coord_x, coord_y, coord_z, bit_count
		   FROM carriers
		  ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	var out []avatar.Definition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan carrier: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate carriers: %w", err)
	}
	_ = rows.Close()

	for i := range out {
		if out[i].Slots, err = s.loadSlots(ctx, out[i].Name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteDefinition removes a carrier and its slots.
func (s *Store) DeleteDefinition(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM carriers WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete carrier: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete carrier: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) loadSlots(ctx context.Context, name string) ([]layout.VariableSlot, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name, kind, bit_width
		   FROM carrier_slots
		  WHERE carrier_name = ?
		  ORDER BY position ASC`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("load carrier slots: %w", err)
	}
	defer rows.Close()

	var slots []layout.VariableSlot
	for rows.Next() {
		var (
			slotName string
			kindName string
			width    int
		)
		if err := rows.Scan(&slotName, &kindName, &width); err != nil {
			return nil, fmt.Errorf("scan carrier slot: %w", err)
		}
		kind, err := layout.ParseKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("carrier %q slot %q: %w", name, slotName, err)
		}
		slots = append(slots, layout.VariableSlot{Name: slotName, Kind: kind, BitWidth: width})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate carrier slots: %w", err)
	}
	return slots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (avatar.Definition, error) {
	var (
		d       avatar.Definition
		legacy  int
		x, y, z float64
	)
	if err := row.Scan(
		&d.Name,
		&d.Blueprint,
		&d.EncryptionKey,
		&legacy,
		&d.ParameterName,
		&x, &y, &z,
		&d.BitCount,
	); err != nil {
		return avatar.Definition{}, err
	}
	d.IsLegacy = legacy != 0
	d.KeyCoordinate = identity.Coordinate{float32(x), float32(y), float32(z)}
	return d, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
