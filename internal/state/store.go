// internal/state/store.go
package state

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/valdraft/transferdesk/internal/transfers"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists one JSON document per league. Every mutation goes through
// Update, which runs a read-modify-write inside an immediate transaction so
// two concurrent requests against the same league serialize at the database
// instead of interleaving in memory.
type Store struct {
	db     *sql.DB
	mirror *Mirror
	logger zerolog.Logger
}

// Open opens (creating if needed) the SQLite database at filename, applies
// the embedded migrations and returns a ready Store.
func Open(filename string) (*Store, error) {
	if dir := filepath.Dir(filename); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", ensureDSNOptions(filename))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := runMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &Store{
		db:     sqlDB,
		logger: log.With().Str("component", "state").Logger(),
	}, nil
}

// WithMirror attaches a best-effort remote mirror. Saves are pushed after
// the local commit; loads fall back to the mirror when the local row is
// missing.
func (st *Store) WithMirror(m *Mirror) *Store {
	st.mirror = m
	return st
}

func (st *Store) Close() error {
	return st.db.Close()
}

// ensureDSNOptions adds the SQLite query parameters every connection needs:
// foreign keys on and immediate transaction locking, so BeginTx takes the
// write lock up front instead of deadlocking on upgrade.
func ensureDSNOptions(dataSourceName string) string {
	for _, opt := range []string{"_fk=1", "_txlock=immediate"} {
		key := opt[:strings.Index(opt, "=")+1]
		if strings.Contains(dataSourceName, key) {
			continue
		}
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&" + opt
		} else {
			dataSourceName += "?" + opt
		}
	}
	return dataSourceName
}

// runMigrations applies the embedded SQL migrations to the database. A
// "no change" result is not an error.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create migrate driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not create source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// Load returns the league's state. A league with no stored document gets a
// fresh, fully shaped state; the mirror is consulted first when one is
// attached.
func (st *Store) Load(ctx context.Context, league string) (*transfers.State, error) {
	var doc []byte
	err := st.db.QueryRowContext(ctx,
		`SELECT doc FROM league_states WHERE league = ?`, league,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		if st.mirror != nil {
			if remote, rerr := st.mirror.Get(ctx, league); rerr == nil {
				st.logger.Info().Str("league", league).Msg("Restoring league state from mirror")
				s, derr := decodeState(remote)
				if derr != nil {
					return nil, fmt.Errorf("error decoding mirrored state for %s: %w", league, derr)
				}
				if serr := st.Save(ctx, league, s); serr != nil {
					return nil, serr
				}
				return s, nil
			}
		}
		return transfers.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading state for %s: %w", league, err)
	}

	s, err := decodeState(doc)
	if err != nil {
		return nil, fmt.Errorf("error decoding state for %s: %w", league, err)
	}
	return s, nil
}

// Save replaces the league's document atomically and pushes it to the
// mirror when one is attached. A mirror failure never fails the save.
func (st *Store) Save(ctx context.Context, league string, s *transfers.State) error {
	doc, err := encodeState(s)
	if err != nil {
		return fmt.Errorf("error encoding state for %s: %w", league, err)
	}
	_, err = st.db.ExecContext(ctx, `
		INSERT INTO league_states (league, doc, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(league) DO UPDATE SET
			doc = excluded.doc,
			updated_at = CURRENT_TIMESTAMP`,
		league, doc,
	)
	if err != nil {
		return fmt.Errorf("error saving state for %s: %w", league, err)
	}

	if st.mirror != nil {
		st.mirror.Put(ctx, league, doc)
	}
	return nil
}

// Update runs fn against the league's current state inside a single
// transaction and writes the result back. fn returning an error rolls the
// whole thing back; the document on disk is then exactly what it was
// before.
func (st *Store) Update(ctx context.Context, league string, fn func(*transfers.State) error) (*transfers.State, error) {
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var doc []byte
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM league_states WHERE league = ?`, league,
	).Scan(&doc)

	var s *transfers.State
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s = transfers.NewState()
	case err != nil:
		return nil, fmt.Errorf("error loading state for %s: %w", league, err)
	default:
		if s, err = decodeState(doc); err != nil {
			return nil, fmt.Errorf("error decoding state for %s: %w", league, err)
		}
	}

	if err := fn(s); err != nil {
		return nil, err
	}

	out, err := encodeState(s)
	if err != nil {
		return nil, fmt.Errorf("error encoding state for %s: %w", league, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO league_states (league, doc, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(league) DO UPDATE SET
			doc = excluded.doc,
			updated_at = CURRENT_TIMESTAMP`,
		league, out,
	)
	if err != nil {
		return nil, fmt.Errorf("error saving state for %s: %w", league, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing state for %s: %w", league, err)
	}

	if st.mirror != nil {
		st.mirror.Put(ctx, league, out)
	}
	return s, nil
}

// Leagues lists every league with a stored document.
func (st *Store) Leagues(ctx context.Context) ([]string, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT league FROM league_states ORDER BY league`)
	if err != nil {
		return nil, fmt.Errorf("error listing leagues: %w", err)
	}
	defer rows.Close()

	var leagues []string
	for rows.Next() {
		var league string
		if err := rows.Scan(&league); err != nil {
			return nil, err
		}
		leagues = append(leagues, league)
	}
	return leagues, rows.Err()
}
