package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a database to version.
type migration struct {
	version int
	apply   func(*sql.DB) error
}

// migrations run in order on databases whose user_version is lower than
// their version. schema.sql always describes the latest layout, so every
// migration must be a no-op on a fresh database.
var migrations = []migration{
	{1, addObjectIndex},
	{2, scopeQuadsByDataset},
}

// schemaVersion is the user_version of a fully migrated database.
var schemaVersion = migrations[len(migrations)-1].version

// Store is a SQLite quad store. One Store holds any number of datasets;
// read one of them through Dataset.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, creating it if needed, and brings its
// schema up to date. Opening an existing store again is safe.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// One connection: SQLite serializes writers anyway, and ":memory:"
	// databases live only as long as their connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initialize(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens a private in-memory store.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// Close releases the database. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initialize(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return migrate(db)
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("set user_version %d: %w", m.version, err)
		}
		version = m.version
	}
	return nil
}

// addObjectIndex serves matches that bind only the object.
func addObjectIndex(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_quads_osp ON quads(o, s, p)`)
	return err
}

// scopeQuadsByDataset rebuilds a quads table that predates the dataset
// column. Existing quads cannot be attributed to a dataset, so they move
// to the unnamed dataset and the load records are cleared: the next load
// of each file stores it again under its name.
func scopeQuadsByDataset(db *sql.DB) error {
	has, err := hasColumn(db, "quads", "dataset")
	if err != nil {
		return err
	}
	if !has {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()
		for _, stmt := range []string{
			`CREATE TABLE quads_scoped (
				seq     INTEGER PRIMARY KEY AUTOINCREMENT,
				dataset TEXT NOT NULL DEFAULT '',
				g       TEXT NOT NULL DEFAULT '',
				s       TEXT NOT NULL,
				p       TEXT NOT NULL,
				o       TEXT NOT NULL,
				UNIQUE(dataset, g, s, p, o)
			)`,
			`INSERT INTO quads_scoped (seq, dataset, g, s, p, o)
				SELECT seq, '', g, s, p, o FROM quads`,
			`DROP TABLE quads`,
			`ALTER TABLE quads_scoped RENAME TO quads`,
			`CREATE INDEX IF NOT EXISTS idx_quads_spo ON quads(s, p, o)`,
			`CREATE INDEX IF NOT EXISTS idx_quads_pos ON quads(p, o, s)`,
			`CREATE INDEX IF NOT EXISTS idx_quads_osp ON quads(o, s, p)`,
			`DELETE FROM loads`,
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_quads_dataset ON quads(dataset, p)`)
	return err
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// pragma reads a pragma as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}
