// Package duckdb provides the on-disk stores used by the ingest.
// Annotation data is kept in DuckDB key-value tables ("scopes"), opened
// read-only while ingesting. Transcripts are kept as a zstd-compressed gob file.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// MetaScope holds string metadata such as the genome release.
const MetaScope = "meta"

// MetaGenomeRelease is the metadata key of the genome release a store was
// built for.
const MetaGenomeRelease = "genome_release"

var scopeNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Store manages a DuckDB connection holding key-value scopes.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
	scopes   map[string]*Scope
}

// Open opens or creates a writable DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, scopes: make(map[string]*Scope)}
	if err := s.CreateScope(MetaScope); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// OpenReadOnly opens an existing database in read-only mode and prepares
// the named scopes, failing if any of them is absent.
func OpenReadOnly(path string, scopes ...string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	db, err := sql.Open("duckdb", path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, readOnly: true, scopes: make(map[string]*Scope)}
	for _, name := range scopes {
		if _, err := s.Scope(name); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close closes prepared statements and the database connection.
func (s *Store) Close() error {
	for _, sc := range s.scopes {
		sc.get.Close()
	}
	return s.db.Close()
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// CreateScope creates the table backing a scope if it doesn't exist.
func (s *Store) CreateScope(name string) error {
	if s.readOnly {
		return fmt.Errorf("create scope %s: store is read-only", name)
	}
	if !scopeNameRe.MatchString(name) {
		return fmt.Errorf("invalid scope name %q", name)
	}
	_, err := s.db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key BLOB PRIMARY KEY,
		value BLOB
	)`, name))
	return err
}

// Scope returns a handle on the named scope.
func (s *Store) Scope(name string) (*Scope, error) {
	if sc, ok := s.scopes[name]; ok {
		return sc, nil
	}
	if !scopeNameRe.MatchString(name) {
		return nil, fmt.Errorf("invalid scope name %q", name)
	}
	stmt, err := s.db.Prepare(fmt.Sprintf("SELECT value FROM %s WHERE key = ?", name))
	if err != nil {
		return nil, fmt.Errorf("open scope %s: %w", name, err)
	}
	sc := &Scope{name: name, get: stmt}
	s.scopes[name] = sc
	return sc, nil
}

// Put inserts or replaces a single entry.
func (s *Store) Put(scope string, key, value []byte) error {
	if !scopeNameRe.MatchString(scope) {
		return fmt.Errorf("invalid scope name %q", scope)
	}
	_, err := s.db.Exec(fmt.Sprintf("INSERT OR REPLACE INTO %s VALUES (?, ?)", scope), key, value)
	if err != nil {
		return fmt.Errorf("put into %s: %w", scope, err)
	}
	return nil
}

// Entry is one key-value pair for bulk loading.
type Entry struct {
	Key   []byte
	Value []byte
}

// PutBatch bulk-inserts entries using the Appender API. Keys must not exist yet.
func (s *Store) PutBatch(scope string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if !scopeNameRe.MatchString(scope) {
		return fmt.Errorf("invalid scope name %q", scope)
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", scope)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, e := range entries {
		if err := appender.AppendRow(e.Key, e.Value); err != nil {
			return fmt.Errorf("append entry: %w", err)
		}
	}

	return appender.Flush()
}

// CheckRelease fails if the store records a genome release other than
// release. Stores without the entry pass.
func (s *Store) CheckRelease(release string) error {
	got, ok, err := s.Meta(MetaGenomeRelease)
	if err != nil {
		return err
	}
	if ok && !strings.EqualFold(got, release) {
		return fmt.Errorf("store %s is for genome release %s, not %s", s.path, got, release)
	}
	return nil
}

// Meta returns a metadata value.
func (s *Store) Meta(key string) (string, bool, error) {
	sc, err := s.Scope(MetaScope)
	if err != nil {
		return "", false, err
	}
	val, ok, err := sc.Get([]byte(key))
	return string(val), ok, err
}

// SetMeta stores a metadata value.
func (s *Store) SetMeta(key, value string) error {
	return s.Put(MetaScope, []byte(key), []byte(value))
}

// Scope is a read handle on one key-value table. It is safe for concurrent use.
type Scope struct {
	name string
	get  *sql.Stmt
}

// Get returns the value stored under key. A missing key is not an error.
func (sc *Scope) Get(key []byte) ([]byte, bool, error) {
	var val []byte
	err := sc.get.QueryRow(key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get from %s: %w", sc.name, err)
	}
	return val, true, nil
}
