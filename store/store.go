package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// ErrNotFound is returned when a lookup, update or delete matches no row.
var ErrNotFound = errors.New("not found")

// dialect captures the differences between the supported engines that the
// queries in this package care about.
type dialect struct {
	driver string
	schema string
	// dollar placeholders ($1, $2, ...) instead of ?.
	dollar bool
	// returning means INSERT ... RETURNING id is used instead of LastInsertId.
	returning bool
	// single limits the pool to one connection. SQLite serializes writes
	// anyway and every connection to :memory: is a separate database.
	single bool
}

var dialects = map[string]dialect{
	"postgres": {driver: "postgres", schema: "postgres.sql", dollar: true, returning: true},
	"mysql":    {driver: "mysql", schema: "mysql.sql"},
	"sqlite":   {driver: "sqlite", schema: "sqlite.sql", single: true},
	"sqlite3":  {driver: "sqlite3", schema: "sqlite.sql", single: true},
}

// Drivers lists the accepted values for the driver argument of Open.
func Drivers() []string {
	return []string{"postgres", "mysql", "sqlite", "sqlite3"}
}

type Store struct {
	DB      *sql.DB
	dialect dialect
}

// Open connects to the database, checks the connection and creates the
// tables if they do not exist yet.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("db source is required")
	}
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, err
	}
	if d.single {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{DB: db, dialect: d}
	if err := s.applySchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) applySchema(ctx context.Context) error {
	schemaSQL, err := schemaFS.ReadFile("schema/" + s.dialect.schema)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	// The MySQL driver rejects multi-statement strings unless the DSN opts in.
	for _, stmt := range strings.Split(string(schemaSQL), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders for engines that use numbered ones.
func (s *Store) rebind(query string) string {
	return rebind(s.dialect, query)
}

func rebind(d dialect, query string) string {
	if !d.dollar {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insert runs an INSERT and returns the id assigned by the database.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dialect.returning {
		var id int64
		err := s.DB.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := s.DB.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// setClause collects the "col = ?" pieces of a partial UPDATE.
type setClause struct {
	cols []string
	args []any
}

func (c *setClause) add(col string, v any) {
	c.cols = append(c.cols, col+" = ?")
	c.args = append(c.args, v)
}

func (c *setClause) String() string {
	return strings.Join(c.cols, ", ")
}
