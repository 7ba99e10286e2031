package bootstrap

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"

	"github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vmx/internal/domain"
	"vmx/internal/execution"
)

// DatabaseEnv carries the name of the context's database.
const DatabaseEnv = "DB_DATABASE"

// Execer is the part of *sql.DB the database bootstrapper needs
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DSNFromEnv builds a server DSN from DB_HOST, DB_PORT, DB_USERNAME and
// DB_PASSWORD, falling back to a local root connection.
func DSNFromEnv() string {
	cfg := mysql.NewConfig()
	cfg.User = envOr("DB_USERNAME", "root")
	cfg.Passwd = os.Getenv("DB_PASSWORD")
	cfg.Net = "tcp"
	cfg.Addr = envOr("DB_HOST", "127.0.0.1") + ":" + envOr("DB_PORT", "3306")
	return cfg.FormatDSN()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// OpenDatabase connects to the server named by dsn and checks it is reachable.
func OpenDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database server")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database server")
	}
	return db, nil
}

// DatabaseBootstrapper gives every context its own database on top of the
// contexts produced by another bootstrapper.
type DatabaseBootstrapper struct {
	inner  execution.Bootstrapper
	db     Execer
	prefix string
	setup  []string
	seq    atomic.Int64
}

// NewDatabaseBootstrapper creates a new DatabaseBootstrapper. setup, when
// given, runs inside each new context before it is handed out.
func NewDatabaseBootstrapper(inner execution.Bootstrapper, db Execer, prefix string, setup []string) *DatabaseBootstrapper {
	if prefix == "" {
		prefix = "vmx"
	}
	return &DatabaseBootstrapper{inner: inner, db: db, prefix: prefix, setup: setup}
}

// DatabaseName returns the database name for the n-th context of variant v.
func DatabaseName(prefix string, v domain.Variant, n int64) string {
	return fmt.Sprintf("%s_v%d_%d", prefix, v, n)
}

// Acquire creates the inner context and a database for it.
func (b *DatabaseBootstrapper) Acquire(ctx context.Context, v domain.Variant) (execution.Context, error) {
	inner, err := b.inner.Acquire(ctx, v)
	if err != nil {
		return nil, err
	}

	name := DatabaseName(b.prefix, v, b.seq.Add(1))
	c := &databaseContext{Context: inner, name: name, db: b.db}

	if err := b.createDatabase(ctx, name); err != nil {
		return nil, multierror.Append(err, inner.Release()).ErrorOrNil()
	}
	if err := b.runSetup(ctx, c); err != nil {
		return nil, multierror.Append(err, c.Release()).ErrorOrNil()
	}
	return c, nil
}

func (b *DatabaseBootstrapper) createDatabase(ctx context.Context, name string) error {
	// Sanitize database name to prevent SQL injection
	if !isValidDatabaseName(name) {
		return errors.Errorf("invalid database name: %s", name)
	}
	if _, err := b.db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
		return errors.Wrapf(err, "failed to create database %s", name)
	}
	log.WithField("database", name).Debug("database created")
	return nil
}

func (b *DatabaseBootstrapper) runSetup(ctx context.Context, c *databaseContext) error {
	if len(b.setup) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, b.setup[0], b.setup[1:]...)
	cmd.Env = append(os.Environ(), c.Environ()...)
	cmd.Dir = c.Dir()

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "setup for %s failed: %s", c.name, strings.TrimSpace(out.String()))
	}
	return nil
}

// isValidDatabaseName validates database name (basic check)
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	upperName := strings.ToUpper(name)
	for _, keyword := range []string{"DROP", "DELETE", "TRUNCATE"} {
		if strings.Contains(upperName, keyword) {
			return false
		}
	}
	return true
}

type databaseContext struct {
	execution.Context
	name     string
	db       Execer
	released atomic.Bool
}

func (c *databaseContext) Environ() []string {
	env := append([]string(nil), c.Context.Environ()...)
	return append(env, fmt.Sprintf("%s=%s", DatabaseEnv, c.name))
}

// Release drops the database, then releases the inner context.
func (c *databaseContext) Release() error {
	if !c.released.CompareAndSwap(false, true) {
		return nil
	}
	var result *multierror.Error
	if _, err := c.db.ExecContext(context.Background(), fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", c.name)); err != nil {
		result = multierror.Append(result, errors.Wrapf(err, "failed to drop database %s", c.name))
	}
	if err := c.Context.Release(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
