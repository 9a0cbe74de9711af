package store

import (
	"fmt"

	sqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Options selects and configures the storage backend. SQLite is the default
// deployment mode (a single durable file next to the bot); MySQL covers
// installs that already run a shared SQL server.
type Options struct {
	Backend string // "sqlite" (default) or "mysql"

	// SQLite
	Path string // database file path

	// MySQL
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// SQLiteDSN builds the sqlite DSN. WAL journaling is required: turn saves
// from different conversations run concurrently and must not corrupt each
// other, and WAL keeps the file crash-consistent.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
}

// MySQLDSN builds the MySQL DSN via the driver's own config type.
func MySQLDSN(host string, port int, database, user, password string) string {
	cfg := sqldriver.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	cfg.DBName = database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// openDB opens the GORM handle for the selected backend.
func openDB(opts Options) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch opts.Backend {
	case "", BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("store: sqlite path is required")
		}
		db, err := gorm.Open(sqlite.Open(SQLiteDSN(opts.Path)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite %s: %w", opts.Path, err)
		}
		return db, nil
	case BackendMySQL:
		if opts.Database == "" {
			return nil, fmt.Errorf("store: mysql database is required")
		}
		dsn := MySQLDSN(opts.Host, opts.Port, opts.Database, opts.User, opts.Password)
		db, err := gorm.Open(mysql.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("store: connect to %s:%d/%s: %w", opts.Host, opts.Port, opts.Database, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", opts.Backend)
	}
}
