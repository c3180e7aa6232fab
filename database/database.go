package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var migrations embed.FS

// Bazaar is the shared connection pool used by dbhelper.
var Bazaar *sqlx.DB

// ConnectAndMigrate applies pending migrations for driver and then opens the
// pool that Bazaar points to. For sqlite, url is a file path.
func ConnectAndMigrate(driver, url string) error {
	if err := migrateUp(driver, url); err != nil {
		return err
	}

	db, err := connect(driver, url)
	if err != nil {
		return err
	}
	Bazaar = db
	return nil
}

func connect(driver, url string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres:
		db, err := sqlx.Connect(DriverPostgres, url)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return db, nil
	case DriverSQLite:
		sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
		dsn := url + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
		db, err := sqlx.Connect(DriverSQLite, dsn)
		if err != nil {
			return nil, fmt.Errorf("connecting to sqlite: %w", err)
		}
		// a single writer keeps sqlite from returning SQLITE_BUSY under load
		db.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func migrateUp(driver, url string) error {
	src, err := iofs.New(migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("loading %s migrations: %w", driver, err)
	}

	databaseURL := url
	if driver == DriverSQLite && !strings.HasPrefix(url, "sqlite://") {
		databaseURL = "sqlite://" + url
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logrus.WithFields(logrus.Fields{"source": srcErr, "database": dbErr}).Warn("closing migrator")
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Tx runs fn inside a transaction, committing when fn returns nil.
func Tx(fn func(tx *sqlx.Tx) error) error {
	tx, err := Bazaar.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rollBackErr := tx.Rollback(); rollBackErr != nil {
				logrus.Errorf("failed to rollback tx: %s", rollBackErr)
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rollBackErr := tx.Rollback(); rollBackErr != nil {
			logrus.Errorf("failed to rollback tx: %s", rollBackErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func ShutdownDatabase() error {
	if Bazaar == nil {
		return nil
	}
	return Bazaar.Close()
}
