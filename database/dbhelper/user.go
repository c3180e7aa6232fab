package dbhelper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/ray-remotestate/bazaar/database"
	"github.com/ray-remotestate/bazaar/models"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
type SQLExecutor interface {
	sqlx.Ext
}

var (
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrDuplicate is returned when an insert hits a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func newID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating uuid: %w", err)
	}
	return id, nil
}

func now() time.Time {
	return time.Now().UTC()
}

func CreateUser(exec SQLExecutor, name, email, hashedPassword string, role models.Role) (uuid.UUID, error) {
	id, err := newID()
	if err != nil {
		return uuid.Nil, err
	}

	query := exec.Rebind(`INSERT INTO users (id, name, email, password, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := exec.Exec(query, id, name, strings.TrimSpace(email), hashedPassword, role, now()); err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("creating user %s: %w", email, ErrDuplicate)
		}
		return uuid.Nil, fmt.Errorf("creating user %s: %w", email, err)
	}
	return id, nil
}

func IsUserExists(email string) (bool, error) {
	var count int
	query := database.Bazaar.Rebind(`SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?) AND archived_at IS NULL`)
	if err := database.Bazaar.Get(&count, query, strings.TrimSpace(email)); err != nil {
		return false, fmt.Errorf("checking user %s: %w", email, err)
	}
	return count > 0, nil
}

// GetUserByPassword returns sql.ErrNoRows (wrapped) for an unknown email and
// ErrIncorrectPassword for a wrong password.
func GetUserByPassword(email, password string) (*models.User, error) {
	var user models.User
	query := database.Bazaar.Rebind(`
		SELECT id, name, email, password, role, created_at, archived_at FROM users
		WHERE LOWER(email) = LOWER(?) AND archived_at IS NULL`)
	if err := database.Bazaar.Get(&user, query, strings.TrimSpace(email)); err != nil {
		return nil, fmt.Errorf("getting user %s: %w", email, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrIncorrectPassword
	}
	return &user, nil
}
