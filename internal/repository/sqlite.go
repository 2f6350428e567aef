package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/user-directory/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteUserRepository stores users in the SQLite users table.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a repository on an already migrated db.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, username, password FROM users ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Password); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *SQLiteUserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, username, password) VALUES (?, ?, ?)",
		user.ID, user.Username, user.Password)
	return translateSQLiteError(err)
}

func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, username, password FROM users WHERE username = ?", username)
	return scanUser(row)
}

func (r *SQLiteUserRepository) Update(ctx context.Context, username string, changes models.UserUpdate) (models.User, error) {
	if changes.IsEmpty() {
		return r.FindByUsername(ctx, username)
	}

	var sets []string
	var args []any
	if changes.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *changes.Username)
	}
	if changes.PasswordHash != nil {
		sets = append(sets, "password = ?")
		args = append(args, *changes.PasswordHash)
	}
	args = append(args, username)

	query := fmt.Sprintf("UPDATE users SET %s WHERE username = ? RETURNING id, username, password", strings.Join(sets, ", "))
	return scanUser(r.db.QueryRowContext(ctx, query, args...))
}

func (r *SQLiteUserRepository) Delete(ctx context.Context, username string) (models.User, error) {
	row := r.db.QueryRowContext(ctx, "DELETE FROM users WHERE username = ? RETURNING id, username, password", username)
	return scanUser(row)
}

func (r *SQLiteUserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Password); err != nil {
		return models.User{}, translateSQLiteError(err)
	}
	return user, nil
}

func translateSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && isUniqueViolation(sqliteErr) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

// isUniqueViolation accepts both the extended and the primary result code.
func isUniqueViolation(err *sqlite.Error) bool {
	switch err.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	}
	return false
}
