package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockroom-app/stockroom/internal/domain"
)

// ─── Operator Accounts ──────────────────────────────────────────────────────

// CreateUser stores a new operator with a bcrypt hash of password.
func (db *DB) CreateUser(ctx context.Context, u *domain.User, password string) error {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" || password == "" {
		return domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	var exists int
	if err := db.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, u.Username).Scan(&exists); err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if exists > 0 {
		return domain.ErrUserExists
	}

	res, err := db.db.ExecContext(ctx, `
		INSERT INTO users (username, full_name, email, password_hash, disabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.Username, u.FullName, u.Email, u.PasswordHash, boolInt(u.Disabled), formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

// EnsureUser creates the account when it is missing. An existing account is
// left alone so a changed password survives restarts.
func (db *DB) EnsureUser(ctx context.Context, u *domain.User, password string) error {
	_, err := db.Lookup(ctx, u.Username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		if err := db.CreateUser(ctx, u, password); err != nil {
			return err
		}
		zap.L().Info("initialized default operator account", zap.String("username", u.Username))
		return nil
	case err != nil:
		return err
	}
	return nil
}

// Lookup returns the operator named username.
func (db *DB) Lookup(ctx context.Context, username string) (*domain.User, error) {
	var (
		u        domain.User
		disabled int
		created  string
	)
	err := db.db.QueryRowContext(ctx, `
		SELECT id, username, full_name, email, password_hash, disabled, created_at
		FROM users WHERE username = ?
	`, strings.TrimSpace(username)).Scan(&u.ID, &u.Username, &u.FullName, &u.Email,
		&u.PasswordHash, &disabled, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	u.Disabled = disabled == 1
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("lookup user %q created_at: %w", u.Username, err)
	}
	return &u, nil
}

// Verify checks password against the stored hash.
func (db *DB) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := db.Lookup(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.Disabled {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}
