package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/user-auth-service/internal/model"
)

// SuperAdminRole is the role whose viewers see the is_logged_in column
// in user listings.
const SuperAdminRole = "Super Admin"

// UserRepo persists rows of the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `u.id, u.full_name, u.email, u.password_hash, u.role_id, COALESCE(r.name,''),
	u.is_active, u.is_logged_in, u.created_at`

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u      model.User
		roleID sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &roleID, &u.RoleName,
		&u.IsActive, &u.IsLoggedIn, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	if roleID.Valid {
		v := uint8(roleID.Int64)
		u.RoleID = &v
	}
	return u, nil
}

// Create inserts a user and returns its ID. The role is left NULL; an
// admin assigns one later.
func (r *UserRepo) Create(ctx context.Context, fullName, email, passwordHash string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (full_name, email, password_hash) VALUES (?,?,?)",
		fullName, email, passwordHash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email, role name included.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u LEFT JOIN roles r ON u.role_id=r.id WHERE u.email=? LIMIT 1",
		email))
}

// GetByID fetches a user by id, role name included.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u LEFT JOIN roles r ON u.role_id=r.id WHERE u.id=? LIMIT 1",
		id))
}

// UpdateRole reassigns a user's role.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, roleID uint8) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET role_id=? WHERE id=?", roleID, id)
	return err
}

// UpdateActive toggles whether an account may authenticate.
func (r *UserRepo) UpdateActive(ctx context.Context, id uint64, active bool) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
	return err
}

// UpdateLoggedIn records the login/logout flag. Callers treat failures
// here as non-critical.
func (r *UserRepo) UpdateLoggedIn(ctx context.Context, id uint64, loggedIn bool) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET is_logged_in=? WHERE id=?", loggedIn, id)
	return err
}

// UpdatePasswordHash replaces the password hash for the given email.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE email=?", hash, email)
	return err
}

// List returns all users newest first. The is_logged_in column is read
// only when the viewer holds the Super Admin role; for every other
// viewer the returned users carry the zero value and withLoggedIn is
// false so handlers know to omit the field entirely.
func (r *UserRepo) List(ctx context.Context, viewerRole string) ([]model.User, bool, error) {
	withLoggedIn := viewerRole == SuperAdminRole

	cols := "u.id, u.full_name, u.email, COALESCE(r.name,''), u.is_active, u.created_at"
	if withLoggedIn {
		cols += ", u.is_logged_in"
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+cols+" FROM users u LEFT JOIN roles r ON u.role_id=r.id ORDER BY u.id DESC")
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		dest := []any{&u.ID, &u.FullName, &u.Email, &u.RoleName, &u.IsActive, &u.CreatedAt}
		if withLoggedIn {
			dest = append(dest, &u.IsLoggedIn)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, false, err
		}
		users = append(users, u)
	}
	return users, withLoggedIn, rows.Err()
}
