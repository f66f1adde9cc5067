package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column. The RoleName
// field is populated by joining the roles table; it is empty when
// the user has no role assigned (role_id is NULL).
//
// Fields:
//  ID           – primary key identifier of the user.
//  FullName     – display name collected at registration.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  RoleID       – foreign key into the roles table (nullable).
//  RoleName     – name of the role (e.g. "User", "Admin", "Super Admin").
//  IsActive     – whether the account may authenticate.
//  IsLoggedIn   – whether the user currently holds a live session.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	FullName     string    // users.full_name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	RoleID       *uint8    // users.role_id (references roles.id, nullable)
	RoleName     string    // roles.name via LEFT JOIN
	IsActive     bool      // users.is_active
	IsLoggedIn   bool      // users.is_logged_in
	CreatedAt    time.Time // users.created_at
}

// Role represents a row in the `roles` table. It maps a small
// integer ID to a role name. Users reference this table via the
// RoleID field.
type Role struct {
	ID   uint8  // roles.id
	Name string // roles.name
}

// PendingRegistration holds registration data that has been accepted
// but not yet committed. It lives only inside the requesting session's
// payload; it becomes a durable User once the emailed code is
// verified, or disappears when the session expires.
type PendingRegistration struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}
