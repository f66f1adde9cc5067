package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/user-auth-service/internal/model"
)

// OTPRepo persists one-time codes in the 'otps' table.
type OTPRepo struct{ DB *sql.DB }

func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{DB: db} }

// Insert stores a freshly issued code.
func (r *OTPRepo) Insert(ctx context.Context, otp model.OTP) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO otps (email, code, purpose, expires_at, used) VALUES (?,?,?,?,0)",
		strings.ToLower(strings.TrimSpace(otp.Email)), otp.Code, otp.Purpose, otp.ExpiresAt)
	return err
}

// FindValid looks up an unused, unexpired code for the given email and
// purpose. Expiry is evaluated by the database clock so request
// handling and the cleanup sweep agree on "now". Any miss, whatever
// the cause, is ErrOTPNotFound.
func (r *OTPRepo) FindValid(ctx context.Context, email, code, purpose string) (model.OTP, error) {
	var o model.OTP
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, code, purpose, expires_at, used, created_at
		 FROM otps WHERE email=? AND code=? AND purpose=? AND used=0 AND expires_at > NOW()
		 LIMIT 1`,
		strings.ToLower(strings.TrimSpace(email)), code, purpose).
		Scan(&o.ID, &o.Email, &o.Code, &o.Purpose, &o.ExpiresAt, &o.Used, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return model.OTP{}, ErrOTPNotFound
	}
	if err != nil {
		return model.OTP{}, err
	}
	return o, nil
}

// Delete removes a code by id (hard consumption, used for registration
// codes). The sweeper may have removed the row already, so a zero row
// count is reported as ErrOTPNotFound rather than success.
func (r *OTPRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM otps WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOTPNotFound
	}
	return nil
}

// MarkUsed flags a code as consumed (soft consumption, used for
// forgot-password codes). A concurrent consumer or the sweeper may win
// the race, in which case ErrOTPNotFound is returned.
func (r *OTPRepo) MarkUsed(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE otps SET used=1 WHERE id=? AND used=0", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOTPNotFound
	}
	return nil
}

// DeleteByEmailPurpose drops every outstanding code for the pair.
// Issuance calls this for registration codes so at most one register
// code per email is live at a time.
func (r *OTPRepo) DeleteByEmailPurpose(ctx context.Context, email, purpose string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM otps WHERE email=? AND purpose=?",
		strings.ToLower(strings.TrimSpace(email)), purpose)
	return err
}

// PurgeStale deletes used and expired codes, returning how many rows
// went away. Safe to run concurrently with verification; it touches
// only rows verification can no longer accept.
func (r *OTPRepo) PurgeStale(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM otps WHERE used=1 OR expires_at < NOW()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
