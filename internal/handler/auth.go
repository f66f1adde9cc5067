package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // sentinel ErrNoRows checks
	"errors"
	"fmt"
	"log"
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls and code expiry

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/user-auth-service/internal/config"
	"github.com/iliyamo/user-auth-service/internal/middleware"
	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/notify"
	"github.com/iliyamo/user-auth-service/internal/repository"
	"github.com/iliyamo/user-auth-service/internal/session"
	"github.com/iliyamo/user-auth-service/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	OTPs     OTPStore
	Sessions session.Store
	Mailer   notify.Mailer
}

func NewAuthHandler(cfg config.Config, u UserStore, o OTPStore, s session.Store, m notify.Mailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, OTPs: o, Sessions: s, Mailer: m}
}

// ----- DTOs -----

type registerReq struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type verifyOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}
type emailReq struct {
	Email string `json:"email"`
}
type loginReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}
type resetPasswordReq struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ----- session plumbing -----

// currentSession returns the live session named by the request cookie,
// or nil when the cookie is missing, tampered with or points at an
// expired record.
func (h *AuthHandler) currentSession(c echo.Context) *session.Session {
	ck, err := c.Cookie(session.CookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	sid, err := session.DecodeCookie(h.Cfg.SessionSecret, ck.Value)
	if err != nil {
		return nil
	}
	sess, err := h.Sessions.Get(c.Request().Context(), sid)
	if err != nil {
		return nil
	}
	return sess
}

// saveSession persists the record and refreshes the signed cookie so
// client and server agree on the session id and expiry.
func (h *AuthHandler) saveSession(c echo.Context, sess *session.Session) error {
	if err := h.Sessions.Save(c.Request().Context(), sess); err != nil {
		return err
	}
	token, err := session.EncodeCookie(h.Cfg.SessionSecret, sess.ID, sess.ExpiresAt)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// clearSessionCookie expires the cookie on the client.
func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

// ----- OTP issuance -----

// issueOTP generates a code, persists it and hands it to the mailer.
// Registration codes follow a single-active-code policy: any prior
// unconsumed register code for the address is deleted before the new
// one is stored. Forgot-password codes are not deduplicated, so
// several reset codes for one address may be live at once.
func (h *AuthHandler) issueOTP(ctx context.Context, email, purpose, subject string) error {
	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	if purpose == model.PurposeRegister {
		if err := h.OTPs.DeleteByEmailPurpose(ctx, email, model.PurposeRegister); err != nil {
			return err
		}
	}
	if err := h.OTPs.Insert(ctx, model.OTP{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().UTC().Add(h.Cfg.OTPTTL),
	}); err != nil {
		return err
	}
	body := "Your OTP code is " + code + ". It expires in 10 minutes."
	return h.Mailer.Send(ctx, email, subject, body)
}

// ----- handlers -----

// Register validates the payload, mails a verification code and stages
// the registration in the caller's session. No user row is written
// until the code is verified.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All fields are required"})
	}
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already registered"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	if err := h.issueOTP(ctx, req.Email, model.PurposeRegister, "Verify your email"); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	// Stage the registration in this session only. Another session
	// verifying the same code must not be able to commit it.
	sess := h.currentSession(c)
	if sess == nil {
		sess = session.New(h.Cfg.SessionTTL)
	}
	sess.Stage(req.Email, model.PendingRegistration{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err := h.saveSession(c, sess); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to email. Please verify."})
}

// VerifyOTP consumes a registration code and commits the staged
// registration into the credential store. The code is consumed by hard
// delete before the pending entry is examined, so a correct code spent
// against the wrong session is gone for good and registration must
// restart.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and OTP required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	record, err := h.OTPs.FindValid(ctx, req.Email, req.OTP, model.PurposeRegister)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired OTP"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "OTP verification failed"})
	}
	// The sweeper or a concurrent verification may have consumed the
	// row between lookup and delete; only the caller that deletes it
	// wins.
	if err := h.OTPs.Delete(ctx, record.ID); err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired OTP"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "OTP verification failed"})
	}

	sess := h.currentSession(c)
	if sess == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No registration session found"})
	}
	pending, ok := sess.TakePending(req.Email)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No registration session found"})
	}

	uid, err := h.Users.Create(ctx, pending.FullName, pending.Email, pending.PasswordHash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "OTP verification failed"})
	}
	if err := h.saveSession(c, sess); err != nil {
		log.Printf("verify-otp: session save failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Registration successful. Please login.",
		"user":    userPart{ID: uid, FullName: pending.FullName, Email: pending.Email},
	})
}

// ResendOTP reissues a registration code. Already-verified users are
// refused; the fresh code invalidates every previously issued register
// code for the address.
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email is required"})
	}
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User already verified. Please login."})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to resend OTP"})
	}

	if err := h.issueOTP(ctx, req.Email, model.PurposeRegister, "OTP for Email Verification"); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to resend OTP"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "New OTP sent to your email."})
}

// Login checks credentials and binds the identity claim to a fresh
// session. Unknown email, wrong password and deactivated accounts all
// produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed"})
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
	}

	ttl := h.Cfg.SessionTTL
	if req.RememberMe {
		ttl = h.Cfg.RememberMeTTL
	}
	sess := session.New(ttl)
	sess.Identity = &session.Identity{UserID: u.ID, Role: u.RoleName}
	if err := h.saveSession(c, sess); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed"})
	}

	// Non-critical effect: the flag is informational and its failure
	// must not undo a successful login.
	if err := h.Users.UpdateLoggedIn(ctx, u.ID, true); err != nil {
		log.Printf("login: failed to set is_logged_in for user %d: %v", u.ID, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Login successful", "redirect": "/dashboard.html"})
}

// ForgotPassword mails a password-reset code to a known address.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email is required"})
	}
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to process forgot password"})
	}

	if err := h.issueOTP(ctx, req.Email, model.PurposeForgotPassword, "Password Reset OTP"); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to process forgot password"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset OTP sent to your email."})
}

// ResetPassword verifies a reset code, updates the password hash and
// then marks the code as used, keeping a record of the consumed reset.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email, OTP and both passwords are required"})
	}
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email format"})
	}
	if req.NewPassword != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Passwords do not match"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	record, err := h.OTPs.FindValid(ctx, req.Email, req.OTP, model.PurposeForgotPassword)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired OTP"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	if err := h.Users.UpdatePasswordHash(ctx, req.Email, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	if err := h.OTPs.MarkUsed(ctx, record.ID); err != nil {
		// The password change already happened; a lost race on the
		// used flag is logged, not surfaced.
		log.Printf("reset-password: mark used failed for otp %d: %v", record.ID, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successful. Please login."})
}

// Logout destroys the caller's session and clears the cookie. It is
// idempotent: with no live session it still reports success.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if sess := h.currentSession(c); sess != nil {
		if sess.Identity != nil {
			if err := h.Users.UpdateLoggedIn(ctx, sess.Identity.UserID, false); err != nil {
				log.Printf("logout: failed to clear is_logged_in for user %d: %v", sess.Identity.UserID, err)
			}
		}
		if err := h.Sessions.Delete(ctx, sess.ID); err != nil {
			log.Printf("logout: session delete failed: %v", err)
		}
	}
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Dashboard greets the authenticated user.
func (h *AuthHandler) Dashboard(c echo.Context) error {
	uid, _ := c.Get(middleware.CtxUserID).(uint64)
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("Welcome, user %d", uid)})
}

// DashboardData returns the display fields the dashboard page renders.
func (h *AuthHandler) DashboardData(c echo.Context) error {
	uid, _ := c.Get(middleware.CtxUserID).(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      u.FullName,
		"role":         u.RoleName,
		"is_logged_in": u.IsLoggedIn,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, _ := c.Get(middleware.CtxUserID).(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":        u.ID,
		"full_name": u.FullName,
		"email":     u.Email,
		"role":      u.RoleName,
	})
}
