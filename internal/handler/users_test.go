package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Only Super Admin viewers may learn whether users are logged in; for
// everyone else the field must be absent from the payload entirely,
// not just false.
func TestListUsers_LoggedInFieldGatedByViewerRole(t *testing.T) {
	t.Parallel()
	ev := newEnv(t)
	ev.users.seed("Alice", "alice@example.com", hash(t, "pw"), "User", true)
	ev.users.seed("Sam", "sam@example.com", hash(t, "pw"), "Super Admin", true)

	ck := ev.loginAs(t, "alice@example.com", "pw")
	rec := ev.do(http.MethodGet, "/api/users/list", "", ck)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, u := range body(t, rec)["users"].([]any) {
		_, present := u.(map[string]any)["is_logged_in"]
		assert.False(t, present, "is_logged_in leaked to a non-Super Admin viewer")
	}

	ck = ev.loginAs(t, "sam@example.com", "pw")
	rec = ev.do(http.MethodGet, "/api/users/list", "", ck)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, u := range body(t, rec)["users"].([]any) {
		_, present := u.(map[string]any)["is_logged_in"]
		assert.True(t, present, "Super Admin viewer should see is_logged_in")
	}
}

func TestListUsers_RequiresAuthentication(t *testing.T) {
	t.Parallel()
	ev := newEnv(t)

	rec := ev.do(http.MethodGet, "/api/users/list", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateRole_AdminOnly(t *testing.T) {
	t.Parallel()
	ev := newEnv(t)
	target := ev.users.seed("Alice", "alice@example.com", hash(t, "pw"), "User", true)
	ev.users.seed("Adam", "adam@example.com", hash(t, "pw"), "Admin", true)

	// A regular user is refused.
	ck := ev.loginAs(t, "alice@example.com", "pw")
	rec := ev.do(http.MethodPost, "/api/users/update-role",
		`{"userId":1,"roleId":2}`, ck)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An admin succeeds.
	ck = ev.loginAs(t, "adam@example.com", "pw")
	rec = ev.do(http.MethodPost, "/api/users/update-role",
		`{"userId":1,"roleId":2}`, ck)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Role updated successfully", body(t, rec)["message"])

	u, err := ev.users.GetByID(t.Context(), target)
	require.NoError(t, err)
	require.NotNil(t, u.RoleID)
	assert.Equal(t, uint8(2), *u.RoleID)
}

func TestUpdateStatus_DeactivatedUserCannotLogin(t *testing.T) {
	t.Parallel()
	ev := newEnv(t)
	target := ev.users.seed("Alice", "alice@example.com", hash(t, "pw"), "User", true)
	ev.users.seed("Sam", "sam@example.com", hash(t, "pw"), "Super Admin", true)

	ck := ev.loginAs(t, "sam@example.com", "pw")
	rec := ev.do(http.MethodPost, "/api/users/update-status",
		`{"userId":1,"isActive":false}`, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Status updated successfully", body(t, rec)["message"])

	u, err := ev.users.GetByID(t.Context(), target)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	// The deactivated account now fails login with the uniform error.
	rec = ev.do(http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", body(t, rec)["error"])
}
