package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-auth-service/internal/middleware"
)

// UserHandler exposes the user administration endpoints.
type UserHandler struct {
	Users UserStore
}

func NewUserHandler(u UserStore) *UserHandler { return &UserHandler{Users: u} }

type updateRoleReq struct {
	UserID uint64 `json:"userId"`
	RoleID uint8  `json:"roleId"`
}
type updateStatusReq struct {
	UserID   uint64 `json:"userId"`
	IsActive bool   `json:"isActive"`
}

// userItem is one row of the listing response. IsLoggedIn is a pointer
// so the field disappears from the JSON entirely for viewers below
// Super Admin; those callers must not learn the value exists.
type userItem struct {
	ID         uint64    `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	IsLoggedIn *bool     `json:"is_logged_in,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// List returns every user, newest first. The store decides per viewer
// role whether the is_logged_in column is read at all.
func (h *UserHandler) List(c echo.Context) error {
	role, _ := c.Get(middleware.CtxRole).(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, withLoggedIn, err := h.Users.List(ctx, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch users"})
	}

	items := make([]userItem, 0, len(users))
	for _, u := range users {
		item := userItem{
			ID:        u.ID,
			FullName:  u.FullName,
			Email:     u.Email,
			Role:      u.RoleName,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt,
		}
		if withLoggedIn {
			v := u.IsLoggedIn
			item.IsLoggedIn = &v
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": items})
}

// UpdateRole reassigns a user's role.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req updateRoleReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId and roleId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, req.UserID, req.RoleID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update role"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Role updated successfully"})
}

// UpdateStatus toggles whether an account may authenticate.
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId and isActive required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateActive(ctx, req.UserID, req.IsActive); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update status"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Status updated successfully"})
}
