package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/marketplace/internal/middleware"
	"github.com/suteetoe/marketplace/internal/response"
	"github.com/suteetoe/marketplace/internal/store"
	"github.com/suteetoe/marketplace/pkg/logger"
	"go.uber.org/zap"
)

// ProfileRequest holds profile changes. Absent fields are left untouched.
type ProfileRequest struct {
	RealName *string `json:"realName"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Intro    *string `json:"intro"`
}

// UserHandler serves profile endpoints
type UserHandler struct {
	store *store.Store
}

// NewUserHandler creates a UserHandler
func NewUserHandler(s *store.Store) *UserHandler {
	return &UserHandler{store: s}
}

// Me returns the caller's own profile
func (h *UserHandler) Me(c echo.Context) error {
	return response.OK(c, toUserDTO(middleware.CurrentUser(c), true))
}

// UpdateMe applies a partial profile update for the caller
func (h *UserHandler) UpdateMe(c echo.Context) error {
	log := logger.FromEcho(c)
	caller := middleware.CurrentUser(c)

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid profile request", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}

	user, err := h.store.UpdateProfile(c.Request().Context(), caller.ID, store.ProfilePatch{
		FullName: req.RealName,
		Phone:    req.Phone,
		Email:    req.Email,
		Intro:    req.Intro,
	})
	if err != nil {
		return fail(c, log, err, "User")
	}

	log.Info("Profile updated", zap.Uint("user_id", user.ID))
	return response.OK(c, toUserDTO(user, true))
}

// Detail returns another user's public profile
func (h *UserHandler) Detail(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := ParseID(c.Param("id"))
	if err != nil {
		return fail(c, log, err, "User")
	}
	user, err := h.store.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, log, err, "User")
	}
	return response.OK(c, toUserDTO(user, false))
}
