package handler

import (
	"net/http"

	"shop/internal/config"
	"shop/internal/middleware"
	"shop/internal/repository"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /profile の本人情報
type ProfileHandler struct {
	uc *usecase.ProfileUsecase
}

// DI
func NewProfileHandler(uc *usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	auth := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg.JWTSecret),
		middleware.LoadUser(userRepo),
	}

	e.GET("/profile", h.get, auth...)
	e.PUT("/profile", h.replace, auth...)
	e.PATCH("/profile", h.patch, auth...)
	e.DELETE("/profile", h.deactivate, auth...)
}

func (h *ProfileHandler) get(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Get(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProfileHandler) replace(c echo.Context) error {
	return h.update(c, false)
}

func (h *ProfileHandler) patch(c echo.Context) error {
	return h.update(c, true)
}

func (h *ProfileHandler) update(c echo.Context, partial bool) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Update(c.Request().Context(), user, req, partial)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProfileHandler) deactivate(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	msg, err := h.uc.Deactivate(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: msg})
}
