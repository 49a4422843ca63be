package handler

import (
	"net/http"
	"strconv"

	"shop/internal/config"
	"shop/internal/middleware"
	"shop/internal/repository"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /profile/orders のHTTP
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/profile/orders")
	g.Use(middleware.AuthJWT(cfg.JWTSecret))
	g.Use(middleware.LoadUser(userRepo))

	g.GET("", h.list)
	g.GET("/:tx_ref", h.items)
	g.POST("/:tx_ref/cancel", h.cancel)
}

func (h *OrderHandler) list(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	page, size, err := pageParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	out, err := h.uc.ListOrders(c.Request().Context(), user, page, size)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) items(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetOrderItems(c.Request().Context(), user, c.Param("tx_ref"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.CancelOrder(c.Request().Context(), user, c.Param("tx_ref"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

type queryError string

func (e queryError) Error() string { return string(e) }

// page / page_size（未指定は0でusecaseの既定値）
func pageParams(c echo.Context) (int, int, error) {
	page := 0
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, queryError("invalid page")
		}
		page = p
	}

	size := 0
	if v := c.QueryParam("page_size"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, queryError("invalid page_size")
		}
		size = s
	}
	return page, size, nil
}
