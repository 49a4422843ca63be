package handler

import (
	"net/http"

	"shop/internal/config"
	"shop/internal/middleware"
	"shop/internal/repository"
	"shop/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// /cart と /checkout のHTTP
type CartHandler struct {
	cart     *usecase.CartUsecase
	checkout *usecase.CheckoutUsecase
}

// DI
func NewCartHandler(cart *usecase.CartUsecase, checkout *usecase.CheckoutUsecase) *CartHandler {
	return &CartHandler{cart: cart, checkout: checkout}
}

type UpsertCartRequest struct {
	Slug     string `json:"slug"`
	Quantity *int64 `json:"quantity"`
}

type CheckoutRequest struct {
	ShippingID *string `json:"shipping_id"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	auth := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg.JWTSecret),
		middleware.LoadUser(userRepo),
	}

	g := e.Group("/cart", auth...)
	g.GET("", h.getCart)
	g.POST("", h.upsertLine)

	e.POST("/checkout", h.placeOrder, auth...)
}

func (h *CartHandler) getCart(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.cart.ListLines(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) upsertLine(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpsertCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Slug == "" {
		return badRequest(c, "slug is required")
	}
	if req.Quantity == nil {
		return badRequest(c, "quantity is required")
	}

	out, err := h.cart.UpsertLine(c.Request().Context(), user, usecase.UpsertLineInput{
		Slug:     req.Slug,
		Quantity: *req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(out.StatusCode(), out)
}

func (h *CartHandler) placeOrder(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	var in usecase.CheckoutInput
	if req.ShippingID != nil && *req.ShippingID != "" {
		id, err := uuid.Parse(*req.ShippingID)
		if err != nil {
			return badRequest(c, "invalid shipping_id")
		}
		in.ShippingID = &id
	}

	out, err := h.checkout.Checkout(c.Request().Context(), user, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
