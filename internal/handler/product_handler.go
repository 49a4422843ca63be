package handler

import (
	"net/http"
	"strconv"

	"shop/internal/config"
	"shop/internal/middleware"
	"shop/internal/repository"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /products, /categories の公開APIと /seller/products の出品者API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.GET("/products", h.list)
	e.GET("/products/:slug", h.detail)
	e.GET("/categories", h.categories)
	//スタッフかどうかはusecaseで見る
	e.POST("/categories", h.createCategory, middleware.AuthJWT(cfg.JWTSecret), middleware.LoadUser(userRepo))

	g := e.Group("/seller/products")
	g.Use(middleware.AuthJWT(cfg.JWTSecret))
	g.Use(middleware.LoadUser(userRepo))
	g.Use(middleware.SellerGuard())
	g.GET("", h.sellerList)
	g.POST("", h.sellerCreate)
	g.PATCH("/:slug", h.sellerUpdate)
	g.DELETE("/:slug", h.sellerDelete)
}

func (h *ProductHandler) list(c echo.Context) error {
	page, size, err := pageParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	in := usecase.ListProductsInput{
		Page:     page,
		PageSize: size,
		Name:     c.QueryParam("name"),
		Category: c.QueryParam("category"),
		Ordering: c.QueryParam("ordering"),
	}

	if v := c.QueryParam("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return badRequest(c, "invalid min_price")
		}
		in.MinPrice = &d
	}

	if v := c.QueryParam("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return badRequest(c, "invalid max_price")
		}
		in.MaxPrice = &d
	}

	if v := c.QueryParam("in_stock"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid in_stock")
		}
		in.InStock = &x
	}

	out, err := h.uc.ListProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	out, err := h.uc.GetProduct(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) categories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) sellerUpdate(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.SellerUpdateProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.SellerUpdateProduct(c.Request().Context(), user, c.Param("slug"), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) createCategory(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.CreateCategoryInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.CreateCategory(c.Request().Context(), user, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) sellerList(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListSellerProducts(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) sellerCreate(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.CreateProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.CreateSellerProduct(c.Request().Context(), user, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) sellerDelete(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.SellerDeleteProduct(c.Request().Context(), user, c.Param("slug")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}
