package middleware

import (
	"net/http"

	"shop/internal/access"

	"github.com/labstack/echo/v4"
)

// 出品者アカウントかスタッフだけ通す（商品ごとの所有はusecaseで見る）
func SellerGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", "unauthorized"))
			}

			//BUYERは拒否
			if !access.IsSeller(user) && !access.IsStaff(user) {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden", "seller only"))
			}

			return next(c)
		}
	}
}
