package middleware

import (
	"net/http"

	"shop/internal/domain/model"
	"shop/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTのユーザーをDBから読み、停止・token_versionの不一致を弾く。
// 以降のhandlerはCurrentUserで受け取る。
func LoadUser(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			userID, ok := c.Get(CtxUserIDKey).(uuid.UUID)
			if !ok || userID == uuid.Nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", "unauthorized"))
			}

			//AuthJWTが入れたtoken_version(tv)を取得する
			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", "unauthorized"))
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil || user == nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", "unauthorized"))
			}

			//token_version が一致しなければ強制ログアウト扱い（401）
			if user.TokenVersion != tv {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", "token revoked"))
			}

			//停止ユーザー
			if !user.IsActive {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden", "account is disabled"))
			}

			c.Set(CtxUserKey, user)
			return next(c)
		}
	}
}

// LoadUserが入れたユーザー
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(CtxUserKey).(*model.User)
	return u, ok && u != nil
}
