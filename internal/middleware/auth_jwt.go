package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // uuid.UUID
	CtxTokenVersionKey = "token_version" // int
	CtxUserKey         = "user"          // *model.User
)

// アクセストークンのclaims（sub=ユーザーID, tv=token_version）
type AccessClaims struct {
	TokenVersion int `json:"tv"`
	jwt.RegisteredClaims
}

// HS256以外は受け付けない
var parser = jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

// Bearerトークンを検証してuser_idとtoken_versionをcontextに入れる。
// ユーザーの状態はLoadUserで見る。
func AuthJWT(secret string) echo.MiddlewareFunc {
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, msg := bearerToken(c.Request())
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", msg))
			}

			var claims AccessClaims
			token, err := parser.ParseWithClaims(raw, &claims, keyFunc)
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", "invalid or expired token"))
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil || userID == uuid.Nil || claims.TokenVersion < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", "invalid or expired token"))
			}

			c.Set(CtxUserIDKey, userID)
			c.Set(CtxTokenVersionKey, claims.TokenVersion)

			return next(c)
		}
	}
}

// トークンが無ければ理由を返す
func bearerToken(r *http.Request) (string, string) {
	authz := r.Header.Get(echo.HeaderAuthorization)
	if authz == "" {
		return "", "authentication credentials were not provided"
	}

	scheme, token, ok := strings.Cut(authz, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "invalid authorization header"
	}
	return token, ""
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func errorJSON(code string, msg string) errorResponse {
	return errorResponse{Error: msg, Code: code}
}
