package handler

import (
	"net/http"

	"shop/internal/domain/model"
	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "validation_error"})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Code: he.Code, Details: he.Details})
	}

	//500
	c.Logger().Errorj(log.JSON{"msg": "unhandled error", "error": err.Error()})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal_error"})
}

// LoadUserを通ったルートで使う
func currentUser(c echo.Context) (*model.User, bool) {
	return middleware.CurrentUser(c)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: "unauthorized"})
}

type MessageResponse struct {
	Message string `json:"message"`
}
