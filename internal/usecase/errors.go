package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// HandlerでそのままJSONにするエラー。
// errors.IsはCodeで比較する。
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func NewHTTPError(status int, code string, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

var (
	//400 入力不正
	ErrValidation = &HTTPError{Status: http.StatusBadRequest, Code: "validation_error", Message: "validation error"}
	//401 認証失敗
	ErrUnauthorized = &HTTPError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "unauthorized"}
	//403 権限
	ErrForbidden = &HTTPError{Status: http.StatusForbidden, Code: "forbidden", Message: "forbidden"}
	//404 存在しない・他人のもの
	ErrNotFound = &HTTPError{Status: http.StatusNotFound, Code: "not_found", Message: "not found"}
	//409 競合
	ErrConflict = &HTTPError{Status: http.StatusConflict, Code: "conflict", Message: "conflict"}
	//400 カートが空
	ErrEmptyCart = &HTTPError{Status: http.StatusBadRequest, Code: "empty_cart", Message: "Cart is empty"}
	//400 1商品の在庫不足
	ErrInsufficientStock = &HTTPError{Status: http.StatusBadRequest, Code: "insufficient_stock", Message: "Not enough stock"}
	//400 カート全体の在庫不足
	ErrInsufficientStockBatch = &HTTPError{Status: http.StatusBadRequest, Code: "insufficient_stock_batch", Message: "Some items are out of stock"}
	//500
	ErrInternal = &HTTPError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal error"}
)

// 在庫不足の商品1件分
type StockShortage struct {
	Product   string `json:"product"`
	Slug      string `json:"slug"`
	Available int64  `json:"available"`
}

func validationError(message string) error {
	return &HTTPError{Status: ErrValidation.Status, Code: ErrValidation.Code, Message: message}
}

func notFound(message string) error {
	return &HTTPError{Status: ErrNotFound.Status, Code: ErrNotFound.Code, Message: message}
}

func insufficientStock(available int64) error {
	return &HTTPError{
		Status:  ErrInsufficientStock.Status,
		Code:    ErrInsufficientStock.Code,
		Message: ErrInsufficientStock.Message,
		Details: map[string]int64{"available": available},
	}
}

func insufficientStockBatch(shortages []StockShortage) error {
	return &HTTPError{
		Status:  ErrInsufficientStockBatch.Status,
		Code:    ErrInsufficientStockBatch.Code,
		Message: ErrInsufficientStockBatch.Message,
		Details: shortages,
	}
}

// HTTPErrorでなければ500にまとめる
func internal(err error) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return &HTTPError{Status: ErrInternal.Status, Code: ErrInternal.Code, Message: ErrInternal.Message, Details: nil}
}
