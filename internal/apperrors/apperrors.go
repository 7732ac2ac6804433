package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeNotFound         Code = "not_found"
	CodeValidation       Code = "validation_failed"
	CodeUnauthorized     Code = "unauthorized"
	CodeChatInaccessible Code = "chat_inaccessible"
	CodeWrongChatKind    Code = "wrong_chat_kind"
	CodeBotNotAdmin      Code = "bot_not_admin"
	CodeInternal         Code = "internal_error"
)

type AppError struct {
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	HTTPCode int    `json:"-"`
	Err      error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func Wrap(err error, code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode, Err: err}
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func ChatInaccessible(message string) *AppError {
	return New(CodeChatInaccessible, message, http.StatusBadRequest)
}

func WrongChatKind(message string) *AppError {
	return New(CodeWrongChatKind, message, http.StatusBadRequest)
}

func BotNotAdmin(message string) *AppError {
	return New(CodeBotNotAdmin, message, http.StatusBadRequest)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "internal server error", http.StatusInternalServerError)
}

// From converts any error to an AppError, wrapping unknown errors as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
