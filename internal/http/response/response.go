// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (при неуспехе).
// Поле Data — данные ответа; при отказе в записи содержит подробности.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ErrorWithData возвращает Response с ошибкой и подробностями отказа.
func ErrorWithData(msg string, data any) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
		Data:   data,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "lte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must not be empty", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// HTTPStatus сопоставляет доменную ошибку со статусом ответа.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyRegistered),
		errors.Is(err, models.ErrAlreadyWaitlisted),
		errors.Is(err, models.ErrScheduleConflict),
		errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message возвращает текст ошибки для клиента. Внутренние ошибки не раскрываются.
func Message(err error) string {
	switch {
	case errors.Is(err, models.ErrAlreadyRegistered):
		return "already registered for this workshop"
	case errors.Is(err, models.ErrAlreadyWaitlisted):
		return "already on the waitlist and the workshop is still full"
	case errors.Is(err, models.ErrScheduleConflict):
		return "schedule conflict with another workshop"
	case errors.Is(err, models.ErrAlreadyExists):
		return "already exists"
	case errors.Is(err, models.ErrNotFound):
		return "not found"
	case errors.Is(err, models.ErrValidation):
		return "validation failed"
	case errors.Is(err, models.ErrForbidden):
		return "forbidden"
	default:
		return "internal error"
	}
}

// Details возвращает подробности отказа в записи, если они есть.
func Details(err error) any {
	var stateErr *models.StateError
	if errors.As(err, &stateErr) {
		return map[string]any{
			"status":        stateErr.Status,
			"registered_at": stateErr.RegisteredAt,
		}
	}
	var conflictErr *models.ScheduleConflictError
	if errors.As(err, &conflictErr) {
		return map[string]any{
			"conflicting_workshop_id":    conflictErr.WorkshopID,
			"conflicting_workshop_title": conflictErr.Title,
		}
	}
	return nil
}

// Fail отправляет ответ с ошибкой доменного слоя.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, HTTPStatus(err))
	render.JSON(w, r, ErrorWithData(Message(err), Details(err)))
}
