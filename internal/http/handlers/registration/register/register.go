// Package register реализует HTTP-обработчик записи пользователя на воркшоп.
//
// Пользователь берётся из контекста запроса, идентификатор воркшопа из пути.
// Отказы в записи (уже записан, уже в листе ожидания, пересечение по времени)
// возвращаются с кодом 409 и подробностями в поле data.
package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/workshop-registration/internal/http/middlewarectx"
	"github.com/magabrotheeeer/workshop-registration/internal/http/params"
	"github.com/magabrotheeeer/workshop-registration/internal/http/response"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/sl"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

// Handler обрабатывает запросы на запись.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает бизнес-логику записи.
type Service interface {
	Register(ctx context.Context, userID, workshopID int64) (*models.RegisterResult, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP записывает пользователя запроса на воркшоп.
//
// @Summary Записаться на воркшоп
// @Description Записывает пользователя на воркшоп или ставит в лист ожидания, если мест нет.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID воркшопа"
// @Success 200 {object} response.Response{data=models.RegisterResult}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /workshops/{id}/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.registration.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		log.Error("principal not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	workshopID, err := params.ID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	res, err := h.service.Register(r.Context(), p.UserID, workshopID)
	if err != nil {
		if response.HTTPStatus(err) == http.StatusInternalServerError {
			log.Error("failed to register", sl.Err(err))
		} else {
			log.Info("registration rejected", sl.Err(err))
		}
		response.Fail(w, r, err)
		return
	}

	log.Info("registration accepted",
		slog.Int64("user_id", p.UserID),
		slog.Int64("workshop_id", workshopID),
		slog.String("status", string(res.Status)),
	)
	render.JSON(w, r, response.OKWithData(res))
}
