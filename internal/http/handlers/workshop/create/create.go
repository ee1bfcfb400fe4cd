// Package create реализует HTTP-обработчик создания воркшопа.
//
// Handler принимает JSON с параметрами воркшопа, валидирует его
// и передаёт в бизнес-логику вместе с пользователем запроса.
// Создавать воркшопы может только администратор.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/workshop-registration/internal/http/middlewarectx"
	"github.com/magabrotheeeer/workshop-registration/internal/http/response"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/sl"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

// Handler обрабатывает запросы на создание воркшопа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики воркшопов
	validate *validator.Validate // Валидатор входящих данных
}

// Service описывает интерфейс бизнес-логики создания воркшопа.
type Service interface {
	Create(ctx context.Context, p models.Principal, req models.DummyWorkshop) (int64, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP создаёт воркшоп.
//
// @Summary Создать воркшоп
// @Description Создаёт воркшоп с требуемыми навыками. Доступно администратору.
// @Tags workshops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummyWorkshop true "Параметры воркшопа"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /workshops [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.workshop.create"

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

	var req models.DummyWorkshop
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	log.Debug("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.service.Create(r.Context(), p, req)
	if err != nil {
		log.Error("failed to create workshop", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("workshop created", slog.Int64("workshop_id", id))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"workshop_id": id,
	}))
}
