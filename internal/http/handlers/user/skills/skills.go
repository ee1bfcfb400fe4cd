// Package skills реализует HTTP-обработчик замены навыков пользователя.
//
// Путь /users/me/skills меняет навыки пользователя запроса,
// /users/{id}/skills меняет навыки пользователя id (чужие может менять только администратор).
package skills

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/workshop-registration/internal/http/middlewarectx"
	"github.com/magabrotheeeer/workshop-registration/internal/http/params"
	"github.com/magabrotheeeer/workshop-registration/internal/http/response"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/sl"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

// Handler обрабатывает запросы на замену навыков.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики навыков пользователя.
type Service interface {
	SetSkills(ctx context.Context, p models.Principal, userID int64, skills []models.SkillGrade) error
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP заменяет весь набор навыков пользователя.
//
// @Summary Заменить навыки пользователя
// @Description Пустой список очищает навыки. Навыки должны быть уже известны системе.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param request body models.DummyUserSkills true "Навыки с оценками от 1 до 5"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /users/{id}/skills [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.skills"

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

	userID := p.UserID
	if chi.URLParam(r, "id") != "" {
		id, err := params.ID(r, "id")
		if err != nil {
			log.Error("failed to decode id from url", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		userID = id
	}

	var req models.DummyUserSkills
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	list := make([]models.SkillGrade, 0, len(req.Skills))
	for _, sk := range req.Skills {
		list = append(list, models.SkillGrade{Name: sk.Name, Grade: sk.Grade})
	}

	if err := h.service.SetSkills(r.Context(), p, userID, list); err != nil {
		log.Error("failed to replace skills", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("skills replaced", slog.Int64("user_id", userID), slog.Int("count", len(list)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id": userID,
		"skills":  list,
	}))
}
