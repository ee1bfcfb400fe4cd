// Package update реализует HTTP-обработчик изменения воркшопа.
//
// Менять название, описание и вместимость может администратор или назначенный ведущий.
// Уменьшение вместимости переводит последних записавшихся участников в CANCELLED
// в той же транзакции; их идентификаторы возвращаются в capacity_change.
package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/workshop-registration/internal/http/middlewarectx"
	"github.com/magabrotheeeer/workshop-registration/internal/http/params"
	"github.com/magabrotheeeer/workshop-registration/internal/http/response"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/sl"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Update(ctx context.Context, p models.Principal, id int64, patch models.WorkshopPatch) (*models.WorkshopUpdateResult, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP применяет частичное изменение воркшопа.
//
// @Summary Изменить воркшоп
// @Tags workshops
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID воркшопа"
// @Param request body models.DummyWorkshopPatch true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.WorkshopUpdateResult}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /workshops/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.workshop.update"

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

	id, err := params.ID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	var req models.DummyWorkshopPatch
	if err = render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err = h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.Update(r.Context(), p, id, models.WorkshopPatch{
		Title:       req.Title,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		log.Error("failed to update workshop", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	if res.CapacityChange != nil {
		log.Info("workshop capacity changed",
			slog.Int64("workshop_id", id),
			slog.Int("old_capacity", res.CapacityChange.OldCapacity),
			slog.Int("new_capacity", res.CapacityChange.NewCapacity),
			slog.Int("demoted", len(res.CapacityChange.DemotedUserIDs)),
		)
	}
	render.JSON(w, r, response.OKWithData(res))
}
