// Package unregister реализует HTTP-обработчик отмены записи на воркшоп.
package unregister

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

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Unregister(ctx context.Context, userID, workshopID int64) (*models.UnregisterResult, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP отменяет активную регистрацию пользователя запроса.
//
// @Summary Отменить запись на воркшоп
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID воркшопа"
// @Success 200 {object} response.Response{data=models.UnregisterResult}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /workshops/{id}/unregister [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.registration.unregister"

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

	res, err := h.service.Unregister(r.Context(), p.UserID, workshopID)
	if err != nil {
		log.Info("unregister rejected", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("registration cancelled", slog.Int64("workshop_id", workshopID))
	render.JSON(w, r, response.OKWithData(res))
}
