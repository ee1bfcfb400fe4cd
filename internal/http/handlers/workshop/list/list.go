// Package list реализует HTTP-обработчик списка воркшопов с вакансиями.
// Параметр skill можно повторять: возвращаются воркшопы, требующие хотя бы один из навыков.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/workshop-registration/internal/http/response"
	"github.com/magabrotheeeer/workshop-registration/internal/lib/sl"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	List(ctx context.Context, skills []string) ([]models.WorkshopView, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP возвращает список воркшопов.
//
// @Summary Список воркшопов
// @Tags workshops
// @Produce json
// @Security BearerAuth
// @Param skill query []string false "Фильтр по навыкам" collectionFormat(multi)
// @Success 200 {object} response.Response{data=[]models.WorkshopView}
// @Failure 500 {object} response.ErrorResponse
// @Router /workshops [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.workshop.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var skills []string
	for _, s := range r.URL.Query()["skill"] {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	res, err := h.service.List(r.Context(), skills)
	if err != nil {
		log.Error("failed to list workshops", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Debug("workshops listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.OKWithData(res))
}
