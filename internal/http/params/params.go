// Package params разбирает параметры HTTP-запросов.
package params

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

// ErrInvalidID — идентификатор в пути не является положительным целым числом.
var ErrInvalidID = errors.New("id must be a positive integer")

// ID возвращает положительный целочисленный параметр пути name.
func ID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
