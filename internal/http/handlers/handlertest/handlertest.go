// Package handlertest содержит общие помощники для тестов HTTP-обработчиков.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/workshop-registration/internal/http/middlewarectx"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

// NewNoopLogger возвращает логгер, который ничего не пишет.
func NewNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// Participant и Admin — типовые пользователи запросов.
var (
	Participant = &models.Principal{UserID: 1, Role: models.RoleParticipant}
	Admin       = &models.Principal{UserID: 100, Role: models.RoleAdmin}
)

// NewRequest собирает запрос с параметром пути id и, если p не nil, пользователем в контексте.
// body сериализуется в JSON; строка передаётся как есть.
func NewRequest(t *testing.T, method, target, id string, body any, p *models.Principal) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	ctx := req.Context()
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	if p != nil {
		ctx = middlewarectx.WithPrincipal(ctx, *p)
	}
	return req.WithContext(ctx)
}

// Body разбирает конверт ответа.
type Body struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

// Decode разбирает ответ обработчика.
func Decode(t *testing.T, rec *httptest.ResponseRecorder) Body {
	t.Helper()
	var b Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}
