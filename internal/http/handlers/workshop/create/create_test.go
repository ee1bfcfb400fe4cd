package create

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/handlertest"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, p models.Principal, req models.DummyWorkshop) (int64, error) {
	args := m.Called(ctx, p, req)
	return args.Get(0).(int64), args.Error(1)
}

func intPtr(v int) *int { return &v }

func TestCreateHandler(t *testing.T) {
	valid := models.DummyWorkshop{
		Title:       "Go concurrency",
		StartsAt:    "2026-04-01T10:00:00Z",
		DurationMin: 90,
		Capacity:    intPtr(10),
		Skills:      []string{"go"},
	}

	tests := []struct {
		name           string
		body           any
		principal      *models.Principal
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "created",
			body:      valid,
			principal: handlertest.Admin,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, *handlertest.Admin, valid).Return(int64(15), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"status":"OK","data":{"workshop_id":15}}`,
		},
		{
			name:      "zero capacity is allowed",
			body:      models.DummyWorkshop{Title: "Full", StartsAt: "2026-04-01T10:00:00Z", DurationMin: 30, Capacity: intPtr(0)},
			principal: handlertest.Admin,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, *handlertest.Admin, mock.AnythingOfType("models.DummyWorkshop")).Return(int64(16), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"status":"OK","data":{"workshop_id":16}}`,
		},
		{
			name:           "malformed json",
			body:           `{"title":`,
			principal:      handlertest.Admin,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "negative capacity",
			body:           models.DummyWorkshop{Title: "T", StartsAt: "2026-04-01T10:00:00Z", DurationMin: 30, Capacity: intPtr(-1)},
			principal:      handlertest.Admin,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Capacity must be at least 0"}`,
		},
		{
			name:           "missing title",
			body:           models.DummyWorkshop{StartsAt: "2026-04-01T10:00:00Z", DurationMin: 30, Capacity: intPtr(1)},
			principal:      handlertest.Admin,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Title is a required field"}`,
		},
		{
			name:      "participant is forbidden",
			body:      valid,
			principal: handlertest.Participant,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, *handlertest.Participant, valid).Return(int64(0), models.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"forbidden"}`,
		},
		{
			name:      "bad start time",
			body:      models.DummyWorkshop{Title: "T", StartsAt: "tomorrow", DurationMin: 30, Capacity: intPtr(1)},
			principal: handlertest.Admin,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, *handlertest.Admin, mock.AnythingOfType("models.DummyWorkshop")).
					Return(int64(0), models.ErrValidation)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"validation failed"}`,
		},
		{
			name:      "storage failure",
			body:      valid,
			principal: handlertest.Admin,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, *handlertest.Admin, valid).Return(int64(0), errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
		{
			name:           "no principal",
			body:           valid,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			h := New(handlertest.NewNoopLogger(), svc)

			req := handlertest.NewRequest(t, http.MethodPost, "/api/v1/workshops", "", tt.body, tt.principal)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
