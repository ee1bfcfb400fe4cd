package list

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

func (m *MockService) List(ctx context.Context, skills []string) ([]models.WorkshopView, error) {
	args := m.Called(ctx, skills)
	res, _ := args.Get(0).([]models.WorkshopView)
	return res, args.Error(1)
}

func TestListHandler(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "no filter",
			target: "/api/v1/workshops",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, []string(nil)).Return([]models.WorkshopView{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":[]}`,
		},
		{
			name:   "repeated skill filter, blanks dropped",
			target: "/api/v1/workshops?skill=go&skill=%20&skill=sql",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, []string{"go", "sql"}).
					Return([]models.WorkshopView{{Workshop: models.Workshop{ID: 1, Title: "Go"}, Vacancy: 3}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":[{"id":1,"title":"Go","description":"","starts_at":"0001-01-01T00:00:00Z",` +
				`"duration_min":0,"capacity":0,"registered":0,"vacant":3}]}`,
		},
		{
			name:   "storage failure",
			target: "/api/v1/workshops",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, []string(nil)).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)
			h := New(handlertest.NewNoopLogger(), svc)

			req := handlertest.NewRequest(t, http.MethodGet, tt.target, "", nil, handlertest.Participant)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
