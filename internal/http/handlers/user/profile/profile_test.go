package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/handlertest"
	"github.com/magabrotheeeer/workshop-registration/internal/models"
	"github.com/magabrotheeeer/workshop-registration/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Profile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func TestProfileHandler(t *testing.T) {
	created := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	profile := &models.UserProfile{
		User: models.User{
			ID:        1,
			Email:     "p@example.com",
			Name:      "P",
			Role:      models.RoleParticipant,
			CreatedAt: created,
		},
		Skills: []models.SkillGrade{{Name: "go", Grade: 4}},
	}

	tests := []struct {
		name           string
		principal      *models.Principal
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "profile with skills",
			principal: handlertest.Participant,
			setupMock: func(m *MockService) {
				m.On("Profile", mock.Anything, int64(1)).Return(profile, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":{"id":1,"email":"p@example.com","name":"P","role":"PARTICIPANT",` +
				`"created_at":"2026-01-10T12:00:00Z","skills":[{"name":"go","grade":4}]}}`,
		},
		{
			name:      "user removed",
			principal: handlertest.Participant,
			setupMock: func(m *MockService) {
				m.On("Profile", mock.Anything, int64(1)).Return(nil, storage.ErrUserNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
		{
			name:      "storage failure",
			principal: handlertest.Participant,
			setupMock: func(m *MockService) {
				m.On("Profile", mock.Anything, int64(1)).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal error"}`,
		},
		{
			name:           "no principal",
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

			req := handlertest.NewRequest(t, http.MethodGet, "/api/v1/users/me", "", nil, tt.principal)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
