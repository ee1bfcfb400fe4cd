package update

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
)

// MockService реализует интерфейс update.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, p models.Principal, id int64, patch models.WorkshopPatch) (*models.WorkshopUpdateResult, error) {
	args := m.Called(ctx, p, id, patch)
	if res := args.Get(0); res != nil {
		return res.(*models.WorkshopUpdateResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestUpdateHandler(t *testing.T) {
	workshop := models.Workshop{
		ID:          4,
		Title:       "Go",
		StartsAt:    time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
		DurationMin: 60,
		Capacity:    7,
	}

	tests := []struct {
		name           string
		id             string
		body           any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "capacity shrink demotes participants",
			id:   "4",
			body: `{"capacity":7}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, *handlertest.Admin, int64(4), models.WorkshopPatch{Capacity: intPtr(7)}).
					Return(&models.WorkshopUpdateResult{
						Workshop: workshop,
						CapacityChange: &models.CapacityChangeResult{
							OldCapacity:    10,
							NewCapacity:    7,
							DemotedUserIDs: []int64{12, 11, 10},
						},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":{"workshop":{"id":4,"title":"Go","description":"","starts_at":"2026-04-01T10:00:00Z",` +
				`"duration_min":60,"capacity":7},"capacity_change":{"old_capacity":10,"new_capacity":7,"demoted_user_ids":[12,11,10]}}}`,
		},
		{
			name: "title only",
			id:   "4",
			body: `{"title":"Go"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, *handlertest.Admin, int64(4), models.WorkshopPatch{Title: strPtr("Go")}).
					Return(&models.WorkshopUpdateResult{Workshop: workshop}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":{"workshop":{"id":4,"title":"Go","description":"","starts_at":"2026-04-01T10:00:00Z",` +
				`"duration_min":60,"capacity":7}}}`,
		},
		{
			name:           "negative capacity",
			id:             "4",
			body:           `{"capacity":-1}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Capacity must be at least 0"}`,
		},
		{
			name:           "empty title",
			id:             "4",
			body:           `{"title":""}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Title must not be empty"}`,
		},
		{
			name:           "malformed body",
			id:             "4",
			body:           `{"capacity":"ten"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "invalid id",
			id:             "x",
			body:           `{"capacity":1}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"id must be a positive integer"}`,
		},
		{
			name: "not a leader",
			id:   "4",
			body: `{"capacity":1}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, *handlertest.Admin, int64(4), models.WorkshopPatch{Capacity: intPtr(1)}).
					Return(nil, models.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"forbidden"}`,
		},
		{
			name: "capacity invariant violated",
			id:   "4",
			body: `{"capacity":1}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, *handlertest.Admin, int64(4), models.WorkshopPatch{Capacity: intPtr(1)}).
					Return(nil, errors.Join(errors.New("reconcile"), models.ErrCapacityInvariant))
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

			req := handlertest.NewRequest(t, http.MethodPatch, "/api/v1/workshops/"+tt.id, tt.id, tt.body, handlertest.Admin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
