package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestConflictChecker_FindConflict(t *testing.T) {
	// X: 09:00–10:30
	x := models.Workshop{ID: 1, Title: "X", StartsAt: at(9, 0), DurationMin: 90}

	tests := []struct {
		name      string
		others    []models.Workshop
		candidate models.Workshop
		wantID    int64
	}{
		{
			name:      "overlap by half an hour",
			others:    []models.Workshop{x},
			candidate: models.Workshop{ID: 2, StartsAt: at(10, 0), DurationMin: 60},
			wantID:    1,
		},
		{
			name:      "back to back",
			others:    []models.Workshop{x},
			candidate: models.Workshop{ID: 2, StartsAt: at(10, 30), DurationMin: 60},
		},
		{
			name:      "overlap within tolerance",
			others:    []models.Workshop{x},
			candidate: models.Workshop{ID: 2, StartsAt: at(10, 29), DurationMin: 60},
		},
		{
			name:      "overlap just above tolerance",
			others:    []models.Workshop{x},
			candidate: models.Workshop{ID: 2, StartsAt: at(10, 28), DurationMin: 60},
			wantID:    1,
		},
		{
			name:      "candidate inside other",
			others:    []models.Workshop{x},
			candidate: models.Workshop{ID: 2, StartsAt: at(9, 15), DurationMin: 15},
			wantID:    1,
		},
		{
			name: "first conflict in query order wins",
			others: []models.Workshop{
				{ID: 5, Title: "early", StartsAt: at(8, 0), DurationMin: 30},
				{ID: 7, Title: "A", StartsAt: at(9, 0), DurationMin: 60},
				{ID: 4, Title: "B", StartsAt: at(9, 30), DurationMin: 60},
			},
			candidate: models.Workshop{ID: 2, StartsAt: at(9, 0), DurationMin: 120},
			wantID:    7,
		},
		{
			name:      "no other workshops",
			candidate: models.Workshop{ID: 2, StartsAt: at(10, 0), DurationMin: 60},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &TxMock{}
			tx.On("ListRegisteredForUser", mock.Anything, int64(42), tt.candidate.ID).Return(tt.others, nil).Once()

			c := conflictChecker{tolerance: DefaultOverlapTolerance}
			got, err := c.findConflict(context.Background(), tx, 42, tt.candidate)
			require.NoError(t, err)
			if tt.wantID == 0 {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, tt.wantID, got.ID)
			}
			tx.AssertExpectations(t)
		})
	}
}

func TestConflictChecker_ZeroTolerance(t *testing.T) {
	tx := &TxMock{}
	tx.On("ListRegisteredForUser", mock.Anything, int64(1), int64(2)).Return([]models.Workshop{
		{ID: 1, StartsAt: at(9, 0), DurationMin: 60},
	}, nil).Once()

	c := conflictChecker{}
	got, err := c.findConflict(context.Background(), tx, 1, models.Workshop{ID: 2, StartsAt: at(9, 59), DurationMin: 30})
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestConflictChecker_StoreError(t *testing.T) {
	tx := &TxMock{}
	errDB := errors.New("db down")
	tx.On("ListRegisteredForUser", mock.Anything, int64(1), int64(2)).Return(nil, errDB).Once()

	c := conflictChecker{tolerance: DefaultOverlapTolerance}
	_, err := c.findConflict(context.Background(), tx, 1, models.Workshop{ID: 2, StartsAt: at(9, 0), DurationMin: 30})
	assert.ErrorIs(t, err, errDB)
}
