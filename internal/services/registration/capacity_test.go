package registration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/workshop-registration/internal/models"
)

func TestDecideStatus(t *testing.T) {
	tests := []struct {
		name       string
		registered int
		capacity   int
		want       models.Status
	}{
		{name: "empty workshop", registered: 0, capacity: 5, want: models.StatusRegistered},
		{name: "last seat", registered: 4, capacity: 5, want: models.StatusRegistered},
		{name: "full", registered: 5, capacity: 5, want: models.StatusWaitlisted},
		{name: "over capacity after shrink", registered: 7, capacity: 5, want: models.StatusWaitlisted},
		{name: "zero capacity", registered: 0, capacity: 0, want: models.StatusWaitlisted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decideStatus(tt.registered, tt.capacity))
		})
	}
}

func TestVacancy_NotClamped(t *testing.T) {
	tx := &TxMock{}
	tx.On("CountRegistered", mock.Anything, int64(3)).Return(8, nil).Once()

	got, err := vacancy(context.Background(), tx, models.Workshop{ID: 3, Capacity: 5})
	require.NoError(t, err)
	assert.Equal(t, -3, got)
	tx.AssertExpectations(t)
}
