package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Rebind(t *testing.T) {
	tests := []struct {
		name  string
		d     dialect
		query string
		want  string
	}{
		{
			name:  "sqlite keeps question marks",
			d:     dialect{},
			query: "SELECT id FROM workshops WHERE id = ? AND capacity > ?",
			want:  "SELECT id FROM workshops WHERE id = ? AND capacity > ?",
		},
		{
			name:  "postgres numbers placeholders",
			d:     dialect{numbered: true},
			query: "SELECT id FROM workshops WHERE id = ? AND capacity > ?",
			want:  "SELECT id FROM workshops WHERE id = $1 AND capacity > $2",
		},
		{
			name:  "no placeholders",
			d:     dialect{numbered: true},
			query: "SELECT 1",
			want:  "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.rebind(tt.query))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	s, err := New("mysql", "whatever")
	assert.Error(t, err)
	assert.Nil(t, s)
}
