package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		in      string
		want    Route
		wantErr bool
	}{
		{"forecast", RouteForecast, false},
		{"midyear", RouteMidyear, false},
		{"both", RouteBoth, false},
		{"  Both\n", RouteBoth, false},
		{"FORECAST", RouteForecast, false},
		{"mid-year", "", true},
		{"neither", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRoute(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoute_Documents(t *testing.T) {
	assert.Equal(t, []DocumentID{DocumentForecast}, RouteForecast.Documents())
	assert.Equal(t, []DocumentID{DocumentMidyear}, RouteMidyear.Documents())
	assert.Equal(t, []DocumentID{DocumentForecast, DocumentMidyear}, RouteBoth.Documents())
	assert.Nil(t, Route("other").Documents())
}

func TestRoute_IsComparison(t *testing.T) {
	assert.True(t, RouteBoth.IsComparison())
	assert.False(t, RouteForecast.IsComparison())
	assert.False(t, RouteMidyear.IsComparison())
}

func TestAllRoutes_AreValid(t *testing.T) {
	for _, r := range AllRoutes() {
		assert.True(t, r.IsValid(), r.String())
	}
	assert.Len(t, AllRoutes(), 3)
}
