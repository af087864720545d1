package mocks

import (
	"context"
	"net/http"

	"github.com/benmeehan/goprotrack/pkg/elevation"
	"github.com/stretchr/testify/mock"
)

// MockElevationProvider is a mock implementation of the elevation.Provider interface.
// The first return value may be a []float64 or a function computing one.
type MockElevationProvider struct {
	mock.Mock
}

func (m *MockElevationProvider) Elevations(ctx context.Context, locations []elevation.Location) ([]float64, error) {
	args := m.Called(ctx, locations)

	var values []float64
	switch v := args.Get(0).(type) {
	case func(context.Context, []elevation.Location) []float64:
		values = v(ctx, locations)
	case []float64:
		values = v
	}
	return values, args.Error(1)
}

// MockSRTMSource is a mock implementation of the elevation.SRTMSource interface.
type MockSRTMSource struct {
	mock.Mock
}

func (m *MockSRTMSource) GetElevation(client *http.Client, latitude, longitude float64) (float64, error) {
	args := m.Called(client, latitude, longitude)
	return args.Get(0).(float64), args.Error(1)
}
