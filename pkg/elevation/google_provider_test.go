package elevation_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/benmeehan/goprotrack/pkg/elevation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

// elevationServer answers every request with count results of the given elevation.
func elevationServer(t *testing.T, perRequest func(call int32) (int, float64)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := atomic.AddInt32(&calls, 1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/elevation/json"), r.URL.Path)
		count, value := perRequest(call)

		results := make([]string, 0, count)
		for i := 0; i < count; i++ {
			results = append(results, fmt.Sprintf(`{"elevation":%g,"location":{"lat":45,"lng":7},"resolution":9.5}`, value))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"results":[%s],"status":"OK"}`, strings.Join(results, ","))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGoogleProvider_Elevations(t *testing.T) {
	srv, calls := elevationServer(t, func(int32) (int, float64) { return 2, 321.5 })

	p, err := elevation.NewGoogleProvider("test-key", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	got, err := p.Elevations(context.Background(), []elevation.Location{{Lat: 45, Lng: 7}, {Lat: 45.1, Lng: 7.1}})

	require.NoError(t, err)
	assert.Equal(t, []float64{321.5, 321.5}, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGoogleProvider_Batches(t *testing.T) {
	total := elevation.MaxLocationsPerRequest + 10
	srv, calls := elevationServer(t, func(call int32) (int, float64) {
		if call == 1 {
			return elevation.MaxLocationsPerRequest, 1
		}
		return 10, 2
	})

	p, err := elevation.NewGoogleProvider("test-key", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	locs := make([]elevation.Location, total)
	got, err := p.Elevations(context.Background(), locs)

	require.NoError(t, err)
	require.Len(t, got, total)
	assert.Equal(t, 1.0, got[0])
	assert.Equal(t, 2.0, got[total-1])
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestGoogleProvider_ShortAnswer(t *testing.T) {
	srv, _ := elevationServer(t, func(int32) (int, float64) { return 1, 5 })

	p, err := elevation.NewGoogleProvider("test-key", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = p.Elevations(context.Background(), []elevation.Location{{}, {}})
	assert.Error(t, err)
}

func TestNewGoogleProvider_MissingKey(t *testing.T) {
	_, err := elevation.NewGoogleProvider("")
	assert.Error(t, err)
}
