package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/benmeehan/goprotrack/internal/mocks"
	"github.com/benmeehan/goprotrack/internal/services"
	"github.com/benmeehan/goprotrack/internal/track"
	"github.com/benmeehan/goprotrack/pkg/elevation"
	"github.com/benmeehan/goprotrack/pkg/extract"
	"github.com/benmeehan/goprotrack/pkg/file"
	"github.com/benmeehan/goprotrack/pkg/mapview"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const telemetryGPX = `<?xml version="1.0" encoding="utf-8"?>
<gpx version="1.1" creator="exiftool" xmlns="http://www.topografix.com/GPX/1/1">
<trk><trkseg>
<trkpt lat="45.00010" lon="7.00010"><ele>300</ele><time>2023-06-01T10:00:00.100Z</time></trkpt>
<trkpt lat="45.00020" lon="7.00020"><ele>301</ele><time>2023-06-01T10:00:00.100Z</time></trkpt>
<trkpt lat="45.00030" lon="7.00030"><ele>302</ele><time>2023-06-01T10:00:00.600Z</time></trkpt>
<trkpt lat="45.00040" lon="7.00040"><ele>303</ele><time>2023-06-01T10:00:01.100Z</time></trkpt>
<trkpt lat="45.00050" lon="7.00050"><ele>304</ele><time>2023-06-01T10:00:01.100Z</time></trkpt>
<trkpt lat="45.00060" lon="7.00060"><ele>305</ele><time>2023-06-01T10:00:01.600Z</time></trkpt>
</trkseg></trk>
</gpx>
`

// telemetryNMEA is what a custom exiftool format file emitting $GPRMC
// sentences produces. The second fix repeats the first one's time.
const telemetryNMEA = `$GPRMC,101500.10,A,4500.006,N,00700.006,E,010.0,045.0,010623,003.1,W*4C
$GPRMC,101500.10,A,4500.012,N,00700.012,E,010.0,045.0,010623,003.1,W*4C
$GPRMC,101500.60,A,4500.018,N,00700.018,E,010.0,045.0,010623,003.1,W*4B
$GPRMC,101501.10,A,4500.024,N,00700.024,E,010.0,045.0,010623,003.1,W*4D
`

const emptyGPX = `<?xml version="1.0" encoding="utf-8"?>
<gpx version="1.1" creator="exiftool" xmlns="http://www.topografix.com/GPX/1/1">
<trk><trkseg></trkseg></trk>
</gpx>
`

type fixture struct {
	inDir, outDir string
	extractor     *mocks.MockExtractor
	provider      *mocks.MockElevationProvider
	uploader      *mocks.MockUploader
}

func newFixture(t *testing.T, videos ...string) *fixture {
	t.Helper()
	f := &fixture{
		inDir:     t.TempDir(),
		outDir:    filepath.Join(t.TempDir(), "out"),
		extractor: new(mocks.MockExtractor),
		provider:  new(mocks.MockElevationProvider),
		uploader:  new(mocks.MockUploader),
	}
	for _, v := range videos {
		require.NoError(t, os.WriteFile(filepath.Join(f.inDir, v), []byte("video"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(f.inDir, "README.txt"), nil, 0644))
	return f
}

func (f *fixture) service(config services.PipelineConfig, withUploader bool) *services.PipelineService {
	filler := elevation.NewFiller(f.provider, false, true, 3, zerolog.Nop())
	if config.Zoom == 0 {
		config.Zoom = 14
	}
	if config.PrefixLength == 0 {
		config.PrefixLength = 4
	}
	if withUploader {
		return services.NewPipelineService(config, f.extractor, filler, file.NewFileService(), f.uploader, zerolog.Nop())
	}
	return services.NewPipelineService(config, f.extractor, filler, file.NewFileService(), nil, zerolog.Nop())
}

// returnElevations answers every lookup with a flat terrain at 250m.
func (f *fixture) returnElevations() {
	f.provider.On("Elevations", mock.Anything, mock.Anything).
		Return(func(_ context.Context, locs []elevation.Location) []float64 {
			out := make([]float64, len(locs))
			for i := range out {
				out[i] = 250
			}
			return out
		}, nil)
}

// TestPipelineService_Run_Success tests ordering, cleaning and map output for a batch.
func TestPipelineService_Run_Success(t *testing.T) {
	f := newFixture(t, "GX010002.mp4", "GX020001.mp4", "GX010001.mp4")
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return([]byte(telemetryGPX), nil)
	f.returnElevations()

	results, err := f.service(services.PipelineConfig{}, false).Run(context.Background(), f.inDir, f.outDir)

	require.NoError(t, err)
	require.Len(t, results, 3)

	var order []string
	for _, call := range f.extractor.Calls {
		order = append(order, filepath.Base(call.Arguments.String(1)))
	}
	assert.Equal(t, []string{"GX010001.mp4", "GX020001.mp4", "GX010002.mp4"}, order)

	for _, r := range results {
		assert.Len(t, r.TimeErrors, 2)
		assert.Equal(t, 4, r.Summary.Points)
		require.Len(t, r.Artifacts, 1)
		data, err := os.ReadFile(r.Artifacts[0])
		require.NoError(t, err)
		assert.Contains(t, string(data), "L.polyline")
	}
	assert.FileExists(t, filepath.Join(f.outDir, "GX010001_map.html"))
	assert.NoFileExists(t, filepath.Join(f.outDir, "GX010001.GPX"))
	f.provider.AssertNumberOfCalls(t, "Elevations", 3)
}

// TestPipelineService_Run_StopsOnFirstFailure tests that one failing file aborts the batch.
func TestPipelineService_Run_StopsOnFirstFailure(t *testing.T) {
	f := newFixture(t, "GX010001.mp4", "GX010002.mp4")
	f.extractor.On("Extract", mock.Anything, filepath.Join(f.inDir, "GX010001.mp4")).
		Return(nil, extract.ErrToolFailed)

	results, err := f.service(services.PipelineConfig{}, false).Run(context.Background(), f.inDir, f.outDir)

	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrToolFailed)
	assert.Contains(t, err.Error(), "GX010001.mp4")
	assert.Empty(t, results)
	f.extractor.AssertNumberOfCalls(t, "Extract", 1)
	f.provider.AssertNotCalled(t, "Elevations", mock.Anything, mock.Anything)
}

// TestPipelineService_Run_MissingInputDir tests that listing errors are returned.
func TestPipelineService_Run_MissingInputDir(t *testing.T) {
	f := newFixture(t)

	_, err := f.service(services.PipelineConfig{}, false).Run(context.Background(), filepath.Join(f.inDir, "nope"), f.outDir)

	assert.Error(t, err)
}

// TestPipelineService_Run_Cancelled tests that a cancelled context stops before the next file.
func TestPipelineService_Run_Cancelled(t *testing.T) {
	f := newFixture(t, "GX010001.mp4")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service(services.PipelineConfig{}, false).Run(ctx, f.inDir, f.outDir)

	assert.ErrorIs(t, err, context.Canceled)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

// TestPipelineService_ProcessFile_WritesGPX tests the optional cleaned GPX output.
func TestPipelineService_ProcessFile_WritesGPX(t *testing.T) {
	f := newFixture(t, "GX010001.mp4")
	video := filepath.Join(f.inDir, "GX010001.mp4")
	f.extractor.On("Extract", mock.Anything, video).Return([]byte(telemetryGPX), nil)
	f.returnElevations()
	require.NoError(t, os.MkdirAll(f.outDir, 0755))

	result, err := f.service(services.PipelineConfig{WriteGPX: true}, false).ProcessFile(context.Background(), video, f.outDir)

	require.NoError(t, err)
	gpxPath := filepath.Join(f.outDir, "GX010001.GPX")
	assert.Equal(t, []string{filepath.Join(f.outDir, "GX010001_map.html"), gpxPath}, result.Artifacts)

	data, err := os.ReadFile(gpxPath)
	require.NoError(t, err)
	g, err := track.Parse(data)
	require.NoError(t, err)

	pts := g.Tracks[0].Segments[0].Points
	require.Len(t, pts, 4)
	for i := 1; i < len(pts); i++ {
		assert.False(t, pts[i].Timestamp.Equal(pts[i-1].Timestamp))
	}
	for _, p := range pts {
		assert.InDelta(t, 250, p.Elevation.Value(), 1e-6)
	}
}

// TestPipelineService_ProcessFile_NMEA tests that NMEA telemetry goes through
// the same cleaning and map rendering as GPX.
func TestPipelineService_ProcessFile_NMEA(t *testing.T) {
	f := newFixture(t, "GX010001.mp4")
	video := filepath.Join(f.inDir, "GX010001.mp4")
	f.extractor.On("Extract", mock.Anything, video).Return([]byte(telemetryNMEA), nil)
	f.returnElevations()
	require.NoError(t, os.MkdirAll(f.outDir, 0755))

	result, err := f.service(services.PipelineConfig{}, false).ProcessFile(context.Background(), video, f.outDir)

	require.NoError(t, err)
	require.Len(t, result.TimeErrors, 1)
	assert.Equal(t, 1, result.TimeErrors[0].Index)
	assert.Equal(t, 3, result.Summary.Points)

	data, err := os.ReadFile(filepath.Join(f.outDir, "GX010001_map.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "L.polyline")
	f.provider.AssertNumberOfCalls(t, "Elevations", 1)
}

// TestPipelineService_ProcessFile_Uploads tests that artifacts are published when an uploader is set.
func TestPipelineService_ProcessFile_Uploads(t *testing.T) {
	f := newFixture(t, "GX010001.mp4")
	video := filepath.Join(f.inDir, "GX010001.mp4")
	f.extractor.On("Extract", mock.Anything, video).Return([]byte(telemetryGPX), nil)
	f.returnElevations()
	f.uploader.On("UploadFile", mock.Anything, "maps", "rides/GX010001_map.html",
		filepath.Join(f.outDir, "GX010001_map.html"), "text/html").Return(nil)
	require.NoError(t, os.MkdirAll(f.outDir, 0755))

	config := services.PipelineConfig{Bucket: "maps", ObjectPrefix: "rides"}
	_, err := f.service(config, true).ProcessFile(context.Background(), video, f.outDir)

	require.NoError(t, err)
	f.uploader.AssertExpectations(t)
}

// TestPipelineService_ProcessFile_UploadFailure tests that upload errors are fatal.
func TestPipelineService_ProcessFile_UploadFailure(t *testing.T) {
	f := newFixture(t, "GX010001.mp4")
	video := filepath.Join(f.inDir, "GX010001.mp4")
	f.extractor.On("Extract", mock.Anything, video).Return([]byte(telemetryGPX), nil)
	f.returnElevations()
	f.uploader.On("UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("access denied"))
	require.NoError(t, os.MkdirAll(f.outDir, 0755))

	_, err := f.service(services.PipelineConfig{Bucket: "maps"}, true).ProcessFile(context.Background(), video, f.outDir)

	assert.EqualError(t, err, "access denied")
}

// TestPipelineService_ProcessFile_EmptyTrack tests that a track without points is rejected.
func TestPipelineService_ProcessFile_EmptyTrack(t *testing.T) {
	f := newFixture(t, "GX010001.mp4")
	video := filepath.Join(f.inDir, "GX010001.mp4")
	f.extractor.On("Extract", mock.Anything, video).Return([]byte(emptyGPX), nil)

	_, err := f.service(services.PipelineConfig{}, false).ProcessFile(context.Background(), video, f.outDir)

	assert.ErrorIs(t, err, mapview.ErrEmptyTrack)
	f.provider.AssertNotCalled(t, "Elevations", mock.Anything, mock.Anything)
}

// TestPipelineService_ProcessFile_ParseError tests that malformed telemetry is fatal.
func TestPipelineService_ProcessFile_ParseError(t *testing.T) {
	f := newFixture(t, "GX010001.mp4")
	video := filepath.Join(f.inDir, "GX010001.mp4")
	f.extractor.On("Extract", mock.Anything, video).Return([]byte(""), nil)

	_, err := f.service(services.PipelineConfig{}, false).ProcessFile(context.Background(), video, f.outDir)

	assert.ErrorIs(t, err, track.ErrEmptyInput)
}
