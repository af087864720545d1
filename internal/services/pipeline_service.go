package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/benmeehan/goprotrack/internal/constants"
	"github.com/benmeehan/goprotrack/internal/track"
	"github.com/benmeehan/goprotrack/pkg/extract"
	"github.com/benmeehan/goprotrack/pkg/file"
	"github.com/benmeehan/goprotrack/pkg/mapview"
	"github.com/benmeehan/goprotrack/pkg/s3"
	"github.com/rs/zerolog"
	"github.com/tkrajina/gpxgo/gpx"
)

// ElevationFiller adds terrain elevations to a track.
type ElevationFiller interface {
	AddElevations(ctx context.Context, g *gpx.GPX) (int, error)
}

// PipelineConfig holds the settings of a PipelineService.
type PipelineConfig struct {
	Pattern      string // Glob for input files
	PrefixLength int    // Chapter prefix width used for ordering
	Zoom         int    // Initial map zoom
	MapSuffix    string // Appended to the base name of each map file
	WriteGPX     bool   // Also write the cleaned track
	GPXSuffix    string // Appended to the base name of each GPX file
	Bucket       string // Object storage bucket, used when an uploader is set
	ObjectPrefix string // Object name prefix
}

// Result describes one processed video.
type Result struct {
	File       string
	TimeErrors []track.TimeError
	Summary    track.Summary
	Artifacts  []string
}

// PipelineService turns GoPro videos into cleaned tracks and map overlays.
type PipelineService struct {
	// Configuration Fields
	config PipelineConfig

	// Dependencies
	extractor  extract.Extractor
	filler     ElevationFiller
	fileClient file.FileOperations
	uploader   s3.Uploader // nil disables uploads
	writer     *track.Writer
	logger     zerolog.Logger
}

// NewPipelineService creates a PipelineService. uploader may be nil.
func NewPipelineService(config PipelineConfig, extractor extract.Extractor, filler ElevationFiller,
	fileClient file.FileOperations, uploader s3.Uploader, logger zerolog.Logger) *PipelineService {
	if config.Pattern == "" {
		config.Pattern = constants.DefaultInputPattern
	}
	if config.MapSuffix == "" {
		config.MapSuffix = constants.DefaultMapSuffix
	}
	if config.GPXSuffix == "" {
		config.GPXSuffix = constants.DefaultGPXSuffix
	}

	return &PipelineService{
		config:     config,
		extractor:  extractor,
		filler:     filler,
		fileClient: fileClient,
		uploader:   uploader,
		writer:     track.NewWriter(track.FormatTime),
		logger:     logger,
	}
}

// Run processes every matching video in inDir, in recording order, writing
// artifacts to outDir. The first failing file stops the run.
func (p *PipelineService) Run(ctx context.Context, inDir, outDir string) ([]*Result, error) {
	names, err := p.fileClient.ListFiles(inDir, p.config.Pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", inDir, err)
	}

	names = OrderVideoFiles(names, p.config.PrefixLength)
	p.logger.Info().Strs("files", names).Msg("Processing in order")

	if err := p.fileClient.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	results := make([]*Result, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := p.ProcessFile(ctx, filepath.Join(inDir, name), outDir)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		results = append(results, result)
	}

	p.logger.Info().Int("files", len(results)).Msg("All files processed")
	return results, nil
}

// ProcessFile runs one video through extraction, cleaning, smoothing,
// elevation fill and rendering.
func (p *PipelineService) ProcessFile(ctx context.Context, videoPath, outDir string) (*Result, error) {
	logger := p.logger.With().Str("file", videoPath).Logger()
	logger.Info().Msg("Processing")
	result := &Result{File: videoPath}

	logger.Info().Msg("Extracting GPS data")
	text, err := p.extractor.Extract(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	logger.Info().Int("bytes", len(text)).Msg("Parsing GPS data")
	g, err := track.Parse(text)
	if err != nil {
		return nil, err
	}
	if track.CountPoints(g) == 0 {
		return nil, mapview.ErrEmptyTrack
	}

	// Duplicate timestamps would bias the smoothing, so they go first.
	result.TimeErrors = track.FindTimeErrors(g, true, logger)

	logger.Info().Msg("Smoothing horizontal")
	track.SmoothHorizontal(g)

	logger.Info().Msg("Fixing elevations")
	if _, err := p.filler.AddElevations(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to add elevations: %w", err)
	}

	logger.Info().Msg("Smoothing vertical")
	track.SmoothVertical(g)

	result.Summary = track.Summarize(g)
	logSummary(logger, result.Summary)

	base := baseName(videoPath)

	m, err := mapview.NewMap(g, p.config.Zoom)
	if err != nil {
		return nil, err
	}
	m.Title = base
	html, err := m.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to render map: %w", err)
	}
	mapPath, err := p.writeArtifact(ctx, logger, outDir, base+p.config.MapSuffix, html, constants.ContentTypeHTML)
	if err != nil {
		return nil, err
	}
	result.Artifacts = append(result.Artifacts, mapPath)

	if p.config.WriteGPX {
		var buf bytes.Buffer
		if err := p.writer.Write(&buf, g); err != nil {
			return nil, err
		}
		gpxPath, err := p.writeArtifact(ctx, logger, outDir, base+p.config.GPXSuffix, buf.Bytes(), constants.ContentTypeGPX)
		if err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, gpxPath)
	}

	return result, nil
}

// writeArtifact stores data in outDir and, when configured, uploads it.
func (p *PipelineService) writeArtifact(ctx context.Context, logger zerolog.Logger, outDir, name string, data []byte, contentType string) (string, error) {
	target := filepath.Join(outDir, name)
	logger.Info().Str("output", target).Msg("Writing")
	if err := p.fileClient.WriteFileRaw(target, data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}

	if p.uploader != nil {
		object := path.Join(p.config.ObjectPrefix, name)
		if err := p.uploader.UploadFile(ctx, p.config.Bucket, object, target, contentType); err != nil {
			return "", err
		}
		logger.Info().Str("bucket", p.config.Bucket).Str("object", object).Msg("Uploaded")
	}

	return target, nil
}

func logSummary(logger zerolog.Logger, s track.Summary) {
	logger.Info().
		Int("points", s.Points).
		Float64("uphill_m", s.Uphill).
		Float64("downhill_m", s.Downhill).
		Dur("moving_time", s.MovingTime).
		Dur("stopped_time", s.StoppedTime).
		Float64("moving_distance_m", s.MovingDistance).
		Float64("stopped_distance_m", s.StoppedDistance).
		Float64("max_speed_mps", s.MaxSpeed).
		Msg("Track summary")
}

// baseName returns the file name of p up to its first dot.
func baseName(p string) string {
	name, _, _ := strings.Cut(filepath.Base(p), ".")
	return name
}
