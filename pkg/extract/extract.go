package extract

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// ErrToolFailed is returned when the extraction tool exits unsuccessfully.
var ErrToolFailed = errors.New("extraction tool failed")

//go:embed gpx.fmt
var defaultFormat []byte

// Extractor pulls GPS telemetry text out of a video file.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]byte, error)
}

// ExifTool runs exiftool with a print-format template to emit GPX on stdout.
type ExifTool struct {
	// Configuration Fields
	binary     string
	formatFile string
	timeout    time.Duration

	logger zerolog.Logger
}

// NewExifTool creates an ExifTool extractor. An empty formatFile selects the
// built-in GPX template; a zero timeout means no limit.
func NewExifTool(binary, formatFile string, timeout time.Duration, logger zerolog.Logger) *ExifTool {
	if binary == "" {
		binary = "exiftool"
	}
	return &ExifTool{
		binary:     binary,
		formatFile: formatFile,
		timeout:    timeout,
		logger:     logger,
	}
}

// Extract runs exiftool on path and returns its standard output.
func (e *ExifTool) Extract(ctx context.Context, path string) ([]byte, error) {
	formatFile := e.formatFile
	if formatFile == "" {
		tmp, cleanup, err := writeDefaultFormat()
		if err != nil {
			return nil, err
		}
		defer cleanup()
		formatFile = tmp
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, e.binary, "-p", formatFile, "-ee", path)
	command.Stdout = &stdout
	command.Stderr = &stderr

	e.logger.Debug().Str("file", path).Str("command", command.String()).Msg("Extracting GPS data with exiftool")

	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			e.logger.Error().Err(ctx.Err()).Str("file", path).Msg("Extraction cancelled")
			return nil, fmt.Errorf("%w: %s: %v", ErrToolFailed, path, ctx.Err())
		}
		e.logger.Error().Err(err).Str("file", path).Str("stderr", stderr.String()).Msg("Extraction failed")
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrToolFailed, path, err, bytes.TrimSpace(stderr.Bytes()))
	}

	return stdout.Bytes(), nil
}

// writeDefaultFormat stores the embedded template in a temporary file, since
// exiftool only reads print formats from disk.
func writeDefaultFormat() (string, func(), error) {
	f, err := os.CreateTemp("", "goprotrack-*.fmt")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create format file: %w", err)
	}
	name := f.Name()
	cleanup := func() { os.Remove(name) }

	if _, err := f.Write(defaultFormat); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write format file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write format file: %w", err)
	}
	return name, cleanup, nil
}
