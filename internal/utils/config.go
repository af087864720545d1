package utils

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benmeehan/goprotrack/internal/constants"
	"github.com/benmeehan/goprotrack/pkg/file"
)

// ErrInvalidConfig is returned when the configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the structure of the configuration file.
type Config struct {
	ExifTool struct {
		Path       string        `yaml:"path"`        // exiftool binary name or path
		FormatFile string        `yaml:"format_file"` // Print format template, built-in GPX template if empty
		Timeout    time.Duration `yaml:"timeout"`     // Per-file extraction limit, 0 for none
	} `yaml:"exiftool"`

	Ordering struct {
		Pattern      string `yaml:"pattern"`       // Glob matched against input file names
		PrefixLength int    `yaml:"prefix_length"` // Width of the chapter prefix
	} `yaml:"ordering"`

	Elevation struct {
		Provider     string `yaml:"provider"`       // auto, google, srtm or none
		MapsAPIKey   string `yaml:"maps_api_key"`   // Google maps API Key
		SRTMCacheDir string `yaml:"srtm_cache_dir"` // Tile cache, library default if empty
		OnlyMissing  bool   `yaml:"only_missing"`   // Keep elevations recorded by the camera
		Smooth       bool   `yaml:"smooth"`         // Average looked-up elevations
		SmoothWindow int    `yaml:"smooth_window"`  // Points in the averaging window
	} `yaml:"elevation"`

	Map struct {
		Zoom   int    `yaml:"zoom"`   // Initial Leaflet zoom level
		Suffix string `yaml:"suffix"` // Appended to the video base name
	} `yaml:"map"`

	Output struct {
		WriteGPX  bool   `yaml:"write_gpx"`  // Also write the cleaned track as GPX
		GPXSuffix string `yaml:"gpx_suffix"` // Appended to the video base name
	} `yaml:"output"`

	ObjectStorage struct {
		Enabled   bool   `yaml:"enabled"`    // Upload written artifacts
		Endpoint  string `yaml:"endpoint"`   // host:port of the S3 compatible service
		AccessKey string `yaml:"access_key"` // Access key ID
		SecretKey string `yaml:"secret_key"` // Secret access key
		UseSSL    bool   `yaml:"use_ssl"`    // Use HTTPS
		Bucket    string `yaml:"bucket"`     // Destination bucket
		Prefix    string `yaml:"prefix"`     // Object name prefix
	} `yaml:"object_storage"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	var c Config
	c.ExifTool.Path = constants.DefaultExifToolPath
	c.ExifTool.Timeout = constants.DefaultExifTimeout
	c.Ordering.Pattern = constants.DefaultInputPattern
	c.Ordering.PrefixLength = constants.DefaultPrefixLength
	c.Elevation.Provider = constants.ElevationProviderAuto
	c.Elevation.Smooth = true
	c.Elevation.SmoothWindow = constants.DefaultSmoothWindow
	c.Map.Zoom = constants.DefaultZoom
	c.Map.Suffix = constants.DefaultMapSuffix
	c.Output.GPXSuffix = constants.DefaultGPXSuffix
	c.ObjectStorage.UseSSL = true
	return &c
}

// LoadConfig loads the YAML configuration from the specified file on top of
// DefaultConfig. An empty filename, an empty file or a file holding only
// comments returns the defaults.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	config := DefaultConfig()
	if filename != "" {
		err := fileClient.ReadYamlFile(filename, config)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Map.Zoom < 0 || c.Map.Zoom > constants.MaxZoom {
		return fmt.Errorf("%w: map.zoom %d outside 0..%d", ErrInvalidConfig, c.Map.Zoom, constants.MaxZoom)
	}
	if c.Ordering.PrefixLength < 0 {
		return fmt.Errorf("%w: ordering.prefix_length must not be negative", ErrInvalidConfig)
	}
	if c.Ordering.Pattern == "" {
		return fmt.Errorf("%w: ordering.pattern is empty", ErrInvalidConfig)
	}
	if c.Map.Suffix == "" {
		return fmt.Errorf("%w: map.suffix is empty", ErrInvalidConfig)
	}
	if c.Output.WriteGPX && c.Output.GPXSuffix == "" {
		return fmt.Errorf("%w: output.gpx_suffix is empty", ErrInvalidConfig)
	}

	switch c.Elevation.Provider {
	case constants.ElevationProviderGoogle:
		if c.Elevation.MapsAPIKey == "" {
			return fmt.Errorf("%w: elevation.maps_api_key is required for the google provider", ErrInvalidConfig)
		}
	case constants.ElevationProviderAuto, constants.ElevationProviderSRTM, constants.ElevationProviderNone:
	default:
		return fmt.Errorf("%w: unknown elevation.provider %q", ErrInvalidConfig, c.Elevation.Provider)
	}

	if c.ObjectStorage.Enabled && (c.ObjectStorage.Endpoint == "" || c.ObjectStorage.Bucket == "") {
		return fmt.Errorf("%w: object_storage needs endpoint and bucket", ErrInvalidConfig)
	}

	return nil
}

// ElevationProvider resolves the auto provider setting.
func (c *Config) ElevationProvider() string {
	if c.Elevation.Provider != constants.ElevationProviderAuto {
		return c.Elevation.Provider
	}
	if c.Elevation.MapsAPIKey != "" {
		return constants.ElevationProviderGoogle
	}
	return constants.ElevationProviderSRTM
}
