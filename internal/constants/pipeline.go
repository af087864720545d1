package constants

import "time"

// Extraction defaults
const (
	DefaultExifToolPath = "exiftool"
	DefaultExifTimeout  = 0 * time.Second // no limit
)

// File discovery and ordering
const (
	DefaultInputPattern = "*.mp4"
	// DefaultPrefixLength is the width of the chapter prefix in GoPro names
	// such as GX01 in GX010001.mp4.
	DefaultPrefixLength = 4
)

// Elevation providers
const (
	// ElevationProviderAuto selects google when an API key is configured and
	// srtm otherwise.
	ElevationProviderAuto   = "auto"
	ElevationProviderGoogle = "google"
	ElevationProviderSRTM   = "srtm"
	ElevationProviderNone   = "none"
	DefaultSmoothWindow     = 3

	// SRTMDownloadTimeout bounds a single SRTM tile download.
	SRTMDownloadTimeout = 2 * time.Minute
)

// Output artifacts
const (
	DefaultZoom      = 14
	MaxZoom          = 22
	DefaultMapSuffix = "_map.html"
	DefaultGPXSuffix = ".GPX"

	ContentTypeHTML = "text/html"
	ContentTypeGPX  = "application/gpx+xml"
)
