package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benmeehan/goprotrack/internal/constants"
	"github.com/benmeehan/goprotrack/internal/services"
	"github.com/benmeehan/goprotrack/internal/utils"
	"github.com/benmeehan/goprotrack/pkg/elevation"
	"github.com/benmeehan/goprotrack/pkg/extract"
	"github.com/benmeehan/goprotrack/pkg/file"
	"github.com/benmeehan/goprotrack/pkg/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("goprotrack", flag.ContinueOnError)
	flags.SetOutput(stderr)
	verbose := flags.Bool("v", false, "Verbose output")
	configPath := flags.String("config", "", "Path to a YAML configuration file")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: goprotrack [-v] [-config file] <indir> <outdir>\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.NArg() < 2 {
		flags.Usage()
		return exitUsage
	}
	inDir, outDir := flags.Arg(0), flags.Arg(1)

	// Set up structured logging, tagged with an id for this run
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Str("run_id", uuid.New().String()).
		Logger()

	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig(*configPath, fileClient)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return exitError
	}

	// Init the elevation model once for the whole run
	var provider elevation.Provider
	switch config.ElevationProvider() {
	case constants.ElevationProviderGoogle:
		provider, err = elevation.NewGoogleProvider(config.Elevation.MapsAPIKey)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize elevation provider")
			return exitError
		}
	case constants.ElevationProviderSRTM:
		// Tiles are fetched on the first lookup, not here.
		provider = elevation.NewSRTMProvider(&http.Client{Timeout: constants.SRTMDownloadTimeout},
			config.Elevation.SRTMCacheDir)
	default:
		log.Warn().Msg("No elevation provider configured, elevations will not be looked up")
		provider = elevation.NopProvider{}
	}
	filler := elevation.NewFiller(provider, config.Elevation.OnlyMissing, config.Elevation.Smooth,
		config.Elevation.SmoothWindow, log)

	extractor := extract.NewExifTool(config.ExifTool.Path, config.ExifTool.FormatFile, config.ExifTool.Timeout, log)

	var uploader s3.Uploader
	if config.ObjectStorage.Enabled {
		storage := s3.NewObjectStorage()
		err := storage.Connect(ctx, config.ObjectStorage.Endpoint, config.ObjectStorage.AccessKey,
			config.ObjectStorage.SecretKey, config.ObjectStorage.UseSSL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to object storage")
			return exitError
		}
		uploader = storage
	}

	pipeline := services.NewPipelineService(services.PipelineConfig{
		Pattern:      config.Ordering.Pattern,
		PrefixLength: config.Ordering.PrefixLength,
		Zoom:         config.Map.Zoom,
		MapSuffix:    config.Map.Suffix,
		WriteGPX:     config.Output.WriteGPX,
		GPXSuffix:    config.Output.GPXSuffix,
		Bucket:       config.ObjectStorage.Bucket,
		ObjectPrefix: config.ObjectStorage.Prefix,
	}, extractor, filler, fileClient, uploader, log)

	if _, err := pipeline.Run(ctx, inDir, outDir); err != nil {
		log.Error().Err(err).Msg("Processing failed")
		return exitError
	}

	return exitOK
}
