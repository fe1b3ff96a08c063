package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/postbeschriftung/extraction/internal/common"
	"github.com/postbeschriftung/extraction/internal/docfields"
	"github.com/postbeschriftung/extraction/internal/entity"
	"github.com/postbeschriftung/extraction/internal/match"
	"github.com/postbeschriftung/extraction/internal/pipeline"
	"github.com/postbeschriftung/extraction/internal/registry"
	"github.com/postbeschriftung/extraction/internal/vendors"
	"github.com/postbeschriftung/extraction/internal/vision"
	"github.com/postbeschriftung/extraction/internal/vision/openai"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		textPath  = flag.String("text", "", "path to the extracted document text (required)")
		imagePath = flag.String("image", "", "optional rendered first page (png/jpeg)")
		regPath   = flag.String("registry", "", "building registry: .csv, .xlsx or .db (required)")
		aliasPath = flag.String("vendor-map", "", "optional vendor alias JSON")
		threshold = flag.Int("threshold", 0, "building match threshold override (1..100)")
		debug     = flag.Bool("debug", false, "attach a debug block to the result")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *textPath == "" || *regPath == "" {
		printError("Error: --text and --registry are required\n")
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *threshold > 0 {
		cfg.Matching.Threshold = *threshold
	}

	raw, err := os.ReadFile(*textPath)
	if err != nil {
		printError("Error: read text: %v\n", err)
		os.Exit(1)
	}
	text := string(raw)

	var image []byte
	if *imagePath != "" {
		image, err = os.ReadFile(*imagePath)
		if err != nil {
			printError("Error: read image: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	entries, err := loadRegistry(ctx, *regPath)
	if err != nil {
		printError("Error: load registry: %v\n", err)
		os.Exit(1)
	}
	logger.Info("registry.loaded", "path", *regPath, "entries", len(entries))

	var aliases map[string]string
	if *aliasPath != "" {
		aliases, err = registry.LoadVendorAliases(*aliasPath)
		if err != nil {
			printError("Error: load vendor map: %v\n", err)
			os.Exit(1)
		}
	}

	var vis vision.Extractor
	if cfg.Vision.APIKey != "" {
		vis = openai.NewClient(openai.Config{
			APIKey:      cfg.Vision.APIKey,
			BaseURL:     cfg.Vision.BaseURL,
			Model:       cfg.Vision.Model,
			Temperature: cfg.Vision.Temperature,
			Timeout:     cfg.Vision.Timeout,
		}, logger)
	} else {
		logger.Info("vision.disabled", "reason", "no api key")
	}

	p := pipeline.New(logger,
		pipeline.Config{
			VisionTextThreshold: cfg.Pipeline.VisionTextThreshold,
			VendorRetryBelow:    cfg.Pipeline.VendorRetryBelow,
			VisionTimeout:       cfg.Vision.Timeout,
		},
		docfields.NewExtractor(docfields.Config{}),
		vendors.NewResolver(logger, vendors.Config{}),
		match.NewMatcher(logger, match.Config{Threshold: cfg.Matching.Threshold}),
		vis,
	)

	res := p.Run(ctx, pipeline.Request{
		Text:          text,
		PageImage:     image,
		VendorAliases: aliases,
		Registry:      entries,
	})

	if *debug {
		res.Debug = map[string]any{
			"text_length":  len(text),
			"has_image":    len(image) > 0,
			"processed_at": time.Now().UTC().Format(time.RFC3339),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		printError("Error: encode result: %v\n", err)
		os.Exit(1)
	}
}

// loadRegistry picks the loader from the file extension.
func loadRegistry(ctx context.Context, path string) ([]entity.BuildingRegistryEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return registry.LoadRegistryCSV(path)
	case ".xlsx":
		return registry.LoadRegistryXLSX(path)
	case ".db", ".sqlite", ".sqlite3":
		db, err := registry.OpenRegistryDB(path)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return registry.LoadRegistrySQL(ctx, db)
	default:
		return nil, fmt.Errorf("unsupported registry format %q", filepath.Ext(path))
	}
}
