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
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/postbeschriftung/extraction/internal/async"
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

// batchLine is one JSONL record of the output file.
type batchLine struct {
	Source string                   `json:"source"`
	Error  string                   `json:"error,omitempty"`
	Result *entity.ExtractionResult `json:"result,omitempty"`
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir       = flag.String("dir", "", "directory with extracted .txt files (required)")
		regPath   = flag.String("registry", "", "building registry: .csv, .xlsx or .db (required)")
		aliasPath = flag.String("vendor-map", "", "optional vendor alias JSON")
		out       = flag.String("out", "", "output JSONL path (defaults to <dir>/../extraction-results.jsonl)")
		workers   = flag.Int("workers", 4, "number of concurrent workers")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *dir == "" || *regPath == "" {
		printError("Error: --dir and --registry are required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "extraction-results.jsonl")
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	entries, err := loadRegistry(ctx, *regPath)
	if err != nil {
		printError("Error: load registry: %v\n", err)
		os.Exit(1)
	}

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

	outFile, err := os.Create(*out)
	if err != nil {
		printError("Error: create output: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	var mu sync.Mutex
	enc := json.NewEncoder(outFile)
	failures := 0
	sink := func(o async.Outcome) {
		mu.Lock()
		defer mu.Unlock()
		line := batchLine{Source: o.Job.TextPath}
		if o.Err != nil {
			line.Error = o.Err.Error()
			failures++
		} else {
			r := o.Result
			line.Result = &r
		}
		if err := enc.Encode(line); err != nil {
			logger.Error("write result line", "source", o.Job.TextPath, "error", err)
		}
	}

	var queue async.Queue = async.NewPipelineQueue(p,
		pipeline.Request{VendorAliases: aliases, Registry: entries},
		sink, logger,
		async.WithWorkers(*workers),
		async.WithQueueSize(512),
		async.WithProcessTimeout(2*time.Minute),
	)

	jobs, err := collectJobs(*dir)
	if err != nil {
		printError("Error: scan directory: %v\n", err)
		os.Exit(1)
	}
	if len(jobs) == 0 {
		printError("Error: no .txt files under %s\n", *dir)
		os.Exit(1)
	}
	logger.Info("batch.start", "dir", *dir, "documents", len(jobs), "workers", *workers)

	for _, j := range jobs {
		if err := queue.Enqueue(ctx, j); err != nil {
			logger.Error("enqueue", "text_path", j.TextPath, "error", err)
		}
	}
	queue.Shutdown(ctx)

	logger.Info("batch.done", "documents", len(jobs), "failures", failures, "out", *out)
	if failures > 0 {
		os.Exit(1)
	}
}

// collectJobs gathers every .txt file under dir together with a sibling
// page image of the same base name, when one exists.
func collectJobs(dir string) ([]async.Job, error) {
	var jobs []async.Job
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}
		job := async.Job{
			TextPath:    path,
			SubmittedAt: time.Now(),
			TraceID:     uuid.New().String(),
		}
		base := strings.TrimSuffix(path, filepath.Ext(path))
		for _, ext := range []string{".png", ".jpg", ".jpeg"} {
			if _, serr := os.Stat(base + ext); serr == nil {
				job.ImagePath = base + ext
				break
			}
		}
		jobs = append(jobs, job)
		return nil
	})
	return jobs, err
}

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
