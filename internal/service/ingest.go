// Package service provides the ingestion pipeline: routing documents to a
// parser, optional summarization and persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lfmonteiro/statusdeck/internal/metrics"
	"github.com/lfmonteiro/statusdeck/internal/models"
	"github.com/lfmonteiro/statusdeck/internal/parser"
)

// ErrUnsupportedFile indicates no parser exists for a filename/area pair.
var ErrUnsupportedFile = errors.New("unsupported file for this project type")

// ParserSelector resolves a format parser for a file. *parser.Factory is the
// production implementation.
type ParserSelector interface {
	Get(filename string, area models.BusinessArea) (parser.ReportParser, bool)
}

// Store persists parsed reports.
type Store interface {
	SaveReport(ctx context.Context, report *models.ParsedReport) (int64, error)
}

// Summarizer rewrites a parsed report into a short executive summary.
type Summarizer interface {
	Summarize(ctx context.Context, report *models.ParsedReport) (string, error)
}

// IngestService turns uploaded status report files into stored reports.
type IngestService struct {
	parsers    ParserSelector
	store      Store
	summarizer Summarizer // nil disables summarization
	logger     *slog.Logger
	stats      *metrics.Collector // nil disables stage timing
}

// NewIngestService creates an ingest service. summarizer may be nil.
func NewIngestService(parsers ParserSelector, store Store, summarizer Summarizer, log *slog.Logger) *IngestService {
	if log == nil {
		log = slog.Default()
	}
	return &IngestService{
		parsers:    parsers,
		store:      store,
		summarizer: summarizer,
		logger:     log,
	}
}

// WithMetrics attaches a stats collector and returns the service for
// chaining.
func (s *IngestService) WithMetrics(c *metrics.Collector) *IngestService {
	s.stats = c
	return s
}

// Supported reports whether a parser exists for the filename/area pair.
func (s *IngestService) Supported(filename string, area models.BusinessArea) bool {
	_, ok := s.parsers.Get(filename, area)
	return ok
}

// ProcessOptions configures report processing.
type ProcessOptions struct {
	// Area is the declared project type the file belongs to
	Area models.BusinessArea
	// DryRun parses and validates without persisting
	DryRun bool
	// Summarize regenerates the executive summary through the LLM
	Summarize bool
	// Concurrency sets the number of parallel workers for batches (default 4)
	Concurrency int
	// Task receives progress updates (optional, set by async ingestion)
	Task *Task
}

// FileReport is the outcome of processing one file.
type FileReport struct {
	Path     string
	ReportID int64 // 0 on dry runs
	Report   *models.ParsedReport
}

// ProcessResult summarizes a batch run.
type ProcessResult struct {
	FilesProcessed int      `json:"files_processed"`
	FilesSkipped   int      `json:"files_skipped"`
	ReportsSaved   int      `json:"reports_saved"`
	Errors         []string `json:"errors,omitempty"`
}

// ProcessFile reads and processes a single report file from disk.
func (s *IngestService) ProcessFile(ctx context.Context, path string, opts ProcessOptions) (*FileReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return s.ProcessContent(ctx, path, content, opts)
}

// ProcessContent processes a report document already held in memory.
// The filename is only used for parser routing and logging.
func (s *IngestService) ProcessContent(ctx context.Context, filename string, content []byte, opts ProcessOptions) (*FileReport, error) {
	p, ok := s.parsers.Get(filename, opts.Area)
	if !ok {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFile, filepath.Base(filename), opts.Area)
	}

	start := time.Now()
	report, err := p.Parse(content)
	s.stats.Record(metrics.OpParse, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(filename), err)
	}

	if opts.Summarize && s.summarizer != nil {
		start = time.Now()
		text, err := s.summarizer.Summarize(ctx, report)
		s.stats.Record(metrics.OpSummarize, time.Since(start), err)
		if err != nil {
			// The extracted summary survives a summarizer outage.
			s.logger.Warn("summarization failed, keeping extracted summary",
				"file", filepath.Base(filename), "error", err)
		} else {
			report.ExecutiveSummary = text
		}
	}

	out := &FileReport{Path: filename, Report: report}
	if opts.DryRun {
		s.logger.Info("dry run, report not saved",
			"file", filepath.Base(filename), "project", report.ProjectCode)
		return out, nil
	}

	start = time.Now()
	id, err := s.store.SaveReport(ctx, report)
	s.stats.Record(metrics.OpSave, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("save report for %s: %w", report.ProjectCode, err)
	}
	out.ReportID = id
	return out, nil
}

// ListSupportedFiles walks dir and returns the files a parser exists for,
// sorted for deterministic processing order. Unsupported files are counted,
// not failed.
func (s *IngestService) ListSupportedFiles(dir string, area models.BusinessArea) (supported []string, skipped int, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := s.parsers.Get(path, area); ok {
			supported = append(supported, path)
		} else {
			skipped++
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(supported)
	return supported, skipped, nil
}

// ProcessDir processes every supported file under dir with a worker pool.
// Individual file failures are collected, not fatal.
func (s *IngestService) ProcessDir(ctx context.Context, dir string, opts ProcessOptions) (*ProcessResult, error) {
	files, skipped, err := s.ListSupportedFiles(dir, opts.Area)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{FilesSkipped: skipped}
	if opts.Task != nil {
		opts.Task.Start(len(files))
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range files {
		g.Go(func() error {
			fr, err := s.ProcessFile(gctx, path, opts)

			mu.Lock()
			defer mu.Unlock()
			result.FilesProcessed++
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
				s.logger.Warn("file failed", "file", path, "error", err)
			} else if fr.ReportID != 0 {
				result.ReportsSaved++
			}
			if opts.Task != nil {
				opts.Task.Advance()
			}
			// Context cancellation is the only batch-fatal condition.
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("batch aborted: %w", err)
	}

	s.logger.Info("directory processed",
		"dir", dir,
		"processed", result.FilesProcessed,
		"saved", result.ReportsSaved,
		"skipped", result.FilesSkipped,
		"errors", len(result.Errors))
	return result, nil
}
