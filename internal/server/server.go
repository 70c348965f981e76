// Package server exposes the report pipeline over HTTP: upload endpoints,
// task polling and read access to stored projects and reports.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lfmonteiro/statusdeck/internal/db"
	"github.com/lfmonteiro/statusdeck/internal/metrics"
	"github.com/lfmonteiro/statusdeck/internal/models"
	"github.com/lfmonteiro/statusdeck/internal/service"
)

// maxUploadBytes caps a report upload. Status reports are small documents;
// anything bigger is a mistake.
const maxUploadBytes = 32 << 20

// processTimeout bounds one asynchronous file run.
const processTimeout = 5 * time.Minute

// Processor is the ingestion surface the server drives.
type Processor interface {
	Supported(filename string, area models.BusinessArea) bool
	ProcessContent(ctx context.Context, filename string, content []byte, opts service.ProcessOptions) (*service.FileReport, error)
}

// Catalog is the read side over stored projects and reports.
type Catalog interface {
	Ping(ctx context.Context) error
	ListProjects(ctx context.Context) ([]db.Project, error)
	ListReports(ctx context.Context, projectCode string) ([]db.ReportSummary, error)
	GetReport(ctx context.Context, id int64) (*models.ParsedReport, error)
}

// Server wires the HTTP API together.
type Server struct {
	processor Processor
	catalog   Catalog
	tasks     *service.TaskTracker
	logger    *slog.Logger
	stats     *metrics.Collector // nil yields empty snapshots
}

// WithMetrics attaches a stats collector and returns the server for
// chaining.
func (s *Server) WithMetrics(c *metrics.Collector) *Server {
	s.stats = c
	return s
}

// New creates the HTTP server facade.
func New(processor Processor, catalog Catalog, tasks *service.TaskTracker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		processor: processor,
		catalog:   catalog,
		tasks:     tasks,
		logger:    logger,
	}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Post("/reports/process", s.handleProcessReport)
	r.Get("/tasks", s.handleListTasks)
	r.Get("/tasks/{id}", s.handleGetTask)
	r.Get("/projects", s.handleListProjects)
	r.Get("/projects/{code}/reports", s.handleListReports)
	r.Get("/reports/{id}", s.handleGetReport)
	r.Get("/stats", s.handleStats)

	return r
}

// handleStats exposes pipeline stage timings. The snapshot is empty until
// a collector is attached.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleProcessReport accepts a multipart upload (fields: file, project_type)
// and processes it asynchronously. The response carries the task id to poll.
// Query flags: dry_run, summarize.
func (s *Server) handleProcessReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	area, ok := models.ParseBusinessArea(r.FormValue("project_type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown project_type")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !s.processor.Supported(header.Filename, area) {
		writeError(w, http.StatusUnsupportedMediaType, "no parser for this file and project type")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}

	opts := service.ProcessOptions{
		Area:      area,
		DryRun:    r.URL.Query().Get("dry_run") == "true",
		Summarize: r.URL.Query().Get("summarize") == "true",
	}

	task := s.tasks.Create(header.Filename, area)
	go s.runTask(task, header.Filename, content, opts)

	w.Header().Set("Location", "/tasks/"+task.ID)
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": task.ID})
}

// runTask executes one upload outside the request lifetime.
func (s *Server) runTask(task *service.Task, filename string, content []byte, opts service.ProcessOptions) {
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	task.Start(1)
	fr, err := s.processor.ProcessContent(ctx, filename, content, opts)
	if err != nil {
		s.logger.Warn("upload processing failed", "task", task.ID, "file", filename, "error", err)
		task.Fail(err)
		return
	}
	task.Advance()
	task.Complete(fr.ReportID, nil)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tasks.List())
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task := s.tasks.Get(chi.URLParam(r, "id"))
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task.View())
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.catalog.ListProjects(r.Context())
	if err != nil {
		s.logger.Error("list projects", "error", err)
		writeError(w, http.StatusInternalServerError, "list projects")
		return
	}
	out := make([]projectJSON, len(projects))
	for i, p := range projects {
		out[i] = toProjectJSON(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.catalog.ListReports(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.logger.Error("list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "list reports")
		return
	}
	out := make([]reportSummaryJSON, len(reports))
	for i, rep := range reports {
		out[i] = toReportSummaryJSON(rep)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := s.catalog.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		s.logger.Error("get report", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "get report")
		return
	}
	writeJSON(w, http.StatusOK, toReportJSON(report))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
