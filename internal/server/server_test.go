package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lfmonteiro/statusdeck/internal/db"
	"github.com/lfmonteiro/statusdeck/internal/metrics"
	"github.com/lfmonteiro/statusdeck/internal/models"
	"github.com/lfmonteiro/statusdeck/internal/service"
)

type fakeProcessor struct {
	reportID int64
	err      error
}

func (f *fakeProcessor) Supported(filename string, area models.BusinessArea) bool {
	return strings.HasSuffix(filename, ".pdf") && area == models.AreaTech
}

func (f *fakeProcessor) ProcessContent(_ context.Context, filename string, _ []byte, _ service.ProcessOptions) (*service.FileReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.FileReport{Path: filename, ReportID: f.reportID}, nil
}

type fakeCatalog struct {
	pingErr  error
	projects []db.Project
	reports  []db.ReportSummary
	report   *models.ParsedReport
}

func (f *fakeCatalog) Ping(context.Context) error { return f.pingErr }

func (f *fakeCatalog) ListProjects(context.Context) ([]db.Project, error) {
	return f.projects, nil
}

func (f *fakeCatalog) ListReports(context.Context, string) ([]db.ReportSummary, error) {
	return f.reports, nil
}

func (f *fakeCatalog) GetReport(_ context.Context, id int64) (*models.ParsedReport, error) {
	if f.report == nil {
		return nil, db.ErrNotFound
	}
	return f.report, nil
}

func newTestServer(p Processor, c Catalog) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(p, c, service.NewTaskTracker(), logger)
	return httptest.NewServer(s.Routes())
}

func uploadRequest(t *testing.T, url, filename, projectType string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("file content")); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteField("project_type", projectType); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, url+"/reports/process", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// pollTask waits until the task leaves the pending/running states.
func pollTask(t *testing.T, baseURL, id string) service.TaskView {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/tasks/" + id)
		if err != nil {
			t.Fatal(err)
		}
		view := decode[service.TaskView](t, resp)
		if view.Status == service.TaskStatusCompleted || view.Status == service.TaskStatusFailed {
			return view
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task did not finish in time")
	return service.TaskView{}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&fakeProcessor{}, &fakeCatalog{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHealthzDatabaseDown(t *testing.T) {
	ts := newTestServer(&fakeProcessor{}, &fakeCatalog{pingErr: errors.New("down")})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestProcessReportAccepted(t *testing.T) {
	ts := newTestServer(&fakeProcessor{reportID: 7}, &fakeCatalog{})
	defer ts.Close()

	resp, err := http.DefaultClient.Do(uploadRequest(t, ts.URL, "relatorio.pdf", "TI"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	id := body["task_id"]
	if id == "" {
		t.Fatal("no task_id in response")
	}

	view := pollTask(t, ts.URL, id)
	if view.Status != service.TaskStatusCompleted {
		t.Fatalf("task = %+v, want completed", view)
	}
	if view.ReportID != 7 {
		t.Errorf("ReportID = %d, want 7", view.ReportID)
	}
}

func TestProcessReportFailureSurfacesInTask(t *testing.T) {
	ts := newTestServer(&fakeProcessor{err: errors.New("required header field missing")}, &fakeCatalog{})
	defer ts.Close()

	resp, err := http.DefaultClient.Do(uploadRequest(t, ts.URL, "relatorio.pdf", "TI"))
	if err != nil {
		t.Fatal(err)
	}
	body := decode[map[string]string](t, resp)

	view := pollTask(t, ts.URL, body["task_id"])
	if view.Status != service.TaskStatusFailed {
		t.Fatalf("task = %+v, want failed", view)
	}
	if !strings.Contains(view.Error, "required header field") {
		t.Errorf("task error = %q", view.Error)
	}
}

func TestProcessReportUnknownProjectType(t *testing.T) {
	ts := newTestServer(&fakeProcessor{}, &fakeCatalog{})
	defer ts.Close()

	resp, err := http.DefaultClient.Do(uploadRequest(t, ts.URL, "relatorio.pdf", "Jurídico"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestProcessReportUnsupportedCombination(t *testing.T) {
	ts := newTestServer(&fakeProcessor{}, &fakeCatalog{})
	defer ts.Close()

	resp, err := http.DefaultClient.Do(uploadRequest(t, ts.URL, "planilha.xlsx", "TI"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestProcessReportMissingFile(t *testing.T) {
	ts := newTestServer(&fakeProcessor{}, &fakeCatalog{})
	defer ts.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("project_type", "TI")
	_ = w.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/reports/process", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	ts := newTestServer(&fakeProcessor{}, &fakeCatalog{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/tasks/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListProjects(t *testing.T) {
	catalog := &fakeCatalog{projects: []db.Project{
		{Code: "PROJ-001", Name: "Plataforma", Area: models.AreaTech, TotalBudget: 1000},
	}}
	ts := newTestServer(&fakeProcessor{}, catalog)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/projects")
	if err != nil {
		t.Fatal(err)
	}
	projects := decode[[]projectJSON](t, resp)
	if len(projects) != 1 || projects[0].Code != "PROJ-001" {
		t.Errorf("projects = %+v", projects)
	}
	if projects[0].Area != "Tech" {
		t.Errorf("Area = %q, want Tech", projects[0].Area)
	}
}

func TestGetReport(t *testing.T) {
	planned := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{report: &models.ParsedReport{
		ProjectCode:   "PROJ-001",
		ProjectName:   "Plataforma",
		SprintNumber:  7,
		OverallStatus: models.HealthOnTrack,
		BusinessArea:  models.AreaTech,
		Milestones: []models.Milestone{
			{Description: "Go-live", Status: models.StatusPending, PlannedDate: &planned},
		},
	}}
	ts := newTestServer(&fakeProcessor{}, catalog)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/reports/1")
	if err != nil {
		t.Fatal(err)
	}
	report := decode[reportJSON](t, resp)
	if report.ProjectCode != "PROJ-001" || report.SprintNumber != 7 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Milestones) != 1 || report.Milestones[0].PlannedDate != "2024-06-10" {
		t.Errorf("milestones = %+v", report.Milestones)
	}
}

func TestGetReportNotFound(t *testing.T) {
	ts := newTestServer(&fakeProcessor{}, &fakeCatalog{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/reports/99")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetReportBadID(t *testing.T) {
	ts := newTestServer(&fakeProcessor{}, &fakeCatalog{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/reports/abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStatsEmptyWithoutCollector(t *testing.T) {
	ts := newTestServer(&fakeProcessor{}, &fakeCatalog{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	snap := decode[metrics.Snapshot](t, resp)
	if snap.Parse != nil || snap.Save != nil {
		t.Errorf("snapshot = %+v, want empty", snap)
	}
}

func TestStatsReportsStageTimings(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(&fakeProcessor{}, &fakeCatalog{}, service.NewTaskTracker(), logger)

	c := metrics.NewCollector()
	c.Record(metrics.OpParse, 5*time.Millisecond, nil)
	s.WithMetrics(c)

	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	snap := decode[metrics.Snapshot](t, resp)
	if snap.Parse == nil || snap.Parse.Count != 1 {
		t.Errorf("parse stats = %+v, want count 1", snap.Parse)
	}
}
