package service

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lfmonteiro/statusdeck/internal/models"
)

// TaskStatus represents the state of a background processing task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task tracks one asynchronous processing request.
type Task struct {
	ID        string
	Filename  string
	Area      models.BusinessArea
	StartedAt time.Time

	mu          sync.RWMutex
	status      TaskStatus
	progress    int
	total       int
	reportID    int64
	result      *ProcessResult
	errMsg      string
	completedAt *time.Time
}

// TaskView is a consistent read-only snapshot of a task, safe to serialize.
type TaskView struct {
	ID          string              `json:"id"`
	Filename    string              `json:"filename,omitempty"`
	Area        models.BusinessArea `json:"project_type"`
	Status      TaskStatus          `json:"status"`
	Progress    int                 `json:"progress"`
	Total       int                 `json:"total"`
	ReportID    int64               `json:"report_id,omitempty"`
	Result      *ProcessResult      `json:"result,omitempty"`
	Error       string              `json:"error,omitempty"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// Start marks the task running with the given work size.
func (t *Task) Start(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskStatusRunning
	t.total = total
}

// Advance increments progress by one unit.
func (t *Task) Advance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress++
}

// Complete marks the task finished. Either result (batch) or reportID
// (single file) may be set.
func (t *Task) Complete(reportID int64, result *ProcessResult) {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskStatusCompleted
	t.reportID = reportID
	t.result = result
	t.completedAt = &now
}

// Fail marks the task failed with the given error.
func (t *Task) Fail(err error) {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskStatusFailed
	t.errMsg = err.Error()
	t.completedAt = &now
}

// View returns a snapshot of the task state.
func (t *Task) View() TaskView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return TaskView{
		ID:          t.ID,
		Filename:    t.Filename,
		Area:        t.Area,
		Status:      t.status,
		Progress:    t.progress,
		Total:       t.total,
		ReportID:    t.reportID,
		Result:      t.result,
		Error:       t.errMsg,
		StartedAt:   t.StartedAt,
		CompletedAt: t.completedAt,
	}
}

// TaskTracker holds in-flight and finished tasks in memory.
type TaskTracker struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewTaskTracker creates an empty tracker.
func NewTaskTracker() *TaskTracker {
	return &TaskTracker{tasks: make(map[string]*Task)}
}

// Create registers a new pending task.
func (tr *TaskTracker) Create(filename string, area models.BusinessArea) *Task {
	task := &Task{
		ID:        uuid.New().String()[:8], // Short ID for convenience
		Filename:  filename,
		Area:      area,
		StartedAt: time.Now(),
		status:    TaskStatusPending,
	}

	tr.mu.Lock()
	tr.tasks[task.ID] = task
	tr.mu.Unlock()
	return task
}

// Get retrieves a task by ID, or nil when unknown.
func (tr *TaskTracker) Get(id string) *Task {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.tasks[id]
}

// List returns snapshots of all tasks, most recent first.
func (tr *TaskTracker) List() []TaskView {
	tr.mu.RLock()
	tasks := make([]*Task, 0, len(tr.tasks))
	for _, t := range tr.tasks {
		tasks = append(tasks, t)
	}
	tr.mu.RUnlock()

	slices.SortFunc(tasks, func(a, b *Task) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	views := make([]TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = t.View()
	}
	return views
}
