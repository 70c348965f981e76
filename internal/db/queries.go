package db

import (
	"context"
	"fmt"
	"time"

	"github.com/lfmonteiro/statusdeck/internal/models"
)

// Project is one row of the projects table.
type Project struct {
	Code        string
	Name        string
	Manager     string
	TotalBudget float64
	Area        models.BusinessArea
	UpdatedAt   time.Time
}

// ReportSummary is the listing view of a stored sprint report.
type ReportSummary struct {
	ID            int64
	ProjectCode   string
	SprintNumber  int
	ReportDate    time.Time
	OverallStatus string
	CreatedAt     time.Time
}

// SaveReport persists a parsed report in one transaction: the project row is
// upserted (keeping its latest name, manager and budget), a sprint report row
// is inserted, and milestones and metrics are attached to it. Returns the new
// report id.
func (c *Client) SaveReport(ctx context.Context, report *models.ParsedReport) (int64, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	budget := 0.0
	if m := report.BudgetMetric(); m != nil && m.Value != nil {
		budget = *m.Value
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO projects (code, name, manager, total_budget, business_area)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (code) DO UPDATE SET
            name = EXCLUDED.name,
            manager = EXCLUDED.manager,
            total_budget = EXCLUDED.total_budget,
            updated_at = now()
    `, report.ProjectCode, report.ProjectName, report.ProjectManager, budget, string(report.BusinessArea))
	if err != nil {
		return 0, fmt.Errorf("upsert project %s: %w", report.ProjectCode, err)
	}

	var reportID int64
	err = tx.QueryRow(ctx, `
        INSERT INTO sprint_reports (
            project_code, sprint_number, overall_status,
            executive_summary, risks_impediments, next_steps,
            story_points_planned, story_points_delivered
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `, report.ProjectCode, report.SprintNumber, report.OverallStatus,
		report.ExecutiveSummary, report.RisksImpediments, report.NextSteps,
		report.StoryPointsPlanned, report.StoryPointsDelivered).Scan(&reportID)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}

	for _, ms := range report.Milestones {
		_, err = tx.Exec(ctx, `
            INSERT INTO report_milestones (report_id, description, status, planned_date, actual_or_revised)
            VALUES ($1, $2, $3, $4, $5)
        `, reportID, ms.Description, ms.Status, ms.PlannedDate, ms.ActualOrRevised)
		if err != nil {
			return 0, fmt.Errorf("insert milestone: %w", err)
		}
	}

	for _, m := range report.Metrics {
		if !m.Meaningful() {
			continue
		}
		_, err = tx.Exec(ctx, `
            INSERT INTO report_metrics (report_id, name, category, numeric_value, text_value)
            VALUES ($1, $2, $3, $4, $5)
        `, reportID, m.Name, m.Category, m.Value, m.Text)
		if err != nil {
			return 0, fmt.Errorf("insert metric %s: %w", m.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	c.logger.Info("report saved",
		"project", report.ProjectCode,
		"sprint", report.SprintNumber,
		"report_id", reportID,
		"milestones", len(report.Milestones))
	return reportID, nil
}

// GetProject fetches one project by code.
func (c *Client) GetProject(ctx context.Context, code string) (Project, error) {
	var p Project
	var area string
	err := c.pool.QueryRow(ctx, `
        SELECT code, name, manager, total_budget, business_area, updated_at
        FROM projects WHERE code = $1
    `, code).Scan(&p.Code, &p.Name, &p.Manager, &p.TotalBudget, &area, &p.UpdatedAt)
	if err != nil {
		return Project{}, fmt.Errorf("get project %s: %w", code, notFound(err))
	}
	p.Area = models.BusinessArea(area)
	return p, nil
}

// ListProjects returns all projects ordered by code.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := c.pool.Query(ctx, `
        SELECT code, name, manager, total_budget, business_area, updated_at
        FROM projects ORDER BY code
    `)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		var area string
		if err := rows.Scan(&p.Code, &p.Name, &p.Manager, &p.TotalBudget, &area, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Area = models.BusinessArea(area)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListReports returns the stored reports of a project, newest sprint first.
func (c *Client) ListReports(ctx context.Context, projectCode string) ([]ReportSummary, error) {
	rows, err := c.pool.Query(ctx, `
        SELECT id, project_code, sprint_number, report_date, overall_status, created_at
        FROM sprint_reports
        WHERE project_code = $1
        ORDER BY sprint_number DESC, id DESC
    `, projectCode)
	if err != nil {
		return nil, fmt.Errorf("list reports for %s: %w", projectCode, err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var r ReportSummary
		if err := rows.Scan(&r.ID, &r.ProjectCode, &r.SprintNumber, &r.ReportDate, &r.OverallStatus, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetReport reassembles one stored report with its milestones and metrics.
func (c *Client) GetReport(ctx context.Context, id int64) (*models.ParsedReport, error) {
	report := &models.ParsedReport{}
	err := c.pool.QueryRow(ctx, `
        SELECT r.project_code, p.name, p.manager, p.business_area,
               r.sprint_number, r.overall_status,
               r.executive_summary, r.risks_impediments, r.next_steps,
               r.story_points_planned, r.story_points_delivered
        FROM sprint_reports r
        JOIN projects p ON p.code = r.project_code
        WHERE r.id = $1
    `, id).Scan(
		&report.ProjectCode, &report.ProjectName, &report.ProjectManager, &report.BusinessArea,
		&report.SprintNumber, &report.OverallStatus,
		&report.ExecutiveSummary, &report.RisksImpediments, &report.NextSteps,
		&report.StoryPointsPlanned, &report.StoryPointsDelivered,
	)
	if err != nil {
		return nil, fmt.Errorf("get report %d: %w", id, notFound(err))
	}

	rows, err := c.pool.Query(ctx, `
        SELECT description, status, planned_date, actual_or_revised
        FROM report_milestones WHERE report_id = $1 ORDER BY id
    `, id)
	if err != nil {
		return nil, fmt.Errorf("report %d milestones: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ms models.Milestone
		if err := rows.Scan(&ms.Description, &ms.Status, &ms.PlannedDate, &ms.ActualOrRevised); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		report.Milestones = append(report.Milestones, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mrows, err := c.pool.Query(ctx, `
        SELECT name, category, numeric_value, text_value
        FROM report_metrics WHERE report_id = $1 ORDER BY id
    `, id)
	if err != nil {
		return nil, fmt.Errorf("report %d metrics: %w", id, err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var m models.Metric
		if err := mrows.Scan(&m.Name, &m.Category, &m.Value, &m.Text); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		report.Metrics = append(report.Metrics, m)
	}
	return report, mrows.Err()
}
