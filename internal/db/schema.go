package db

import (
	"context"
	"fmt"
)

// SchemaSQL contains the database schema initialization SQL. Idempotent, so
// it can run on every startup.
const SchemaSQL = `
    CREATE TABLE IF NOT EXISTS projects (
        code          TEXT PRIMARY KEY,
        name          TEXT NOT NULL,
        manager       TEXT NOT NULL DEFAULT '',
        total_budget  DOUBLE PRECISION NOT NULL DEFAULT 0,
        business_area TEXT NOT NULL DEFAULT 'Tech',
        created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
    );

    CREATE TABLE IF NOT EXISTS sprint_reports (
        id                     BIGSERIAL PRIMARY KEY,
        project_code           TEXT NOT NULL REFERENCES projects(code) ON DELETE CASCADE,
        sprint_number          INT NOT NULL,
        report_date            DATE NOT NULL DEFAULT CURRENT_DATE,
        overall_status         TEXT NOT NULL DEFAULT '',
        executive_summary      TEXT NOT NULL DEFAULT '',
        risks_impediments      TEXT NOT NULL DEFAULT '',
        next_steps             TEXT NOT NULL DEFAULT '',
        story_points_planned   INT,
        story_points_delivered INT,
        created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
    );
    CREATE INDEX IF NOT EXISTS sprint_reports_project
        ON sprint_reports (project_code, sprint_number);

    CREATE TABLE IF NOT EXISTS report_milestones (
        id                BIGSERIAL PRIMARY KEY,
        report_id         BIGINT NOT NULL REFERENCES sprint_reports(id) ON DELETE CASCADE,
        description       TEXT NOT NULL,
        status            TEXT NOT NULL DEFAULT '',
        planned_date      DATE,
        actual_or_revised TEXT NOT NULL DEFAULT ''
    );
    CREATE INDEX IF NOT EXISTS report_milestones_report
        ON report_milestones (report_id);

    CREATE TABLE IF NOT EXISTS report_metrics (
        id            BIGSERIAL PRIMARY KEY,
        report_id     BIGINT NOT NULL REFERENCES sprint_reports(id) ON DELETE CASCADE,
        name          TEXT NOT NULL,
        category      TEXT NOT NULL DEFAULT 'Operational',
        numeric_value DOUBLE PRECISION,
        text_value    TEXT NOT NULL DEFAULT ''
    );
    CREATE INDEX IF NOT EXISTS report_metrics_report
        ON report_metrics (report_id);
`

// InitSchema creates tables and indexes if they do not exist.
func (c *Client) InitSchema(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	c.logger.Debug("database schema initialized")
	return nil
}
