package server

import (
	"time"

	"github.com/lfmonteiro/statusdeck/internal/db"
	"github.com/lfmonteiro/statusdeck/internal/models"
)

// API wire shapes. The internal models stay tag-free; these views fix the
// JSON field names independently of the Go ones.

type projectJSON struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Manager     string  `json:"manager,omitempty"`
	TotalBudget float64 `json:"total_budget"`
	Area        string  `json:"business_area"`
	UpdatedAt   string  `json:"updated_at"`
}

func toProjectJSON(p db.Project) projectJSON {
	return projectJSON{
		Code:        p.Code,
		Name:        p.Name,
		Manager:     p.Manager,
		TotalBudget: p.TotalBudget,
		Area:        string(p.Area),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

type reportSummaryJSON struct {
	ID            int64  `json:"id"`
	ProjectCode   string `json:"project_code"`
	SprintNumber  int    `json:"sprint_number"`
	ReportDate    string `json:"report_date"`
	OverallStatus string `json:"overall_status"`
	CreatedAt     string `json:"created_at"`
}

func toReportSummaryJSON(r db.ReportSummary) reportSummaryJSON {
	return reportSummaryJSON{
		ID:            r.ID,
		ProjectCode:   r.ProjectCode,
		SprintNumber:  r.SprintNumber,
		ReportDate:    r.ReportDate.Format(time.DateOnly),
		OverallStatus: r.OverallStatus,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}

type milestoneJSON struct {
	Description     string `json:"description"`
	Status          string `json:"status"`
	PlannedDate     string `json:"planned_date,omitempty"`
	ActualOrRevised string `json:"actual_or_revised,omitempty"`
}

type metricJSON struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Value    *float64 `json:"value,omitempty"`
	Text     string   `json:"text,omitempty"`
}

type reportJSON struct {
	ProjectCode          string          `json:"project_code"`
	ProjectName          string          `json:"project_name"`
	ProjectManager       string          `json:"project_manager,omitempty"`
	SprintNumber         int             `json:"sprint_number"`
	OverallStatus        string          `json:"overall_status"`
	ExecutiveSummary     string          `json:"executive_summary,omitempty"`
	RisksImpediments     string          `json:"risks_impediments,omitempty"`
	NextSteps            string          `json:"next_steps,omitempty"`
	BusinessArea         string          `json:"business_area"`
	StoryPointsPlanned   *int            `json:"story_points_planned,omitempty"`
	StoryPointsDelivered *int            `json:"story_points_delivered,omitempty"`
	Milestones           []milestoneJSON `json:"milestones"`
	Metrics              []metricJSON    `json:"metrics"`
}

func toReportJSON(r *models.ParsedReport) reportJSON {
	out := reportJSON{
		ProjectCode:          r.ProjectCode,
		ProjectName:          r.ProjectName,
		ProjectManager:       r.ProjectManager,
		SprintNumber:         r.SprintNumber,
		OverallStatus:        r.OverallStatus,
		ExecutiveSummary:     r.ExecutiveSummary,
		RisksImpediments:     r.RisksImpediments,
		NextSteps:            r.NextSteps,
		BusinessArea:         string(r.BusinessArea),
		StoryPointsPlanned:   r.StoryPointsPlanned,
		StoryPointsDelivered: r.StoryPointsDelivered,
		Milestones:           make([]milestoneJSON, len(r.Milestones)),
		Metrics:              make([]metricJSON, len(r.Metrics)),
	}
	for i, ms := range r.Milestones {
		mj := milestoneJSON{
			Description:     ms.Description,
			Status:          ms.Status,
			ActualOrRevised: ms.ActualOrRevised,
		}
		if ms.PlannedDate != nil {
			mj.PlannedDate = ms.PlannedDate.Format(time.DateOnly)
		}
		out.Milestones[i] = mj
	}
	for i, m := range r.Metrics {
		out.Metrics[i] = metricJSON{Name: m.Name, Category: m.Category, Value: m.Value, Text: m.Text}
	}
	return out
}
