// Package models defines the canonical report types produced by the parsing
// pipeline, independent of the source document format.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BusinessArea tags a project with the business domain its reports belong to.
type BusinessArea string

const (
	AreaTech      BusinessArea = "Tech"
	AreaRetail    BusinessArea = "Retail"
	AreaHR        BusinessArea = "HR"
	AreaMarketing BusinessArea = "Marketing"
)

// ParseBusinessArea normalizes a project-type tag. It accepts the English
// vocabulary and the Portuguese tags (TI, Retalho, Varejo, RH) used by the
// report templates, case-insensitively.
func ParseBusinessArea(s string) (BusinessArea, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tech", "ti", "it":
		return AreaTech, true
	case "retail", "retalho", "varejo":
		return AreaRetail, true
	case "hr", "rh":
		return AreaHR, true
	case "marketing":
		return AreaMarketing, true
	}
	return "", false
}

// Metric is a single KPI entry extracted from a report. At least one of
// Value and Text should be populated for the entry to be meaningful.
type Metric struct {
	Name     string
	Category string
	Value    *float64
	Text     string
}

// Meaningful reports whether the metric carries any value at all.
func (m Metric) Meaningful() bool {
	return m.Value != nil || strings.TrimSpace(m.Text) != ""
}

// Metric categories commonly produced by the parsers.
const (
	CategoryFinancial   = "Financial"
	CategoryOperational = "Operational"
	CategoryCustomer    = "Customer"
)

// Canonical metric names for the two financial lines every report carries.
const (
	MetricTotalBudget  = "Total Budget"
	MetricRealizedCost = "Realized Cost"
)

// Milestone is a tracked deliverable extracted from a report's milestones
// section or table.
type Milestone struct {
	Description string
	// Status holds one of the controlled vocabulary values when the source
	// token was recognized, otherwise the raw token verbatim.
	Status string
	// PlannedDate is nil when the source had no parseable DD/MM/YYYY date.
	PlannedDate *time.Time
	// ActualOrRevised is free text: source documents report this as prose
	// ("aguardando homologação") as often as a date. Dash placeholders
	// normalize to the empty string.
	ActualOrRevised string
}

// ParsedReport is the normalized output of every format parser. It is
// constructed once per parse call and fully populated before return.
type ParsedReport struct {
	ProjectCode    string
	ProjectName    string
	ProjectManager string
	SprintNumber   int
	OverallStatus  string

	ExecutiveSummary string
	RisksImpediments string
	NextSteps        string

	BusinessArea BusinessArea

	// Story-point fields are an extension point: no current template defines
	// them, so parsers leave both nil.
	StoryPointsPlanned   *int
	StoryPointsDelivered *int

	Milestones []Milestone
	Metrics    []Metric
}

// ErrMissingRequiredField marks a report whose identifying header fields
// could not be resolved. Callers must not persist such a report.
var ErrMissingRequiredField = errors.New("required header field missing")

// requiredFields is the single table mapping header fields to the
// fail-fast tier. Everything not listed here degrades to a default value
// instead of failing the parse.
var requiredFields = []struct {
	name string
	ok   func(*ParsedReport) bool
}{
	{"project code", func(r *ParsedReport) bool { return strings.TrimSpace(r.ProjectCode) != "" }},
	{"project name", func(r *ParsedReport) bool { return strings.TrimSpace(r.ProjectName) != "" }},
	{"sprint number", func(r *ParsedReport) bool { return r.SprintNumber >= 0 }},
}

// Validate checks the required-field tier. A nil error means the report is
// safe to hand to the persistence gateway.
func (r *ParsedReport) Validate() error {
	var missing []string
	for _, f := range requiredFields {
		if !f.ok(r) {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequiredField, strings.Join(missing, ", "))
	}
	return nil
}

// BudgetMetric returns the Total Budget metric if present.
func (r *ParsedReport) BudgetMetric() *Metric {
	for i := range r.Metrics {
		if r.Metrics[i].Name == MetricTotalBudget {
			return &r.Metrics[i]
		}
	}
	return nil
}
