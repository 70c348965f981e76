package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lfmonteiro/statusdeck/internal/models"
)

// RetailXLSXParser extracts retail-area status reports from spreadsheets.
// Layout: the first sheet holds label/value header rows, an indicators sheet
// holds KPI rows (name, category, value), and a milestones sheet holds
// milestone rows (description, status, planned, actual).
type RetailXLSXParser struct {
	pats *Patterns
}

var digitRun = regexp.MustCompile(`\d+`)

// Sheet names recognized for the two optional sections.
var (
	metricSheetNames    = map[string]struct{}{"indicadores": {}, "kpis": {}, "metrics": {}}
	milestoneSheetNames = map[string]struct{}{"marcos": {}, "milestones": {}}
)

// Parse extracts the report. Missing indicator or milestone sheets degrade
// to empty lists; the required header tier is fail-fast as everywhere else.
func (p *RetailXLSXParser) Parse(content []byte) (*models.ParsedReport, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadableDocument)
	}

	report := &models.ParsedReport{BusinessArea: models.AreaRetail}

	headerRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	budgetRaw, costRaw := p.applyHeaderRows(report, headerRows)

	budget := Money(budgetRaw)
	cost := Money(costRaw)
	report.Metrics = []models.Metric{
		{Name: models.MetricTotalBudget, Category: models.CategoryFinancial, Value: &budget, Text: budgetRaw},
		{Name: models.MetricRealizedCost, Category: models.CategoryFinancial, Value: &cost, Text: costRaw},
	}

	for _, sheet := range sheets[1:] {
		key := strings.ToLower(strings.TrimSpace(sheet))
		rows, err := f.GetRows(sheet)
		if err != nil {
			// A broken sheet loses its own section, not the report.
			continue
		}
		if _, ok := metricSheetNames[key]; ok {
			report.Metrics = append(report.Metrics, metricRows(rows)...)
		}
		if _, ok := milestoneSheetNames[key]; ok {
			report.Milestones = append(report.Milestones, milestoneRows(rows)...)
		}
	}

	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("xlsx report: %w", err)
	}
	return report, nil
}

// applyHeaderRows maps label/value rows onto the report header and returns
// the raw financial cells for the two canonical metrics.
func (p *RetailXLSXParser) applyHeaderRows(report *models.ParsedReport, rows [][]string) (budgetRaw, costRaw string) {
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		label := normalizeLabel(row[0])
		value := strings.TrimSpace(row[1])
		if label == "" || value == "" {
			continue
		}

		switch label {
		case "projeto", "nome do projeto", "project", "project name":
			report.ProjectName = value
		case "codigo", "codigo do projeto", "code", "project id", "id do projeto":
			report.ProjectCode = value
		case "gestor", "gerente", "gerente do projeto", "manager", "project manager":
			report.ProjectManager = value
		case "periodo", "sprint":
			if n := digitRun.FindString(value); n != "" {
				if v, err := strconv.Atoi(n); err == nil {
					report.SprintNumber = v
				}
			}
		case "status geral", "overall status", "status":
			report.OverallStatus = models.NormalizeOverallStatus(value)
		case "resumo executivo", "resumo", "executive summary":
			report.ExecutiveSummary = value
		case "riscos e impedimentos", "riscos", "risks":
			report.RisksImpediments = value
		case "proximos passos", "next steps":
			report.NextSteps = value
		case "orcamento total", "total budget":
			budgetRaw = value
		case "custo realizado", "realized cost":
			costRaw = value
		}
	}
	return budgetRaw, costRaw
}

// metricRows builds KPI entries from indicator rows, skipping the header
// row and anything without a name.
func metricRows(rows [][]string) []models.Metric {
	var out []models.Metric
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		raw := strings.TrimSpace(row[2])
		value := Money(raw)
		out = append(out, models.Metric{
			Name:     name,
			Category: metricCategory(row[1]),
			Value:    &value,
			Text:     raw,
		})
	}
	return out
}

func metricCategory(raw string) string {
	switch normalizeLabel(raw) {
	case "financeiro", "financial":
		return models.CategoryFinancial
	case "operacional", "operational":
		return models.CategoryOperational
	case "cliente", "customer":
		return models.CategoryCustomer
	case "":
		return models.CategoryOperational
	}
	return strings.TrimSpace(raw)
}

func milestoneRows(rows [][]string) []models.Milestone {
	var out []models.Milestone
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		desc := strings.TrimSpace(row[0])
		if desc == "" {
			continue
		}
		planned, actual := "", ""
		if len(row) > 2 {
			planned = row[2]
		}
		if len(row) > 3 {
			actual = row[3]
		}
		out = append(out, buildMilestone(desc, row[1], planned, actual))
	}
	return out
}

// normalizeLabel lowercases, trims and strips the accents that appear in
// the Portuguese labels, so "Código" and "codigo" key the same field.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ":")
	replacer := strings.NewReplacer(
		"á", "a", "ã", "a", "â", "a", "à", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "õ", "o", "ô", "o",
		"ú", "u", "ü", "u",
		"ç", "c",
	)
	return strings.TrimSpace(replacer.Replace(s))
}
