package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/lfmonteiro/statusdeck/internal/models"
)

// ITPDFParser extracts IT-project weekly status reports from PDF files.
type ITPDFParser struct {
	pats *Patterns
}

// Parse extracts the report. Required header fields (project code, name,
// sprint) are fail-fast; everything else degrades to defaults.
func (p *ITPDFParser) Parse(content []byte) (*models.ParsedReport, error) {
	text, err := pdfPlainText(content)
	if err != nil {
		return nil, err
	}
	return p.parseText(text)
}

// pdfPlainText renders the PDF as line-structured plain text, one text row
// per line. The pdf package panics on some malformed files; that must not
// escape as anything but ErrUnreadableDocument.
func pdfPlainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: pdf reader: %v", ErrUnreadableDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnreadableDocument, i, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// parseText maps normalized report text onto the canonical model. Split out
// from Parse so the field mapping is testable without PDF fixtures.
func (p *ITPDFParser) parseText(raw string) (*models.ParsedReport, error) {
	text := NormalizePDFText(raw)

	name, _ := ExtractLine(text, p.pats.ProjectName)
	code, _ := ExtractLine(text, p.pats.ProjectCode)
	manager, ok := ExtractLine(text, p.pats.Manager)
	if !ok {
		manager, _ = ExtractLine(text, p.pats.ManagerFallback)
	}

	sprint := 0
	if s, ok := ExtractLine(text, p.pats.Sprint); ok {
		if n, err := strconv.Atoi(s); err == nil {
			sprint = n
		}
	}

	status, ok := ExtractLine(text, p.pats.OverallStatus)
	if !ok {
		// Some layouts put the status on its own line under a numbered
		// section header.
		block := ExtractSection(text, p.pats.OverallStatusHeader, p.pats.SectionStop)
		status = firstNonEmptyLine(block)
	}

	report := &models.ParsedReport{
		ProjectCode:      code,
		ProjectName:      name,
		ProjectManager:   manager,
		SprintNumber:     sprint,
		OverallStatus:    models.NormalizeOverallStatus(status),
		ExecutiveSummary: tidySection(ExtractSection(text, p.pats.SummaryHeader, p.pats.SectionStop)),
		RisksImpediments: tidySection(ExtractSection(text, p.pats.RisksHeader, p.pats.SectionStop)),
		NextSteps:        tidySection(ExtractSection(text, p.pats.NextStepsHeader, p.pats.SectionStop)),
		BusinessArea:     models.AreaTech,
		Metrics:          financialMetrics(text, p.pats),
		Milestones:       p.milestones(text),
	}

	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("pdf report: %w", err)
	}
	return report, nil
}

// milestones parses the inline pipe-separated milestone records. A missing
// section yields an empty list, never a failure.
func (p *ITPDFParser) milestones(text string) []models.Milestone {
	block := ExtractSection(text, p.pats.MilestonesHeader, p.pats.SectionStop)
	if block == "" {
		return nil
	}

	// PDF extraction breaks records across lines arbitrarily; the record
	// pattern is self-delimiting, so flatten before matching.
	compact := collapseWhitespace(block)

	return matchMilestones(p.pats.MilestoneRecord, compact, nil)
}

// matchMilestones runs a milestone record pattern over text and builds the
// canonical entries. parts overrides the input with pre-split records (the
// DOCX paragraph form); when nil the pattern is matched repeatedly.
func matchMilestones(re *regexp.Regexp, text string, parts []string) []models.Milestone {
	descIdx := re.SubexpIndex("desc")
	statusIdx := re.SubexpIndex("status")
	plannedIdx := re.SubexpIndex("planned")
	actualIdx := re.SubexpIndex("actual")

	var groups [][]string
	if parts == nil {
		groups = re.FindAllStringSubmatch(text, -1)
	} else {
		for _, part := range parts {
			if m := re.FindStringSubmatch(part); m != nil {
				groups = append(groups, m)
			}
		}
	}

	var out []models.Milestone
	for _, m := range groups {
		out = append(out, buildMilestone(
			m[descIdx], m[statusIdx], m[plannedIdx], m[actualIdx],
		))
	}
	return out
}

// buildMilestone normalizes one extracted milestone row. Malformed planned
// dates become "no planned date"; unknown status tokens stay verbatim.
func buildMilestone(desc, status, planned, actual string) models.Milestone {
	ms := models.Milestone{
		Description: collapseWhitespace(desc),
	}

	rawStatus := collapseWhitespace(status)
	if canonical, ok := models.NormalizeMilestoneStatus(rawStatus); ok {
		ms.Status = canonical
	} else {
		ms.Status = rawStatus
	}

	if d, ok := Date(planned); ok {
		ms.PlannedDate = &d
	}

	actual = strings.TrimSpace(actual)
	if _, isDash := datePlaceholders[actual]; isDash {
		actual = ""
	}
	ms.ActualOrRevised = actual

	return ms
}

// financialMetrics extracts the two financial lines every template carries.
// Both metrics are always emitted; a missing line degrades to value 0 and
// empty text.
func financialMetrics(text string, pats *Patterns) []models.Metric {
	budgetRaw, _ := ExtractLine(text, pats.TotalBudget)
	costRaw, _ := ExtractLine(text, pats.RealizedCost)

	budget := Money(budgetRaw)
	cost := Money(costRaw)

	return []models.Metric{
		{
			Name:     models.MetricTotalBudget,
			Category: models.CategoryFinancial,
			Value:    &budget,
			Text:     budgetRaw,
		},
		{
			Name:     models.MetricRealizedCost,
			Category: models.CategoryFinancial,
			Value:    &cost,
			Text:     costRaw,
		},
	}
}
