package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/lfmonteiro/statusdeck/internal/models"
)

// ITDocxParser extracts IT-project weekly status reports from DOCX files.
// Unlike the PDF variant it can read the milestones table directly; the
// paragraph-based record form is kept as a fallback for templates that
// render milestones as running text.
type ITDocxParser struct {
	pats *Patterns
}

// docContent is the format-independent view the field mapping works on:
// non-empty paragraphs in document order plus tables as cell-text matrices.
type docContent struct {
	paragraphs []string
	tables     [][][]string
}

// Parse extracts the report, failing fast only on the required header tier.
func (p *ITDocxParser) Parse(content []byte) (*models.ParsedReport, error) {
	dc, err := readDocx(content)
	if err != nil {
		return nil, err
	}
	return p.parseContent(dc)
}

// readDocx walks the document body into a docContent. Reader errors and
// panics are translated into ErrUnreadableDocument.
func readDocx(data []byte) (dc docContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: docx reader: %v", ErrUnreadableDocument, r)
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return docContent{}, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			if text := strings.TrimSpace(it.String()); text != "" {
				dc.paragraphs = append(dc.paragraphs, text)
			}
		case *docx.Table:
			var rows [][]string
			for _, tr := range it.TableRows {
				var cells []string
				for _, tc := range tr.TableCells {
					var parts []string
					for _, para := range tc.Paragraphs {
						if text := strings.TrimSpace(para.String()); text != "" {
							parts = append(parts, text)
						}
					}
					cells = append(cells, strings.Join(parts, "\n"))
				}
				rows = append(rows, cells)
			}
			dc.tables = append(dc.tables, rows)
		}
	}
	return dc, nil
}

func (p *ITDocxParser) parseContent(dc docContent) (*models.ParsedReport, error) {
	fullText := strings.Join(dc.paragraphs, "\n")

	name, _ := ExtractLine(fullText, p.pats.ProjectName)
	code, _ := ExtractLine(fullText, p.pats.ProjectCode)
	manager, ok := ExtractLine(fullText, p.pats.Manager)
	if !ok {
		manager, _ = ExtractLine(fullText, p.pats.ManagerFallback)
	}

	sprint := 0
	if s, ok := ExtractLine(fullText, p.pats.Sprint); ok {
		if n, err := strconv.Atoi(s); err == nil {
			sprint = n
		}
	}

	status, ok := ExtractLine(fullText, p.pats.OverallStatus)
	if !ok {
		block := ExtractSection(fullText, p.pats.OverallStatusHeader, p.pats.SectionStop)
		status = firstNonEmptyLine(block)
	}

	report := &models.ParsedReport{
		ProjectCode:      code,
		ProjectName:      name,
		ProjectManager:   manager,
		SprintNumber:     sprint,
		OverallStatus:    models.NormalizeOverallStatus(status),
		ExecutiveSummary: tidySection(p.section(dc, fullText, p.pats.SummaryHeader)),
		RisksImpediments: tidySection(p.section(dc, fullText, p.pats.RisksHeader)),
		NextSteps:        tidySection(p.section(dc, fullText, p.pats.NextStepsHeader)),
		BusinessArea:     models.AreaTech,
		Metrics:          financialMetrics(fullText, p.pats),
		Milestones:       p.milestones(dc),
	}

	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("docx report: %w", err)
	}
	return report, nil
}

// section collects the paragraphs between a section header and the next
// header-looking paragraph. When the paragraph scan finds nothing it falls
// back to a block extraction over the joined text.
func (p *ITDocxParser) section(dc docContent, fullText string, header *regexp.Regexp) string {
	capturing := false
	var bucket []string
	for _, para := range dc.paragraphs {
		if !capturing {
			if header.MatchString(para) {
				capturing = true
			}
			continue
		}
		if p.pats.SectionStopLoose.MatchString(para) {
			break
		}
		bucket = append(bucket, para)
	}
	if text := strings.TrimSpace(strings.Join(bucket, "\n")); text != "" {
		return text
	}
	return ExtractSection(fullText, header, p.pats.SectionStopLoose)
}

// milestones prefers the first table of the document (description, status,
// planned date, actual/revised date columns). Templates without a table
// render milestones as semicolon-separated records under the milestones
// header.
func (p *ITDocxParser) milestones(dc docContent) []models.Milestone {
	if out := milestonesFromTable(dc.tables); len(out) > 0 {
		return out
	}
	return p.milestonesFromParagraphs(dc.paragraphs)
}

func milestonesFromTable(tables [][][]string) []models.Milestone {
	if len(tables) == 0 || len(tables[0]) < 2 {
		return nil
	}
	var out []models.Milestone
	for _, row := range tables[0][1:] { // skip header row
		if len(row) < 4 {
			continue
		}
		desc := strings.TrimSpace(row[0])
		if desc == "" {
			continue
		}
		out = append(out, buildMilestone(desc, row[1], row[2], row[3]))
	}
	return out
}

func (p *ITDocxParser) milestonesFromParagraphs(paragraphs []string) []models.Milestone {
	start := -1
	for i, para := range paragraphs {
		if p.pats.MilestonesHeader.MatchString(para) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var collected []string
	for _, para := range paragraphs[start:] {
		if p.pats.SectionStop.MatchString(para) {
			break
		}
		collected = append(collected, para)
	}
	if len(collected) == 0 {
		return nil
	}

	// One record per semicolon-separated part.
	parts := strings.Split(strings.Join(collected, " "), ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return matchMilestones(p.pats.MilestoneEntry, "", parts)
}
