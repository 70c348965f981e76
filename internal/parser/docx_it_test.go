package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/lfmonteiro/statusdeck/internal/models"
)

func docxHeaderParagraphs() []string {
	return []string{
		"Relatório de Status Semanal - Portal do Cliente",
		"ID do Projeto: WEB-007",
		"Gerente do Projeto: Bruno Dias",
		"Sprint: 14",
		"Status Geral: Amarelo",
		"1. Sumário Executivo:",
		"Entrega parcial do módulo de cadastro.",
		"2. Principais Impedimentos e Riscos:",
		"Atraso na definição do layout.",
		"3. Próximos Passos:",
		"Concluir a integração com o gateway de pagamento.",
		"Orçamento Total: R$ 200.000,00",
		"Custo Realizado: R$ 75.000,00",
	}
}

func milestonesTable() [][][]string {
	return [][][]string{{
		{"Marco", "Status", "Data Prevista", "Data Realizada"},
		{"Módulo de cadastro", "Concluído", "05/08/2025", "07/08/2025"},
		{"Integração gateway", "Em Andamento", "25/08/2025", "—"},
		{"", "Pendente", "30/09/2025", "—"},
	}}
}

func newITDocxParser(t *testing.T) *ITDocxParser {
	t.Helper()
	return &ITDocxParser{pats: MustDefaultPatterns()}
}

func TestITDocxParseHeaderAndSections(t *testing.T) {
	dc := docContent{paragraphs: docxHeaderParagraphs(), tables: milestonesTable()}

	report, err := newITDocxParser(t).parseContent(dc)
	if err != nil {
		t.Fatalf("parseContent() error = %v", err)
	}

	if report.ProjectCode != "WEB-007" {
		t.Errorf("ProjectCode = %q, want WEB-007", report.ProjectCode)
	}
	if report.ProjectName != "Portal do Cliente" {
		t.Errorf("ProjectName = %q", report.ProjectName)
	}
	if report.ProjectManager != "Bruno Dias" {
		t.Errorf("ProjectManager = %q", report.ProjectManager)
	}
	if report.SprintNumber != 14 {
		t.Errorf("SprintNumber = %d, want 14", report.SprintNumber)
	}
	if report.OverallStatus != models.HealthAtRisk {
		t.Errorf("OverallStatus = %q, want %q", report.OverallStatus, models.HealthAtRisk)
	}
	if report.ExecutiveSummary != "Entrega parcial do módulo de cadastro." {
		t.Errorf("ExecutiveSummary = %q", report.ExecutiveSummary)
	}
	if report.RisksImpediments != "Atraso na definição do layout." {
		t.Errorf("RisksImpediments = %q", report.RisksImpediments)
	}
	if report.NextSteps == "" {
		t.Error("NextSteps is empty")
	}

	if len(report.Metrics) != 2 {
		t.Fatalf("got %d metrics, want 2", len(report.Metrics))
	}
	if *report.Metrics[0].Value != 200000.0 || *report.Metrics[1].Value != 75000.0 {
		t.Errorf("metric values = %v / %v, want 200000 / 75000",
			*report.Metrics[0].Value, *report.Metrics[1].Value)
	}
}

func TestITDocxParseMilestonesFromTable(t *testing.T) {
	dc := docContent{paragraphs: docxHeaderParagraphs(), tables: milestonesTable()}

	report, err := newITDocxParser(t).parseContent(dc)
	if err != nil {
		t.Fatalf("parseContent() error = %v", err)
	}

	// The empty-description row is dropped along with the header row.
	if len(report.Milestones) != 2 {
		t.Fatalf("got %d milestones, want 2: %+v", len(report.Milestones), report.Milestones)
	}

	first := report.Milestones[0]
	if first.Description != "Módulo de cadastro" || first.Status != models.StatusDone {
		t.Errorf("milestone[0] = %+v", first)
	}
	if first.PlannedDate == nil || first.PlannedDate.Format(time.DateOnly) != "2025-08-05" {
		t.Errorf("milestone[0].PlannedDate = %v, want 2025-08-05", first.PlannedDate)
	}
	if first.ActualOrRevised != "07/08/2025" {
		t.Errorf("milestone[0].ActualOrRevised = %q", first.ActualOrRevised)
	}

	second := report.Milestones[1]
	if second.Status != models.StatusInProgress {
		t.Errorf("milestone[1].Status = %q, want %q", second.Status, models.StatusInProgress)
	}
	if second.ActualOrRevised != "" {
		t.Errorf("milestone[1].ActualOrRevised = %q, want empty for dash placeholder", second.ActualOrRevised)
	}
}

func TestITDocxParseMilestonesParagraphFallback(t *testing.T) {
	paragraphs := append(docxHeaderParagraphs(),
		"4. Acompanhamento de Marcos (Milestones):",
		"Módulo de cadastro - Concluído - Prevista: 05-08-2025 - Data Realizada: 07-08-2025;",
		"Integração gateway - Em Andamento - Prevista: 25-08-2025 - Data Realizada:",
	)
	dc := docContent{paragraphs: paragraphs}

	report, err := newITDocxParser(t).parseContent(dc)
	if err != nil {
		t.Fatalf("parseContent() error = %v", err)
	}

	if len(report.Milestones) != 2 {
		t.Fatalf("got %d milestones, want 2: %+v", len(report.Milestones), report.Milestones)
	}
	if report.Milestones[0].Description != "Módulo de cadastro" {
		t.Errorf("milestone[0].Description = %q", report.Milestones[0].Description)
	}
	if report.Milestones[0].PlannedDate == nil ||
		report.Milestones[0].PlannedDate.Format(time.DateOnly) != "2025-08-05" {
		t.Errorf("milestone[0].PlannedDate = %v, dash-separated date should parse", report.Milestones[0].PlannedDate)
	}
	if report.Milestones[1].ActualOrRevised != "" {
		t.Errorf("milestone[1].ActualOrRevised = %q, want empty", report.Milestones[1].ActualOrRevised)
	}
}

func TestITDocxParseTablePreferredOverParagraphs(t *testing.T) {
	paragraphs := append(docxHeaderParagraphs(),
		"4. Acompanhamento de Marcos (Milestones):",
		"Entrada duplicada - Pendente - Prevista: 01-12-2025 - Data Realizada:",
	)
	dc := docContent{paragraphs: paragraphs, tables: milestonesTable()}

	report, err := newITDocxParser(t).parseContent(dc)
	if err != nil {
		t.Fatalf("parseContent() error = %v", err)
	}
	if len(report.Milestones) != 2 {
		t.Fatalf("got %d milestones, want the 2 table rows only", len(report.Milestones))
	}
	for _, ms := range report.Milestones {
		if ms.Description == "Entrada duplicada" {
			t.Error("paragraph record leaked in despite a populated table")
		}
	}
}

func TestITDocxParseNoMilestones(t *testing.T) {
	dc := docContent{paragraphs: docxHeaderParagraphs()}

	report, err := newITDocxParser(t).parseContent(dc)
	if err != nil {
		t.Fatalf("parseContent() error = %v", err)
	}
	if len(report.Milestones) != 0 {
		t.Errorf("got %d milestones, want 0", len(report.Milestones))
	}
}

func TestITDocxParseMissingCode(t *testing.T) {
	var paragraphs []string
	for _, para := range docxHeaderParagraphs() {
		if para == "ID do Projeto: WEB-007" {
			continue
		}
		paragraphs = append(paragraphs, para)
	}

	_, err := newITDocxParser(t).parseContent(docContent{paragraphs: paragraphs})
	if err == nil {
		t.Fatal("parseContent() without project code should fail")
	}
	if !errors.Is(err, models.ErrMissingRequiredField) {
		t.Errorf("error %v does not wrap ErrMissingRequiredField", err)
	}
}

func TestReadDocxRejectsGarbage(t *testing.T) {
	_, err := readDocx([]byte("not a zip archive"))
	if err == nil {
		t.Fatal("readDocx() on garbage input should fail")
	}
	if !errors.Is(err, ErrUnreadableDocument) {
		t.Errorf("error %v does not wrap ErrUnreadableDocument", err)
	}
}
