package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lfmonteiro/statusdeck/internal/models"
)

// buildRetailWorkbook writes a workbook in the retail layout and returns its
// serialized bytes. rows maps sheet name to row slices; the first named
// sheet becomes the header sheet.
func buildRetailWorkbook(t *testing.T, sheets []string, rows map[string][][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("NewSheet(%q): %v", sheet, err)
		}
		for r, row := range rows[sheet] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				t.Fatalf("SetSheetRow(%q, %s): %v", sheet, cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func retailHeaderRows() [][]any {
	return [][]any{
		{"Projeto:", "Loja Virtual Sul"},
		{"Código:", "RET-019"},
		{"Gerente:", "Ana Paula Souza"},
		{"Período:", "Semana 31"},
		{"Status Geral:", "Verde"},
		{"Resumo Executivo:", "Vendas acima da meta na região sul."},
		{"Orçamento Total:", "R$ 80.000,00"},
		{"Custo Realizado:", "R$ 35.500,00"},
	}
}

func TestRetailXLSXParse(t *testing.T) {
	content := buildRetailWorkbook(t,
		[]string{"Resumo", "Indicadores", "Marcos"},
		map[string][][]any{
			"Resumo": retailHeaderRows(),
			"Indicadores": {
				{"Indicador", "Categoria", "Valor"},
				{"Ticket Médio", "Cliente", "R$ 152,30"},
				{"Ruptura de Estoque", "Operacional", "2,5"},
			},
			"Marcos": {
				{"Marco", "Status", "Data Prevista", "Data Realizada"},
				{"Abertura da loja física", "Concluído", "10/07/2025", "12/07/2025"},
				{"Campanha de agosto", "Em Andamento", "01/08/2025", "—"},
			},
		})

	p := &RetailXLSXParser{pats: MustDefaultPatterns()}
	report, err := p.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if report.ProjectCode != "RET-019" {
		t.Errorf("ProjectCode = %q, want RET-019", report.ProjectCode)
	}
	if report.ProjectName != "Loja Virtual Sul" {
		t.Errorf("ProjectName = %q", report.ProjectName)
	}
	if report.ProjectManager != "Ana Paula Souza" {
		t.Errorf("ProjectManager = %q", report.ProjectManager)
	}
	if report.SprintNumber != 31 {
		t.Errorf("SprintNumber = %d, want 31 from the period label", report.SprintNumber)
	}
	if report.OverallStatus != models.HealthOnTrack {
		t.Errorf("OverallStatus = %q, want %q", report.OverallStatus, models.HealthOnTrack)
	}
	if report.BusinessArea != models.AreaRetail {
		t.Errorf("BusinessArea = %q, want Retail", report.BusinessArea)
	}
	if report.ExecutiveSummary == "" {
		t.Error("ExecutiveSummary is empty")
	}

	// Two canonical financial metrics plus the two indicator rows.
	if len(report.Metrics) != 4 {
		t.Fatalf("got %d metrics, want 4: %+v", len(report.Metrics), report.Metrics)
	}
	if report.Metrics[0].Name != models.MetricTotalBudget || *report.Metrics[0].Value != 80000.0 {
		t.Errorf("metric[0] = %+v", report.Metrics[0])
	}
	if report.Metrics[1].Name != models.MetricRealizedCost || *report.Metrics[1].Value != 35500.0 {
		t.Errorf("metric[1] = %+v", report.Metrics[1])
	}
	ticket := report.Metrics[2]
	if ticket.Name != "Ticket Médio" || ticket.Category != models.CategoryCustomer || *ticket.Value != 152.30 {
		t.Errorf("metric[2] = %+v", ticket)
	}
	rupture := report.Metrics[3]
	if rupture.Category != models.CategoryOperational || *rupture.Value != 2.5 {
		t.Errorf("metric[3] = %+v", rupture)
	}

	if len(report.Milestones) != 2 {
		t.Fatalf("got %d milestones, want 2: %+v", len(report.Milestones), report.Milestones)
	}
	first := report.Milestones[0]
	if first.Description != "Abertura da loja física" || first.Status != models.StatusDone {
		t.Errorf("milestone[0] = %+v", first)
	}
	if first.PlannedDate == nil || first.PlannedDate.Format(time.DateOnly) != "2025-07-10" {
		t.Errorf("milestone[0].PlannedDate = %v, want 2025-07-10", first.PlannedDate)
	}
	if report.Milestones[1].ActualOrRevised != "" {
		t.Errorf("milestone[1].ActualOrRevised = %q, want empty for dash placeholder",
			report.Milestones[1].ActualOrRevised)
	}
}

func TestRetailXLSXParseHeaderOnly(t *testing.T) {
	content := buildRetailWorkbook(t,
		[]string{"Resumo"},
		map[string][][]any{"Resumo": retailHeaderRows()})

	p := &RetailXLSXParser{pats: MustDefaultPatterns()}
	report, err := p.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(report.Milestones) != 0 {
		t.Errorf("got %d milestones, want 0 without a milestones sheet", len(report.Milestones))
	}
	if len(report.Metrics) != 2 {
		t.Errorf("got %d metrics, want just the financial pair", len(report.Metrics))
	}
}

func TestRetailXLSXParseMissingCode(t *testing.T) {
	var rows [][]any
	for _, row := range retailHeaderRows() {
		if row[0] == "Código:" {
			continue
		}
		rows = append(rows, row)
	}
	content := buildRetailWorkbook(t, []string{"Resumo"}, map[string][][]any{"Resumo": rows})

	p := &RetailXLSXParser{pats: MustDefaultPatterns()}
	_, err := p.Parse(content)
	if err == nil {
		t.Fatal("Parse() without a project code row should fail")
	}
	if !errors.Is(err, models.ErrMissingRequiredField) {
		t.Errorf("error %v does not wrap ErrMissingRequiredField", err)
	}
}

func TestRetailXLSXParseUnknownSheetIgnored(t *testing.T) {
	content := buildRetailWorkbook(t,
		[]string{"Resumo", "Rascunho"},
		map[string][][]any{
			"Resumo":   retailHeaderRows(),
			"Rascunho": {{"qualquer", "coisa"}},
		})

	p := &RetailXLSXParser{pats: MustDefaultPatterns()}
	report, err := p.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(report.Metrics) != 2 || len(report.Milestones) != 0 {
		t.Errorf("unrecognized sheet contributed data: %d metrics, %d milestones",
			len(report.Metrics), len(report.Milestones))
	}
}

func TestRetailXLSXParseGarbage(t *testing.T) {
	p := &RetailXLSXParser{pats: MustDefaultPatterns()}
	_, err := p.Parse([]byte("not an xlsx file"))
	if err == nil {
		t.Fatal("Parse() on garbage input should fail")
	}
	if !errors.Is(err, ErrUnreadableDocument) {
		t.Errorf("error %v does not wrap ErrUnreadableDocument", err)
	}
}
