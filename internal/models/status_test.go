package models

import "testing"

func TestNormalizeMilestoneStatus(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"english done", "Done", StatusDone, true},
		{"portuguese done", "Concluído", StatusDone, true},
		{"unaccented done", "concluido", StatusDone, true},
		{"uppercase", "ATRASADO", StatusDelayed, true},
		{"in progress", "Em Andamento", StatusInProgress, true},
		{"collapsed whitespace", "Em\t Andamento", StatusInProgress, true},
		{"at risk", "em risco", StatusAtRisk, true},
		{"planned folds to pending", "Planejado", StatusPending, true},
		{"pending", "pendente", StatusPending, true},
		{"unknown token", "Blocked", "", false},
		{"empty", "", "", false},
		{"near miss", "Donezo", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeMilestoneStatus(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NormalizeMilestoneStatus(%q) = (%q, %v), want (%q, %v)",
					tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizeOverallStatus(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"green", "Verde", HealthOnTrack},
		{"green with annotation", "Verde (tudo ok)", HealthOnTrack},
		{"yellow", "Amarelo", HealthAtRisk},
		{"english", "At Risk", HealthAtRisk},
		{"red", "vermelho", HealthDelayed},
		{"already canonical", "On Track", HealthOnTrack},
		{"free text preserved", "aguardando decisão do comitê", "aguardando decisão do comitê"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeOverallStatus(tt.in); got != tt.want {
				t.Errorf("NormalizeOverallStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseBusinessArea(t *testing.T) {
	tests := []struct {
		in     string
		want   BusinessArea
		wantOK bool
	}{
		{"Tech", AreaTech, true},
		{"TI", AreaTech, true},
		{"retalho", AreaRetail, true},
		{"Varejo", AreaRetail, true},
		{"Retail", AreaRetail, true},
		{" rh ", AreaHR, true},
		{"MARKETING", AreaMarketing, true},
		{"Finance", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseBusinessArea(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseBusinessArea(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
