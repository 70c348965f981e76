package parser

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// statusToken matches the milestone status vocabulary as it appears in the
// documents, Portuguese and English.
const statusToken = `(?:Conclu[ií]do|Em\s+Andamento|Em\s+Risco|Atrasado|Planejado|Pendente|Done|In\s+Progress|At\s+Risk|Delayed|Planned|Pending)`

// TemplateSpec is the declarative pattern set for one report template.
// Extraction logic never hard-codes section headers or field labels; it only
// knows this spec, so a new template is a new YAML file, not a code change.
type TemplateSpec struct {
	Name string `yaml:"name"`

	// Single-line header fields. Each pattern carries one capture group.
	ProjectName     string `yaml:"project_name"`
	ProjectCode     string `yaml:"project_code"`
	Manager         string `yaml:"manager"`
	ManagerFallback string `yaml:"manager_fallback"`
	Sprint          string `yaml:"sprint"`
	OverallStatus   string `yaml:"overall_status"`

	// Section headers and the stop pattern that terminates a block.
	OverallStatusHeader string `yaml:"overall_status_header"`
	SummaryHeader       string `yaml:"summary_header"`
	RisksHeader         string `yaml:"risks_header"`
	NextStepsHeader     string `yaml:"next_steps_header"`
	MilestonesHeader    string `yaml:"milestones_header"`
	SectionStop         string `yaml:"section_stop"`
	SectionStopLoose    string `yaml:"section_stop_loose"`

	// Financial lines.
	TotalBudget  string `yaml:"total_budget"`
	RealizedCost string `yaml:"realized_cost"`

	// Milestone record shapes: the inline pipe-separated PDF form and the
	// dash-separated paragraph form used by word-processor templates.
	MilestoneRecord string `yaml:"milestone_record"`
	MilestoneEntry  string `yaml:"milestone_entry"`
}

// DefaultTemplate returns the weekly-status template. The documents this
// system was built against label fields in Portuguese; English equivalents
// are accepted in the same set.
func DefaultTemplate() TemplateSpec {
	return TemplateSpec{
		Name: "weekly-status",

		ProjectName:     `(?:Relat[oó]rio\s+de\s+Status\s+Semanal|Weekly\s+Status\s+Report)\s*[-–—]\s*([^\n]+)`,
		ProjectCode:     `(?:ID\s*do\s*Projeto|Project\s*ID|C[oó]digo)\s*:\s*([A-Z0-9\-.]+)`,
		Manager:         `(?:Gerente\s+do\s+Projeto|Project\s+Manager)\s*:\s*([^\n]+?)(?:\s+Sprint\b|$)`,
		ManagerFallback: `(?:Reporte\s+de|Reported\s+by)\s*:\s*([^\n]+)`,
		Sprint:          `Sprint\s*:\s*(?:Sprint\s*)?(\d+)`,
		OverallStatus:   `(?:Status\s+Geral|Overall\s+Status)(?:\s*\([^)]*\))?\s*:\s*([^\n]+)`,

		OverallStatusHeader: `^\s*\d+\.\s*(?:Status\s+Geral|Overall\s+Status)(?:\s*\([^)]*\))?\s*:?\s*$`,
		SummaryHeader:       `^\s*\d+\.\s*(?:Sum[áa]rio\s+Executivo|Sum[áa]rio\s+de\s+Atividades|Executive\s+Summary)\s*:?\s*$`,
		RisksHeader:         `^\s*\d+\.\s*(?:Principais\s+Impedimentos\s+e\s+Riscos|Riscos\s+e\s+Impedimentos|Impedimentos\s+e\s+Riscos|Risks?\s+(?:and|&)\s+Impediments)\s*:?\s*$`,
		NextStepsHeader:     `^\s*\d+\.\s*(?:Pr[oó]xim[oa]s?\s+(?:Passos|A[çc][oõ]es)|Next\s+Steps)\s*:?\s*$`,
		MilestonesHeader:    `^\s*\d+\.\s*(?:Acompanhamento\s+de\s+Marcos\s*\(Milestones\)|Milestones?(?:\s+Tracking)?)\s*:?\s*$`,
		SectionStop:         `^\s*\d+\.\s`,
		SectionStopLoose:    `^\s*\d+\.\s|^\s*(?:sum[áa]rio|impedimentos|riscos|pr[oó]xim|executive|risks?\b|next\s+steps)`,

		TotalBudget:  `(?:Or[çc]amento\s+Total(?:\s+do\s+Projeto)?|Total\s+Budget)\s*:\s*([^\n]+)`,
		RealizedCost: `(?:Custo\s+Realizado(?:\s+at[eé]\s+a\s+Data)?|Realized\s+Cost(?:\s+to\s+Date)?)\s*:\s*([^\n]+)`,

		MilestoneRecord: `Milestone:\s*(?P<desc>.*?)\s*\|\s*Status:\s*(?P<status>` + statusToken + `)\s*\|\s*(?:Prevista|Planned):\s*(?P<planned>\d{2}/\d{2}/\d{4})\s*\|\s*(?:Data\s+Realizada|Actual\s+Date):\s*(?P<actual>\d{2}/\d{2}/\d{4}|—|–|-|‐|―)`,
		MilestoneEntry:  `(?P<desc>.+?)\s*-\s*(?P<status>` + statusToken + `)\s*-\s*(?:Prevista|Planned)\s*:\s*(?P<planned>\d{1,2}[-/]\d{1,2}[-/]\d{4})\s*-\s*(?:Data\s+Realizada|Actual\s+Date)\s*:\s*(?P<actual>\d{1,2}[-/]\d{1,2}[-/]\d{4}|)`,
	}
}

// LoadTemplate reads a TemplateSpec from a YAML file. Fields left empty in
// the file inherit the default template's pattern.
func LoadTemplate(path string) (TemplateSpec, error) {
	spec := DefaultTemplate()
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("read template: %w", err)
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("parse template %s: %w", path, err)
	}
	return spec, nil
}

// Patterns is a compiled TemplateSpec. Compiled once, read-only afterwards,
// safe to share across concurrent parses.
type Patterns struct {
	spec TemplateSpec

	ProjectName     *regexp.Regexp
	ProjectCode     *regexp.Regexp
	Manager         *regexp.Regexp
	ManagerFallback *regexp.Regexp
	Sprint          *regexp.Regexp
	OverallStatus   *regexp.Regexp

	OverallStatusHeader *regexp.Regexp
	SummaryHeader       *regexp.Regexp
	RisksHeader         *regexp.Regexp
	NextStepsHeader     *regexp.Regexp
	MilestonesHeader    *regexp.Regexp
	SectionStop         *regexp.Regexp
	SectionStopLoose    *regexp.Regexp

	TotalBudget  *regexp.Regexp
	RealizedCost *regexp.Regexp

	MilestoneRecord *regexp.Regexp
	MilestoneEntry  *regexp.Regexp
}

// Compile compiles every pattern of the template. Header fields and section
// headers are line-scoped; only the milestone record pattern is compiled in
// block mode, because it runs against a whitespace-compacted blob.
func (s TemplateSpec) Compile() (*Patterns, error) {
	p := &Patterns{spec: s}

	line := map[string]struct {
		pat string
		dst **regexp.Regexp
	}{
		"project_name":          {s.ProjectName, &p.ProjectName},
		"project_code":          {s.ProjectCode, &p.ProjectCode},
		"manager":               {s.Manager, &p.Manager},
		"manager_fallback":      {s.ManagerFallback, &p.ManagerFallback},
		"sprint":                {s.Sprint, &p.Sprint},
		"overall_status":        {s.OverallStatus, &p.OverallStatus},
		"overall_status_header": {s.OverallStatusHeader, &p.OverallStatusHeader},
		"summary_header":        {s.SummaryHeader, &p.SummaryHeader},
		"risks_header":          {s.RisksHeader, &p.RisksHeader},
		"next_steps_header":     {s.NextStepsHeader, &p.NextStepsHeader},
		"milestones_header":     {s.MilestonesHeader, &p.MilestonesHeader},
		"section_stop":          {s.SectionStop, &p.SectionStop},
		"section_stop_loose":    {s.SectionStopLoose, &p.SectionStopLoose},
		"total_budget":          {s.TotalBudget, &p.TotalBudget},
		"realized_cost":         {s.RealizedCost, &p.RealizedCost},
		"milestone_entry":       {s.MilestoneEntry, &p.MilestoneEntry},
	}
	for name, entry := range line {
		re, err := CompileLine(entry.pat)
		if err != nil {
			return nil, fmt.Errorf("template %s: compile %s: %w", s.Name, name, err)
		}
		*entry.dst = re
	}

	re, err := CompileBlock(s.MilestoneRecord)
	if err != nil {
		return nil, fmt.Errorf("template %s: compile milestone_record: %w", s.Name, err)
	}
	p.MilestoneRecord = re

	return p, nil
}

// MustDefaultPatterns compiles the built-in template. The default template
// is covered by tests, so a compile failure here is a programming error.
func MustDefaultPatterns() *Patterns {
	p, err := DefaultTemplate().Compile()
	if err != nil {
		panic(err)
	}
	return p
}

// Template returns the spec this pattern set was compiled from.
func (p *Patterns) Template() TemplateSpec {
	return p.spec
}
