// Package summary generates executive summaries for parsed status reports
// through a configurable LLM provider.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/lfmonteiro/statusdeck/internal/config"
	"github.com/lfmonteiro/statusdeck/internal/models"
)

// Summarizer wraps a langchaingo model for report summarization.
type Summarizer struct {
	llm       llms.Model
	modelName string
}

// New creates a summarizer based on configuration. Provider "none" returns
// nil with no error; callers treat a nil summarizer as "summarization off".
func New(ctx context.Context, cfg config.Config) (*Summarizer, error) {
	var model llms.Model
	var err error

	switch cfg.SummarizerProvider {
	case config.ProviderNone, "":
		return nil, nil

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.SummarizerModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.SummarizerModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.SummarizerModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderGoogleAI:
		if cfg.GoogleAIAPIKey == "" {
			return nil, fmt.Errorf("Google AI API key required")
		}
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.GoogleAIAPIKey),
			googleai.WithDefaultModel(cfg.SummarizerModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create googleai model: %w", err)
		}

	case config.ProviderBedrock:
		model, err = bedrock.New(
			bedrock.WithModel(cfg.SummarizerModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported summarizer provider: %s", cfg.SummarizerProvider)
	}

	return &Summarizer{
		llm:       model,
		modelName: cfg.SummarizerModel,
	}, nil
}

// Model returns the configured model name.
func (s *Summarizer) Model() string {
	return s.modelName
}

// Summarize generates a short Portuguese executive summary of the report.
// The model output is sanitized before being returned.
func (s *Summarizer) Summarize(ctx context.Context, report *models.ParsedReport) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, s.llm, buildPrompt(report))
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	clean := Sanitize(response)
	if clean == "" {
		return "", fmt.Errorf("summarizer returned empty output")
	}
	return clean, nil
}

// buildPrompt renders the parsed report as a compact briefing the model
// rewrites into a two or three sentence summary.
func buildPrompt(report *models.ParsedReport) string {
	var sb strings.Builder

	sb.WriteString("Você é um assistente de PMO. Escreva um resumo executivo de duas ou três frases, ")
	sb.WriteString("em português do Brasil, texto corrido sem markdown, sobre o status do projeto abaixo.\n\n")

	fmt.Fprintf(&sb, "Projeto: %s (%s)\n", report.ProjectName, report.ProjectCode)
	fmt.Fprintf(&sb, "Gerente: %s\n", report.ProjectManager)
	fmt.Fprintf(&sb, "Sprint: %d\n", report.SprintNumber)
	fmt.Fprintf(&sb, "Status geral: %s\n", report.OverallStatus)

	if report.ExecutiveSummary != "" {
		fmt.Fprintf(&sb, "\nResumo reportado:\n%s\n", report.ExecutiveSummary)
	}
	if report.RisksImpediments != "" {
		fmt.Fprintf(&sb, "\nRiscos e impedimentos:\n%s\n", report.RisksImpediments)
	}
	if report.NextSteps != "" {
		fmt.Fprintf(&sb, "\nPróximos passos:\n%s\n", report.NextSteps)
	}

	if len(report.Milestones) > 0 {
		sb.WriteString("\nMarcos:\n")
		for _, ms := range report.Milestones {
			planned := "sem data"
			if ms.PlannedDate != nil {
				planned = ms.PlannedDate.Format("02/01/2006")
			}
			fmt.Fprintf(&sb, "- %s: %s, previsto para %s\n", ms.Description, ms.Status, planned)
		}
	}

	wrote := false
	for _, m := range report.Metrics {
		if !promptWorthy(m) {
			continue
		}
		if !wrote {
			sb.WriteString("\nIndicadores:\n")
			wrote = true
		}
		if m.Text != "" {
			fmt.Fprintf(&sb, "- %s: %s\n", m.Name, m.Text)
		} else {
			fmt.Fprintf(&sb, "- %s: %.2f\n", m.Name, *m.Value)
		}
	}

	return sb.String()
}

// promptWorthy filters out the degraded zero-value financial placeholders
// the parsers always emit, which would only mislead the model.
func promptWorthy(m models.Metric) bool {
	if !m.Meaningful() {
		return false
	}
	return strings.TrimSpace(m.Text) != "" || (m.Value != nil && *m.Value != 0)
}
