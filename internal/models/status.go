package models

import "strings"

// Milestone status controlled vocabulary. Source documents mix English and
// Portuguese tokens; everything normalizes to these five values.
const (
	StatusDone       = "Done"
	StatusDelayed    = "Delayed"
	StatusInProgress = "In Progress"
	StatusPending    = "Pending"
	StatusAtRisk     = "At Risk"
)

// milestoneStatusAliases maps lowercased source tokens to canonical values.
// "Planejado" and "Pendente" both collapse into Pending.
var milestoneStatusAliases = map[string]string{
	"done":         StatusDone,
	"concluído":    StatusDone,
	"concluido":    StatusDone,
	"delayed":      StatusDelayed,
	"atrasado":     StatusDelayed,
	"in progress":  StatusInProgress,
	"em andamento": StatusInProgress,
	"pending":      StatusPending,
	"pendente":     StatusPending,
	"planned":      StatusPending,
	"planejado":    StatusPending,
	"at risk":      StatusAtRisk,
	"em risco":     StatusAtRisk,
}

// NormalizeMilestoneStatus maps a source token onto the controlled
// vocabulary. Unrecognized tokens return ok=false so callers can preserve
// them verbatim instead of mis-tagging them.
func NormalizeMilestoneStatus(raw string) (string, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if canonical, ok := milestoneStatusAliases[key]; ok {
		return canonical, true
	}
	return "", false
}

// Overall project health states used by the dashboards.
const (
	HealthOnTrack = "On Track"
	HealthAtRisk  = "At Risk"
	HealthDelayed = "Delayed"
)

var overallStatusAliases = map[string]string{
	"on track": HealthOnTrack,
	"no prazo": HealthOnTrack,
	"verde":    HealthOnTrack,
	"green":    HealthOnTrack,
	"at risk":  HealthAtRisk,
	"em risco": HealthAtRisk,
	"amarelo":  HealthAtRisk,
	"yellow":   HealthAtRisk,
	"delayed":  HealthDelayed,
	"atrasado": HealthDelayed,
	"vermelho": HealthDelayed,
	"red":      HealthDelayed,
}

// NormalizeOverallStatus maps free-text health indicators onto the closed
// set of states. Unrecognized text is returned as-is: reports in the wild
// carry prose here and the dashboards display it verbatim.
func NormalizeOverallStatus(raw string) string {
	trimmed := strings.TrimSpace(raw)
	key := strings.ToLower(strings.Join(strings.Fields(trimmed), " "))
	// Tolerate annotations like "Verde (tudo ok)".
	if idx := strings.IndexAny(key, "(-–"); idx > 0 {
		if canonical, ok := overallStatusAliases[strings.TrimSpace(key[:idx])]; ok {
			return canonical
		}
	}
	if canonical, ok := overallStatusAliases[key]; ok {
		return canonical
	}
	return trimmed
}
