package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lfmonteiro/statusdeck/internal/models"
)

var reportsCmd = &cobra.Command{
	Use:   "reports <project-code>",
	Short: "List stored reports for a project",
	Long: `List the sprint reports stored for one project, newest first.

Subcommands:
  show  Print one full report by id

Examples:
  statusdeck reports PROJ-042
  statusdeck reports show 17`,
	Args: cobra.ExactArgs(1),
	RunE: runReports,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Print one full report by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

func init() {
	reportsCmd.AddCommand(reportsShowCmd)
}

func runReports(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	code := args[0]

	reports, err := dbClient.ListReports(ctx, code)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}

	if len(reports) == 0 {
		fmt.Printf("No reports found for %s.\n", code)
		return nil
	}

	fmt.Printf("Reports for %s (%d):\n\n", code, len(reports))
	for _, r := range reports {
		fmt.Printf("- #%d  sprint %d  [%s]  %s\n",
			r.ID, r.SprintNumber, r.OverallStatus, r.ReportDate.Format("02/01/2006"))
	}

	return nil
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid report id %q", args[0])
	}

	report, err := dbClient.GetReport(ctx, id)
	if err != nil {
		return fmt.Errorf("get report %d: %w", id, err)
	}

	printReport(report)
	return nil
}

func printReport(r *models.ParsedReport) {
	fmt.Printf("%s (%s)\n", r.ProjectName, r.ProjectCode)
	fmt.Printf("Manager: %s\n", r.ProjectManager)
	fmt.Printf("Sprint:  %d\n", r.SprintNumber)
	fmt.Printf("Status:  %s\n", r.OverallStatus)
	fmt.Printf("Type:    %s\n", r.BusinessArea)

	if r.ExecutiveSummary != "" {
		fmt.Printf("\nExecutive summary:\n  %s\n", r.ExecutiveSummary)
	}
	if r.RisksImpediments != "" {
		fmt.Printf("\nRisks and impediments:\n  %s\n", r.RisksImpediments)
	}
	if r.NextSteps != "" {
		fmt.Printf("\nNext steps:\n  %s\n", r.NextSteps)
	}

	if len(r.Milestones) > 0 {
		fmt.Printf("\nMilestones (%d):\n", len(r.Milestones))
		for _, m := range r.Milestones {
			planned := "sem data"
			if m.PlannedDate != nil {
				planned = m.PlannedDate.Format("02/01/2006")
			}
			fmt.Printf("- %s [%s] planned %s", m.Description, m.Status, planned)
			if m.ActualOrRevised != "" {
				fmt.Printf(", actual/revised %s", m.ActualOrRevised)
			}
			fmt.Println()
		}
	}

	if len(r.Metrics) > 0 {
		fmt.Printf("\nMetrics (%d):\n", len(r.Metrics))
		for _, m := range r.Metrics {
			fmt.Printf("- %s [%s]: %s\n", m.Name, m.Category, formatMetricValue(m))
		}
	}
}

func formatMetricValue(m models.Metric) string {
	if m.Value != nil {
		return strconv.FormatFloat(*m.Value, 'f', -1, 64)
	}
	if m.Text != "" {
		return m.Text
	}
	return "-"
}
