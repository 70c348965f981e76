package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects with stored reports",
	Long: `List every project known to the database, with its manager and
latest budget figure.

Examples:
  statusdeck projects
  statusdeck projects --verbose`,
	RunE: runProjects,
}

func runProjects(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	projects, err := dbClient.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	fmt.Printf("Projects (%d):\n\n", len(projects))
	for _, p := range projects {
		fmt.Printf("- %s  %s [%s]\n", p.Code, p.Name, p.Area)
		if verbose {
			fmt.Printf("  Manager: %s\n", p.Manager)
			if p.TotalBudget > 0 {
				fmt.Printf("  Budget:  R$ %.2f\n", p.TotalBudget)
			}
			fmt.Printf("  Updated: %s\n", p.UpdatedAt.Format("02/01/2006 15:04"))
		}
	}

	return nil
}
