// Package cli provides the command-line interface for statusdeck.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lfmonteiro/statusdeck/internal/config"
	"github.com/lfmonteiro/statusdeck/internal/db"
	"github.com/lfmonteiro/statusdeck/internal/parser"
	"github.com/lfmonteiro/statusdeck/internal/service"
	"github.com/lfmonteiro/statusdeck/internal/summary"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and db client
	cfg        config.Config
	dbClient   *db.Client
	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "statusdeck",
	Short: "Project status report ingestion pipeline",
	Long: `Statusdeck ingests weekly project status reports (PDF, DOCX, XLSX),
extracts them into a canonical model and stores projects, milestones and
KPIs in PostgreSQL.

Each project type has its own report templates; the parser is picked from
the project type and the file extension.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		logCleanup = cleanup

		ctx := context.Background()
		var err error
		dbClient, err = db.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			dbClient.Close()
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// getIngestService builds the pipeline: compiled template patterns, parser
// factory, optional summarizer, persistence.
func getIngestService(ctx context.Context, withSummarizer bool) (*service.IngestService, error) {
	patterns, err := loadPatterns()
	if err != nil {
		return nil, err
	}

	var summarizer service.Summarizer
	if withSummarizer {
		s, err := summary.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init summarizer: %w", err)
		}
		if s == nil {
			return nil, fmt.Errorf("summarization requested but STATUSDECK_SUMMARIZER is %q", cfg.SummarizerProvider)
		}
		summarizer = s
	}

	return service.NewIngestService(parser.NewFactory(patterns), dbClient, summarizer, slog.Default()), nil
}

func loadPatterns() (*parser.Patterns, error) {
	if cfg.TemplateFile == "" {
		return parser.MustDefaultPatterns(), nil
	}
	spec, err := parser.LoadTemplate(cfg.TemplateFile)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	patterns, err := spec.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile template: %w", err)
	}
	return patterns, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(reportsCmd)
}
