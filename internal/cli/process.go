package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lfmonteiro/statusdeck/internal/models"
	"github.com/lfmonteiro/statusdeck/internal/service"
)

var (
	processType        string
	processDryRun      bool
	processSummarize   bool
	processConcurrency int
	processNoProgress  bool
)

var processCmd = &cobra.Command{
	Use:   "process <file-or-directory>",
	Short: "Parse status report files and store them",
	Long: `Process one report file, or every supported file in a directory.

The project type selects the template family; the parser is picked from the
type and the file extension. Files without a parser are skipped in
directory mode and rejected in single-file mode.

Examples:
  statusdeck process relatorio_semanal.pdf --type TI
  statusdeck process ./reports/ --type TI --summarize
  statusdeck process vendas.xlsx --type Varejo --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processType, "type", "t", "TI", "project type (TI, Varejo, RH, Marketing)")
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "parse and validate without saving")
	processCmd.Flags().BoolVar(&processSummarize, "summarize", false, "regenerate the executive summary with the configured LLM")
	processCmd.Flags().IntVarP(&processConcurrency, "concurrency", "c", 0, "parallel workers for directories (default from config)")
	processCmd.Flags().BoolVar(&processNoProgress, "no-progress", false, "disable the interactive progress display")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	area, ok := models.ParseBusinessArea(processType)
	if !ok {
		return fmt.Errorf("unknown project type %q", processType)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	svc, err := getIngestService(ctx, processSummarize)
	if err != nil {
		return err
	}

	opts := service.ProcessOptions{
		Area:        area,
		DryRun:      processDryRun,
		Summarize:   processSummarize,
		Concurrency: processConcurrency,
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.Workers
	}

	if info.IsDir() {
		return processDirectory(ctx, svc, path, opts)
	}
	return processSingleFile(ctx, svc, path, opts)
}

func processSingleFile(ctx context.Context, svc *service.IngestService, path string, opts service.ProcessOptions) error {
	fr, err := svc.ProcessFile(ctx, path, opts)
	if err != nil {
		return err
	}

	r := fr.Report
	fmt.Printf("Project:    %s (%s)\n", r.ProjectName, r.ProjectCode)
	fmt.Printf("Manager:    %s\n", r.ProjectManager)
	fmt.Printf("Sprint:     %d\n", r.SprintNumber)
	fmt.Printf("Status:     %s\n", r.OverallStatus)
	fmt.Printf("Milestones: %d\n", len(r.Milestones))
	fmt.Printf("Metrics:    %d\n", len(r.Metrics))
	if opts.DryRun {
		fmt.Println("\nDry run, nothing saved.")
	} else {
		fmt.Printf("\nSaved as report #%d\n", fr.ReportID)
	}
	return nil
}

func processDirectory(ctx context.Context, svc *service.IngestService, dir string, opts service.ProcessOptions) error {
	task := service.NewTaskTracker().Create(dir, opts.Area)
	opts.Task = task

	interactive := !processNoProgress && term.IsTerminal(int(os.Stdout.Fd()))

	type batchDone struct {
		result *service.ProcessResult
		err    error
	}
	done := make(chan batchDone, 1)
	go func() {
		result, err := svc.ProcessDir(ctx, dir, opts)
		if err != nil {
			task.Fail(err)
		} else {
			task.Complete(0, result)
		}
		done <- batchDone{result: result, err: err}
	}()

	showPlain := !interactive
	if interactive {
		quit, err := runBatchProgress(task, opts.DryRun)
		if err != nil {
			return err
		}
		// The final UI frame already carries the summary unless the
		// user dismissed the display early.
		showPlain = quit
	}

	d := <-done
	if d.err != nil {
		return d.err
	}
	if showPlain {
		printBatchResult(d.result, opts.DryRun)
	}
	return nil
}

func printBatchResult(result *service.ProcessResult, dryRun bool) {
	fmt.Printf("Files processed: %d\n", result.FilesProcessed)
	fmt.Printf("Files skipped:   %d\n", result.FilesSkipped)
	if dryRun {
		fmt.Println("Dry run, nothing saved.")
	} else {
		fmt.Printf("Reports saved:   %d\n", result.ReportsSaved)
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nFailures (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
	}
}
