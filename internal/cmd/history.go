package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/olcbio/nastools/internal/history"
)

// NewHistoryCommand creates and returns the history subcommand
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent retrieval runs",
		Long: `List recent retrieval runs recorded in the run-history database:
when they ran, the requested file type and delivery mode, and how many SEQ
IDs resolved, were missing, and how many files were delivered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			limit, _ := cmd.Flags().GetInt("limit")
			return showHistory(configPath, limit, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	cmd.Flags().String("config", "", "Path to config file (default: .nastools/config.yaml)")

	return cmd
}

// showHistory prints the recent runs table to output.
func showHistory(configPath string, limit int, output io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("run history is disabled in configuration")
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(output, "No runs recorded yet.")
		return nil
	}

	colorOutput := isatty.IsTerminal(os.Stdout.Fd())

	header := fmt.Sprintf("%-19s  %-5s  %-4s  %9s  %5s  %7s  %9s  %s",
		"STARTED", "TYPE", "MODE", "REQUESTED", "FOUND", "MISSING", "DELIVERED", "OUTDIR")
	if colorOutput {
		header = color.New(color.Bold).Sprint(header)
	}
	fmt.Fprintln(output, header)

	for _, run := range runs {
		missing := fmt.Sprintf("%7d", run.Missing)
		if colorOutput && run.Missing > 0 {
			missing = color.New(color.FgRed).Sprint(missing)
		}

		fmt.Fprintf(output, "%-19s  %-5s  %-4s  %9d  %5d  %s  %9d  %s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Category, run.Mode,
			run.Requested, run.Found, missing, run.Delivered, run.OutDir)

		if run.Missing > 0 && len(run.MissingIDs) > 0 {
			fmt.Fprintf(output, "%21smissing: %s\n", "", strings.Join(run.MissingIDs, ", "))
		}
	}

	return nil
}
