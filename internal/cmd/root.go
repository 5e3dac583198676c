package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for nastools
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nastools",
		Short: "Retrieve FASTQ or FASTA files from the NAS by SEQ ID",
		Long: `nastools locates FASTQ or FASTA sequence files on the NAS for a list of
SEQ IDs and copies them, or creates relative symbolic links to them, in an
output directory. SEQ IDs with no files in any configured search root are
reported at the end of the run.

Search roots and file categories are read from .nastools/config.yaml when
present; the defaults describe the conventional NAS layout.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRetrieveCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
