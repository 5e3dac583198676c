package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olcbio/nastools/internal/config"
	"github.com/olcbio/nastools/internal/deliver"
	"github.com/olcbio/nastools/internal/filelock"
	"github.com/olcbio/nastools/internal/history"
	"github.com/olcbio/nastools/internal/logger"
	"github.com/olcbio/nastools/internal/resolve"
)

// NewRetrieveCommand creates the retrieve command
func NewRetrieveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Locate and copy or link sequence files for a list of SEQ IDs",
		Long: `Locate FASTQ or FASTA files on the NAS for the SEQ IDs listed in the
given file, then copy them or create relative symbolic links to them in the
output directory.

Files already present in the output directory are skipped, never
overwritten. SEQ IDs with no files in any search root are reported at the
end of the run; they do not abort the run and do not change the exit code.
Only configuration problems (unreachable NAS root, unreadable SEQ ID file,
output directory locked by another retrieval) are fatal.

Examples:
  nastools retrieve --file seqids.txt --outdir ./sequences --type fastq
  nastools retrieve -f seqids.txt -o ./assemblies -t fasta --copy
  nastools retrieve -f seqids.txt -o ./sequences -t fastq --verbose`,
		RunE: retrieveCommand,
	}

	cmd.Flags().StringP("file", "f", "", "File containing the list of SEQ IDs to retrieve")
	cmd.Flags().StringP("outdir", "o", "", "Directory in which sequence files are copied/linked")
	cmd.Flags().StringP("type", "t", "", "Format of files to retrieve (fastq or fasta)")
	cmd.Flags().BoolP("copy", "c", false, "Copy the files instead of creating relative symlinks")
	cmd.Flags().BoolP("verbose", "v", false, "Enable debug messages")
	cmd.Flags().String("config", "", "Path to config file (default: .nastools/config.yaml)")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("outdir")
	cmd.MarkFlagRequired("type")

	return cmd
}

// retrieveCommand implements the retrieve command logic
func retrieveCommand(cmd *cobra.Command, args []string) error {
	seqIDFile, _ := cmd.Flags().GetString("file")
	outDir, _ := cmd.Flags().GetString("outdir")
	category, _ := cmd.Flags().GetString("type")
	copyFlag, _ := cmd.Flags().GetBool("copy")
	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, ok := cfg.Categories[category]; !ok {
		return fmt.Errorf("unknown file type %q, configured types: %s",
			category, strings.Join(cfg.CategoryNames(), ", "))
	}

	logLevel := "info"
	if verbose {
		logLevel = "debug"
	}
	log := logger.NewConsoleLogger(cmd.OutOrStdout(), logLevel)

	seqIDs, err := ParseSeqIDFile(seqIDFile)
	if err != nil {
		return err
	}
	if len(seqIDs) == 0 {
		return fmt.Errorf("no SEQ IDs found in %s", seqIDFile)
	}

	sorted := append([]string(nil), seqIDs...)
	sort.Strings(sorted)
	log.LogDebug(fmt.Sprintf("SEQ IDs provided: %s", strings.Join(sorted, ", ")))
	log.LogDebug(fmt.Sprintf("output directory: %s", outDir))
	log.LogDebug(fmt.Sprintf("copy flag: %v", copyFlag))
	log.LogDebug(fmt.Sprintf("file format: %s", category))

	resolver := resolve.New(cfg, log, cmd.ErrOrStderr())
	if err := resolver.VerifyRoots(); err != nil {
		return err
	}

	log.LogInfo("retrieving requested files")
	result, err := resolver.Resolve(seqIDs, category)
	if err != nil {
		return err
	}

	deliverer, err := deliver.New(outDir, copyFlag, log)
	if err != nil {
		return err
	}

	lock := filelock.NewOutputLock(outDir)
	acquired, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("output directory %s is locked by another retrieval", outDir)
	}
	defer lock.Unlock()

	delivered := 0
	for _, seqID := range sortedKeys(result.Found) {
		placed, err := deliverer.Deliver(result.Found[seqID])
		delivered += placed
		if err != nil {
			return err
		}
	}

	if len(result.Missing) > 0 {
		log.LogError(resolve.FormatMissing(result.Missing))
	}

	recordRun(cfg, log, history.Run{
		Category:   category,
		Mode:       mode(copyFlag),
		Requested:  len(seqIDs),
		Found:      len(result.Found),
		Missing:    len(result.Missing),
		Delivered:  delivered,
		MissingIDs: result.Missing,
		OutDir:     outDir,
	})

	log.LogInfo(fmt.Sprintf("retrieve complete: %d of %d SEQ IDs resolved, %d file(s) delivered",
		len(result.Found), len(seqIDs), delivered))

	return nil
}

// loadConfig loads configuration from an explicit path or the default
// .nastools/config.yaml in the working directory.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// recordRun appends the run to the history database. History failures are
// warnings: the audit log must never break a retrieval that already
// happened.
func recordRun(cfg *config.Config, log logger.Logger, run history.Run) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("could not open run history: %v", err))
		return
	}
	defer store.Close()

	if _, err := store.RecordRun(run); err != nil {
		log.LogWarn(fmt.Sprintf("could not record run history: %v", err))
	}
}

// mode names the delivery mode for history records.
func mode(copyFlag bool) string {
	if copyFlag {
		return "copy"
	}
	return "link"
}

// sortedKeys returns the map's keys in sorted order for deterministic
// delivery.
func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
