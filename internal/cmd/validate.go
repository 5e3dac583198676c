package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and check that all search roots are reachable",
		Long: `Load the configuration, validate categories, roots and patterns, and
check that every configured search root is a mounted, reachable directory.

Exit code: 0 if valid, 1 if errors found`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return validateConfig(configPath, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .nastools/config.yaml)")

	return cmd
}

// validateConfig performs the validation and writes per-item results to
// output; it returns an error if anything failed so the command exits
// non-zero.
func validateConfig(configPath string, output io.Writer) error {
	var errors []string

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(output, "✗ Failed to load configuration\n")
		fmt.Fprintf(output, "  Error: %v\n", err)
		return err
	}
	fmt.Fprintf(output, "✓ Configuration loaded\n")

	if err := cfg.Validate(); err != nil {
		errors = append(errors, err.Error())
		fmt.Fprintf(output, "✗ %v\n", err)
	} else {
		fmt.Fprintf(output, "✓ Categories and patterns are valid\n")
	}

	// Check each root individually so the operator sees exactly which
	// mount is absent
	for _, root := range cfg.Roots {
		info, err := os.Stat(root.Path)
		if err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("root %s is not reachable", root.Path))
			fmt.Fprintf(output, "✗ %s is not reachable (is the NAS mounted?)\n", root.Path)
			continue
		}
		fmt.Fprintf(output, "✓ %s is reachable\n", root.Path)
	}

	// Summarise the category coverage so unused roots stand out
	names := cfg.CategoryNames()
	sort.Strings(names)
	for _, name := range names {
		patterns := 0
		for _, root := range cfg.Roots {
			patterns += len(root.Patterns[name])
		}
		if patterns == 0 {
			fmt.Fprintf(output, "✗ category %q has no patterns under any root\n", name)
			errors = append(errors, fmt.Sprintf("category %q has no patterns", name))
			continue
		}
		fmt.Fprintf(output, "✓ category %q covered by %d pattern(s)\n", name, patterns)
	}

	if len(errors) == 0 {
		fmt.Fprintf(output, "\n✓ Configuration is valid!\n")
		return nil
	}

	fmt.Fprintf(output, "\nFound %d validation error(s)!\n", len(errors))
	return fmt.Errorf("validation failed with %d error(s)", len(errors))
}
