// Package main provides the xcltk command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
	ExitUnknown = 3
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var verbose bool

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A nil slice would make cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}

	root := newRootCmd()
	root.SetArgs(args)

	// Resolve the command first so an unknown command gets its own exit
	// status, distinct from usage and runtime errors.
	if _, _, err := root.Find(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		root.Usage()
		return ExitUnknown
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "xcltk",
		Short:   "Toolkit for XClone preprocessing",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Long: `xcltk prepares single-cell genotype data for XClone: it reconciles
VCF records against a reference genome, converts region file formats,
and aggregates phased SNPs into haplotype blocks.`,
		Example: `  # Fix REF/ALT/GT against an indexed reference genome
  xcltk fixref -i input.vcf.gz -r genome.fa -o fixed.vcf.gz

  # Convert a GFF region file to BED
  xcltk convert --from gff --to bed -i regions.gff -o regions.bed

  # Aggregate phased SNPs into haplotype blocks
  xcltk phase_snp -i phased.vcf.gz -b blocks.bed -o blocks.tsv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Help()
			return usagef("a command is required")
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug diagnostics on stderr")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	cmd.AddCommand(newFixrefCmd())
	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newPhaseSNPCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.xcltk.yaml if present. A missing config file is not
// an error; a malformed one is.
func initConfig() error {
	viper.SetConfigName(".xcltk")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	viper.SetDefault("fixref.threads", 0)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// usageError marks errors caused by bad invocation rather than a failed run.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}
