// Command taxctl validates rule sets and runs tax computations from JSON input files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/username/ustax/src/logger"
	"github.com/username/ustax/src/services"
)

type options struct {
	rulesDir string
	logLevel string
	format   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "taxctl",
		Short: "US federal and state income tax engine",
		Long: `taxctl computes federal and jurisdiction income tax from JSON input files
and validates rule-set files before they are deployed.

Amounts in input files are integer cents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitTextLogger(cmd.ErrOrStderr(), opts.logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.rulesDir, "rules-dir", os.Getenv("RULES_DIR"), "Directory of extra YAML rule sets")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "o", "text", "Output format: text, json or csv")

	rootCmd.AddCommand(
		newValidateCmd(opts),
		newFederalCmd(opts),
		newStateCmd(opts),
		newCompareCmd(opts),
		newJurisdictionsCmd(opts),
	)
	return rootCmd
}

// service loads the catalog, including --rules-dir, and builds an uncached service.
func (o *options) service() (services.TaxService, error) {
	catalog, err := services.LoadCatalog(o.rulesDir)
	if err != nil {
		return nil, err
	}
	return services.NewTaxService(catalog, nil, nil, 0), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
