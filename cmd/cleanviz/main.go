package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cleanviz/internal/config"
	"cleanviz/pkg/contracts"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "cleanviz",
		Short: "CleanViz - upload, clean, visualize and report on tabular data",
		Long: `CleanViz loads CSV, TSV and XLSX files, applies simple cleaning steps,
computes descriptive statistics and renders distribution, correlation, PCA
and volcano plots.

Run "cleanviz serve" for the web interface and JSON API, or
"cleanviz analyze" to process a single file from the command line.`,
		Version:       contracts.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetVersionTemplate(contracts.GetFullVersionString() + "\n")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config.yaml or configs/config.yaml when present)")

	loadConfig := func() (*config.Config, error) {
		return config.Load(cfgFile)
	}

	root.AddCommand(newServeCmd(loadConfig), newAnalyzeCmd(loadConfig))
	return root
}
