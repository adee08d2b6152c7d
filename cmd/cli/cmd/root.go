// Package cmd provides the CLI commands for platform-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"platform-cost/internal/config"
	"platform-cost/internal/logging"
)

var (
	cfgFile     string
	pricingFile string
	verbose     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "platform-cost",
	Short: "Estimate data-platform service costs",
	Long: `platform-cost evaluates declarative cost formulas for data-service
categories (transport, storage, extraction, enrichment, modeling,
search, exploration) against one or more system profiles.

Examples:
  platform-cost calc baseline --set transfer_gb=1500
  platform-cost compare baseline dense --format json
  platform-cost systems`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (json, yaml, or hcl)")
	rootCmd.PersistentFlags().StringVar(&pricingFile, "pricing", "", "pricing configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(systemsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// loadPricing resolves the pricing file from the flag or configuration
func loadPricing() (*config.Pricing, error) {
	path := pricingFile
	if path == "" {
		path = config.Get().Pricing.Path
	}
	return config.LoadPricing(path)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("platform-cost version 0.1.0")
	},
}

// configCmd shows the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		fmt.Printf("pricing file: %s\n", cfg.Pricing.Path)
		fmt.Printf("currency:     %s\n", cfg.Pricing.Currency)
		fmt.Printf("format:       %s\n", cfg.Output.DefaultFormat)
		fmt.Printf("precision:    %d\n", cfg.Output.Precision)
		fmt.Printf("server addr:  %s\n", cfg.Server.Addr)
		fmt.Printf("log level:    %s\n", cfg.Logging.Level)
		return nil
	},
}
