// Package cmd - systems and export commands
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"platform-cost/internal/config"
)

// systemsCmd lists the configured system profiles
var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List configured system profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		pricing, err := loadPricing()
		if err != nil {
			return err
		}

		for _, id := range pricing.SystemIDs() {
			system := pricing.Systems[id]
			fmt.Printf("%-16s %s", id, system.Name)
			if system.Description != "" {
				fmt.Printf(" - %s", system.Description)
			}
			fmt.Printf(" (%d components)\n", len(system.Components))
		}
		return nil
	},
}

var exportOut string

// exportCmd writes a reproducible snapshot of pricing and variables
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a snapshot of the pricing configuration and variables",
	Long: `Write the full pricing configuration plus the variables given with
--set as a JSON snapshot. Importing the snapshot elsewhere reproduces
identical calculation results.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pricing, err := loadPricing()
		if err != nil {
			return err
		}

		vars, err := parseSetFlags(setVars)
		if err != nil {
			return err
		}

		data, err := config.ExportSnapshot(pricing, vars)
		if err != nil {
			return err
		}

		if exportOut == "" || exportOut == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(exportOut, data, 0644)
	},
}

func init() {
	exportCmd.Flags().StringArrayVar(&setVars, "set", nil, "set a variable (name=value), repeatable")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}
