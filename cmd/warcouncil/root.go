package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the CLI release version.
const Version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "warcouncil",
	Short: "Warcouncil is a multi-expert deliberation engine",
	Long: `Warcouncil convenes a panel of CLI-backed experts to deliberate a problem
statement through staged phases: intelligence gathering, assessment, courses
of action, adversarial review, voting, and a synthesized decision.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a warcouncil.yaml config file")
	rootCmd.PersistentFlags().String("root", "", "Directory holding war-table/ and campaign-archive/ (overrides config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}
