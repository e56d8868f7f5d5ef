package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sskr",
	Short: "Split and recover secrets under a two-level threshold policy",
	Long: `sskr splits a secret into shares, arranged into groups, such that a
threshold of groups - each itself requiring a threshold of its own
members - is needed to recover the original secret. No smaller
combination reveals anything.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}
