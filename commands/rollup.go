package commands

import (
	"github.com/spf13/cobra"
)

var rollupCmd = &cobra.Command{
	Use:   "rollup",
	Short: "Roll an activity field up per day, week or month",
	Long: `Loads every activities-YYYY.json file of --dir and reduces one numeric field
per calendar day. Days without activities are included with a zero value.`,
	Args: cobra.NoArgs,
	RunE: runRollup,
}

func init() {
	rootCmd.AddCommand(rollupCmd)
	addRollupFlags(rollupCmd)
}
