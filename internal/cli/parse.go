package cli

import (
	"time"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/capacity"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <cell-text>",
	Short: "Parse capacity cell text offline and show the decision",
	Long: `Parse a capacity cell exactly as it would be read from the dashboard,
e.g. "1.5M / 2.0M" or "19K30K", and print the decision without fetching
the page or sending alerts.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().String("vault", "", "Vault name used in the message (default from config)")
	parseCmd.Flags().StringP("output", "o", "text", "Output format (text, json, yaml)")
	parseCmd.Flags().Float64("threshold", 0, "Override the alert threshold")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	vault, _ := cmd.Flags().GetString("vault")
	if vault == "" {
		vault = cfg.Monitor.Vault
	}
	output, _ := cmd.Flags().GetString("output")
	if err := applyThreshold(cmd, cfg); err != nil {
		return err
	}

	reading := capacity.ParseReading(args[0], time.Now())
	return writeOutcome(cmd.OutOrStdout(), newPolicy(cfg).Decide(vault, reading), output)
}
