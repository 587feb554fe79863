package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [vault]",
	Short: "Check a vault's remaining capacity once",
	Long: `Fetch the vault row from the dashboard, parse its capacity cell and
compare the remaining capacity against the threshold. Alerts are sent to
every enabled sink unless --dry-run is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("dry-run", false, "Decide without sending alerts")
	checkCmd.Flags().StringP("output", "o", "text", "Output format (text, json, yaml)")
	checkCmd.Flags().Float64("threshold", 0, "Override the alert threshold")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	output, _ := cmd.Flags().GetString("output")
	if err := applyThreshold(cmd, cfg); err != nil {
		return err
	}

	vault := cfg.Monitor.Vault
	if len(args) == 1 {
		vault = args[0]
	}

	logger := newLogger(cfg)
	pipeline, err := initPipeline(cfg, logger, nil, !dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		return writeOutcome(cmd.OutOrStdout(), pipeline.Evaluate(cmd.Context(), vault), output)
	}

	outcome, err := pipeline.Run(cmd.Context(), vault)
	if err != nil {
		return fmt.Errorf("check %s: %w", vault, err)
	}
	return writeOutcome(cmd.OutOrStdout(), outcome, output)
}
