package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
	"github.com/spf13/cobra"
)

var vaultsCmd = &cobra.Command{
	Use:   "vaults",
	Short: "Manage the vault watch list",
}

var vaultsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a watched vault",
	Args:  cobra.ExactArgs(1),
	RunE:  runVaultsAdd,
}

var vaultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched vaults",
	Args:  cobra.NoArgs,
	RunE:  runVaultsList,
}

var vaultsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a vault from the watch list",
	Args:  cobra.ExactArgs(1),
	RunE:  runVaultsRemove,
}

var vaultsEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Resume scheduled checks for a vault",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setVaultEnabled(cmd, args[0], true) },
}

var vaultsDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Pause scheduled checks for a vault",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setVaultEnabled(cmd, args[0], false) },
}

func init() {
	rootCmd.AddCommand(vaultsCmd)
	vaultsCmd.AddCommand(vaultsAddCmd, vaultsListCmd, vaultsRemoveCmd, vaultsEnableCmd, vaultsDisableCmd)

	vaultsAddCmd.Flags().String("label", "", "Display label")
	vaultsAddCmd.Flags().Bool("disabled", false, "Add without scheduling checks")
}

func runVaultsAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	label, _ := cmd.Flags().GetString("label")
	disabled, _ := cmd.Flags().GetBool("disabled")

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	vault := &model.Vault{
		Name:    args[0],
		Label:   label,
		Enabled: !disabled,
	}
	if err := store.AddVault(cmd.Context(), vault); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Vault watched:\n")
	fmt.Fprintf(out, "  Name:     %s\n", vault.Name)
	if vault.Label != "" {
		fmt.Fprintf(out, "  Label:    %s\n", vault.Label)
	}
	fmt.Fprintf(out, "  Enabled:  %t\n", vault.Enabled)

	return nil
}

func runVaultsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	vaults, err := store.ListVaults(cmd.Context(), false)
	if err != nil {
		return err
	}

	if len(vaults) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No watched vaults. Only %s is checked. Use 'vcg vaults add' to watch more.\n", cfg.Monitor.Vault)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tLABEL\tENABLED\tUPDATED\n")
	for _, v := range vaults {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", v.Name, v.Label, v.Enabled, v.UpdatedAt.UTC().Format("2006-01-02 15:04"))
	}
	w.Flush()

	return nil
}

func runVaultsRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RemoveVault(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Vault %s removed from the watch list\n", args[0])
	return nil
}

func setVaultEnabled(cmd *cobra.Command, name string, enabled bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetEnabled(cmd.Context(), name, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Vault %s %s\n", name, state)
	return nil
}
