package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dxvk-studio/dxvk-studio/internal/deploy"
)

func init() {
	settingsCmd.AddCommand(settingsApplyCmd)
	settingsCmd.AddCommand(settingsRemoveCmd)
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage a game's dxvk.conf",
}

var settingsApplyCmd = &cobra.Command{
	Use:   "apply <game-dir> <document>",
	Short: "Write a settings document to the game's dxvk.conf",
	Long: `Copies a .conf document verbatim, or converts a .toml / .yaml document into
dxvk.conf "key = value" lines. Nested tables become dotted keys.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, err := newEngine().ApplySettings(args[0], args[1])
		if err != nil {
			return failure(deploy.KindOf(err), err.Error())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", pathStyle.Render(dest))
		return nil
	},
}

var settingsRemoveCmd = &cobra.Command{
	Use:   "remove <game-dir>",
	Short: "Delete the game's dxvk.conf",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := newEngine().RemoveSettings(args[0])
		if err != nil {
			return failure(deploy.KindOf(err), err.Error())
		}
		if removed {
			fmt.Fprintln(cmd.OutOrStdout(), "Removed dxvk.conf")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No dxvk.conf present.")
		}
		return nil
	},
}
