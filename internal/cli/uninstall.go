package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dxvk-studio/dxvk-studio/internal/logging"
)

var uninstallJSON bool

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(uninstallCmd)
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <game-dir>",
	Short: "Remove DXVK DLLs from a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logging.LogOperationStart(logging.GetLogger("cli"), "uninstall")()

		res, err := newEngine().Uninstall(cmd.Context(), args[0])
		if uninstallJSON {
			if jerr := printJSON(cmd.OutOrStdout(), res); jerr != nil {
				return jerr
			}
		} else if res.Success {
			w := cmd.OutOrStdout()
			if len(res.RemovedFiles) == 0 {
				fmt.Fprintln(w, "Nothing to remove.")
			} else {
				field(w, "Directory", pathStyle.Render(res.TargetDir))
				field(w, "Removed", strings.Join(res.RemovedFiles, ", "))
				fmt.Fprintln(w, successStyle.Render("Uninstalled"))
			}
		}
		if err != nil {
			return err
		}
		if !res.Success {
			return failure(res.Kind, res.Error)
		}
		return nil
	},
}
