package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dxvk-studio/dxvk-studio/internal/branding"
	"github.com/dxvk-studio/dxvk-studio/internal/config"
	"github.com/dxvk-studio/dxvk-studio/internal/logging"
	"github.com/dxvk-studio/dxvk-studio/internal/userdata"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Create missing directories")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local directories " + branding.CLIName() + " uses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Directories:")
		dirs := map[string]string{
			"config": config.Dir(),
			"cache":  userdata.GetCacheRoot(config.CacheDir()),
			"state":  userdata.GetStateDir(),
		}
		problems := userdata.CheckDirs(w, dirs, []string{"config", "cache", "state"}, doctorFix)

		fmt.Fprintln(w, "\nFiles:")
		fmt.Fprintf(w, "  config file: %s\n", config.FilePath())
		fmt.Fprintf(w, "  log file:    %s\n", logging.LogFilePath())

		fmt.Fprintln(w, "\nProtected prefixes:")
		for _, p := range newEngine().Policy().Prefixes() {
			fmt.Fprintf(w, "  %s\n", p)
		}

		if problems > 0 {
			fmt.Fprintf(os.Stderr, "\n%d problem(s) found", problems)
			if !doctorFix {
				fmt.Fprint(os.Stderr, "; run with --fix to create missing directories")
			}
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("%d problem(s) found", problems)
		}
		return nil
	},
}
