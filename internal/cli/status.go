package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dxvk-studio/dxvk-studio/internal/deploy"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status <game-dir>",
	Short: "Show whether DXVK is installed in a game directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newEngine().Status(args[0])
		if statusJSON {
			return printJSON(cmd.OutOrStdout(), st)
		}
		renderStatus(cmd.OutOrStdout(), st)
		return nil
	},
}

func renderStatus(w io.Writer, st *deploy.Status) {
	if !st.Installed {
		field(w, "Installed", mutedStyle.Render("no"))
	} else {
		field(w, "Installed", successStyle.Render("yes"))
		field(w, "Directory", pathStyle.Render(st.Directory))
		field(w, "Files", strings.Join(st.Files, ", "))
	}
	if rec := st.Record; rec != nil {
		pkg := "unknown package"
		if rec.Variant != "" {
			pkg = fmt.Sprintf("%s %s", rec.Variant, rec.Version)
		}
		field(w, "Package", pkg)
		field(w, "Target", fmt.Sprintf("%s %s", rec.Architecture, rec.APIGeneration))
		field(w, "Installed at", rec.InstalledAt.Local().Format("2006-01-02 15:04"))
	}
	settings := "none"
	if st.Settings {
		settings = deploy.SettingsFileName
	}
	field(w, "Settings", settings)
}
