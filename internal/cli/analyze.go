package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dxvk-studio/dxvk-studio/internal/deploy"
	"github.com/dxvk-studio/dxvk-studio/internal/pe"
)

var analyzeJSON bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <exe>",
	Short: "Show an executable's architecture and Direct3D version",
	Long: `Reads the executable header to find its CPU architecture and scans the image
for Direct3D library names to guess which API generation it uses.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis := pe.AnalyzeFile(afero.NewOsFs(), args[0])
		if analyzeJSON {
			if err := printJSON(cmd.OutOrStdout(), analysis); err != nil {
				return err
			}
		} else {
			renderAnalysis(cmd.OutOrStdout(), args[0], analysis)
		}
		if !analysis.Valid {
			return failure(deploy.KindInvalidExecutable, analysis.ErrorReason)
		}
		return nil
	},
}

func renderAnalysis(w io.Writer, path string, a *pe.Analysis) {
	field(w, "Executable", pathStyle.Render(path))
	if !a.Valid {
		field(w, "Valid", errorStyle.Render("no"))
		field(w, "Reason", a.ErrorReason)
		return
	}
	field(w, "Valid", successStyle.Render("yes"))
	field(w, "Architecture", string(a.Architecture))

	gen := a.APIGeneration.String()
	if !a.HasGeneration() {
		gen = warningStyle.Render("unknown") + mutedStyle.Render(fmt.Sprintf(" (install uses %s)", deploy.DefaultGeneration))
	}
	field(w, "API", gen)

	markers := "-"
	if len(a.DetectedMarkers) > 0 {
		markers = strings.Join(a.DetectedMarkers, ", ")
	}
	field(w, "Markers", markers)
	field(w, "Files", strings.Join(deploy.RequiredFiles(a.APIGeneration), ", "))
}
