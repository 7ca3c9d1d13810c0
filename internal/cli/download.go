package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dxvk-studio/dxvk-studio/internal/logging"
	"github.com/dxvk-studio/dxvk-studio/internal/shimcache"
)

var downloadVariant string

func init() {
	downloadCmd.Flags().StringVar(&downloadVariant, "variant", "", "Package variant (standard, async, gplasync)")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download [tag]",
	Short: "Download and unpack a release into the cache",
	Long: `Downloads a release archive and unpacks it into the package cache. Without a tag,
or when the tag is not found, the newest release is used.

  dxvk-studio download                      # newest standard build
  dxvk-studio download v2.3 --variant async`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, err := resolveVariant(downloadVariant)
		if err != nil {
			return err
		}
		tag := ""
		if len(args) == 1 {
			tag = args[0]
		}

		dir, err := downloadWithProgress(cmd.Context(), newManager(), variant, tag)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("Downloaded"), pathStyle.Render(dir))
		return nil
	},
}

// downloadWithProgress runs a download with a progress bar on interactive
// terminals and plain status lines otherwise.
func downloadWithProgress(ctx context.Context, m *shimcache.Manager, variant shimcache.Variant, tag string) (string, error) {
	defer logging.LogOperationStart(logging.GetLogger("cli"), "download")()

	label := fmt.Sprintf("Downloading %s", variant)
	if tag != "" {
		label += " " + tag
	}

	if !isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s...\n", label)
		return m.Download(ctx, variant, tag, nil)
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle(label).
		WithWriter(os.Stderr).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return m.Download(ctx, variant, tag, nil)
	}

	shown := 0
	dir, err := m.Download(ctx, variant, tag, func(percent int) {
		if percent > shown {
			bar.Add(percent - shown)
			shown = percent
		}
	})
	_, _ = bar.Stop()
	return dir, err
}
