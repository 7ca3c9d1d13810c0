package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	releasesVariant string
	releasesRefresh bool
	releasesJSON    bool
)

func init() {
	releasesCmd.Flags().StringVar(&releasesVariant, "variant", "", "Package variant (standard, async, gplasync)")
	releasesCmd.Flags().BoolVar(&releasesRefresh, "refresh", false, "Ignore the cached catalog and query the release API")
	releasesCmd.Flags().BoolVar(&releasesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(releasesCmd)
}

var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List downloadable releases for a variant",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, err := resolveVariant(releasesVariant)
		if err != nil {
			return err
		}

		releases, err := newManager().ListRemoteReleases(cmd.Context(), variant, releasesRefresh)
		if err != nil {
			return err
		}

		if releasesJSON {
			return printJSON(cmd.OutOrStdout(), releases)
		}
		if len(releases) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No downloadable releases for %s.\n", variant)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TAG\tPUBLISHED\tASSET")
		for _, r := range releases {
			published := "-"
			if !r.Published.IsZero() {
				published = r.Published.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Tag, published, r.AssetName)
		}
		return w.Flush()
	},
}
