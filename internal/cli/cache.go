package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dxvk-studio/dxvk-studio/internal/shimcache"
)

var cacheListJSON bool

func init() {
	cacheListCmd.Flags().BoolVar(&cacheListJSON, "json", false, "Output in JSON format")
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage downloaded packages",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()
		pkgs, err := m.ListCached()
		if err != nil {
			return err
		}

		if cacheListJSON {
			if pkgs == nil {
				pkgs = []shimcache.CachedPackage{}
			}
			return printJSON(cmd.OutOrStdout(), pkgs)
		}
		if len(pkgs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No cached packages in %s.\n", m.Root())
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "VARIANT\tVERSION\tARCH\tPATH")
		for _, p := range pkgs {
			arch := strings.Join(p.ArchitectureFolders, ",")
			if arch == "" {
				arch = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Variant, p.Version, arch, p.Path)
		}
		return w.Flush()
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <variant> <version>",
	Short: "Remove a cached package",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, err := shimcache.ParseVariant(args[0])
		if err != nil {
			return err
		}
		if err := newManager().Delete(variant, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", variant, args[1])
		return nil
	},
}
