package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dxvk-studio/dxvk-studio/internal/deploy"
	"github.com/dxvk-studio/dxvk-studio/internal/logging"
	"github.com/dxvk-studio/dxvk-studio/internal/shimcache"
)

var (
	installPackage string
	installVariant string
	installVersion string
	installJSON    bool
)

func init() {
	installCmd.Flags().StringVar(&installPackage, "package", "", "Install from this package directory instead of the cache")
	installCmd.Flags().StringVar(&installVariant, "variant", "", "Package variant (standard, async, gplasync)")
	installCmd.Flags().StringVar(&installVersion, "version", "", "Cached version to install (downloaded when missing)")
	installCmd.Flags().BoolVar(&installJSON, "json", false, "Output in JSON format")
	installCmd.MarkFlagsMutuallyExclusive("package", "variant")
	installCmd.MarkFlagsMutuallyExclusive("package", "version")
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install <game-dir> <exe>",
	Short: "Install DXVK DLLs for a game",
	Long: `Analyzes the game executable and copies the DLLs it needs next to it.

Without --package the newest cached build of the variant is used, downloading
one first if the cache has none.

  dxvk-studio install ~/Games/Foo ~/Games/Foo/bin/foo.exe
  dxvk-studio install ~/Games/Foo ~/Games/Foo/foo.exe --variant gplasync --version v2.3-1`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		gameDir, exe := args[0], args[1]
		defer logging.LogOperationStart(logging.GetLogger("cli"), "install")()

		pkgPath := installPackage
		if pkgPath == "" {
			variant, err := resolveVariant(installVariant)
			if err != nil {
				return err
			}
			pkgPath, err = resolvePackage(cmd.Context(), newManager(), variant, installVersion)
			if err != nil {
				return err
			}
		}

		res, err := newEngine().Install(cmd.Context(), gameDir, exe, pkgPath)
		if installJSON {
			if jerr := printJSON(cmd.OutOrStdout(), res); jerr != nil {
				return jerr
			}
		} else {
			renderInstall(cmd.OutOrStdout(), res)
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

// downloadFunc fetches a package when the cache cannot satisfy a request.
type downloadFunc func(ctx context.Context, m *shimcache.Manager, variant shimcache.Variant, tag string) (string, error)

var fetchPackage downloadFunc = downloadWithProgress

// resolvePackage finds a cached package for variant and version, downloading
// it when missing. An empty version means the newest cached build.
func resolvePackage(ctx context.Context, m *shimcache.Manager, variant shimcache.Variant, version string) (string, error) {
	var (
		pkg *shimcache.CachedPackage
		err error
	)
	if version == "" {
		pkg, err = m.Latest(variant)
	} else {
		pkg, err = m.Find(variant, version)
	}
	if err != nil {
		return "", err
	}
	if pkg != nil {
		log.Debug().Str("path", pkg.Path).Msg("Using cached package")
		return pkg.Path, nil
	}
	return fetchPackage(ctx, m, variant, version)
}

func renderInstall(w io.Writer, res *deploy.InstallResult) {
	if res.Analysis != nil && res.Analysis.Valid {
		api := res.Generation.String()
		if !res.GenerationDetected {
			api += mutedStyle.Render(" (default)")
		}
		field(w, "Architecture", string(res.Analysis.Architecture))
		field(w, "API", api)
	}
	if !res.Success {
		return
	}
	field(w, "Target", pathStyle.Render(res.TargetDir))
	if len(res.InstalledFiles) == 0 {
		fmt.Fprintln(w, warningStyle.Render("No files installed: the package has none of the required DLLs."))
		return
	}
	field(w, "Installed", strings.Join(res.InstalledFiles, ", "))
	if len(res.SkippedFiles) > 0 {
		field(w, "Not in package", mutedStyle.Render(strings.Join(res.SkippedFiles, ", ")))
	}
	if len(res.RemovedStale) > 0 {
		field(w, "Removed", strings.Join(res.RemovedStale, ", "))
	}
	fmt.Fprintln(w, successStyle.Render("Installed"))
}
