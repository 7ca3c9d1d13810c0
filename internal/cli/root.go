package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dxvk-studio/dxvk-studio/internal/branding"
	"github.com/dxvk-studio/dxvk-studio/internal/config"
	"github.com/dxvk-studio/dxvk-studio/internal/deploy"
	"github.com/dxvk-studio/dxvk-studio/internal/logging"
	"github.com/dxvk-studio/dxvk-studio/internal/shimcache"
	"github.com/dxvk-studio/dxvk-studio/internal/userdata"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` inspects Windows game executables, keeps a local cache of DXVK
builds and installs the matching DLLs into game directories.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		logging.Setup(verbosity, config.LogLevel())
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

// newManager builds a cache manager from the loaded configuration.
func newManager() *shimcache.Manager {
	opts := []shimcache.Option{
		shimcache.WithCatalogTTL(config.CatalogTTL()),
		shimcache.WithLogger(logging.GetLogger("shimcache")),
	}
	if mirror := config.Mirror(); mirror != "" {
		opts = append(opts, shimcache.WithMirror(mirror))
	}
	if token := config.GitHubToken(); token != "" {
		opts = append(opts, shimcache.WithToken(token))
	}
	return shimcache.New(userdata.GetCacheRoot(config.CacheDir()), opts...)
}

// newEngine builds a deployment engine from the loaded configuration.
func newEngine() *deploy.Engine {
	return deploy.New(
		deploy.WithLogger(logging.GetLogger("deploy")),
		deploy.WithPolicy(deploy.NewProtectedPathPolicy(config.ProtectedPaths()...)),
		deploy.WithRunningCheck(config.CheckRunning()),
	)
}

// resolveVariant returns the --variant flag value or the configured default.
func resolveVariant(flag string) (shimcache.Variant, error) {
	if flag == "" {
		flag = config.DefaultVariant()
	}
	if flag == "" {
		return shimcache.VariantStandard, nil
	}
	return shimcache.ParseVariant(flag)
}
