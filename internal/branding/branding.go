// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Forks rename the tool or point variants at other
// release repositories by editing that file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string            `yaml:"cli_name"`
	DisplayName  string            `yaml:"display_name"`
	Description  string            `yaml:"description"`
	DataDir      string            `yaml:"data_dir"`
	EnvPrefix    string            `yaml:"env_prefix"`
	GoModule     string            `yaml:"go_module"`
	GitHubRepo   string            `yaml:"github_repo"`
	VariantRepos map[string]string `yaml:"variant_repos"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:     "dxvk-studio",
			DisplayName: "DXVK Studio",
			Description: "Manage DXVK shim packages for installed games",
			DataDir:     "dxvk-studio",
			EnvPrefix:   "DXVK_STUDIO",
			GoModule:    "github.com/dxvk-studio/dxvk-studio",
			GitHubRepo:  "Zendevve/dxvk-studio",
			VariantRepos: map[string]string{
				"standard": "doitsujin/dxvk",
				"async":    "Sporif/dxvk-async",
				"gplasync": "Ph42oN/dxvk-gplasync",
			},
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "dxvk-studio").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// DataDir returns the directory name used under the XDG config, data and
// state homes (e.g., "dxvk-studio").
func DataDir() string { load(); return defaults.DataDir }

// EnvPrefix returns the environment variable prefix (e.g., "DXVK_STUDIO").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// GitHubRepo returns the "owner/repo" string of the tool itself.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// VariantRepo returns the "owner/repo" release source for a shim variant
// name, or "" when the variant is unknown.
func VariantRepo(variant string) string {
	load()
	return defaults.VariantRepos[variant]
}

// EnvVar returns a fully qualified env var name, e.g., EnvVar("cache_dir") → "DXVK_STUDIO_CACHE_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
