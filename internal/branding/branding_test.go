package branding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.yaml.in/yaml/v3"
)

func TestEmbeddedIdentity(t *testing.T) {
	assert.Equal(t, "dxvk-studio", CLIName())
	assert.Equal(t, "DXVK Studio", DisplayName())
	assert.Equal(t, "dxvk-studio", DataDir())
	assert.Equal(t, "DXVK_STUDIO", EnvPrefix())
	assert.NotEmpty(t, Description())
}

func TestVariantRepo(t *testing.T) {
	tests := map[string]string{
		"standard": "doitsujin/dxvk",
		"async":    "Sporif/dxvk-async",
		"gplasync": "Ph42oN/dxvk-gplasync",
		"unknown":  "",
	}
	for variant, want := range tests {
		assert.Equal(t, want, VariantRepo(variant), variant)
	}
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "DXVK_STUDIO_CACHE_DIR", EnvVar("cache_dir"))
	assert.Equal(t, "DXVK_STUDIO_CONFIG_HOME", EnvVar("CONFIG_HOME"))
}

func TestEmbeddedFileParses(t *testing.T) {
	var b brand
	assert.NoError(t, yaml.Unmarshal(rawBranding, &b))
	assert.Len(t, b.VariantRepos, 3)
}
