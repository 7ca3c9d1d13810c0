package deploy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// SettingsFileName is the settings document the shim reads at startup.
const SettingsFileName = "dxvk.conf"

// ApplySettings places a settings document in gameDir as dxvk.conf.
// .conf files are copied verbatim. TOML and YAML documents are flattened
// into dotted keys and rendered as sorted "key = value" lines.
func (e *Engine) ApplySettings(gameDir, docPath string) (string, error) {
	if err := e.policy.Check(gameDir); err != nil {
		return "", err
	}

	data, err := afero.ReadFile(e.fs, docPath)
	if err != nil {
		return "", fmt.Errorf("reading settings document: %w", err)
	}

	var out []byte
	switch ext := strings.ToLower(filepath.Ext(docPath)); ext {
	case ".conf":
		out = data
	case ".toml":
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("%w: parsing TOML: %v", ErrUnsupportedSettings, err)
		}
		out = renderConf(doc)
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("%w: parsing YAML: %v", ErrUnsupportedSettings, err)
		}
		out = renderConf(doc)
	default:
		return "", fmt.Errorf("%w: %q (want .conf, .toml, .yaml or .yml)", ErrUnsupportedSettings, ext)
	}

	dest := filepath.Join(gameDir, SettingsFileName)
	if err := afero.WriteFile(e.fs, dest, out, 0644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", ErrInstallationFailed, dest, err)
	}
	e.logger.Info().Str("path", dest).Msg("Settings applied")
	return dest, nil
}

// RemoveSettings deletes dxvk.conf from gameDir. A missing file is fine.
func (e *Engine) RemoveSettings(gameDir string) (bool, error) {
	if err := e.policy.Check(gameDir); err != nil {
		return false, err
	}
	dest := filepath.Join(gameDir, SettingsFileName)
	if err := e.fs.Remove(dest); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: removing %s: %w", ErrInstallationFailed, dest, err)
	}
	e.logger.Info().Str("path", dest).Msg("Settings removed")
	return true, nil
}

func renderConf(doc map[string]any) []byte {
	flat := map[string]string{}
	flatten("", doc, flat)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s = %s\n", k, flat[k])
	}
	return []byte(b.String())
}

func flatten(prefix string, v any, out map[string]string) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, out)
		}
	default:
		if prefix != "" {
			out[prefix] = confValue(val)
		}
	}
}

// confValue formats a scalar the way dxvk.conf expects: booleans as
// True/False, lists comma-joined.
func confValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "True"
		}
		return "False"
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = confValue(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
