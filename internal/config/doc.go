// Package config manages user-level settings stored in config.yaml under the
// XDG config home. It loads the file through Viper, overlays DXVK_STUDIO_*
// environment variables, and exposes typed accessors for the keys the cache
// manager and the deployment engine consume.
package config
