// Package cli defines the Cobra command tree for the dxvk-studio CLI. Each
// file registers one top-level command with the root command. Commands
// delegate to the pe, shimcache and deploy packages and only handle flag
// parsing, output formatting and user interaction.
package cli
