package deploy

import (
	"github.com/dxvk-studio/dxvk-studio/internal/pe"
)

// requiredFiles maps an API generation to the DLLs it needs.
var requiredFiles = map[pe.APIGeneration][]string{
	pe.Generation8:  {"d3d8.dll"},
	pe.Generation9:  {"d3d9.dll"},
	pe.Generation10: {"d3d10.dll", "d3d10_1.dll", "d3d10core.dll", "dxgi.dll"},
	pe.Generation11: {"d3d11.dll", "d3d10core.dll", "dxgi.dll"},
}

// DefaultGeneration is used when the analyzer found no markers.
const DefaultGeneration = pe.Generation11

// ManagedFiles is every file the engine may install, and therefore the only
// files it will ever remove.
var ManagedFiles = []string{
	"d3d8.dll",
	"d3d9.dll",
	"d3d10.dll",
	"d3d10_1.dll",
	"d3d10core.dll",
	"d3d11.dll",
	"dxgi.dll",
}

// RequiredFiles returns the file set for gen. Unknown generations get the
// generation-11 set.
func RequiredFiles(gen pe.APIGeneration) []string {
	files, ok := requiredFiles[gen]
	if !ok {
		files = requiredFiles[DefaultGeneration]
	}
	return append([]string(nil), files...)
}

// ArchFolder names the package subfolder for arch.
func ArchFolder(arch pe.Architecture) string {
	if arch.Is64Bit() {
		return "x64"
	}
	return "x32"
}

func isManaged(name string) bool {
	for _, f := range ManagedFiles {
		if f == name {
			return true
		}
	}
	return false
}
