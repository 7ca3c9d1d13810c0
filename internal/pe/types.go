package pe

import "fmt"

// Architecture is the CPU architecture an executable was built for.
type Architecture string

const (
	ArchX86 Architecture = "x86"
	ArchX64 Architecture = "x64"
)

// Is64Bit reports whether a is the 64-bit architecture.
func (a Architecture) Is64Bit() bool { return a == ArchX64 }

// APIGeneration is the Direct3D major version an executable targets.
// The zero value means no generation was detected.
type APIGeneration int

const (
	GenerationUnknown APIGeneration = 0
	Generation8       APIGeneration = 8
	Generation9       APIGeneration = 9
	Generation10      APIGeneration = 10
	Generation11      APIGeneration = 11
)

// Generations lists the known generations from highest to lowest priority.
var Generations = []APIGeneration{Generation11, Generation10, Generation9, Generation8}

// String returns "d3d11", "d3d9", ... or "unknown".
func (g APIGeneration) String() string {
	if g == GenerationUnknown {
		return "unknown"
	}
	return fmt.Sprintf("d3d%d", int(g))
}

// Known reports whether g is one of the supported generations.
func (g APIGeneration) Known() bool {
	switch g {
	case Generation8, Generation9, Generation10, Generation11:
		return true
	}
	return false
}

// Analysis is the outcome of inspecting one executable image.
// Invalid images carry a human-readable ErrorReason and no architecture or
// generation.
type Analysis struct {
	Valid           bool          `json:"valid"`
	Architecture    Architecture  `json:"architecture,omitempty"`
	APIGeneration   APIGeneration `json:"api_generation,omitempty"`
	DetectedMarkers []string      `json:"detected_markers,omitempty"`
	ErrorReason     string        `json:"error_reason,omitempty"`
}

// HasGeneration reports whether a generation was detected.
func (a *Analysis) HasGeneration() bool { return a.APIGeneration != GenerationUnknown }

func invalid(format string, args ...any) *Analysis {
	return &Analysis{Valid: false, ErrorReason: fmt.Sprintf(format, args...)}
}
