package pe

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spf13/afero"
)

// Header layout constants.
const (
	MinImageSize     = 64
	mzSignature      = 0x5A4D     // "MZ"
	peSignature      = 0x00004550 // "PE\0\0"
	peOffsetLocation = 0x3C
	peHeaderMinSpan  = 24

	MachineI386  uint16 = 0x014c
	MachineAMD64 uint16 = 0x8664
)

// Analyze inspects a raw executable image. It never fails: malformed input
// yields an Analysis with Valid=false and an ErrorReason.
func Analyze(image []byte) *Analysis {
	if len(image) < MinImageSize {
		return invalid("file too small to be a valid executable (%d bytes)", len(image))
	}

	if binary.LittleEndian.Uint16(image[0:2]) != mzSignature {
		return invalid("not a valid executable (missing MZ signature)")
	}

	peOffset := uint64(binary.LittleEndian.Uint32(image[peOffsetLocation : peOffsetLocation+4]))
	if peOffset+peHeaderMinSpan > uint64(len(image)) {
		return invalid("invalid PE header offset 0x%x", peOffset)
	}

	if binary.LittleEndian.Uint32(image[peOffset:peOffset+4]) != peSignature {
		return invalid("not a valid executable (missing PE signature)")
	}

	machine := binary.LittleEndian.Uint16(image[peOffset+4 : peOffset+6])
	arch, ok := architectureFor(machine)
	if !ok {
		return invalid("unknown machine type: 0x%x", machine)
	}

	generation, markers := DetectGeneration(image)
	return &Analysis{
		Valid:           true,
		Architecture:    arch,
		APIGeneration:   generation,
		DetectedMarkers: markers,
	}
}

// AnalyzeFile reads path from fsys once and analyzes its contents.
// Unreadable files produce an invalid Analysis rather than an error.
func AnalyzeFile(fsys afero.Fs, path string) *Analysis {
	info, err := fsys.Stat(path)
	if err != nil {
		return invalid("file not found or not readable: %s", path)
	}
	if info.IsDir() {
		return invalid("%s is a directory", path)
	}
	image, err := afero.ReadFile(fsys, path)
	if err != nil {
		return invalid("failed to read executable: %v", err)
	}
	return Analyze(image)
}

func architectureFor(machine uint16) (Architecture, bool) {
	switch machine {
	case MachineI386:
		return ArchX86, true
	case MachineAMD64:
		return ArchX64, true
	default:
		return "", false
	}
}

func containsBytes(haystack []byte, needle string) bool {
	return bytes.Contains(haystack, []byte(needle))
}

// String renders a one-line summary used in logs.
func (a *Analysis) String() string {
	if !a.Valid {
		return "invalid: " + a.ErrorReason
	}
	return fmt.Sprintf("%s %s %v", a.Architecture, a.APIGeneration, a.DetectedMarkers)
}
