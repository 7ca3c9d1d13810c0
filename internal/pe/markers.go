package pe

// Marker is a library-name substring whose presence in an image counts as
// evidence for an API generation.
type Marker struct {
	Name       string
	Generation APIGeneration
}

// Markers is the fixed evidence table. Names are lower case; matching is
// case-insensitive.
var Markers = []Marker{
	{Name: "d3d11.dll", Generation: Generation11},
	{Name: "dxgi.dll", Generation: Generation11},
	{Name: "d3d10.dll", Generation: Generation10},
	{Name: "d3d10_1.dll", Generation: Generation10},
	{Name: "d3d10core.dll", Generation: Generation10},
	{Name: "d3d9.dll", Generation: Generation9},
	{Name: "d3dx9_", Generation: Generation9},
	{Name: "d3d8.dll", Generation: Generation8},
}

// DetectGeneration scans image for marker names. It returns every marker
// found, in table order, and the highest-priority generation among them
// (11 over 10 over 9 over 8), or GenerationUnknown when nothing matched.
func DetectGeneration(image []byte) (APIGeneration, []string) {
	lowered := asciiLower(image)

	var found []string
	seen := make(map[APIGeneration]bool)
	for _, m := range Markers {
		if containsBytes(lowered, m.Name) {
			found = append(found, m.Name)
			seen[m.Generation] = true
		}
	}

	for _, g := range Generations {
		if seen[g] {
			return g, found
		}
	}
	return GenerationUnknown, found
}

// asciiLower returns a copy of b with A-Z folded to a-z. Bytes outside the
// ASCII letter range are kept as-is, so every byte maps to one character.
func asciiLower(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}
