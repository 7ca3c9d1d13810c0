// Package pe inspects the leading bytes of a Windows executable to decide its
// CPU architecture and, heuristically, which Direct3D generation it targets.
//
// Architecture comes from the COFF machine field behind the MZ and PE
// signatures. The API generation is inferred by a case-insensitive scan of the
// raw image for well-known library names (see Markers); it is not an
// import-table parse, so delay-loaded or obfuscated imports go undetected and
// stray strings can produce false positives.
package pe
