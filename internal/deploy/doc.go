// Package deploy installs and removes shim DLLs in game directories.
//
// An Engine copies a deterministic file set, chosen from the executable's
// API generation and architecture, out of a cached package. Every mutating
// operation is refused for directories under a protected prefix. Installs
// are transactional: overwritten files are backed up and restored if the
// copy aborts half way.
package deploy
