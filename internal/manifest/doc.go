// Package manifest reads, writes and validates the installation record left
// in a game directory after a shim install. The record is JSON and is checked
// against an embedded JSON schema whenever it is read.
package manifest
