// Package platform hides operating system differences: permission bits,
// path comparison for Windows-style game paths and detection of running
// processes.
package platform
