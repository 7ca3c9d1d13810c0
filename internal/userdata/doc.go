// Package userdata resolves the on-disk locations the tool owns: the shim
// package cache root, the config directory, and the state directory that
// holds logs. It also implements the doctor checks that verify those
// directories exist with usable permissions.
package userdata
