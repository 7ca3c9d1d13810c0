package platform

import (
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath lowercases p, converts backslashes to forward slashes,
// drops a `\\?\` or `\\.\` device prefix and resolves `.`, `..` and
// doubled separators. The result names the directory the OS would open.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	n := strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
	for _, device := range []string{"//?/", "//./"} {
		if strings.HasPrefix(n, device) {
			n = n[len(device):]
			break
		}
	}

	// A drive letter is kept apart so ".." can never climb above the root.
	volume := ""
	if len(n) >= 2 && n[1] == ':' {
		volume, n = n[:2], n[2:]
		if n == "" {
			return volume
		}
	}
	return volume + path.Clean(n)
}

// HasPathPrefix reports whether the normalized form of p starts with the
// normalized form of prefix. The match is a plain string prefix.
func HasPathPrefix(p, prefix string) bool {
	np := NormalizePath(p)
	npre := NormalizePath(prefix)
	if npre == "" {
		return false
	}
	return strings.HasPrefix(np, npre)
}

// SamePath compares two file paths the way the host filesystem would.
func SamePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
