package scanner

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// EncodePath converts a filesystem path into Claude's project directory name
// format: the leading slash is dropped, the rest is percent-encoded, and a
// hyphen is prepended. "/Users/foo/bar" becomes "-Users%2Ffoo%2Fbar".
func EncodePath(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	return "-" + url.PathEscape(trimmed)
}

// DecodePath reverses EncodePath. Undecodable escapes are left as-is rather
// than failing, matching how Claude itself treats these names.
func DecodePath(encoded string) string {
	trimmed := strings.TrimPrefix(encoded, "-")
	decoded, err := url.PathUnescape(trimmed)
	if err != nil {
		decoded = trimmed
	}
	return "/" + decoded
}

// ValidateDecodedPath rejects decoded project paths that are relative or
// contain ".." components. Purely structural; no filesystem access.
func ValidateDecodedPath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return fmt.Errorf("path contains '..' component: %s", path)
		}
	}
	return nil
}

// DecodeAndValidatePath decodes an encoded project directory name and
// validates the result.
func DecodeAndValidatePath(encoded string) (string, error) {
	decoded := DecodePath(encoded)
	if err := ValidateDecodedPath(decoded); err != nil {
		return "", err
	}
	return decoded, nil
}

// ValidateNotSymlink rejects paths that are symbolic links. Project
// directories and conversation files are expected to be regular entries;
// a symlink there could point the indexer at arbitrary files.
func ValidateNotSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("failed to read metadata for %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("path is a symbolic link: %s", path)
	}
	return nil
}

// FormatPathWithTilde abbreviates the user's home directory prefix to ~ for
// display.
func FormatPathWithTilde(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if strings.HasPrefix(path, home+string(filepath.Separator)) {
		return "~" + path[len(home):]
	}
	return path
}
