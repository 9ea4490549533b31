package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeDecodePath_RoundTrip(t *testing.T) {
	paths := []string{
		"/Users/foo/bar",
		"/home/user/my project",
		"/a",
		"/deep/ly/nest/ed/path",
	}
	for _, p := range paths {
		encoded := EncodePath(p)
		if encoded[0] != '-' {
			t.Errorf("EncodePath(%q) = %q, want leading hyphen", p, encoded)
		}
		if got := DecodePath(encoded); got != p {
			t.Errorf("DecodePath(EncodePath(%q)) = %q", p, got)
		}
	}
}

func TestEncodePath_Format(t *testing.T) {
	if got := EncodePath("/Users/foo/bar"); got != "-Users%2Ffoo%2Fbar" {
		t.Errorf("EncodePath() = %q, want %q", got, "-Users%2Ffoo%2Fbar")
	}
}

func TestDecodePath_BadEscape(t *testing.T) {
	// Undecodable escapes fall back to the raw name instead of failing.
	if got := DecodePath("-foo%ZZbar"); got != "/foo%ZZbar" {
		t.Errorf("DecodePath() = %q", got)
	}
}

func TestValidateDecodedPath(t *testing.T) {
	if err := ValidateDecodedPath("/home/user/proj"); err != nil {
		t.Errorf("ValidateDecodedPath(valid) error = %v", err)
	}
	for _, p := range []string{"relative/path", "/has/../traversal", ".."} {
		if err := ValidateDecodedPath(p); err == nil {
			t.Errorf("ValidateDecodedPath(%q) expected error", p)
		}
	}
}

func TestValidateNotSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	if err := os.Mkdir(real, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if err := ValidateNotSymlink(real); err != nil {
		t.Errorf("ValidateNotSymlink(dir) error = %v", err)
	}
	if err := ValidateNotSymlink(link); err == nil {
		t.Error("ValidateNotSymlink(symlink) expected error")
	}
	if err := ValidateNotSymlink(filepath.Join(dir, "missing")); err == nil {
		t.Error("ValidateNotSymlink(missing) expected error")
	}
}

func TestFormatPathWithTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := FormatPathWithTilde(filepath.Join(home, "work")); got != "~/work" {
		t.Errorf("FormatPathWithTilde() = %q, want %q", got, "~/work")
	}
	if got := FormatPathWithTilde(home); got != "~" {
		t.Errorf("FormatPathWithTilde(home) = %q, want ~", got)
	}
	if got := FormatPathWithTilde("/etc/hosts"); got != "/etc/hosts" {
		t.Errorf("FormatPathWithTilde(/etc/hosts) = %q", got)
	}
}
