// Package fileutil provides file and path utility functions.
package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
	ErrNotDirectory           = errors.New("not a directory")
)

// ValidateExtension checks that the extension is safe to match file names against.
// A single leading dot is allowed.
func ValidateExtension(extension string) error {
	if strings.TrimPrefix(extension, ".") == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// NormalizeExtension validates extension and returns it lowercased with a leading dot.
//
// Examples:
//   - "md" -> ".md"
//   - ".Markdown" -> ".markdown"
func NormalizeExtension(extension string) (string, error) {
	if err := ValidateExtension(extension); err != nil {
		return "", err
	}
	return "." + strings.ToLower(strings.TrimPrefix(extension, ".")), nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "default" -> false (name)
//   - "./custom.html" -> true (relative path)
//   - "/absolute/page.html" -> true (absolute)
//   - "C:\windows\page.html" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL returns true if the string looks like an http(s) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsExternalRef returns true if a link target leaves the site: any target with
// a URL scheme (https:, mailto:, ...) or a protocol-relative "//host" prefix.
// Windows drive letters are not mistaken for schemes.
func IsExternalRef(s string) bool {
	if strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return len(u.Scheme) > 1
}

// IsHidden reports whether any segment of a slash or OS separated path starts
// with a dot. "." and ".." are not hidden.
func IsHidden(p string) bool {
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == "." || seg == ".." {
			continue
		}
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// RelativeURL returns the slash-separated path that leads from the directory
// containing fromPath to toPath. Both are slash paths relative to the same root.
//
// Examples:
//   - ("notes/a.html", "notes/b.html") -> "b.html"
//   - ("notes/a.html", "index.html") -> "../index.html"
//   - ("a.html", "media/x.png") -> "media/x.png"
func RelativeURL(fromPath, toPath string) string {
	fromParts := splitSlash(path.Dir(fromPath))
	toParts := splitSlash(toPath)

	common := 0
	for common < len(fromParts) && common < len(toParts)-1 && fromParts[common] == toParts[common] {
		common++
	}

	parts := make([]string, 0, len(fromParts)-common+len(toParts)-common)
	for range fromParts[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[common:]...)
	return strings.Join(parts, "/")
}

func splitSlash(p string) []string {
	p = path.Clean(p)
	if p == "." || p == "" {
		return nil
	}
	return strings.Split(strings.Trim(p, "/"), "/")
}

// WalkVisible walks root in lexical order and calls fn for every entry whose
// relative path has no hidden segment. Hidden directories are not descended.
// rel is slash-separated and never empty (the root itself is not reported).
func WalkVisible(ctx context.Context, root string, fn func(rel string, d fs.DirEntry) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), d)
	})
}

// CopyFile copies src to dst byte for byte, creating parent directories and
// keeping the source permission bits.
func CopyFile(src, dst string) (err error) {
	in, err := os.Open(src) // #nosec G304 -- paths come from a tree walk
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) // #nosec G304
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", dst, closeErr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return nil
}

// CopyTree mirrors src into dst, skipping hidden entries, and returns the
// number of files copied. Symlinks and other non-regular files are skipped.
func CopyTree(ctx context.Context, src, dst string) (int, error) {
	if err := os.MkdirAll(dst, 0o750); err != nil {
		return 0, fmt.Errorf("creating %s: %w", dst, err)
	}

	copied := 0
	err := WalkVisible(ctx, src, func(rel string, d fs.DirEntry) error {
		target := filepath.Join(dst, filepath.FromSlash(rel))
		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o750)
		case d.Type().IsRegular():
			if err := CopyFile(filepath.Join(src, filepath.FromSlash(rel)), target); err != nil {
				return err
			}
			copied++
		}
		return nil
	})
	return copied, err
}
