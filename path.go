// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath converts an archive/internal path to normalized slash-separated form.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\`, `/`)
	raw = strings.TrimPrefix(raw, "./")
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// normalizeEntryPath converts an input path to canonical logical form.
func normalizeEntryPath(raw string) (string, error) {
	normalized := NormalizePath(raw)
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryPath, raw)
	}

	return normalized, nil
}

// entryPathKey returns a case-insensitive uniqueness key for a logical path.
func entryPathKey(logical string) string {
	return strings.ToLower(logical)
}

// internalEntryName maps a logical path to the archive-internal form: backslash
// separators with the profile root prefix applied. The result must fit the
// one-byte string table length and single-byte character width.
func internalEntryName(p Profile, logical string) (string, error) {
	name := strings.ReplaceAll(logical, "/", `\`)
	if p.RootPrefix != "" && !strings.HasPrefix(name, p.RootPrefix) {
		name = p.RootPrefix + name
	}

	if err := validateInternalName(name); err != nil {
		return "", err
	}

	return name, nil
}

// logicalEntryName maps an archive-internal name back to the logical form,
// stripping the profile root prefix.
func logicalEntryName(p Profile, internal string) (string, error) {
	name := internal
	if p.RootPrefix != "" {
		if idx := strings.LastIndex(name, p.RootPrefix); idx >= 0 {
			name = name[idx+len(p.RootPrefix):]
		}
	}

	return normalizeEntryPath(name)
}

// validateInternalName enforces the string table record limits: one-byte
// length prefix, single-byte characters, no embedded NUL.
func validateInternalName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidEntryPath)
	}

	if len(name) > maxNameLen {
		return fmt.Errorf("%w: name %q exceeds %d bytes", ErrEncoding, name, maxNameLen)
	}

	for i := 0; i < len(name); i++ {
		if name[i] == 0 || name[i] >= 0x80 {
			return fmt.Errorf("%w: name %q contains byte 0x%02x", ErrEncoding, name, name[i])
		}
	}

	return nil
}

// safeExtractRelPath normalizes a logical path for filesystem output and
// rejects absolute or traversal inputs.
func safeExtractRelPath(logical string) (string, error) {
	raw := strings.TrimSpace(logical)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtractPath, logical)
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtractPath, logical)
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasDrivePrefix(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtractPath, logical)
	}

	parts := strings.Split(raw, `/`)
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("%w: %q", ErrInvalidExtractPath, logical)
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtractPath, logical)
	}

	return strings.Join(cleanParts, `/`), nil
}

// hasDrivePrefix reports whether path starts with a drive-root prefix like C:/.
func hasDrivePrefix(path string) bool {
	if len(path) < 3 {
		return false
	}

	return isASCIIAlpha(path[0]) && path[1] == ':' && path[2] == '/'
}

// isASCIIAlpha reports whether b is an ASCII latin letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
