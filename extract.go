// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExtractAll writes entries to dstDir, recreating the logical directory
// layout. With opts.Entries set only the listed entries are written.
// Extraction stops at the first failure; already written files stay on disk.
func (a *Archive) ExtractAll(dstDir string, opts ExtractOptions) error {
	selected := opts.Entries
	if selected == nil {
		selected = a.Entries()
	}

	for i := range selected {
		outputPath, written, err := a.extractOne(selected[i].Path, dstDir)
		if err != nil {
			return err
		}

		if opts.OnEntryDone != nil {
			entry, err := a.Entry(selected[i].Path)
			if err != nil {
				return err
			}

			opts.OnEntryDone(entry, written, outputPath)
		}
	}

	return nil
}

// Extract writes a single entry to dstDir and returns the output path.
func (a *Archive) Extract(entryPath, dstDir string) (string, error) {
	outputPath, _, err := a.extractOne(entryPath, dstDir)
	return outputPath, err
}

// extractOne reads, decompresses, and writes one entry under dstDir.
func (a *Archive) extractOne(entryPath, dstDir string) (string, int64, error) {
	data, err := a.ReadEntry(entryPath)
	if err != nil {
		return "", 0, err
	}

	rel, err := safeExtractRelPath(entryPath)
	if err != nil {
		return "", 0, err
	}

	outputPath := filepath.Join(dstDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o750); err != nil {
		return "", 0, fmt.Errorf("create %s: %w", filepath.Dir(outputPath), err)
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		return "", 0, fmt.Errorf("write %s: %w", outputPath, err)
	}

	return outputPath, int64(len(data)), nil
}
