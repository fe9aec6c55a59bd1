// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractAll(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{
		"data/config.dat":     []byte("CFG1"),
		"data/course/c01.dat": bytes.Repeat([]byte("green "), 100),
		"readme.txt":          []byte("plain"),
	}

	image := buildImage(t, ProfileMNG4, files, CompressionLZ)
	a, err := NewFromBytes(image, ProfileMNG4)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}

	dst := t.TempDir()
	var calls int
	err = a.ExtractAll(dst, ExtractOptions{
		OnEntryDone: func(entry Entry, written int64, outputPath string) {
			calls++
			if written != int64(entry.Size) {
				t.Errorf("entry %q written %d bytes, want %d", entry.Path, written, entry.Size)
			}
			if !strings.HasPrefix(outputPath, dst+string(filepath.Separator)) {
				t.Errorf("entry %q output %q outside %q", entry.Path, outputPath, dst)
			}
		},
	})
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if calls != len(files) {
		t.Fatalf("OnEntryDone calls = %d, want %d", calls, len(files))
	}

	for rel, want := range files {
		got, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("ReadFile(%q): %v", rel, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("extracted %q mismatch", rel)
		}
	}
}

func TestExtractAllSelected(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{
		"a.bin": []byte("aaa"),
		"b.bin": []byte("bbb"),
	}

	image := buildImage(t, ProfileMNG4, files, CompressionStore)
	a, err := NewFromBytes(image, ProfileMNG4)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}

	entry, err := a.Entry("b.bin")
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}

	dst := t.TempDir()
	if err := a.ExtractAll(dst, ExtractOptions{Entries: []Entry{entry}}); err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, "a.bin")); !os.IsNotExist(err) {
		t.Fatalf("unselected entry extracted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "b.bin")); err != nil {
		t.Fatalf("selected entry missing: %v", err)
	}
}

func TestExtractSingle(t *testing.T) {
	t.Parallel()

	image := buildImage(t, ProfileMNG4, map[string][]byte{"data/one.dat": []byte("one")}, CompressionStore)
	a, err := NewFromBytes(image, ProfileMNG4)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}

	dst := t.TempDir()
	outputPath, err := a.Extract("data/one.dat", dst)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if outputPath != filepath.Join(dst, "data", "one.dat") {
		t.Fatalf("output path = %q", outputPath)
	}

	got, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "one" {
		t.Fatalf("payload = %q", got)
	}
}

func TestExtractMissingEntry(t *testing.T) {
	t.Parallel()

	image := buildImage(t, ProfileMNG4, map[string][]byte{"a.bin": []byte("x")}, CompressionStore)
	a, err := NewFromBytes(image, ProfileMNG4)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}

	if _, err := a.Extract("nope.bin", t.TempDir()); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}
