// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// Archive is an open XB container. Reads serve payloads lazily from the
// backing store; mutations stage entries in memory until Close rebuilds the
// destination file. An Archive is safe for concurrent use.
type Archive struct {
	file    *os.File
	ra      io.ReaderAt
	path    string
	entries []Entry
	profile Profile
	size    int64
	mu      sync.Mutex
	mode    Mode
	closed  bool
}

// Open opens the archive at fsPath with the given mode and title profile.
//
// ModeRead and ModeReadWrite parse an existing file. ModeWrite starts empty
// and does not touch the destination until Close. ModeCreate behaves like
// ModeWrite but fails immediately when the destination already exists.
func Open(fsPath string, mode Mode, profile Profile) (*Archive, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	switch mode {
	case ModeRead, ModeReadWrite:
		return openExisting(fsPath, mode, profile)
	case ModeWrite:
		return &Archive{path: fsPath, mode: mode, profile: profile}, nil
	case ModeCreate:
		if _, err := os.Stat(fsPath); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrArchiveExists, fsPath)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", fsPath, err)
		}

		return &Archive{path: fsPath, mode: mode, profile: profile}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
}

// openExisting opens and parses an archive file for read or read-write.
func openExisting(fsPath string, mode Mode, profile Profile) (*Archive, error) {
	file, err := os.Open(fsPath) // #nosec G304 -- user supplied archive path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, fsPath)
		}

		return nil, fmt.Errorf("open %s: %w", fsPath, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat %s: %w", fsPath, err)
	}

	entries, err := parseDirectory(file, info.Size(), profile)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &Archive{
		file:    file,
		ra:      file,
		path:    fsPath,
		entries: entries,
		profile: profile,
		size:    info.Size(),
		mode:    mode,
	}, nil
}

// NewFromBytes parses an in-memory archive image read-only.
func NewFromBytes(data []byte, profile Profile) (*Archive, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	ra := bytes.NewReader(data)
	entries, err := parseDirectory(ra, int64(len(data)), profile)
	if err != nil {
		return nil, err
	}

	return &Archive{
		ra:      ra,
		entries: entries,
		profile: profile,
		size:    int64(len(data)),
		mode:    ModeRead,
	}, nil
}

// Profile returns the title profile the archive was opened with.
func (a *Archive) Profile() Profile {
	return a.profile
}

// Mode returns the open mode.
func (a *Archive) Mode() Mode {
	return a.mode
}

// Path returns the destination file path; empty for in-memory archives.
func (a *Archive) Path() string {
	return a.path
}

// Len returns the current entry count.
func (a *Archive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.entries)
}

// Entries returns a snapshot of the directory in archive order.
func (a *Archive) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Entry looks up a single entry by logical path, case-insensitively.
func (a *Archive) Entry(entryPath string) (Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := a.findEntry(entryPath)
	if idx < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrEntryNotFound, entryPath)
	}

	return a.entries[idx], nil
}

// ReadEntry decompresses and returns the payload of the entry at entryPath.
func (a *Archive) ReadEntry(entryPath string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}

	idx := a.findEntry(entryPath)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, entryPath)
	}

	return a.entryData(&a.entries[idx])
}

// AddBytes stages data as an entry at logicalPath with the codec tag.
// A case-insensitive path match replaces the existing entry in place.
func (a *Archive) AddBytes(logicalPath string, data []byte, tag Compression) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if !a.mode.writable() {
		return fmt.Errorf("%w: opened %q", ErrReadOnly, a.mode)
	}

	logical, err := normalizeEntryPath(logicalPath)
	if err != nil {
		return err
	}

	// Names must serialize into the string table at Close; fail now, not then.
	if _, err := internalEntryName(a.profile, logical); err != nil {
		return err
	}

	if uint64(len(data)) > maxPayloadSize {
		return fmt.Errorf("%w: payload of %d bytes", ErrSizeOverflow, len(data))
	}

	compressed, err := compressPayload(tag, data)
	if err != nil {
		return err
	}
	if uint64(len(compressed)) > maxPayloadSize {
		return fmt.Errorf("%w: compressed payload of %d bytes", ErrSizeOverflow, len(compressed))
	}

	entry := Entry{
		Path:           logical,
		Size:           uint32(len(data)),
		CompressedSize: uint32(len(compressed)),
		Compression:    tag,
		offset:         -1,
		pending:        compressed,
	}

	if idx := a.findEntry(logical); idx >= 0 {
		a.entries[idx] = entry
		return nil
	}

	a.entries = append(a.entries, entry)
	return nil
}

// AddFile stages a file or directory tree rooted at fsPath under logicalPath.
// For a regular file the logical path names the entry itself. For a directory
// every contained file becomes logicalPath/<relative>; opts.Recursive controls
// whether nested directories are descended.
func (a *Archive) AddFile(fsPath, logicalPath string, opts AddOptions) error {
	opts.applyDefaults()

	rules, err := compileLZRules(opts.Compress, opts.CompressMatcherOptions)
	if err != nil {
		return err
	}

	info, err := os.Stat(fsPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", fsPath, err)
	}

	if !info.IsDir() {
		return a.addOneFile(fsPath, logicalPath, opts, rules)
	}

	return a.addDirectory(fsPath, logicalPath, opts, rules)
}

// addOneFile stages a single regular file.
func (a *Archive) addOneFile(fsPath, logicalPath string, opts AddOptions, rules *lzRules) error {
	logical, err := normalizeEntryPath(logicalPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(fsPath) // #nosec G304 -- user supplied input path
	if err != nil {
		return fmt.Errorf("read %s: %w", fsPath, err)
	}

	if err := a.AddBytes(logical, data, rules.tagFor(opts, logical)); err != nil {
		return err
	}

	if opts.OnEntryDone != nil {
		entry, err := a.Entry(logical)
		if err != nil {
			return err
		}

		opts.OnEntryDone(entry)
	}

	return nil
}

// addDirectory walks dir and stages its files under base.
func (a *Archive) addDirectory(dir, base string, opts AddOptions, rules *lzRules) error {
	base = NormalizePath(base)
	seen := make(map[string]string)

	err := filepath.WalkDir(dir, func(fsPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", fsPath, err)
		}

		if d.IsDir() {
			if !opts.Recursive && fsPath != dir {
				return filepath.SkipDir
			}

			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, fsPath)
		if err != nil {
			return fmt.Errorf("walk %s: %w", fsPath, err)
		}

		logical, err := normalizeEntryPath(path.Join(base, filepath.ToSlash(rel)))
		if err != nil {
			return err
		}

		key := entryPathKey(logical)
		if prior, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q and %q", ErrPathConflict, prior, logical)
		}
		seen[key] = logical

		return a.addOneFile(fsPath, logical, opts, rules)
	})
	if err != nil {
		return err
	}

	return nil
}

// Remove deletes the entry at entryPath from the directory. Removing a path
// that is not present is a no-op. Remove requires ModeReadWrite.
func (a *Archive) Remove(entryPath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	switch a.mode {
	case ModeReadWrite:
	case ModeRead:
		return fmt.Errorf("%w: opened %q", ErrReadOnly, a.mode)
	default:
		return fmt.Errorf("%w: remove requires %q, opened %q", ErrInvalidMode, ModeReadWrite, a.mode)
	}

	idx := a.findEntry(entryPath)
	if idx < 0 {
		return nil
	}

	a.entries = append(a.entries[:idx], a.entries[idx+1:]...)
	return nil
}

// Close releases the backing file. For writable modes it first rebuilds the
// destination: the full image is written to a temporary file in the same
// directory, synced, and renamed over the destination, so a failed close
// leaves the previous archive intact. Close is idempotent.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if !a.mode.persisted() {
		return a.closeFile()
	}

	if err := a.persist(); err != nil {
		_ = a.closeFile()
		return err
	}

	return a.closeFile()
}

// closeFile closes the backing file handle if one is open.
func (a *Archive) closeFile() error {
	if a.file == nil {
		return nil
	}

	file := a.file
	a.file = nil
	a.ra = nil
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", a.path, err)
	}

	return nil
}

// persist writes the full archive image to a temp file and renames it over
// the destination.
func (a *Archive) persist() error {
	dir := filepath.Dir(a.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(a.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if err := a.writeImage(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}

	// The source handle must be released before the rename lands on platforms
	// that lock open files.
	if err := a.closeFile(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, a.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", a.path, err)
	}

	return nil
}

// findEntry returns the index of the entry whose logical path matches
// case-insensitively, or -1.
func (a *Archive) findEntry(entryPath string) int {
	logical := NormalizePath(entryPath)
	for i := range a.entries {
		if strings.EqualFold(a.entries[i].Path, logical) {
			return i
		}
	}

	return -1
}

// entryData loads the codec stream for entry and decompresses it.
func (a *Archive) entryData(entry *Entry) ([]byte, error) {
	stream := entry.pending
	if entry.offset >= 0 {
		stream = make([]byte, entry.CompressedSize)
		if err := readAt(a.ra, stream, entry.offset); err != nil {
			return nil, err
		}
	}

	return decompressPayload(entry.Compression, stream, int(entry.Size), a.profile.Order)
}
