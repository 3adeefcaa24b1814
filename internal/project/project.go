// Package project provides region file handling and persistence.
package project

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"region-explorer/internal/region"
)

// BackupExt is the extension of the copy kept before each overwrite.
const BackupExt = ".backup"

// BackupPath returns the backup location for a region file: same directory,
// same stem, BackupExt extension.
func BackupPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + BackupExt
}

// Load reads a region file. The format is chosen by extension.
func Load(path string) (*region.Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, &region.LoadError{Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &region.LoadError{Path: path, Err: err}
	}

	doc, err := Decode(data, format)
	if err != nil {
		return nil, &region.LoadError{Path: path, Err: err}
	}
	return doc, nil
}

// Save writes doc to path. An existing file is first copied to BackupPath;
// the overwrite does not start unless that copy succeeded.
func Save(doc *region.Document, path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return &region.SaveError{Path: path, Op: "encode", Err: err}
	}
	if BackupPath(path) == path {
		return &region.SaveError{Path: path, Op: "encode", Err: fmt.Errorf("region file cannot use the %s extension", BackupExt)}
	}

	data, err := Encode(doc, format)
	if err != nil {
		return &region.SaveError{Path: path, Op: "encode", Err: err}
	}

	if err := backup(path); err != nil {
		return &region.SaveError{Path: path, Op: "backup", Err: err}
	}

	if err := writeReplace(path, data); err != nil {
		return &region.SaveError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// Convert loads src and writes it to dst in the format implied by dst's extension.
func Convert(src, dst string) error {
	doc, err := Load(src)
	if err != nil {
		return err
	}
	return Save(doc, dst)
}

// backup copies path to its backup location. A missing path is not an error.
func backup(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	dst := BackupPath(path)
	if err := copyFile(path, dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	log.Printf("Save: created backup %s", dst)
	return nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// writeReplace writes data to a temporary sibling and renames it over path.
func writeReplace(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write region file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync region file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace region file: %w", err)
	}
	return nil
}
