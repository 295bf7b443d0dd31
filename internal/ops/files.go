package ops

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/hookcard/internal/card"
	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/errors"
)

// MaxCardFileBytes bounds card documents read from disk.
const MaxCardFileBytes = 1 << 20

// ReadCardFile loads a JSON or YAML card document.
func ReadCardFile(cfg *config.Config, path string) (card.Card, error) {
	data, err := readFile(cfg, path, CardFile)
	if err != nil {
		return card.Card{}, err
	}
	c, err := card.ParseDocument(data)
	if err != nil {
		return card.Card{}, errors.NewInvalidRequest(err.Error())
	}
	return c, nil
}

// ReadPayloadFile loads a raw webhook payload, byte for byte.
func ReadPayloadFile(cfg *config.Config, path string) ([]byte, error) {
	return readFile(cfg, path, PayloadFile)
}

// readFile reads at most MaxCardFileBytes from a file of the given kind.
func readFile(cfg *config.Config, path string, kind FileKind) ([]byte, error) {
	abs, err := ResolvePath(cfg, path, kind)
	if err != nil {
		return nil, err
	}

	file, err := openNoFollow(abs, os.O_RDONLY, 0)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open %s: %w", kind, err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxCardFileBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read %s: %w", kind, err))
	}
	if len(data) > MaxCardFileBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("%s exceeds %d bytes", kind, MaxCardFileBytes))
	}
	return data, nil
}

// saveOutput checks path for kind and writes data to it atomically.
// It returns the absolute path written.
func saveOutput(cfg *config.Config, path string, data []byte, kind FileKind) (string, error) {
	abs, err := ResolvePath(cfg, path, kind)
	if err != nil {
		return "", err
	}

	// The exports directory may not exist yet
	if err := os.MkdirAll(filepath.Dir(abs), 0700); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to create output directory: %w", err))
	}

	if err := writeFileAtomic(abs, data); err != nil {
		return "", err
	}
	return abs, nil
}

// writeFileAtomic writes to a temp file first, then renames it into place so
// an existing file survives a failed write.
func writeFileAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to create output file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close output file: %w", err))
	}
	file = nil

	// Check if destination is a symlink (os.Rename would follow it)
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}

	// On Windows, os.Rename fails if the destination exists; fail safely
	// rather than delete the original first.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("output file already exists; overwriting is not supported on Windows")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize output: %w", err))
	}

	success = true
	return nil
}

// defaultOutputPath generates ~/.hookcard/exports/<title>-<timestamp><ext>.
func defaultOutputPath(title, ext string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}

	// Slug output is letters, digits and hyphens only
	name := card.Slug(title)
	if name == "" {
		name = "card"
	}
	if r := []rune(name); len(r) > 48 {
		name = string(r[:48])
	}

	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", name, now.Format("2006-01-02T150405"), ext)), nil
}
