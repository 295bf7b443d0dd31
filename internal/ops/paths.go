package ops

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/errors"
)

// FileKind is what a file on disk holds. The kind fixes the accepted
// extensions and whether hookcard reads or writes it.
type FileKind int

const (
	CardFile    FileKind = iota // card document read by share, export, send, lint
	PayloadFile                 // raw webhook payload read by send --payload
	ExportFile                  // export output (pretty JSON, payload, curl)
	QRFile                      // PNG QR code of a share link
)

type fileRule struct {
	label string
	exts  []string
	write bool
}

var fileRules = [...]fileRule{
	CardFile:    {label: "card document", exts: []string{".json", ".yaml", ".yml"}},
	PayloadFile: {label: "webhook payload", exts: []string{".json"}},
	ExportFile:  {label: "export", exts: []string{".json", ".sh", ".txt"}, write: true},
	QRFile:      {label: "QR code", exts: []string{".png"}, write: true},
}

func (k FileKind) String() string { return fileRules[k].label }

// Extensions returns the extensions accepted for k, lowercase with the dot.
func (k FileKind) Extensions() []string { return slices.Clone(fileRules[k].exts) }

// ResolvePath checks path for use as kind and returns it absolute.
//
// Files sit directly in ~/.hookcard/exports or in an allowed_paths entry.
// Nested paths are refused so no directory component can be swapped for a
// symlink between the check and the open. allow_unsafe_paths lifts the
// directory rule only; a symlink as the file itself is always refused.
// An export never replaces an existing card document.
func ResolvePath(cfg *config.Config, path string, kind FileKind) (string, error) {
	rule := fileRules[kind]
	if strings.TrimSpace(path) == "" {
		return "", errors.NewInvalidRequest(rule.label + " path is required")
	}
	if containsTraversal(path) {
		return "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}
	if !slices.Contains(rule.exts, strings.ToLower(filepath.Ext(abs))) {
		return "", errors.NewInvalidRequest(fmt.Sprintf("%s path must end in one of %s", rule.label, strings.Join(rule.exts, ", ")))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		if err := checkParentDir(cfg, filepath.Dir(abs)); err != nil {
			return "", err
		}
	}

	info, err := os.Lstat(abs)
	switch {
	case os.IsNotExist(err):
		if !rule.write {
			return "", errors.NewFileNotFound(path)
		}
	case err != nil:
		return "", errors.NewInternal(fmt.Errorf("stat %s: %w", rule.label, err))
	case info.Mode()&os.ModeSymlink != 0:
		return "", errors.NewInvalidRequest(rule.label + " path must not be a symlink")
	case info.IsDir():
		return "", errors.NewInvalidRequest(rule.label + " path is a directory")
	case kind == ExportFile && holdsCardDocument(abs):
		return "", errors.NewInvalidRequest(fmt.Sprintf("%s holds a card document; export to another path", filepath.Base(abs)))
	}

	return abs, nil
}

// checkParentDir requires dir to be the exports directory or an allowed_paths
// entry, and not itself a symlink.
func checkParentDir(cfg *config.Config, dir string) error {
	allowed, err := allowedDirs(cfg)
	if err != nil {
		return err
	}
	if !slices.Contains(allowed, dir) {
		return errors.NewInvalidRequest(fmt.Sprintf(
			"file must be directly inside one of %s (see allowed_paths and allow_unsafe_paths)",
			strings.Join(allowed, ", ")))
	}
	if info, err := os.Lstat(dir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	return nil
}

// allowedDirs lists the exports directory and the absolute allowed_paths
// entries. Existing entries are resolved, so a symlinked entry admits files
// by their real location only.
func allowedDirs(cfg *config.Config) ([]string, error) {
	exports, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	dirs := []string{exports}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}
	for i, d := range dirs {
		if resolved, err := filepath.EvalSymlinks(d); err == nil {
			dirs[i] = resolved
		}
	}
	return dirs, nil
}

// holdsCardDocument reports whether the file at path is a JSON object that
// is not a webhook payload. Earlier exports carry "embeds" and may be replaced.
func holdsCardDocument(path string) bool {
	f, err := openNoFollow(path, os.O_RDONLY, 0)
	if err != nil {
		return false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxCardFileBytes))
	if err != nil {
		return false
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(data, &obj) != nil {
		return false
	}
	_, hasEmbeds := obj["embeds"]
	_, hasContent := obj["content"]
	return !hasEmbeds && !hasContent
}

// DefaultExportsDir returns ~/.hookcard/exports.
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, config.DirName, "exports"), nil
}

// containsTraversal reports a ".." component under either separator.
func containsTraversal(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	return slices.Contains(parts, "..")
}

// openNoFollow opens path, refusing a symlink as the final component.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag|noFollowFlag, perm)
	if err != nil && isSymlinkLoop(err) {
		return nil, errors.NewInvalidRequest("path must not be a symlink")
	}
	return f, err
}
