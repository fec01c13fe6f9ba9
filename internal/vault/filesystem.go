// Package vault persists picked photo assets in an app-private directory so
// they outlive the transient picker URI and can be deleted independently of
// the original.
package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reportsync/internal/report"
)

// extensions considered safe to preserve; anything else becomes jpg.
var safeExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// FileSystemVault is a filesystem-based implementation of report.PhotoVault.
// Files are stored flat under the vault root as
// report_<unix-millis>_<token>.<ext>.
type FileSystemVault struct {
	root string
}

var _ report.PhotoVault = (*FileSystemVault)(nil)

// NewFileSystemVault creates a vault rooted at the given directory,
// creating it if needed.
func NewFileSystemVault(root string) (*FileSystemVault, error) {
	// Persist hands out Join-cleaned paths; keep root in the same form so
	// Contains prefix checks line up for roots configured with a trailing
	// slash.
	v := &FileSystemVault{root: filepath.Clean(root)}
	if err := v.EnsureDirectory(); err != nil {
		return nil, err
	}
	return v, nil
}

// Root returns the vault root directory.
func (v *FileSystemVault) Root() string { return v.root }

// EnsureDirectory idempotently creates the vault root.
func (v *FileSystemVault) EnsureDirectory() error {
	if err := os.MkdirAll(v.root, 0700); err != nil {
		return fmt.Errorf("creating photo directory: %w", err)
	}
	return nil
}

// Persist copies the asset at sourceURI into the vault. On failure it
// returns the original URI alongside the error so callers can degrade to
// the transient source rather than dropping the report.
func (v *FileSystemVault) Persist(sourceURI string) (string, error) {
	if err := v.EnsureDirectory(); err != nil {
		return sourceURI, err
	}

	src := localPath(sourceURI)
	in, err := os.Open(src)
	if err != nil {
		return sourceURI, fmt.Errorf("opening source photo: %w", err)
	}
	defer in.Close()

	token := strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
	name := fmt.Sprintf("report_%d_%s.%s", time.Now().UnixMilli(), token, extensionOf(sourceURI))
	dest := filepath.Join(v.root, name)

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return sourceURI, fmt.Errorf("creating vault file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return sourceURI, fmt.Errorf("copying photo: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return sourceURI, fmt.Errorf("closing vault file: %w", err)
	}

	return dest, nil
}

// Validate reports whether uri points at an uploadable local asset. Remote
// http(s) URIs are explicitly invalid: they are already uploaded.
func (v *FileSystemVault) Validate(uri string) bool {
	if uri == "" {
		return false
	}
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return false
	}

	local := v.Contains(uri) ||
		strings.HasPrefix(uri, "file://") ||
		strings.HasPrefix(uri, "content://") ||
		filepath.IsAbs(uri)
	if !local {
		return false
	}

	info, err := os.Stat(localPath(uri))
	if err != nil || info.IsDir() {
		return false
	}
	return info.Size() > 0
}

// Delete removes a vault file. Absence is not an error.
func (v *FileSystemVault) Delete(path string) error {
	if err := os.Remove(localPath(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting photo: %w", err)
	}
	return nil
}

// Contains reports whether path is inside the vault root.
func (v *FileSystemVault) Contains(path string) bool {
	return strings.HasPrefix(localPath(path), v.root+string(filepath.Separator))
}

// FileSize returns the size of a local file, 0 if it does not exist.
func (v *FileSystemVault) FileSize(path string) (int64, error) {
	info, err := os.Stat(localPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat photo: %w", err)
	}
	return info.Size(), nil
}

// Clear removes the entire vault directory and recreates it empty.
func (v *FileSystemVault) Clear() error {
	if err := os.RemoveAll(v.root); err != nil {
		return fmt.Errorf("removing photo directory: %w", err)
	}
	return v.EnsureDirectory()
}

// localPath strips URI schemes that map onto plain filesystem paths.
func localPath(uri string) string {
	if after, ok := strings.CutPrefix(uri, "file://"); ok {
		return after
	}
	if after, ok := strings.CutPrefix(uri, "content://"); ok {
		return after
	}
	return uri
}

// extensionOf extracts a safe image extension from a URI, defaulting to jpg.
// Query strings are stripped before the extension is inspected.
func extensionOf(uri string) string {
	base := uri
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return "jpg"
	}
	ext := strings.ToLower(base[i+1:])
	if !safeExtensions[ext] {
		return "jpg"
	}
	return ext
}
