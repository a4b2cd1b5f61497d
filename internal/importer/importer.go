// Package importer manages the report files of a snatree workspace.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openstat-dev/snatree/internal/config"
	"github.com/openstat-dev/snatree/internal/sheet"
)

// FileInfo describes a report file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Base returns the file name without its extension.
func (f FileInfo) Base() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// Workspace resolves the directories of a workspace rooted at Root.
type Workspace struct {
	Root string
	Dirs config.WorkspaceConfig
}

// ImportDir returns the directory scanned for new reports.
func (w Workspace) ImportDir() string { return filepath.Join(w.Root, w.Dirs.ImportDir) }

// ProcessedDir returns the directory converted reports are moved to.
func (w Workspace) ProcessedDir() string { return filepath.Join(w.Root, w.Dirs.ProcessedDir) }

// OutputDir returns the directory rendered documents are written to.
func (w Workspace) OutputDir() string { return filepath.Join(w.Root, w.Dirs.OutputDir) }

// LogDir returns the directory holding the conversion log.
func (w Workspace) LogDir() string { return filepath.Join(w.Root, w.Dirs.LogDir) }

// Layout returns every directory of the workspace, relative to Root.
func (w Workspace) Layout() []string {
	return []string{w.Dirs.ImportDir, w.Dirs.ProcessedDir, w.Dirs.OutputDir, w.Dirs.LogDir}
}

// Scan returns report files in the import directory that a format in
// formats can read.
func (w Workspace) Scan(formats *sheet.Registry) ([]FileInfo, error) {
	dir := w.ImportDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !formats.Supported(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// OutputPath returns where the rendering of f with extension ext is written.
func (w Workspace) OutputPath(f FileInfo, ext string) string {
	return filepath.Join(w.OutputDir(), f.Base()+ext)
}

// MarkProcessed moves a file from the import dir to the processed dir.
func (w Workspace) MarkProcessed(fileName string) error {
	src := filepath.Join(w.ImportDir(), fileName)
	dstDir := w.ProcessedDir()

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
