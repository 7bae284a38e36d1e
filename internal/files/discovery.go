package files

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindWorkbooks returns the .xlsx files in dir whose name matches pattern.
// Names saved from a browser keep URL escapes ("Station%20Performance"), so
// the pattern is also tried against the unescaped name. Results are sorted
// by name for a deterministic concatenation order.
func (d *Discovery) FindWorkbooks(dir, pattern string) ([]FileInfo, error) {
	files, err := d.FindFilesByPattern(dir, pattern)
	if err != nil {
		return nil, err
	}

	var out []FileInfo
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f.Name), ".xlsx") && !strings.HasPrefix(f.Name, "~$") {
			out = append(out, f)
		}
	}
	return out, nil
}

// FindFilesByPattern finds regular files in dir matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir, pattern string) ([]FileInfo, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !matches(pattern, name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func matches(pattern, name string) bool {
	if ok, _ := filepath.Match(pattern, name); ok {
		return true
	}
	unescaped, err := url.PathUnescape(name)
	if err != nil || unescaped == name {
		return false
	}
	ok, _ := filepath.Match(pattern, unescaped)
	return ok
}
