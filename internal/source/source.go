// Package source resolves the list of statement files a run reads.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/stmt-csv/internal/fileutils"
)

// ErrNoSources is returned when a provider resolves to zero input files.
var ErrNoSources = errors.New("no input sources found")

// Provider yields the input file paths of a run, in processing order.
type Provider interface {
	Sources() ([]string, error)
	Describe() string
}

// ManifestProvider reads paths from a manifest file, one per line. Blank
// lines and lines starting with '#' are skipped; relative paths are resolved
// against the manifest's directory.
type ManifestProvider struct {
	Path string
}

// NewManifestProvider creates a provider backed by a manifest file.
func NewManifestProvider(path string) *ManifestProvider {
	return &ManifestProvider{Path: path}
}

// Sources implements Provider.
func (p *ManifestProvider) Sources() ([]string, error) {
	f, err := fileutils.OpenFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", p.Path, err)
	}
	defer f.Close()

	base := filepath.Dir(p.Path)
	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", p.Path, err)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("manifest %s: %w", p.Path, ErrNoSources)
	}
	return paths, nil
}

// Describe implements Provider.
func (p *ManifestProvider) Describe() string {
	return "manifest " + p.Path
}

// DirectoryProvider yields every file in a directory with the given
// extension, sorted by name.
type DirectoryProvider struct {
	Dir       string
	Extension string
}

// NewDirectoryProvider creates a provider backed by a directory listing.
func NewDirectoryProvider(dir, extension string) *DirectoryProvider {
	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &DirectoryProvider{Dir: dir, Extension: extension}
}

// Sources implements Provider.
func (p *DirectoryProvider) Sources() ([]string, error) {
	files, err := fileutils.ListFilesWithExtension(p.Dir, p.Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("directory %s: %w", p.Dir, ErrNoSources)
	}
	return files, nil
}

// Describe implements Provider.
func (p *DirectoryProvider) Describe() string {
	return "directory " + p.Dir
}

// StaticProvider yields a fixed list of paths.
type StaticProvider []string

// Sources implements Provider.
func (p StaticProvider) Sources() ([]string, error) {
	if len(p) == 0 {
		return nil, ErrNoSources
	}
	return append([]string(nil), p...), nil
}

// Describe implements Provider.
func (p StaticProvider) Describe() string {
	return fmt.Sprintf("%d explicit paths", len(p))
}
