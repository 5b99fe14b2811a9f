package results

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Packaged is the staged results artifact: archive bytes plus metadata,
// built locally before any external state is mutated.
type Packaged struct {
	Archive        []byte
	FileCount      int
	TotalSizeBytes int64
	DirectoryName  string
}

// Packager builds a transportable archive from a local results directory.
type Packager interface {
	// PackageDirectory validates and archives a results directory.
	//
	// Returns ErrInvalidResultsDir (wrapped) when the directory is missing,
	// not a directory, or contains no recognizable output subtree, and a
	// *PackagingError for archive I/O failures.
	PackageDirectory(dir string) (*Packaged, error)
}

// ZipPackager packages simulation output directories into a ZIP archive.
//
// The simulator writes one RUN* directory per realization. Input may be a
// single RUN* directory or a parent containing several; the archive
// preserves the RUN*/... layout either way so downstream analysis tooling
// keeps working.
type ZipPackager struct {
	// Includes are doublestar patterns applied to archive-relative paths.
	// Empty means include everything.
	Includes []string

	logger *zap.Logger
}

var _ Packager = (*ZipPackager)(nil)

// NewZipPackager creates a packager. A nil logger disables logging.
func NewZipPackager(logger *zap.Logger, includes ...string) *ZipPackager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZipPackager{Includes: includes, logger: logger}
}

// PackageDirectory implements Packager.
func (p *ZipPackager) PackageDirectory(dir string) (*Packaged, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidResultsDir, dir)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrInvalidResultsDir, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidResultsDir, dir)
	}

	runDirs, err := findRunDirs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidResultsDir, dir, err)
	}
	selfIsRunDir := isRunDirName(filepath.Base(dir))

	if len(runDirs) == 0 && !selfIsRunDir {
		p.logger.Warn("no output directories found",
			zap.String("path", dir))
		return nil, fmt.Errorf("%w: no RUN* output found in %s", ErrInvalidResultsDir, dir)
	}

	archive, count, err := p.buildZip(dir, runDirs)
	if err != nil {
		return nil, &PackagingError{Dir: dir, Err: err}
	}

	p.logger.Info("packaged results",
		zap.String("dir", dir),
		zap.Int("files", count),
		zap.Int("bytes", len(archive)))

	return &Packaged{
		Archive:        archive,
		FileCount:      count,
		TotalSizeBytes: int64(len(archive)),
		DirectoryName:  filepath.Base(dir),
	}, nil
}

// buildZip archives the selected subtrees. Only regular files are included;
// symlinks are skipped so the archive can never escape the results root.
func (p *ZipPackager) buildZip(dir string, runDirs []string) ([]byte, int, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	count := 0

	targets := runDirs
	if len(targets) == 0 {
		targets = []string{dir}
	}

	for _, base := range targets {
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				if !d.IsDir() && d.Type()&fs.ModeSymlink != 0 {
					p.logger.Warn("skipping symlink in results", zap.String("path", path))
				}
				return nil
			}

			arcname, err := archiveName(path, dir, len(runDirs) > 0)
			if err != nil {
				return err
			}
			if !p.included(arcname) {
				return nil
			}

			w, err := zw.Create(arcname)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			_, err = io.Copy(w, f)
			_ = f.Close()
			if err != nil {
				return err
			}
			count++
			return nil
		})
		if err != nil {
			_ = zw.Close()
			return nil, 0, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), count, nil
}

func (p *ZipPackager) included(arcname string) bool {
	if len(p.Includes) == 0 {
		return true
	}
	for _, pattern := range p.Includes {
		if ok, err := doublestar.Match(pattern, arcname); err == nil && ok {
			return true
		}
	}
	return false
}

// archiveName maps an on-disk path to its path inside the archive.
//
// Parent case: paths stay relative to the parent (RUN1/out.csv).
// Single RUN* directory case: paths are prefixed with the directory name so
// the archive layout matches the parent case.
func archiveName(path, dir string, parentCase bool) (string, error) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "", err
	}
	if !parentCase {
		rel = filepath.Join(filepath.Base(dir), rel)
	}
	return filepath.ToSlash(rel), nil
}

func findRunDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && isRunDirName(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

func isRunDirName(name string) bool {
	return strings.HasPrefix(strings.ToUpper(name), "RUN")
}
