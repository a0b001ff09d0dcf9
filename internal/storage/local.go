package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	// ErrS3NotConfigured is returned when S3 operations are attempted
	// without proper configuration.
	ErrS3NotConfigured = errors.New("S3 storage is not configured")
	// ErrOutsideOutputDir is returned for paths or names that escape the output directory.
	ErrOutsideOutputDir = errors.New("path is outside the output directory")
)

// Compile-time check that LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)

// LocalStorage implements the Storage interface using local disk.
// Every file it creates lives directly inside a single output directory.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates a new LocalStorage instance.
// If dir is empty, a "videoeditor" directory under os.TempDir() is used.
// The directory is created if it doesn't exist.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "videoeditor")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	return &LocalStorage{dir: abs}, nil
}

// Dir returns the output directory path.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// NewOutputPath reserves a file named <base>_<tag>_<random><ext>, where base
// is the source file name without its extension.
func (s *LocalStorage) NewOutputPath(source, tag, ext string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "output"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	f, err := os.CreateTemp(s.dir, fmt.Sprintf("%s_%s_*%s", sanitize(base), sanitize(tag), ext))
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close output file: %w", err)
	}
	return f.Name(), nil
}

// SaveTemp saves data to a new file and returns the file path.
// The name is used as a base for the filename with a unique suffix; its
// extension is kept so media tools can sniff the container.
func (s *LocalStorage) SaveTemp(ctx context.Context, name string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	ext := filepath.Ext(name)
	base := sanitize(strings.TrimSuffix(filepath.Base(name), ext))
	f, err := os.CreateTemp(s.dir, base+"_*"+sanitize(ext))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	fileName := f.Name()
	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(fileName)
		return "", fmt.Errorf("write temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(fileName)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return fileName, nil
}

// LoadTemp opens a file inside the output directory.
func (s *LocalStorage) LoadTemp(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	if !s.contains(path) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideOutputDir, path)
	}

	f, err := os.Open(path) // #nosec G304 - path is confined to the output directory
	if err != nil {
		return nil, fmt.Errorf("open temp file: %w", err)
	}

	return f, nil
}

// CleanupTemp removes the specified files.
// It continues cleanup even if some files fail to delete,
// returning the first error encountered. Missing files are not an error.
func (s *LocalStorage) CleanupTemp(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if !s.contains(p) {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s", ErrOutsideOutputDir, p)
			}
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove temp file %s: %w", p, err)
			}
		}
	}
	return firstErr
}

// Resolve maps a bare file name to its path inside the output directory.
// Names containing path separators or dot segments are rejected.
func (s *LocalStorage) Resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrOutsideOutputDir, name)
	}
	return filepath.Join(s.dir, name), nil
}

// UploadFile is not supported by LocalStorage and returns ErrS3NotConfigured.
func (s *LocalStorage) UploadFile(_ context.Context, _, _ string) (string, error) {
	return "", ErrS3NotConfigured
}

func (s *LocalStorage) contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(s.dir, abs)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// sanitize keeps a file name fragment safe for os.CreateTemp patterns and
// for ffmpeg's line-based concat lists.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == '*', unicode.IsControl(r):
			return '_'
		}
		return r
	}, s)
}
