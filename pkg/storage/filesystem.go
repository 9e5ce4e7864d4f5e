package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrInvalidName is returned for names that could escape the base directory.
var ErrInvalidName = errors.New("invalid file name")

// FileInfo describes one stored file.
type FileInfo struct {
	Filename string
	Created  time.Time
	Size     int64
}

// LocalStorage persists files flat inside a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./reports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// ValidateName rejects empty names, separators and parent-directory sequences.
func ValidateName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return ErrInvalidName
	}
	return nil
}

// Save writes data under filename, replacing any existing file of that name.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	if err := ValidateName(filename); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("prepare reports directory: %w", err)
	}
	if err := os.WriteFile(s.resolve(filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return filename, nil
}

// ReadFile returns the content of a stored file. Missing files yield an error matching os.ErrNotExist.
func (s *LocalStorage) ReadFile(filename string) ([]byte, error) {
	if err := ValidateName(filename); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.resolve(filename))
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	return data, nil
}

// Stat reports whether a regular file exists under filename.
func (s *LocalStorage) Stat(filename string) (FileInfo, error) {
	if err := ValidateName(filename); err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(s.resolve(filename))
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat report file: %w", err)
	}
	if info.IsDir() {
		return FileInfo{}, fmt.Errorf("stat report file: %w", os.ErrNotExist)
	}
	return FileInfo{Filename: filename, Created: info.ModTime(), Size: info.Size()}, nil
}

// List returns regular files ending in suffix, newest modification first.
// A missing base directory yields an empty list.
func (s *LocalStorage) List(suffix string) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []FileInfo{}, nil
		}
		return nil, fmt.Errorf("list reports: %w", err)
	}
	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat report %s: %w", entry.Name(), err)
		}
		files = append(files, FileInfo{Filename: entry.Name(), Created: info.ModTime(), Size: info.Size()})
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Created.After(files[j].Created)
	})
	return files, nil
}

func (s *LocalStorage) resolve(filename string) string {
	return filepath.Join(s.baseDir, filename)
}
