package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ShashankBhake/st-shield-backend/models"
)

// LocalStorage keeps artifacts in a directory on disk.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Save(_ context.Context, name, _ string, r io.Reader) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("publish export: %w", err)
	}
	return nil
}

// List returns artifacts newest first.
func (s *LocalStorage) List(_ context.Context) ([]models.ExportArtifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read export dir: %w", err)
	}

	artifacts := make([]models.ExportArtifact, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || ValidateName(e.Name()) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, models.ExportArtifact{
			Name:     e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
	}
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Modified.After(artifacts[j].Modified)
	})
	return artifacts, nil
}

func (s *LocalStorage) Download(_ context.Context, name string) (Download, error) {
	path, err := s.existing(name)
	if err != nil {
		return Download{}, err
	}
	return Download{Path: path}, nil
}

func (s *LocalStorage) Delete(_ context.Context, name string) error {
	path, err := s.existing(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete export: %w", err)
	}
	return nil
}

func (s *LocalStorage) existing(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrArtifactNotFound
		}
		return "", fmt.Errorf("stat export: %w", err)
	}
	return path, nil
}
