package services

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// readContentDir loads every regular file below dir. Request paths are the
// slash-separated paths relative to dir. Hidden files and directories are
// skipped.
func readContentDir(dir string) ([]domain.ContentFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: content directory: %v", domain.ErrValidation, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrValidation, dir)
	}

	var files []domain.ContentFile
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, domain.ContentFile{
			RequestPath: "/" + filepath.ToSlash(rel),
			Enabled:     true,
			Size:        int64(len(content)),
			Content:     content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read content directory: %w", err)
	}
	return files, nil
}
