package ocr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/agenthands/scrivener/internal/core/model"
)

// Stager writes uploads to a scratch directory for the duration of OCR.
type Stager struct {
	Dir string
}

// NewStager stages into dir, or the system temp directory when dir is empty.
func NewStager(dir string) *Stager {
	return &Stager{Dir: dir}
}

// StagedFile is an upload written to disk. Release must be called once OCR
// is done, whatever its outcome.
type StagedFile struct {
	path string
}

func (s *Stager) Stage(u model.Upload) (*StagedFile, error) {
	f, err := os.CreateTemp(s.Dir, "upload-*-"+safeName(u.Filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	staged := &StagedFile{path: f.Name()}

	if _, err := f.Write(u.Data); err != nil {
		f.Close()
		staged.Release()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		staged.Release()
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	return staged, nil
}

func (f *StagedFile) Path() string {
	return f.path
}

func (f *StagedFile) ReadAll() ([]byte, error) {
	return os.ReadFile(f.path)
}

// Release deletes the file. Releasing twice is not an error.
func (f *StagedFile) Release() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func safeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.NewReplacer("*", "_", string(os.PathSeparator), "_").Replace(name)
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return name
}
