package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxFileSize = 5 * 1024 * 1024 // 5 MiB per file
	MaxFiles    = 5               // per request

	stagingDir = ".staging"
)

// Both checks have to pass independently: a spoofed content type does
// not rescue a bad extension, and vice versa.
var (
	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
	}
	allowedContentTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
	}
)

// Service stages uploaded images on disk. Files are written under
// <baseDir>/.staging first and promoted into <baseDir> only when the
// caller commits, so a failed record write never leaves an orphan in
// the public upload root.
type Service struct {
	baseDir   string
	urlPrefix string // e.g. "/uploads"
}

func NewService(baseDir, urlPrefix string) *Service {
	return &Service{
		baseDir:   baseDir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
}

// Staged holds files accepted into the staging area. Paths are the
// relative URLs ("/uploads/<name>") the files will have after Commit,
// in the same order as the input files.
type Staged struct {
	Paths []string

	svc       *Service
	stagedAt  []string // absolute staging paths
	finalName []string
}

// Stage validates and writes every file into the staging area. On any
// rejection nothing is kept: already-staged files of the same batch
// are removed before the error is returned.
func (s *Service) Stage(files []*multipart.FileHeader) (*Staged, error) {
	if len(files) > MaxFiles {
		return nil, ErrTooManyFiles
	}

	st := &Staged{svc: s}

	for _, fh := range files {
		if err := s.stageOne(st, fh); err != nil {
			st.Discard()
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
	}

	return st, nil
}

func (s *Service) stageOne(st *Staged, fh *multipart.FileHeader) error {
	if fh.Size == 0 {
		return ErrEmptyFile
	}
	if fh.Size > MaxFileSize {
		return ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	declared := strings.TrimSpace(strings.Split(fh.Header.Get("Content-Type"), ";")[0])
	if !allowedExtensions[ext] || !allowedContentTypes[declared] {
		return ErrUnsupportedMediaType
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	absDir := filepath.Join(s.baseDir, stagingDir)
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	tmpPath := filepath.Join(absDir, uuid.New().String()+ext)
	dst, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create staged file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write staged file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close staged file: %w", err)
	}

	// Final name is the upload timestamp plus the original extension.
	// Two uploads in the same nanosecond with the same extension would
	// collide; known limitation inherited from the naming scheme.
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)

	st.stagedAt = append(st.stagedAt, tmpPath)
	st.finalName = append(st.finalName, name)
	st.Paths = append(st.Paths, s.urlPrefix+"/"+name)

	return nil
}

// Commit promotes every staged file into the upload root.
func (st *Staged) Commit() error {
	for i, tmpPath := range st.stagedAt {
		final := filepath.Join(st.svc.baseDir, st.finalName[i])
		if err := os.Rename(tmpPath, final); err != nil {
			return fmt.Errorf("failed to commit %s: %w", st.finalName[i], err)
		}
	}
	st.stagedAt = nil
	return nil
}

// Discard removes all staged files. Safe to call after Commit (no-op)
// and more than once.
func (st *Staged) Discard() {
	for _, tmpPath := range st.stagedAt {
		_ = os.Remove(tmpPath)
	}
	st.stagedAt = nil
}

// Remove deletes a committed file by its relative URL path. Paths
// outside the upload root are ignored.
func (s *Service) Remove(relPath string) {
	name := strings.TrimPrefix(relPath, s.urlPrefix+"/")
	if name == relPath || name == "" {
		return
	}
	name = filepath.Base(name) // no traversal
	_ = os.Remove(filepath.Join(s.baseDir, name))
}
