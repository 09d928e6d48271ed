package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"docrelay/internal/models"
)

var (
	ErrNoFile   = errors.New("no file attached")
	ErrTooLarge = errors.New("file too large")
)

// Stager writes uploaded files to a scratch directory while they are
// forwarded. Every staged file gets its own generated name, so concurrent
// uploads of the same filename never collide.
type Stager struct {
	dir      string
	maxBytes int64
}

// New prepares the staging directory.
func New(dir string, maxBytes int64) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Stager) Dir() string {
	return s.dir
}

func (s *Stager) MaxBytes() int64 {
	return s.maxBytes
}

// Stage copies the uploaded file to disk. The caller owns the returned file
// and must Remove it.
func (s *Stager) Stage(header *multipart.FileHeader) (*models.TempFile, error) {
	if header == nil {
		return nil, ErrNoFile
	}
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return nil, ErrTooLarge
	}
	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.dir, stagedPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	tmp := &models.TempFile{
		FileName:   filepath.Base(header.Filename),
		StoredPath: dst.Name(),
		CreatedAt:  time.Now().UTC(),
	}

	var reader io.Reader = src
	if s.maxBytes > 0 {
		reader = io.LimitReader(src, s.maxBytes+1)
	}
	sniff := make([]byte, 512)
	n, _ := io.ReadFull(reader, sniff)
	tmp.MimeType = http.DetectContentType(sniff[:n])

	written, err := dst.Write(sniff[:n])
	if err == nil {
		var rest int64
		rest, err = io.Copy(dst, reader)
		tmp.Size = int64(written) + rest
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.Remove(tmp)
		return nil, fmt.Errorf("write staged file: %w", err)
	}
	if s.maxBytes > 0 && tmp.Size > s.maxBytes {
		_ = s.Remove(tmp)
		return nil, ErrTooLarge
	}
	return tmp, nil
}

// Remove deletes a staged file. Removing an already deleted file is not an
// error.
func (s *Stager) Remove(f *models.TempFile) error {
	if f == nil || f.StoredPath == "" {
		return nil
	}
	if err := os.Remove(f.StoredPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}
