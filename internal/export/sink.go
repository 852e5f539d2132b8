// Package export provides local save mechanisms for exported sources.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiranshivaraju/codereview/internal/session"
)

// ErrInvalidName is returned when a download name cannot be used as a file name.
var ErrInvalidName = errors.New("invalid download name")

// FileSink writes downloads into a directory, one file per download.
// Existing files with the same name are replaced atomically.
type FileSink struct {
	dir string
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Path returns where a download with the given name would be written.
func (s *FileSink) Path(name string) (string, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *FileSink) Save(ctx context.Context, d session.Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	finalPath, err := s.Path(d.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.dir, ".export-*")
	if err != nil {
		return fmt.Errorf("creating temp export file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(d.Data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing export data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp export file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting export file mode: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming export file to %s: %w", finalPath, err)
	}
	success = true

	slog.Info("exported source", "path", finalPath, "bytes", len(d.Data))
	return nil
}

// WriterSink writes download contents to w, ignoring the name.
type WriterSink struct {
	w io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Save(ctx context.Context, d session.Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.w.Write(d.Data); err != nil {
		return fmt.Errorf("writing %s: %w", d.Name, err)
	}
	return nil
}

// sanitizeName reduces name to a single path element.
func sanitizeName(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	base := filepath.Base(strings.TrimSpace(name))
	switch base {
	case "", ".", "..", "/":
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return base, nil
}

var (
	_ session.Sink = (*FileSink)(nil)
	_ session.Sink = (*WriterSink)(nil)
)
