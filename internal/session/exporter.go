package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	defaultOriginalName = "original.java"
	defaultBaseName     = "refactored"
	defaultExtension    = ".java"
	refactoredSuffix    = "_refactored"

	// TextMediaType is the media kind of every exported source.
	TextMediaType = "text/plain; charset=utf-8"
)

// Download is a named byte stream ready to be handed to a save mechanism.
type Download struct {
	Name      string
	Data      []byte
	MediaType string
}

// Sink saves a Download somewhere local (a directory, a writer).
type Sink interface {
	Save(ctx context.Context, d Download) error
}

// OriginalDownload derives the export of the submitted source from s.
// It returns false unless s is Succeeded.
func OriginalDownload(s State) (Download, bool) {
	result, ok := s.Succeeded()
	if !ok {
		return Download{}, false
	}
	name := result.FileName
	if strings.TrimSpace(name) == "" {
		name = defaultOriginalName
	}
	return Download{
		Name:      name,
		Data:      []byte(result.OriginalSource),
		MediaType: TextMediaType,
	}, true
}

// RefactoredDownload derives the export of the transformed source from s.
// It returns false unless s is Succeeded with a refactored source.
func RefactoredDownload(s State) (Download, bool) {
	result, ok := s.Succeeded()
	if !ok || result.RefactoredSource == nil {
		return Download{}, false
	}
	return Download{
		Name:      RefactoredName(result.FileName),
		Data:      []byte(*result.RefactoredSource),
		MediaType: TextMediaType,
	}, true
}

// RefactoredName inserts the refactored marker before the file extension:
// "Foo.java" becomes "Foo_refactored.java" and "Makefile" becomes
// "Makefile_refactored". An empty name falls back to "refactored_refactored.java".
func RefactoredName(fileName string) string {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return defaultBaseName + refactoredSuffix + defaultExtension
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		// dotfile such as ".java": the whole name is the extension
		base = defaultBaseName
	}
	return base + refactoredSuffix + ext
}

// Exporter hands the current result's sources to a Sink. It only reads state.
type Exporter struct {
	source StateSource
	sink   Sink
}

// NewExporter creates an Exporter reading from source and writing to sink.
func NewExporter(source StateSource, sink Sink) *Exporter {
	return &Exporter{source: source, sink: sink}
}

// ExportOriginal saves the submitted source. It is a no-op returning
// (false, nil) unless the state is Succeeded.
func (e *Exporter) ExportOriginal(ctx context.Context) (bool, error) {
	d, ok := OriginalDownload(e.source.State())
	if !ok {
		return false, nil
	}
	return true, e.save(ctx, d)
}

// ExportRefactored saves the transformed source. It is a no-op returning
// (false, nil) unless the state is Succeeded with a refactoring.
func (e *Exporter) ExportRefactored(ctx context.Context) (bool, error) {
	d, ok := RefactoredDownload(e.source.State())
	if !ok {
		return false, nil
	}
	return true, e.save(ctx, d)
}

func (e *Exporter) save(ctx context.Context, d Download) error {
	if err := e.sink.Save(ctx, d); err != nil {
		return fmt.Errorf("save %s: %w", d.Name, err)
	}
	return nil
}
