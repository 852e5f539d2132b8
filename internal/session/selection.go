// Package session holds the client-side review lifecycle: the selected input
// artifact, the single-flight analysis orchestrator and the result exporter.
package session

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

// Artifact is an in-memory named file payload.
type Artifact struct {
	Name      string
	Content   []byte
	MediaType string
}

// NewArtifactFromFile reads path into an Artifact named after its base name.
func NewArtifactFromFile(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	name := filepath.Base(path)
	return &Artifact{
		Name:      name,
		Content:   data,
		MediaType: mediaTypeFor(name, data),
	}, nil
}

func mediaTypeFor(name string, data []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return http.DetectContentType(data)
}

// Holder keeps at most one selected artifact. Safe for concurrent use.
type Holder struct {
	mu      sync.RWMutex
	current *Artifact
}

// NewHolder returns an empty Holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Set replaces the current selection. A nil artifact clears it.
// The artifact is copied so later mutation by the caller has no effect.
func (h *Holder) Set(a *Artifact) {
	var next *Artifact
	if a != nil {
		cp := *a
		cp.Content = append([]byte(nil), a.Content...)
		next = &cp
	}

	h.mu.Lock()
	h.current = next
	h.mu.Unlock()
}

// Current returns a copy of the selected artifact, or false when none is held.
func (h *Holder) Current() (Artifact, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return Artifact{}, false
	}
	cp := *h.current
	cp.Content = append([]byte(nil), h.current.Content...)
	return cp, true
}
