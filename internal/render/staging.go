package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"git.home.luguber.info/inful/panini/internal/config"
	ferrors "git.home.luguber.info/inful/panini/internal/foundation/errors"
	"git.home.luguber.info/inful/panini/internal/page"
)

// BodyPartial is the partial name a layout uses to include the page body.
const BodyPartial = "body"

// Stager makes a page body addressable by reference so the engine can load
// it as a partial.
type Stager interface {
	// Stage stores body for p and returns its reference.
	Stage(p *page.ParsedPage, body string) (string, error)
	// Open returns the staged content behind ref.
	Open(ref string) (io.Reader, error)
	// Release drops a staged body once its page has rendered.
	Release(ref string)
}

// NewStager returns the stager selected by cfg.Staging.
func NewStager(cfg *config.Config) Stager {
	if cfg.Staging == config.StagingDisk {
		return NewDiskStager(cfg.StagingRoot(), cfg.LayoutsRoot())
	}
	return NewMemoryStager()
}

// MemoryStager keeps staged bodies in memory. References are unique per
// Stage call, so the same page staged twice never collides.
type MemoryStager struct {
	seq    atomic.Uint64
	bodies sync.Map
}

func NewMemoryStager() *MemoryStager { return &MemoryStager{} }

func (s *MemoryStager) Stage(p *page.ParsedPage, body string) (string, error) {
	ref := fmt.Sprintf("memory:%s#%d", p.Source.RelPath, s.seq.Add(1))
	s.bodies.Store(ref, body)
	return ref, nil
}

func (s *MemoryStager) Open(ref string) (io.Reader, error) {
	v, ok := s.bodies.Load(ref)
	if !ok {
		return nil, fmt.Errorf("staged body %q: %w", ref, os.ErrNotExist)
	}
	return strings.NewReader(v.(string)), nil
}

func (s *MemoryStager) Release(ref string) { s.bodies.Delete(ref) }

// Len reports how many bodies are currently staged.
func (s *MemoryStager) Len() int {
	n := 0
	s.bodies.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// DiskStager writes each body to <staging root>/<page rel path>. Paths derive
// from the page's own location, so concurrent renders of distinct pages never
// share a file. References are relative to the layouts directory.
type DiskStager struct {
	root    string
	layouts string
}

func NewDiskStager(root, layoutsRoot string) *DiskStager {
	return &DiskStager{root: root, layouts: layoutsRoot}
}

func (s *DiskStager) Stage(p *page.ParsedPage, body string) (string, error) {
	target := filepath.Join(s.root, filepath.FromSlash(p.Source.RelPath))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", ferrors.FileSystemError("create staging directory").WithCause(err).
			WithContext("path", target).
			Build()
	}
	if err := os.WriteFile(target, []byte(body), 0o644); err != nil {
		return "", ferrors.FileSystemError("write staged body").WithCause(err).
			WithContext("path", target).
			Build()
	}
	ref, err := filepath.Rel(s.layouts, target)
	if err != nil {
		return "", ferrors.FileSystemError("relativize staged body").WithCause(err).Build()
	}
	return filepath.ToSlash(ref), nil
}

func (s *DiskStager) Open(ref string) (io.Reader, error) {
	data, err := os.ReadFile(filepath.Join(s.layouts, filepath.FromSlash(ref)))
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// Release keeps the file; the staging directory is inspectable after a run
// and is overwritten by the next one.
func (s *DiskStager) Release(string) {}
