// Package artifact holds documents generated during a run, such as the
// inventory and the playbook, together with the local temp files backing
// them.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/cephrig/internal/remote"
)

// Temp file prefixes of the generated documents.
const (
	InventoryPrefix = "teuth_ansible_hosts_"
	PlaybookPrefix  = "ceph_ansible_playbook_"
)

// Artifact is a generated document and the local file holding it.
type Artifact struct {
	Path    string
	Content []byte
}

// Name returns the base name of the local file.
func (a *Artifact) Name() string {
	return filepath.Base(a.Path)
}

// WriteTemp writes content to a new temp file named after prefix.
func WriteTemp(prefix string, content []byte) (*Artifact, error) {
	f, err := os.CreateTemp("", prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to close %s: %w", f.Name(), err)
	}
	return &Artifact{Path: f.Name(), Content: content}, nil
}

// Upload copies the artifact to remotePath on r.
func (a *Artifact) Upload(ctx context.Context, r remote.Remote, remotePath string) error {
	if err := remote.WriteFile(ctx, r, remotePath, a.Content); err != nil {
		return fmt.Errorf("failed to upload %s: %w", a.Name(), err)
	}
	return nil
}

// Remove deletes the local file. A file that is already gone is not an error.
func (a *Artifact) Remove() error {
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Set tracks the artifacts of one run.
type Set struct {
	items []*Artifact
}

// Add registers a.
func (s *Set) Add(a *Artifact) {
	s.items = append(s.items, a)
}

// All returns the registered artifacts in registration order.
func (s *Set) All() []*Artifact {
	return append([]*Artifact(nil), s.items...)
}

// Cleanup removes every local file and returns the first error.
func (s *Set) Cleanup() error {
	var first error
	for _, a := range s.items {
		if err := a.Remove(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
