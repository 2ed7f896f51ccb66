package archive

import (
	"context"
	"errors"
	"path"

	"github.com/imamik/cephrig/internal/provisioning"
	"github.com/imamik/cephrig/internal/util/async"
)

const phase = "archive"

// LogObject is the object name of the captured playbook output.
const LogObject = "ansible-playbook.log"

// ObjectStore is the subset of the S3 client used for archiving.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// Provisioner archives run artifacts. Archive failures are reported but
// never fail the run.
type Provisioner struct {
	store ObjectStore
}

// NewProvisioner creates an archive provisioner.
func NewProvisioner(store ObjectStore) *Provisioner {
	return &Provisioner{store: store}
}

// Name implements the Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Key returns the object key for name under the configured prefix and run.
func Key(prefix, run, name string) string {
	return path.Join(prefix, run, name)
}

// Provision implements the Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	archive := ctx.Config.Archive
	if !archive.Enabled() || p.store == nil {
		return nil
	}

	if err := p.store.EnsureBucket(ctx, archive.Bucket); err != nil {
		ctx.Observer.Printf("[%s] Skipping archive: %v", phase, err)
		return nil
	}

	objects := make(map[string][]byte)
	var order []string
	for _, a := range ctx.State.Artifacts.All() {
		order = append(order, a.Name())
		objects[a.Name()] = a.Content
	}
	if ctx.State.PlaybookOutput != "" {
		order = append(order, LogObject)
		objects[LogObject] = []byte(ctx.State.PlaybookOutput)
	}

	// Uploads touch only the object store, never the cluster hosts.
	tasks := make([]async.Task, 0, len(order))
	for _, name := range order {
		key := Key(archive.Prefix, ctx.Config.Name, name)
		tasks = append(tasks, async.Task{
			Name: name,
			Func: func(c context.Context) error {
				if err := p.store.PutObject(c, archive.Bucket, key, objects[name]); err != nil {
					ctx.Observer.Printf("[%s] Failed to archive %s: %v", phase, name, err)
					return err
				}
				provisioning.LogArtifactArchived(ctx.Observer, phase, name, key)
				return nil
			},
		})
	}

	if err := async.RunParallel(ctx, tasks); err != nil {
		ctx.Observer.Printf("[%s] %d of %d objects were not archived", phase, countJoined(err), len(order))
	}
	return nil
}

// countJoined returns the number of errors joined by async.RunParallel.
func countJoined(err error) int {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return len(joined.Unwrap())
	}
	return 1
}
