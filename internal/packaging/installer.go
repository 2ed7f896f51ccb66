package packaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/remote"
)

// Operations reported to the operation hook.
const (
	OpInstall       = "install"
	OpUpgrade       = "upgrade"
	OpRemove        = "remove"
	OpRemoveSources = "remove-sources"
)

// Logger receives progress messages.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// aptOptions keep existing config files on upgrades without prompting.
var aptOptions = []remote.Arg{
	remote.Literal("sudo"),
	remote.Literal("DEBIAN_FRONTEND=noninteractive"),
	remote.Literal("apt-get"),
	remote.Literal("-y"),
	remote.Literal("--force-yes"),
	remote.Literal("-o"),
	remote.Raw(`Dpkg::Options::="--force-confdef"`),
	remote.Literal("-o"),
	remote.Raw(`Dpkg::Options::="--force-confold"`),
}

// Installer drives apt on a remote host for one project.
type Installer struct {
	project     string
	packages    []string
	local       string
	keyURL      string
	keyIdentity string
	resolver    Resolver
	logger      Logger
	onOperation func(op string, err error)
}

// Option configures an Installer.
type Option func(*Installer)

// WithLogger sets the progress logger.
func WithLogger(l Logger) Option {
	return func(i *Installer) { i.logger = l }
}

// WithOperationHook registers fn to be called when an operation finishes.
func WithOperationHook(fn func(op string, err error)) Option {
	return func(i *Installer) { i.onOperation = fn }
}

// NewInstaller returns an installer for the packages of cfg.
func NewInstaller(cfg config.InstallConfig, resolver Resolver, opts ...Option) *Installer {
	i := &Installer{
		project:     cfg.Project,
		packages:    cfg.Packages,
		local:       cfg.Local,
		keyURL:      cfg.Repository.KeyURL,
		keyIdentity: cfg.Repository.KeyIdentity,
		resolver:    resolver,
		logger:      nopLogger{},
	}
	if i.project == "" {
		i.project = config.DefaultProject
	}
	if i.keyURL == "" {
		i.keyURL = config.DefaultKeyURL
	}
	if i.keyIdentity == "" {
		i.keyIdentity = config.DefaultKeyIdentity
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SourcesListPath returns the apt sources entry of the project.
func (i *Installer) SourcesListPath() string {
	return fmt.Sprintf("/etc/apt/sources.list.d/%s.list", i.project)
}

// Install registers the repository, installs the pinned packages and then
// any local .deb files.
func (i *Installer) Install(ctx context.Context, r remote.Remote) (err error) {
	defer i.report(OpInstall, &err)

	b, err := i.register(ctx, r)
	if err != nil {
		return err
	}
	i.logger.Printf("Installing packages: %s on remote deb %s", strings.Join(i.packages, ", "), b.Arch)
	if err := i.installPinned(ctx, r, b.Version); err != nil {
		return err
	}
	return i.installLocal(ctx, r)
}

// Upgrade registers the repository again and installs the pinned packages
// over the existing ones.
func (i *Installer) Upgrade(ctx context.Context, r remote.Remote) (err error) {
	defer i.report(OpUpgrade, &err)

	b, err := i.register(ctx, r)
	if err != nil {
		return err
	}
	return i.installPinned(ctx, r, b.Version)
}

// Remove purges the packages. A package failing to purge does not stop the
// others; packages left broken are force-removed afterwards.
func (i *Installer) Remove(ctx context.Context, r remote.Remote) (err error) {
	defer i.report(OpRemove, &err)

	i.logger.Printf("Removing packages: %s on Debian system.", strings.Join(i.packages, ", "))

	purge := remote.Args("for", "d", "in", i.packages, remote.Raw(";"), "do")
	purge = append(purge, aptOptions...)
	purge = append(purge, remote.Args("purge", remote.Raw("$d"), remote.Raw("||"), "true", remote.Raw(";"), "done")...)
	if _, err := r.Run(ctx, &remote.Command{Args: purge}); err != nil {
		return fmt.Errorf("failed to purge packages: %w", err)
	}

	if _, err := remote.Exec(ctx, r,
		"dpkg", "-l", remote.Raw("|"),
		"grep", `^.\(U\|H\)R`, remote.Raw("|"),
		"awk", "{print $2}", remote.Raw("|"),
		"sudo", "xargs", "--no-run-if-empty", "dpkg", "-P", "--force-remove-reinstreq",
	); err != nil {
		return fmt.Errorf("failed to remove broken packages: %w", err)
	}

	autoremove := append(append([]remote.Arg(nil), aptOptions...), remote.Literal("autoremove"))
	if _, err := r.Run(ctx, &remote.Command{Args: autoremove}); err != nil {
		return fmt.Errorf("failed to autoremove: %w", err)
	}
	return nil
}

// RemoveSourcesList deletes the project's apt sources entry and refreshes
// the index. Failures are logged only.
func (i *Installer) RemoveSourcesList(ctx context.Context, r remote.Remote) (err error) {
	defer i.report(OpRemoveSources, &err)

	res, err := remote.Try(ctx, r,
		"sudo", "rm", "-f", i.SourcesListPath(), remote.Raw("&&"), "sudo", "apt-get", "update")
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", i.SourcesListPath(), err)
	}
	if res.ExitStatus != 0 {
		i.logger.Printf("Removing %s on %s exited with status %d", i.SourcesListPath(), r.Name(), res.ExitStatus)
	}
	return nil
}

// register makes sure the signing key is known, writes the sources entry
// and refreshes the package index.
func (i *Installer) register(ctx context.Context, r remote.Remote) (*Builder, error) {
	if err := i.ensureKey(ctx, r); err != nil {
		return nil, err
	}

	b, err := i.resolver.Resolve(ctx, i.project, r)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s packages: %w", i.project, err)
	}
	if b.Version == "" {
		return nil, ErrNoVersion
	}
	i.logger.Printf("Pulling from %s", b.BaseURL)
	i.logger.Printf("Package version is %s", b.Version)

	if _, err := remote.Exec(ctx, r,
		"echo", "deb", b.BaseURL, b.Codename, "main", remote.Raw("|"),
		"sudo", "tee", i.SourcesListPath(),
	); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", i.SourcesListPath(), err)
	}

	res, err := remote.Try(ctx, r, "sudo", "apt-get", "update")
	if err != nil {
		return nil, fmt.Errorf("failed to update package index: %w", err)
	}
	if res.ExitStatus != 0 {
		i.logger.Printf("apt-get update on %s exited with status %d, continuing", r.Name(), res.ExitStatus)
	}
	return b, nil
}

func (i *Installer) ensureKey(ctx context.Context, r remote.Remote) error {
	res, err := remote.Try(ctx, r, "sudo", "apt-key", "list", remote.Raw("|"), "grep", "Ceph")
	if err != nil {
		return fmt.Errorf("failed to list apt keys: %w", err)
	}
	if strings.Contains(res.Stdout, i.keyIdentity) {
		return nil
	}
	if _, err := remote.Exec(ctx, r,
		"wget", "-q", "-O-", i.keyURL, remote.Raw("|"), "sudo", "apt-key", "add", "-",
	); err != nil {
		return fmt.Errorf("failed to add release key: %w", err)
	}
	return nil
}

// PinnedPackages returns name=version for every package.
func PinnedPackages(packages []string, version string) []string {
	pinned := make([]string, len(packages))
	for idx, p := range packages {
		pinned[idx] = p + "=" + version
	}
	return pinned
}

func (i *Installer) installPinned(ctx context.Context, r remote.Remote, version string) error {
	args := append(append([]remote.Arg(nil), aptOptions...), remote.Literal("install"))
	args = append(args, remote.Args(PinnedPackages(i.packages, version))...)
	if _, err := r.Run(ctx, &remote.Command{Args: args}); err != nil {
		return fmt.Errorf("failed to install packages: %w", err)
	}
	return nil
}

// installLocal copies the files of the local directory to the same path on
// the remote and installs them with dpkg.
func (i *Installer) installLocal(ctx context.Context, r remote.Remote) error {
	if i.local == "" {
		return nil
	}
	entries, err := os.ReadDir(i.local)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", i.local, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := remote.Exec(ctx, r, "sudo", "mkdir", "-p", i.local); err != nil {
		return fmt.Errorf("failed to create %s: %w", i.local, err)
	}
	for _, name := range files {
		local := filepath.Join(i.local, name)
		// #nosec G304
		data, err := os.ReadFile(local)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", local, err)
		}
		if err := remote.SudoWriteFile(ctx, r, local, data, "644"); err != nil {
			return err
		}
	}
	for _, name := range files {
		if _, err := remote.Exec(ctx, r, "sudo", "dpkg", "-i", filepath.Join(i.local, name)); err != nil {
			return fmt.Errorf("failed to install %s: %w", name, err)
		}
	}
	return nil
}

func (i *Installer) report(op string, err *error) {
	if i.onOperation != nil {
		i.onOperation(op, *err)
	}
}
