package topology

import (
	"context"
	"fmt"

	"github.com/imamik/cephrig/internal/artifact"
	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/remote"
)

// Mode selects how ceph-ansible gets onto the installer.
type Mode int

const (
	// ModeSource clones ceph-ansible and installs a pinned ansible.
	ModeSource Mode = iota
	// ModePrebuilt uses the ceph-ansible tree installed from packages.
	ModePrebuilt
)

func (m Mode) String() string {
	if m == ModePrebuilt {
		return "prebuilt"
	}
	return "source"
}

// ModeFor returns the mode configured by the rhbuild switch.
func ModeFor(cfg *config.CephAnsibleConfig) Mode {
	if cfg.RHBuild {
		return ModePrebuilt
	}
	return ModeSource
}

// Remote paths used while staging.
const (
	PrebuiltTree      = "/usr/share/ceph-ansible"
	PrebuiltInventory = "/tmp/inven.yml"
	PrebuiltPlaybook  = "/tmp/site.yml"
	CheckoutDir       = "ceph-ansible"
	SourceCheckout    = "~/ceph-ansible"
	StagedInventory   = "inven.yml"
	StagedPlaybook    = "site.yml"
	ClientConfPath    = "/etc/ceph/ceph.conf"
	ClientKeyringPath = "/etc/ceph/ceph.client.admin.keyring"
)

// Documents are the generated files a run stages.
type Documents struct {
	Inventory *artifact.Artifact
	Playbook  *artifact.Artifact
}

// Execution is the per-run execution context. It is selected once and not
// changed afterwards.
type Execution struct {
	Installer *cluster.Host
	Mode      Mode

	// WorkDir is where ansible-playbook runs, relative to the login home.
	WorkDir remote.Arg
	// Activate, when set, is sourced before ansible-playbook.
	Activate string
	// InventoryArg and PlaybookArg are passed to ansible-playbook.
	InventoryArg string
	PlaybookArg  string
}

// SelectExecution picks the installer and fills in the paths of mode.
func SelectExecution(c *cluster.Cluster, mode Mode) (*Execution, error) {
	installer, err := c.FirstMon()
	if err != nil {
		return nil, fmt.Errorf("failed to select installer: %w", err)
	}

	ex := &Execution{Installer: installer, Mode: mode, PlaybookArg: StagedPlaybook}
	if mode == ModePrebuilt {
		ex.WorkDir = remote.Literal(CheckoutDir)
		ex.InventoryArg = PrebuiltInventory
	} else {
		ex.WorkDir = remote.Raw(SourceCheckout)
		ex.Activate = "venv/bin/activate"
		ex.InventoryArg = StagedInventory
	}
	return ex, nil
}

// stager prepares the installer for a mode.
type stager interface {
	stage(ctx context.Context, ex *Execution, docs Documents) error
}

type prebuiltStager struct {
	runner *Runner
}

func (s prebuiltStager) stage(ctx context.Context, ex *Execution, docs Documents) error {
	r := ex.Installer.Remote
	if err := docs.Inventory.Upload(ctx, r, PrebuiltInventory); err != nil {
		return err
	}
	if err := docs.Playbook.Upload(ctx, r, PrebuiltPlaybook); err != nil {
		return err
	}
	if _, err := remote.Exec(ctx, r, "cp", "-R", PrebuiltTree, "."); err != nil {
		return fmt.Errorf("failed to copy %s: %w", PrebuiltTree, err)
	}
	if _, err := remote.Exec(ctx, r, "cat", PrebuiltPlaybook, remote.Raw(">"), CheckoutDir+"/"+StagedPlaybook); err != nil {
		return fmt.Errorf("failed to install playbook: %w", err)
	}
	for _, path := range []string{PrebuiltInventory, CheckoutDir + "/" + StagedPlaybook} {
		out, err := remote.Exec(ctx, r, "cat", path)
		if err != nil {
			return fmt.Errorf("failed to read back %s: %w", path, err)
		}
		s.runner.logOutput(out)
	}
	return nil
}

type sourceStager struct {
	runner *Runner
}

func (s sourceStager) stage(ctx context.Context, ex *Execution, docs Documents) error {
	r := ex.Installer.Remote
	cfg := s.runner.cfg

	if err := s.installDependencies(ctx, ex.Installer); err != nil {
		return err
	}
	if _, err := remote.Try(ctx, r, "rm", "-rf", remote.Raw(SourceCheckout)); err != nil {
		return fmt.Errorf("failed to remove old checkout: %w", err)
	}
	if _, err := remote.Exec(ctx, r, "git", "clone", "-b", cfg.Branch, cfg.Repo, remote.Raw(SourceCheckout)); err != nil {
		return fmt.Errorf("failed to clone %s: %w", cfg.Repo, err)
	}
	if err := docs.Inventory.Upload(ctx, r, CheckoutDir+"/"+StagedInventory); err != nil {
		return err
	}
	if err := docs.Playbook.Upload(ctx, r, CheckoutDir+"/"+StagedPlaybook); err != nil {
		return err
	}
	return nil
}

// bootstrap creates the virtualenv and installs the pinned ansible.
func (s sourceStager) bootstrap(ctx context.Context, ex *Execution) error {
	_, err := remote.Exec(ctx, ex.Installer.Remote,
		"cd", ex.WorkDir, remote.Raw(";"),
		"virtualenv", "--system-site-packages", "venv", remote.Raw(";"),
		remote.Raw("source"), ex.Activate, remote.Raw(";"),
		"pip", "install", "ansible=="+s.runner.cfg.AnsibleVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to install ansible %s: %w", s.runner.cfg.AnsibleVersion, err)
	}
	return nil
}

func (s sourceStager) installDependencies(ctx context.Context, h *cluster.Host) error {
	if h.Facts == nil {
		facts, err := remote.GatherFacts(ctx, h.Remote)
		if err != nil {
			return err
		}
		h.Facts = facts
	}

	var err error
	if h.Facts.PackageType == remote.PackageTypeRPM {
		_, err = remote.Exec(ctx, h.Remote, "sudo", "yum", "install", "-y",
			"libffi-devel", "python-devel", "openssl-devel")
	} else {
		_, err = remote.Exec(ctx, h.Remote, "sudo", "apt-get", "install", "-y",
			"libssl-dev", "libffi-dev", "python-dev")
	}
	if err != nil {
		return fmt.Errorf("failed to install build dependencies: %w", err)
	}
	return nil
}
