package config

// Config is the full task configuration.
type Config struct {
	// Name labels the run in logs, metrics and archive keys.
	Name string `yaml:"name"`

	SSH         SSHConfig         `yaml:"ssh"`
	Targets     []Target          `yaml:"targets"`
	CephAnsible CephAnsibleConfig `yaml:"ceph_ansible"`
	Install     InstallConfig     `yaml:"install"`
	HCloud      HCloudConfig      `yaml:"hcloud"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// SSHConfig holds credentials for reaching the targets.
type SSHConfig struct {
	User           string `yaml:"user"`
	Port           int    `yaml:"port"`
	PrivateKeyPath string `yaml:"private_key_path"`
}

// Target is one machine of the test cluster and the roles it plays.
type Target struct {
	Hostname string `yaml:"hostname"`

	// Address is the IP or DNS name to dial. Empty means look it up through
	// Hetzner Cloud when a token is configured, otherwise dial Hostname.
	Address string `yaml:"address,omitempty"`

	Roles []string `yaml:"roles"`
}

// Play is one entry of a playbook override.
type Play struct {
	Hosts  string   `yaml:"hosts"`
	Become bool     `yaml:"become"`
	Roles  []string `yaml:"roles"`
}

// CephAnsibleConfig configures the ceph-ansible task.
type CephAnsibleConfig struct {
	// Repo is the ceph-ansible git URL used in source mode.
	Repo string `yaml:"repo"`
	// Branch is checked out in source mode.
	Branch string `yaml:"branch"`
	// GitBaseURL builds the default Repo.
	GitBaseURL string `yaml:"git_base_url"`
	// AnsibleVersion is pip-installed in the source-mode virtualenv.
	AnsibleVersion string `yaml:"ansible_version"`

	// Playbook overrides the default topology plan.
	Playbook []Play `yaml:"playbook"`

	// Vars are passed to ansible as extra vars and steer host vars.
	Vars map[string]any `yaml:"vars"`

	// GroupVars are written as group_vars/<group> files before the run.
	GroupVars map[string]map[string]any `yaml:"group_vars"`

	// RHBuild selects the prebuilt ceph-ansible shipped under /usr/share.
	RHBuild bool `yaml:"rhbuild"`

	// WaitForHealth polls cluster health after the playbook. Defaults to true.
	WaitForHealth *bool `yaml:"wait-for-health"`
}

// InstallConfig configures the package lifecycle.
type InstallConfig struct {
	Project  string   `yaml:"project"`
	Packages []string `yaml:"packages"`

	// Flavor selection inputs, see [InstallConfig.ResolveFlavor].
	Flavor   string `yaml:"flavor"`
	Path     string `yaml:"path"`
	Valgrind any    `yaml:"valgrind"`
	Coverage bool   `yaml:"coverage"`

	// Local is a directory of .deb files installed after the repository packages.
	Local string `yaml:"local"`

	Repository RepositoryConfig `yaml:"repository"`
}

// RepositoryConfig describes where packages come from.
type RepositoryConfig struct {
	// BaseURL may contain {project}, {flavor}, {codename} and {arch} placeholders.
	BaseURL string `yaml:"base_url"`
	// Version is pinned for every package.
	Version string `yaml:"version"`
	// Codename and Arch are detected on the remote when empty.
	Codename string `yaml:"codename"`
	Arch     string `yaml:"arch"`

	KeyURL      string `yaml:"key_url"`
	KeyIdentity string `yaml:"key_identity"`
}

// HCloudConfig enables target address lookup through Hetzner Cloud.
type HCloudConfig struct {
	Token string `yaml:"token"`
}

// ArchiveConfig uploads run artifacts to S3-compatible storage.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	// PathStyle addresses buckets as endpoint/bucket, as MinIO and Ceph RGW expect.
	PathStyle bool   `yaml:"path_style"`
}

// Enabled reports whether artifacts should be archived.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	// Textfile is written in Prometheus text format at the end of a run.
	Textfile string `yaml:"textfile"`
}
